package domain

import "errors"

// Error taxonomy shared by all services. Handlers map these to HTTP status
// codes with errors.Is; services wrap them with context via fmt.Errorf.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrValidationFailed       = errors.New("validation failed")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrExternalService        = errors.New("external service failure")
	ErrNotFound               = errors.New("not found")
	ErrDuplicate              = errors.New("already exists")
)
