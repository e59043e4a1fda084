package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"toolpool-backend/internal/middleware"
	"toolpool-backend/internal/service"
)

// Handlers bundles the HTTP endpoints and their service dependencies.
type Handlers struct {
	Auth          service.AuthService
	Tools         service.ToolService
	Rentals       service.RentalService
	Subscriptions service.SubscriptionService
	Requests      service.RequestBoardService
	Notifications service.NotificationService

	WebhookSecret string
	Validate      *validator.Validate
}

func NewHandlers(
	auth service.AuthService,
	tools service.ToolService,
	rentals service.RentalService,
	subscriptions service.SubscriptionService,
	requests service.RequestBoardService,
	notifications service.NotificationService,
	webhookSecret string,
) *Handlers {
	return &Handlers{
		Auth:          auth,
		Tools:         tools,
		Rentals:       rentals,
		Subscriptions: subscriptions,
		Requests:      requests,
		Notifications: notifications,
		WebhookSecret: webhookSecret,
		Validate:      validator.New(),
	}
}

// callerID returns the authenticated user's id. The auth middleware
// guarantees claims are present on protected routes.
func callerID(r *http.Request) int32 {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return 0
	}
	return claims.UserID
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func pagination(r *http.Request) (page, pageSize int32) {
	page = queryInt32(r, "page", 1)
	pageSize = queryInt32(r, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

type listResponse struct {
	Items    any   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}
