package service

import (
	"context"
	"fmt"
	"regexp"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/repository"
)

var postcodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{2,9}$`)

type requestBoardService struct {
	requestRepo repository.ToolRequestRepository
	userRepo    repository.UserRepository
}

func NewRequestBoardService(requestRepo repository.ToolRequestRepository, userRepo repository.UserRepository) RequestBoardService {
	return &requestBoardService{requestRepo: requestRepo, userRepo: userRepo}
}

func (s *requestBoardService) CreateRequest(ctx context.Context, req *domain.ToolRequest) error {
	if req.ToolName == "" {
		return fmt.Errorf("%w: tool name is required", domain.ErrValidationFailed)
	}
	if !postcodePattern.MatchString(req.Postcode) {
		return fmt.Errorf("%w: invalid postcode %q", domain.ErrValidationFailed, req.Postcode)
	}

	req.Status = domain.ToolRequestStatusOpen
	req.UpvoteCount = 0
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return err
	}
	logger.Info("Tool request posted", "request_id", req.ID, "user_id", req.UserID)
	return nil
}

// ToggleUpvote adds the caller's upvote, or withdraws it if already present.
// Returns whether the upvote now exists and the resulting count.
func (s *requestBoardService) ToggleUpvote(ctx context.Context, requestID, userID int32) (bool, int32, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return false, 0, err
	}
	if req.Status != domain.ToolRequestStatusOpen {
		return false, 0, fmt.Errorf("%w: request is %s, voting closed", domain.ErrPreconditionFailed, req.Status)
	}
	return s.requestRepo.ToggleUpvote(ctx, requestID, userID)
}

func (s *requestBoardService) SetStatus(ctx context.Context, adminID, requestID int32, status domain.ToolRequestStatus) error {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin {
		return fmt.Errorf("%w: administrator role required", domain.ErrAuthorizationDenied)
	}
	switch status {
	case domain.ToolRequestStatusFulfilled, domain.ToolRequestStatusClosed:
	default:
		return fmt.Errorf("%w: cannot set request status to %q", domain.ErrValidationFailed, status)
	}

	ok, err := s.requestRepo.SetStatus(ctx, requestID, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: request is not open", domain.ErrPreconditionFailed)
	}
	logger.Info("Tool request status changed", "request_id", requestID, "status", status, "admin_id", adminID)
	return nil
}

func (s *requestBoardService) ListRequests(ctx context.Context, status string, page, pageSize int32) ([]domain.ToolRequest, int32, error) {
	return s.requestRepo.List(ctx, status, page, pageSize)
}
