package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolpool-backend/internal/domain"
)

type toolRequestRequest struct {
	ToolName    string `json:"tool_name" validate:"required,min=2,max=100"`
	Category    string `json:"category" validate:"required"`
	Postcode    string `json:"postcode" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

func (h *Handlers) CreateToolRequest(w http.ResponseWriter, r *http.Request) {
	var req toolRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err))
		return
	}

	toolReq := &domain.ToolRequest{
		UserID:      callerID(r),
		ToolName:    req.ToolName,
		Category:    req.Category,
		Postcode:    req.Postcode,
		Description: req.Description,
	}
	if err := h.Requests.CreateRequest(r.Context(), toolReq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toolReq)
}

type upvoteResponse struct {
	Upvoted     bool  `json:"upvoted"`
	UpvoteCount int32 `json:"upvote_count"`
}

func (h *Handlers) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid request id", domain.ErrValidationFailed))
		return
	}

	upvoted, count, err := h.Requests.ToggleUpvote(r.Context(), id, callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upvoteResponse{Upvoted: upvoted, UpvoteCount: count})
}

func (h *Handlers) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid request id", domain.ErrValidationFailed))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}

	if err := h.Requests.SetStatus(r.Context(), callerID(r), id, domain.ToolRequestStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *Handlers) ListToolRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	requests, total, err := h.Requests.ListRequests(r.Context(), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: requests, Total: total, Page: page, PageSize: pageSize})
}
