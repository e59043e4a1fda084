package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolpool-backend/internal/domain"
)

type toolRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=100"`
	Description        string `json:"description" validate:"max=2000"`
	Category           string `json:"category" validate:"required"`
	Condition          string `json:"condition" validate:"required"`
	DailyRateCents     int32  `json:"daily_rate_cents" validate:"required,gt=0"`
	AssessedValueCents int32  `json:"assessed_value_cents" validate:"gte=0"`
	Available          bool   `json:"available"`
	Postcode           string `json:"postcode" validate:"required"`
}

func (h *Handlers) AddTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err))
		return
	}

	tool := &domain.Tool{
		OwnerID:            callerID(r),
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Condition:          domain.ToolCondition(req.Condition),
		DailyRateCents:     req.DailyRateCents,
		AssessedValueCents: req.AssessedValueCents,
		Postcode:           req.Postcode,
	}
	if err := h.Tools.AddTool(r.Context(), tool); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

func (h *Handlers) GetTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid tool id", domain.ErrValidationFailed))
		return
	}
	tool, err := h.Tools.GetTool(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *Handlers) UpdateTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid tool id", domain.ErrValidationFailed))
		return
	}

	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err))
		return
	}

	tool := &domain.Tool{
		ID:                 id,
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Condition:          domain.ToolCondition(req.Condition),
		DailyRateCents:     req.DailyRateCents,
		AssessedValueCents: req.AssessedValueCents,
		Available:          req.Available,
		Postcode:           req.Postcode,
	}
	if err := h.Tools.UpdateTool(r.Context(), callerID(r), tool); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *Handlers) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid tool id", domain.ErrValidationFailed))
		return
	}
	if err := h.Tools.DeleteTool(r.Context(), callerID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListMyTools(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	tools, total, err := h.Tools.ListMyTools(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: tools, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handlers) SearchTools(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	maxRate := queryInt32(r, "max_daily_rate_cents", 0)

	tools, total, err := h.Tools.SearchTools(r.Context(), query, category, maxRate, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: tools, Total: total, Page: page, PageSize: pageSize})
}
