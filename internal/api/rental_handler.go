package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolpool-backend/internal/domain"
)

type createRentalRequest struct {
	ToolID    int32  `json:"tool_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type createRentalResponse struct {
	Rental      *domain.Rental `json:"rental"`
	CheckoutURL string         `json:"checkout_url"`
}

func (h *Handlers) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err))
		return
	}

	rental, checkoutURL, err := h.Rentals.CreateRentalRequest(r.Context(), callerID(r), req.ToolID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRentalResponse{Rental: rental, CheckoutURL: checkoutURL})
}

func (h *Handlers) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}
	rental, err := h.Rentals.GetRental(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) AcceptRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}
	rental, err := h.Rentals.AcceptRental(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) RejectRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeError(w, fmt.Errorf("%w: rejection reason is required", domain.ErrValidationFailed))
		return
	}

	rental, err := h.Rentals.RejectRental(r.Context(), callerID(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) MarkReturned(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}
	rental, err := h.Rentals.MarkReturned(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) FileDepositClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}

	rental, err := h.Rentals.FileDepositClaim(r.Context(), callerID(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) ResolveDepositClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid rental id", domain.ErrValidationFailed))
		return
	}

	var req struct {
		Forfeit bool   `json:"forfeit"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrValidationFailed))
		return
	}

	rental, err := h.Rentals.ResolveDepositClaim(r.Context(), callerID(r), id, req.Forfeit, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handlers) ListRentals(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	rentals, total, err := h.Rentals.ListRentals(r.Context(), callerID(r), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: rentals, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handlers) ListLendings(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	rentals, total, err := h.Rentals.ListLendings(r.Context(), callerID(r), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: rentals, Total: total, Page: page, PageSize: pageSize})
}
