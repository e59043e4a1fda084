package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolpool-backend/internal/domain"
)

func (h *Handlers) CreateSubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tier == "" {
		writeError(w, fmt.Errorf("%w: tier is required", domain.ErrValidationFailed))
		return
	}

	url, err := h.Subscriptions.CreateSubscriptionCheckout(r.Context(), callerID(r), domain.Tier(req.Tier))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	notes, total, err := h.Notifications.GetNotifications(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: notes, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid notification id", domain.ErrValidationFailed))
		return
	}
	if err := h.Notifications.MarkAsRead(r.Context(), callerID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
