package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/payment"
)

const webhookSignatureHeader = "Webhook-Signature"

// maxWebhookBody caps the webhook payload size; processor events are small.
const maxWebhookBody = 1 << 20

// PaymentWebhook receives processor events. The signature is verified over
// the raw body before anything is parsed, and a verified-but-unprocessable
// event still returns 200 so the processor stops redelivering it.
func (h *Handlers) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading webhook body", domain.ErrValidationFailed))
		return
	}

	sig := r.Header.Get(webhookSignatureHeader)
	if err := payment.VerifySignature(payload, sig, h.WebhookSecret, time.Now().UTC(), payment.DefaultSignatureTolerance); err != nil {
		logger.Warn("Rejected webhook with bad signature", "error", err)
		writeError(w, err)
		return
	}

	ev, err := payment.ParseEvent(payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Subscriptions.HandleWebhookEvent(r.Context(), ev); err != nil {
		logger.Error("Webhook event processing failed", "event_id", ev.ID, "type", ev.Type, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"received": ev.ID})
}
