package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"toolpool-backend/internal/middleware"
)

// NewRouter wires every endpoint behind the rate limiter. Claims are
// attached optionally at the root so the limiter keys by user id whenever a
// valid token is present; the protected subrouter still enforces auth. The
// webhook route skips auth, its signature is its credential.
func NewRouter(h *Handlers, auth *middleware.Authenticator, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(auth.Optional, limiter.Handler)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-email", h.VerifyEmail).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)

	// Payment processor callback
	r.HandleFunc("/webhooks/payment", h.PaymentWebhook).Methods(http.MethodPost)

	// Public browse
	r.HandleFunc("/tools", h.SearchTools).Methods(http.MethodGet)
	r.HandleFunc("/tools/{id:[0-9]+}", h.GetTool).Methods(http.MethodGet)
	r.HandleFunc("/requests", h.ListToolRequests).Methods(http.MethodGet)

	// Authenticated
	p := r.NewRoute().Subrouter()
	p.Use(auth.Required)

	p.HandleFunc("/my/tools", h.ListMyTools).Methods(http.MethodGet)
	p.HandleFunc("/tools", h.AddTool).Methods(http.MethodPost)
	p.HandleFunc("/tools/{id:[0-9]+}", h.UpdateTool).Methods(http.MethodPut)
	p.HandleFunc("/tools/{id:[0-9]+}", h.DeleteTool).Methods(http.MethodDelete)

	p.HandleFunc("/rentals", h.CreateRental).Methods(http.MethodPost)
	p.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet)
	p.HandleFunc("/lendings", h.ListLendings).Methods(http.MethodGet)
	p.HandleFunc("/rentals/{id:[0-9]+}", h.GetRental).Methods(http.MethodGet)
	p.HandleFunc("/rentals/{id:[0-9]+}/accept", h.AcceptRental).Methods(http.MethodPost)
	p.HandleFunc("/rentals/{id:[0-9]+}/reject", h.RejectRental).Methods(http.MethodPost)
	p.HandleFunc("/rentals/{id:[0-9]+}/return", h.MarkReturned).Methods(http.MethodPost)
	p.HandleFunc("/rentals/{id:[0-9]+}/claim", h.FileDepositClaim).Methods(http.MethodPost)
	p.HandleFunc("/rentals/{id:[0-9]+}/resolve-claim", h.ResolveDepositClaim).Methods(http.MethodPost)

	p.HandleFunc("/requests", h.CreateToolRequest).Methods(http.MethodPost)
	p.HandleFunc("/requests/{id:[0-9]+}/upvote", h.ToggleUpvote).Methods(http.MethodPost)
	p.HandleFunc("/requests/{id:[0-9]+}/status", h.SetRequestStatus).Methods(http.MethodPut)

	p.HandleFunc("/subscriptions/checkout", h.CreateSubscriptionCheckout).Methods(http.MethodPost)

	p.HandleFunc("/notifications", h.GetNotifications).Methods(http.MethodGet)
	p.HandleFunc("/notifications/{id:[0-9]+}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	return r
}
