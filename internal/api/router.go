package api

import (
	"net/http"

	"coachhub/internal/auth"

	"github.com/gorilla/mux"
)

type Handlers struct {
	User      *UserHandler
	Admin     *AdminHandler
	AdminAuth *AdminAuthHandler
	Stripe    *StripeWebhookHandler
}

// NewRouter registers every route. Everything under /admin except login
// requires an admin token signed with jwtSecret.
func NewRouter(h Handlers, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
	}).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/availability", h.User.CheckAvailability).Methods("GET", "POST")
	r.HandleFunc("/api/service-types", h.User.ListServiceTypes).Methods("GET")
	r.HandleFunc("/api/bookings", h.User.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", h.User.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{code}", h.User.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/checkout/session", h.User.GetBookingBySession).Methods("GET")
	r.HandleFunc("/api/memberships/tiers", h.User.ListTiers).Methods("GET")
	r.HandleFunc("/api/progress", h.User.GetProgress).Methods("GET")
	r.HandleFunc("/api/progress/drills", h.User.CompleteDrill).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", h.Stripe.HandleWebhook).Methods("POST")

	r.HandleFunc("/admin/login", h.AdminAuth.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(jwtSecret))
	admin.HandleFunc("/users", h.AdminAuth.CreateUserAdmin).Methods("POST")
	admin.HandleFunc("/availability", h.Admin.ListAvailabilityWindows).Methods("GET")
	admin.HandleFunc("/availability", h.Admin.CreateAvailabilityWindow).Methods("POST")
	admin.HandleFunc("/availability/{id}", h.Admin.DeleteAvailabilityWindow).Methods("DELETE")
	admin.HandleFunc("/blocks", h.Admin.ListBlockedRanges).Methods("GET")
	admin.HandleFunc("/blocks", h.Admin.CreateBlockedRange).Methods("POST")
	admin.HandleFunc("/blocks/{id}", h.Admin.DeleteBlockedRange).Methods("DELETE")
	admin.HandleFunc("/bookings", h.Admin.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{code}/status", h.Admin.UpdateBookingStatus).Methods("PUT")
	admin.HandleFunc("/service-types/{id}/duration", h.Admin.UpdateServiceDuration).Methods("PUT")
	admin.HandleFunc("/memberships", h.Admin.SetMembership).Methods("PUT")

	return r
}
