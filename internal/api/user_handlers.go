package api

import (
	"context"
	"net/http"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AvailabilityFinder interface {
	GetAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error)
}

type BookingManager interface {
	CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.CheckoutResponse, error)
	GetBooking(ctx context.Context, code, email string) (*entities.BookingResponse, error)
	GetBookingBySessionID(ctx context.Context, sessionID string) (*entities.BookingResponse, error)
	CancelBooking(ctx context.Context, code string) error
}

type ProgressTracker interface {
	GetProgress(ctx context.Context, email string) (*entities.ProgressResponse, error)
	CompleteDrill(ctx context.Context, req entities.CompleteDrillRequest) (*entities.ProgressResponse, error)
}

type ServiceCatalog interface {
	ListServiceTypes(ctx context.Context) ([]db.ServiceType, error)
}

type UserHandler struct {
	availability AvailabilityFinder
	catalog      ServiceCatalog
	bookings     BookingManager
	progress     ProgressTracker
	logger       *zap.Logger
}

func NewUserHandler(availability AvailabilityFinder, catalog ServiceCatalog, bookings BookingManager, progress ProgressTracker, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		availability: availability,
		catalog:      catalog,
		bookings:     bookings,
		progress:     progress,
		logger:       logger.Named("api"),
	}
}

func (h *UserHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req = entities.AvailabilityRequest{
			Date:          q.Get("date"),
			CoachID:       q.Get("coachId"),
			ServiceTypeID: q.Get("serviceTypeId"),
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.availability.GetAvailability(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) ListServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalog.ListServiceTypes(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp := make([]entities.ServiceTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, entities.ServiceTypeResponse{ID: t.ID.String(), Name: t.Name, DurationMinutes: t.DurationMinutes})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.bookings.CreateBooking(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UserHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	resp, err := h.bookings.GetBooking(r.Context(), code, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) GetBookingBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, r, h.logger, apperrors.NewValidationError("session_id", "is required"))
		return
	}
	resp, err := h.bookings.GetBookingBySessionID(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.bookings.CancelBooking(r.Context(), code); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking cancelled"})
}

func (h *UserHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Tiers())
}

func (h *UserHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	resp, err := h.progress.GetProgress(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) CompleteDrill(w http.ResponseWriter, r *http.Request) {
	var req entities.CompleteDrillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.progress.CompleteDrill(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
