package api

import (
	"context"
	"net/http"
	"strconv"

	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AdminManager interface {
	CreateAvailabilityWindow(ctx context.Context, req entities.AvailabilityWindowRequest) (*entities.AvailabilityWindowResponse, error)
	ListAvailabilityWindows(ctx context.Context, coachID string) ([]entities.AvailabilityWindowResponse, error)
	DeleteAvailabilityWindow(ctx context.Context, id string) error
	CreateBlockedRange(ctx context.Context, req entities.BlockedRangeRequest) (*entities.BlockedRangeResponse, error)
	ListBlockedRanges(ctx context.Context, coachID string) ([]entities.BlockedRangeResponse, error)
	DeleteBlockedRange(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter entities.BookingFilter) (*entities.BookingsList, error)
	UpdateBookingStatus(ctx context.Context, code, status string) error
	UpdateServiceDuration(ctx context.Context, id string, minutes int) error
}

type MembershipAdmin interface {
	SetTier(ctx context.Context, email, tier string) error
}

type AdminHandler struct {
	service     AdminManager
	memberships MembershipAdmin
	logger      *zap.Logger
}

func NewAdminHandler(svc AdminManager, memberships MembershipAdmin, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: svc, memberships: memberships, logger: logger.Named("admin_api")}
}

func (h *AdminHandler) ListAvailabilityWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := h.service.ListAvailabilityWindows(r.Context(), r.URL.Query().Get("coachId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

func (h *AdminHandler) CreateAvailabilityWindow(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityWindowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.service.CreateAvailabilityWindow(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AdminHandler) DeleteAvailabilityWindow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAvailabilityWindow(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListBlockedRanges(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.ListBlockedRanges(r.Context(), r.URL.Query().Get("coachId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (h *AdminHandler) CreateBlockedRange(w http.ResponseWriter, r *http.Request) {
	var req entities.BlockedRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.service.CreateBlockedRange(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AdminHandler) DeleteBlockedRange(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBlockedRange(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entities.BookingFilter{
		Date:    q.Get("date"),
		CoachID: q.Get("coachId"),
		Status:  q.Get("status"),
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError("limit", "must be a number"))
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError("offset", "must be a number"))
		return
	}

	list, err := h.service.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req entities.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.service.UpdateBookingStatus(r.Context(), mux.Vars(r)["code"], req.Status); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking updated"})
}

func (h *AdminHandler) UpdateServiceDuration(w http.ResponseWriter, r *http.Request) {
	var req entities.ServiceDurationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.service.UpdateServiceDuration(r.Context(), mux.Vars(r)["id"], req.DurationMinutes); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Service type updated"})
}

func (h *AdminHandler) SetMembership(w http.ResponseWriter, r *http.Request) {
	var req entities.MembershipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.memberships.SetTier(r.Context(), req.Email, req.Tier); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Membership updated"})
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
