package api

import (
	"errors"
	"net/http"

	apperrors "coachhub/internal/errors"
	"coachhub/internal/service"

	"go.uber.org/zap"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
	logger  *zap.Logger
}

func NewAdminAuthHandler(svc service.AdminAuthService, logger *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc, logger: logger.Named("admin_auth")}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("failed admin login", zap.String("email", req.Email))
			err = apperrors.ErrUnauthorized("invalid credentials")
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *AdminAuthHandler) CreateUserAdmin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.service.CreateAdmin(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Admin registered successfully"})
}
