package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "coachhub/internal/errors"
	"coachhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL          = time.Hour
	minPasswordLength = 8
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	now    func() time.Time
	logger *zap.Logger
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string, logger *zap.Logger) AdminAuthService {
	return &adminAuthService{repo: repo, secret: []byte(secret), now: time.Now, logger: logger.Named("admin_auth")}
}

// Login checks the password and issues a token valid for one hour. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not set")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.repo.RecordLogin(ctx, admin.ID, now); err != nil {
		s.logger.Warn("recording login failed", zap.String("email", admin.Email), zap.Error(err))
	}
	return signed, nil
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return apperrors.NewValidationError("", "email and password cannot be empty")
	}
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("password", "must be at least 8 characters")
	}
	return s.repo.CreateNewUser(ctx, email, password)
}
