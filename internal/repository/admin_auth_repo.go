package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "coachhub/internal/errors"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const pqUniqueViolation = "23505"

var ErrAdminExists = apperrors.NewHTTPError(http.StatusConflict, "an admin with that email already exists")

// Admin is a staff account allowed into the /admin API.
type Admin struct {
	ID           int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  sql.NullTime
}

type AdminAuthRepository interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	CreateNewUser(ctx context.Context, email, password string) error
	RecordLogin(ctx context.Context, id int, at time.Time) error
}

type adminAuthRepository struct {
	db *sql.DB
}

func NewAdminAuthRepository(db *sql.DB) AdminAuthRepository {
	return &adminAuthRepository{db: db}
}

func (r *adminAuthRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var admin Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at, last_login_at FROM admins WHERE email = $1`, email).
		Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt, &admin.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin '%s': %w", email, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading admin: %w", err)
	}
	return &admin, nil
}

// CreateNewUser stores a bcrypt hash of password, never the password itself.
func (r *adminAuthRepository) CreateNewUser(ctx context.Context, email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO admins (email, password_hash) VALUES ($1, $2)`, email, string(hashedPassword))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrAdminExists
	}
	if err != nil {
		return fmt.Errorf("error inserting admin: %w", err)
	}
	return nil
}

func (r *adminAuthRepository) RecordLogin(ctx context.Context, id int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("error recording admin login: %w", err)
	}
	return nil
}
