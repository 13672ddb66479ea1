package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type MembershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{DB: db}
}

// GetTier returns the member's tier name, or "" for visitors without a membership.
func (r *MembershipRepository) GetTier(ctx context.Context, email string) (string, error) {
	var tier string
	err := r.DB.QueryRowContext(ctx, `SELECT tier FROM memberships WHERE email = lower($1)`, email).Scan(&tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("error querying membership: %w", err)
	}
	return tier, nil
}

func (r *MembershipRepository) UpsertMembership(ctx context.Context, email, tier string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO memberships (email, tier) VALUES (lower($1), $2)
		ON CONFLICT (email) DO UPDATE SET tier = EXCLUDED.tier`, email, tier)
	if err != nil {
		return fmt.Errorf("error saving membership: %w", err)
	}
	return nil
}
