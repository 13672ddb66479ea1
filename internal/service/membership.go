package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "coachhub/internal/errors"
)

const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
	TierElite   = "elite"
)

// Tier is what a membership level entitles a member to.
type Tier struct {
	Name             string `json:"name"`
	MonthlyCredits   int    `json:"monthlyCredits"`
	FeedbackSLAHours int    `json:"feedbackSlaHours"`
	LessonRateCents  int64  `json:"lessonRateCents"`
}

var tiers = []Tier{
	{Name: TierFree, MonthlyCredits: 0, FeedbackSLAHours: 0, LessonRateCents: 9000},
	{Name: TierStarter, MonthlyCredits: 2, FeedbackSLAHours: 72, LessonRateCents: 8000},
	{Name: TierPro, MonthlyCredits: 4, FeedbackSLAHours: 48, LessonRateCents: 7000},
	{Name: TierElite, MonthlyCredits: 8, FeedbackSLAHours: 24, LessonRateCents: 6000},
}

// Tiers lists every membership level, cheapest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// LookupTier resolves a tier by name. Unknown names get the free tier.
func LookupTier(name string) Tier {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range tiers {
		if t.Name == name {
			return t
		}
	}
	return tiers[0]
}

func validTier(name string) bool {
	for _, t := range tiers {
		if t.Name == name {
			return true
		}
	}
	return false
}

// LessonPrice is the member's rate prorated to the lesson length.
func (t Tier) LessonPrice(durationMinutes int) int64 {
	return t.LessonRateCents * int64(durationMinutes) / 60
}

type MembershipStore interface {
	GetTier(ctx context.Context, email string) (string, error)
	UpsertMembership(ctx context.Context, email, tier string) error
}

type MembershipService struct {
	store MembershipStore
}

func NewMembershipService(store MembershipStore) *MembershipService {
	return &MembershipService{store: store}
}

// TierFor returns the tier of the member with that email; visitors are free.
func (s *MembershipService) TierFor(ctx context.Context, email string) (Tier, error) {
	name, err := s.store.GetTier(ctx, email)
	if err != nil {
		return Tier{}, err
	}
	return LookupTier(name), nil
}

func (s *MembershipService) SetTier(ctx context.Context, email, tier string) error {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email", "is required")
	}
	if !validTier(tier) {
		return apperrors.NewValidationError("tier", fmt.Sprintf("unknown tier %q", tier))
	}
	return s.store.UpsertMembership(ctx, email, tier)
}
