package service_test

import (
	"context"
	"errors"
	"testing"

	apperrors "coachhub/internal/errors"
	"coachhub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryMemberships struct {
	tiers map[string]string
	err   error
}

func (m *memoryMemberships) GetTier(_ context.Context, email string) (string, error) {
	return m.tiers[email], m.err
}

func (m *memoryMemberships) UpsertMembership(_ context.Context, email, tier string) error {
	if m.err != nil {
		return m.err
	}
	m.tiers[email] = tier
	return nil
}

func TestLookupTier(t *testing.T) {
	assert.Equal(t, int64(7000), service.LookupTier("pro").LessonRateCents)
	assert.Equal(t, service.TierElite, service.LookupTier(" Elite ").Name)
	assert.Equal(t, service.TierFree, service.LookupTier("platinum").Name)
	assert.Equal(t, service.TierFree, service.LookupTier("").Name)
}

func TestTiersAreCheapestLast(t *testing.T) {
	all := service.Tiers()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i].LessonRateCents, all[i-1].LessonRateCents)
		assert.Greater(t, all[i].MonthlyCredits, all[i-1].MonthlyCredits)
	}

	all[0].LessonRateCents = 1
	assert.Equal(t, int64(9000), service.Tiers()[0].LessonRateCents)
}

func TestLessonPrice(t *testing.T) {
	pro := service.LookupTier(service.TierPro)
	assert.Equal(t, int64(7000), pro.LessonPrice(60))
	assert.Equal(t, int64(10500), pro.LessonPrice(90))
	assert.Equal(t, int64(3500), pro.LessonPrice(30))
	assert.Equal(t, int64(0), service.Tier{}.LessonPrice(60))
}

func TestMembershipService(t *testing.T) {
	store := &memoryMemberships{tiers: map[string]string{"ana@example.com": "starter"}}
	svc := service.NewMembershipService(store)

	tier, err := svc.TierFor(t.Context(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, service.TierStarter, tier.Name)

	tier, err = svc.TierFor(t.Context(), "visitor@example.com")
	require.NoError(t, err)
	assert.Equal(t, service.TierFree, tier.Name)

	require.NoError(t, svc.SetTier(t.Context(), "ana@example.com", " PRO "))
	assert.Equal(t, "pro", store.tiers["ana@example.com"])

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, svc.SetTier(t.Context(), "ana@example.com", "platinum"), &vErr)
	assert.Equal(t, "tier", vErr.Field)
	require.ErrorAs(t, svc.SetTier(t.Context(), " ", "pro"), &vErr)
	assert.Equal(t, "email", vErr.Field)

	store.err = errors.New("db gone")
	_, err = svc.TierFor(t.Context(), "ana@example.com")
	assert.Error(t, err)
}
