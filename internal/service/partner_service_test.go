package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type partnerFixture struct {
	partners      *fakePartnerRepo
	beneficiaries *fakeBeneficiaryRepo
	users         *fakeUserRepo
	service       PartnerService
}

func newPartnerFixture(t *testing.T) *partnerFixture {
	t.Helper()
	partners := newFakePartnerRepo()
	beneficiaries := newFakeBeneficiaryRepo()
	users := newFakeUserRepo()

	require.NoError(t, users.Create(context.Background(), &repository.User{
		ID:   "admin-1",
		Role: types.RoleAdmin,
	}))
	require.NoError(t, users.Create(context.Background(), &repository.User{
		ID:   "user-1",
		Role: types.RoleUser,
	}))

	return &partnerFixture{
		partners:      partners,
		beneficiaries: beneficiaries,
		users:         users,
		service:       NewPartnerService(partners, beneficiaries, users),
	}
}

func TestCreatePartnerAdminOnly(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	input := CreatePartnerInput{Name: "Mercado Bom Preço", Category: "mercado", City: "São Paulo"}

	_, err := f.service.CreatePartner(ctx, "user-1", input)
	assert.ErrorIs(t, err, ErrForbidden)

	partner, err := f.service.CreatePartner(ctx, "admin-1", input)
	require.NoError(t, err)
	assert.True(t, partner.IsActive)
}

func TestListPartnersFilters(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	_, err := f.service.CreatePartner(ctx, "admin-1", CreatePartnerInput{Name: "Mercado A", Category: "mercado", City: "São Paulo"})
	require.NoError(t, err)
	_, err = f.service.CreatePartner(ctx, "admin-1", CreatePartnerInput{Name: "Farmácia B", Category: "farmacia", City: "Campinas"})
	require.NoError(t, err)

	all, err := f.service.ListPartners(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	markets, err := f.service.ListPartners(ctx, "mercado", "")
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "Mercado A", markets[0].Name)

	campinas, err := f.service.ListPartners(ctx, "", "Campinas")
	require.NoError(t, err)
	require.Len(t, campinas, 1)
	assert.Equal(t, "Farmácia B", campinas[0].Name)
}

func TestDeactivatedPartnerLeavesDirectory(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	partner, err := f.service.CreatePartner(ctx, "admin-1", CreatePartnerInput{Name: "Mercado A", Category: "mercado", City: "São Paulo"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.DeactivatePartner(ctx, partner.ID, "user-1"), ErrForbidden)
	require.NoError(t, f.service.DeactivatePartner(ctx, partner.ID, "admin-1"))

	active, err := f.service.ListPartners(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, active)

	// Still reachable by ID for existing group links.
	got, err := f.service.GetPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestVerifyBeneficiary(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	beneficiary, err := f.service.CreateBeneficiary(ctx, "admin-1", CreateBeneficiaryInput{Name: "Lar São Francisco", City: "São Paulo"})
	require.NoError(t, err)
	assert.False(t, beneficiary.Verified)

	_, err = f.service.VerifyBeneficiary(ctx, beneficiary.ID, "user-1", true)
	assert.ErrorIs(t, err, ErrForbidden)

	verified, err := f.service.VerifyBeneficiary(ctx, beneficiary.ID, "admin-1", true)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
}
