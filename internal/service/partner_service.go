package service

import (
	"context"
	"strings"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type CreatePartnerInput struct {
	Name        string
	Category    string
	City        string
	Description *string
	LogoURL     *string
	Website     *string
}

type UpdatePartnerInput struct {
	Name        *string
	Category    *string
	City        *string
	Description *string
	LogoURL     *string
	Website     *string
	IsActive    *bool
}

type CreateBeneficiaryInput struct {
	Name        string
	City        string
	Description *string
}

// PartnerService manages the partner directory and the beneficiary
// registry groups can point their campaigns at. Reads are public;
// mutations are admin-only.
type PartnerService interface {
	CreatePartner(ctx context.Context, actorID string, input CreatePartnerInput) (*repository.Partner, error)
	GetPartner(ctx context.Context, id string) (*repository.Partner, error)
	// ListPartners filters the active directory; empty category/city
	// match everything.
	ListPartners(ctx context.Context, category, city string) ([]*repository.Partner, error)
	UpdatePartner(ctx context.Context, id, actorID string, input UpdatePartnerInput) (*repository.Partner, error)
	DeactivatePartner(ctx context.Context, id, actorID string) error

	CreateBeneficiary(ctx context.Context, actorID string, input CreateBeneficiaryInput) (*repository.Beneficiary, error)
	GetBeneficiary(ctx context.Context, id string) (*repository.Beneficiary, error)
	ListBeneficiaries(ctx context.Context) ([]*repository.Beneficiary, error)
	VerifyBeneficiary(ctx context.Context, id, actorID string, verified bool) (*repository.Beneficiary, error)
}

type partnerService struct {
	partnerRepo     repository.PartnerRepository
	beneficiaryRepo repository.BeneficiaryRepository
	userRepo        repository.UserRepository
}

func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	beneficiaryRepo repository.BeneficiaryRepository,
	userRepo repository.UserRepository,
) PartnerService {
	return &partnerService{
		partnerRepo:     partnerRepo,
		beneficiaryRepo: beneficiaryRepo,
		userRepo:        userRepo,
	}
}

func (s *partnerService) requireAdmin(ctx context.Context, actorID string) error {
	user, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if user == nil || user.Role != types.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *partnerService) CreatePartner(ctx context.Context, actorID string, input CreatePartnerInput) (*repository.Partner, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Category) == "" {
		return nil, ErrInvalidInput
	}

	partner := &repository.Partner{
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		City:        strings.TrimSpace(input.City),
		Description: input.Description,
		LogoURL:     input.LogoURL,
		Website:     input.Website,
		IsActive:    true,
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) GetPartner(ctx context.Context, id string) (*repository.Partner, error) {
	partner, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotFound
	}
	return partner, nil
}

func (s *partnerService) ListPartners(ctx context.Context, category, city string) ([]*repository.Partner, error) {
	return s.partnerRepo.FindActive(ctx, strings.TrimSpace(category), strings.TrimSpace(city))
}

func (s *partnerService) UpdatePartner(ctx context.Context, id, actorID string, input UpdatePartnerInput) (*repository.Partner, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	partner, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotFound
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidInput
		}
		partner.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		partner.Category = strings.TrimSpace(*input.Category)
	}
	if input.City != nil {
		partner.City = strings.TrimSpace(*input.City)
	}
	if input.Description != nil {
		partner.Description = input.Description
	}
	if input.LogoURL != nil {
		partner.LogoURL = input.LogoURL
	}
	if input.Website != nil {
		partner.Website = input.Website
	}
	if input.IsActive != nil {
		partner.IsActive = *input.IsActive
	}

	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) DeactivatePartner(ctx context.Context, id, actorID string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	partner, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if partner == nil {
		return ErrNotFound
	}
	partner.IsActive = false
	return s.partnerRepo.Update(ctx, partner)
}

func (s *partnerService) CreateBeneficiary(ctx context.Context, actorID string, input CreateBeneficiaryInput) (*repository.Beneficiary, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	beneficiary := &repository.Beneficiary{
		Name:        name,
		City:        strings.TrimSpace(input.City),
		Description: input.Description,
	}
	if err := s.beneficiaryRepo.Create(ctx, beneficiary); err != nil {
		return nil, err
	}
	return beneficiary, nil
}

func (s *partnerService) GetBeneficiary(ctx context.Context, id string) (*repository.Beneficiary, error) {
	beneficiary, err := s.beneficiaryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, ErrNotFound
	}
	return beneficiary, nil
}

func (s *partnerService) ListBeneficiaries(ctx context.Context) ([]*repository.Beneficiary, error) {
	return s.beneficiaryRepo.FindAll(ctx)
}

func (s *partnerService) VerifyBeneficiary(ctx context.Context, id, actorID string, verified bool) (*repository.Beneficiary, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	beneficiary, err := s.beneficiaryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, ErrNotFound
	}
	if err := s.beneficiaryRepo.SetVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	beneficiary.Verified = verified
	return beneficiary, nil
}
