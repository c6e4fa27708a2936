package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *Partner) error
	FindByID(ctx context.Context, id string) (*Partner, error)
	FindActive(ctx context.Context, category, city string) ([]*Partner, error)
	Update(ctx context.Context, partner *Partner) error
	Delete(ctx context.Context, id string) error
}

type BeneficiaryRepository interface {
	Create(ctx context.Context, beneficiary *Beneficiary) error
	FindByID(ctx context.Context, id string) (*Beneficiary, error)
	FindAll(ctx context.Context) ([]*Beneficiary, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

type pgPartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) PartnerRepository {
	return &pgPartnerRepository{pool: pool}
}

func (r *pgPartnerRepository) Create(ctx context.Context, partner *Partner) error {
	query := `
		INSERT INTO partners (name, category, city, description, logo_url, website, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		partner.Name, partner.Category, partner.City, partner.Description,
		partner.LogoURL, partner.Website, partner.IsActive,
	).Scan(&partner.ID, &partner.CreatedAt, &partner.UpdatedAt)
}

func (r *pgPartnerRepository) FindByID(ctx context.Context, id string) (*Partner, error) {
	query := `
		SELECT id, name, category, city, description, logo_url, website, is_active, created_at, updated_at
		FROM partners WHERE id = $1
	`
	partner := &Partner{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&partner.ID, &partner.Name, &partner.Category, &partner.City, &partner.Description,
		&partner.LogoURL, &partner.Website, &partner.IsActive, &partner.CreatedAt, &partner.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (r *pgPartnerRepository) FindActive(ctx context.Context, category, city string) ([]*Partner, error) {
	query := `
		SELECT id, name, category, city, description, logo_url, website, is_active, created_at, updated_at
		FROM partners
		WHERE is_active = TRUE
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR city = $2)
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query, category, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []*Partner
	for rows.Next() {
		partner := &Partner{}
		if err := rows.Scan(
			&partner.ID, &partner.Name, &partner.Category, &partner.City, &partner.Description,
			&partner.LogoURL, &partner.Website, &partner.IsActive, &partner.CreatedAt, &partner.UpdatedAt,
		); err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

func (r *pgPartnerRepository) Update(ctx context.Context, partner *Partner) error {
	query := `
		UPDATE partners
		SET name = $2, category = $3, city = $4, description = $5, logo_url = $6,
		    website = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		partner.ID, partner.Name, partner.Category, partner.City, partner.Description,
		partner.LogoURL, partner.Website, partner.IsActive,
	)
	return err
}

func (r *pgPartnerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	return err
}

type pgBeneficiaryRepository struct {
	pool *pgxpool.Pool
}

func NewBeneficiaryRepository(pool *pgxpool.Pool) BeneficiaryRepository {
	return &pgBeneficiaryRepository{pool: pool}
}

func (r *pgBeneficiaryRepository) Create(ctx context.Context, beneficiary *Beneficiary) error {
	query := `
		INSERT INTO beneficiaries (name, city, description, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		beneficiary.Name, beneficiary.City, beneficiary.Description, beneficiary.Verified,
	).Scan(&beneficiary.ID, &beneficiary.CreatedAt)
}

func (r *pgBeneficiaryRepository) FindByID(ctx context.Context, id string) (*Beneficiary, error) {
	query := `
		SELECT id, name, city, description, verified, created_at
		FROM beneficiaries WHERE id = $1
	`
	beneficiary := &Beneficiary{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&beneficiary.ID, &beneficiary.Name, &beneficiary.City,
		&beneficiary.Description, &beneficiary.Verified, &beneficiary.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return beneficiary, nil
}

func (r *pgBeneficiaryRepository) FindAll(ctx context.Context) ([]*Beneficiary, error) {
	query := `
		SELECT id, name, city, description, verified, created_at
		FROM beneficiaries ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beneficiaries []*Beneficiary
	for rows.Next() {
		beneficiary := &Beneficiary{}
		if err := rows.Scan(
			&beneficiary.ID, &beneficiary.Name, &beneficiary.City,
			&beneficiary.Description, &beneficiary.Verified, &beneficiary.CreatedAt,
		); err != nil {
			return nil, err
		}
		beneficiaries = append(beneficiaries, beneficiary)
	}
	return beneficiaries, rows.Err()
}

func (r *pgBeneficiaryRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE beneficiaries SET verified = $2 WHERE id = $1`, id, verified)
	return err
}
