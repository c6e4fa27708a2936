package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type GroupRepository interface {
	// CreateWithLeader inserts the group and the leader's roster slot in a
	// single transaction so a group can never exist without its first member.
	CreateWithLeader(ctx context.Context, group *Group, leaderName string, leaderHandle *string) error
	FindByID(ctx context.Context, id string) (*Group, error)
	FindByLeader(ctx context.Context, leaderID string) ([]*Group, error)
	FindPublic(ctx context.Context, city, donationType string, limit, offset int) ([]*Group, error)
	FindByMemberUser(ctx context.Context, userID string) ([]*Group, error)
	Update(ctx context.Context, group *Group) error
	Deactivate(ctx context.Context, id string) error
}

type pgGroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &pgGroupRepository{pool: pool}
}

const groupColumns = `
	g.id, g.name, g.city, g.donation_type, g.goal::text, g.leader_id,
	g.is_private, g.members_visible, g.beneficiary_id, g.ends_at,
	g.deactivated_at, g.created_at, g.updated_at
`

func (r *pgGroupRepository) CreateWithLeader(ctx context.Context, group *Group, leaderName string, leaderHandle *string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO groups (name, city, donation_type, goal, leader_id, is_private, members_visible, beneficiary_id, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		group.Name, group.City, group.DonationType, group.Goal.String(), group.LeaderID,
		group.IsPrivate, group.MembersVisible, group.BeneficiaryID, group.EndsAt,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (group_id, name, user_id, contact_handle, goal)
		VALUES ($1, $2, $3, $4, $5)
	`, group.ID, leaderName, group.LeaderID, leaderHandle, group.Goal.String())
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *pgGroupRepository) FindByLeader(ctx context.Context, leaderID string) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		WHERE g.leader_id = $1 AND g.deactivated_at IS NULL
		ORDER BY g.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, leaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *pgGroupRepository) FindPublic(ctx context.Context, city, donationType string, limit, offset int) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		WHERE g.is_private = FALSE AND g.deactivated_at IS NULL
		  AND ($1 = '' OR g.city = $1)
		  AND ($2 = '' OR g.donation_type = $2)
		ORDER BY g.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, city, donationType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *pgGroupRepository) FindByMemberUser(ctx context.Context, userID string) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		JOIN members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND g.deactivated_at IS NULL
		ORDER BY g.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *pgGroupRepository) Update(ctx context.Context, group *Group) error {
	query := `
		UPDATE groups
		SET name = $2, city = $3, donation_type = $4, goal = $5, is_private = $6,
		    members_visible = $7, beneficiary_id = $8, ends_at = $9, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		group.ID, group.Name, group.City, group.DonationType, group.Goal.String(),
		group.IsPrivate, group.MembersVisible, group.BeneficiaryID, group.EndsAt,
	)
	return err
}

func (r *pgGroupRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE groups SET deactivated_at = NOW() WHERE id = $1 AND deactivated_at IS NULL`, id)
	return err
}

func (r *pgGroupRepository) scanOne(row pgx.Row) (*Group, error) {
	group := &Group{}
	var goal string
	err := row.Scan(
		&group.ID, &group.Name, &group.City, &group.DonationType, &goal, &group.LeaderID,
		&group.IsPrivate, &group.MembersVisible, &group.BeneficiaryID, &group.EndsAt,
		&group.DeactivatedAt, &group.CreatedAt, &group.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	group.Goal, err = decimal.NewFromString(goal)
	if err != nil {
		return nil, fmt.Errorf("parse group goal: %w", err)
	}
	return group, nil
}

func (r *pgGroupRepository) scanMany(rows pgx.Rows) ([]*Group, error) {
	var groups []*Group
	for rows.Next() {
		group := &Group{}
		var goal string
		if err := rows.Scan(
			&group.ID, &group.Name, &group.City, &group.DonationType, &goal, &group.LeaderID,
			&group.IsPrivate, &group.MembersVisible, &group.BeneficiaryID, &group.EndsAt,
			&group.DeactivatedAt, &group.CreatedAt, &group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		g, err := decimal.NewFromString(goal)
		if err != nil {
			return nil, fmt.Errorf("parse group goal: %w", err)
		}
		group.Goal = g
		groups = append(groups, group)
	}
	return groups, rows.Err()
}
