package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	FindByID(ctx context.Context, id string) (*Member, error)
	FindByGroup(ctx context.Context, groupID string) ([]*Member, error)
	FindByGroupAndUser(ctx context.Context, groupID, userID string) (*Member, error)
	ExistsByGroupAndUser(ctx context.Context, groupID, userID string) (bool, error)
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id string) error
	// LinkUserByHandle claims unlinked roster slots whose stored contact
	// handle matches, pointing them at the given user. Returns how many
	// slots were linked.
	LinkUserByHandle(ctx context.Context, userID, handle string) (int, error)
	Ranking(ctx context.Context, groupID string, limit int) ([]*MemberRanking, error)
}

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgMemberRepository{pool: pool}
}

const memberColumns = `
	id, group_id, name, user_id, contact_handle, goal::text,
	total_contributed::text, goals_reached, joined_at
`

func (r *pgMemberRepository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (group_id, name, user_id, contact_handle, goal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, total_contributed::text, goals_reached, joined_at
	`
	var total string
	err := r.pool.QueryRow(ctx, query,
		member.GroupID, member.Name, member.UserID, member.ContactHandle, member.Goal.String(),
	).Scan(&member.ID, &total, &member.GoalsReached, &member.JoinedAt)
	if err != nil {
		return err
	}
	member.TotalContributed, err = decimal.NewFromString(total)
	return err
}

func (r *pgMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.pool.QueryRow(ctx, query, id))
}

func (r *pgMemberRepository) FindByGroup(ctx context.Context, groupID string) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE group_id = $1 ORDER BY joined_at ASC`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *pgMemberRepository) FindByGroupAndUser(ctx context.Context, groupID, userID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE group_id = $1 AND user_id = $2`
	return scanMember(r.pool.QueryRow(ctx, query, groupID, userID))
}

func (r *pgMemberRepository) ExistsByGroupAndUser(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *pgMemberRepository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE members SET name = $2, contact_handle = $3, goal = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, member.ID, member.Name, member.ContactHandle, member.Goal.String())
	return err
}

func (r *pgMemberRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}

func (r *pgMemberRepository) LinkUserByHandle(ctx context.Context, userID, handle string) (int, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE members SET user_id = $1
		WHERE user_id IS NULL AND contact_handle = $2
	`, userID, handle)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *pgMemberRepository) Ranking(ctx context.Context, groupID string, limit int) ([]*MemberRanking, error) {
	query := `
		SELECT id, name, total_contributed::text, goals_reached
		FROM members
		WHERE group_id = $1
		ORDER BY total_contributed DESC, joined_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranking []*MemberRanking
	for rows.Next() {
		entry := &MemberRanking{}
		var total string
		if err := rows.Scan(&entry.MemberID, &entry.Name, &total, &entry.GoalsReached); err != nil {
			return nil, err
		}
		entry.TotalContributed, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse member total: %w", err)
		}
		ranking = append(ranking, entry)
	}
	return ranking, rows.Err()
}

func scanMember(row pgx.Row) (*Member, error) {
	member := &Member{}
	var goal, total string
	err := row.Scan(
		&member.ID, &member.GroupID, &member.Name, &member.UserID, &member.ContactHandle,
		&goal, &total, &member.GoalsReached, &member.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if member.Goal, err = decimal.NewFromString(goal); err != nil {
		return nil, fmt.Errorf("parse member goal: %w", err)
	}
	if member.TotalContributed, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse member total: %w", err)
	}
	return member, nil
}
