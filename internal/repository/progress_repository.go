package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProgressRepository interface {
	// Append inserts the ledger entry and maintains the member's
	// materialized aggregate (total plus goals-reached counter) in the
	// same transaction. The ledger itself is append-only; totals are
	// never written outside this path.
	Append(ctx context.Context, entry *ProgressEntry) error
	FindByMember(ctx context.Context, memberID string) ([]*ProgressEntry, error)
	FindByGroup(ctx context.Context, groupID string) ([]*ProgressEntry, error)
	GroupTotal(ctx context.Context, groupID string) (decimal.Decimal, error)
}

type pgProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) ProgressRepository {
	return &pgProgressRepository{pool: pool}
}

func (r *pgProgressRepository) Append(ctx context.Context, entry *ProgressEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO progress_entries (member_id, group_id, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, entry.MemberID, entry.GroupID, entry.Amount.String(), entry.Description).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return err
	}

	// Bump the materialized total; count a reached goal exactly once,
	// when this entry crosses the member's goal line.
	_, err = tx.Exec(ctx, `
		UPDATE members
		SET total_contributed = total_contributed + $2,
		    goals_reached = goals_reached + CASE
		        WHEN goal > 0 AND total_contributed < goal AND total_contributed + $2 >= goal THEN 1
		        ELSE 0
		    END
		WHERE id = $1
	`, entry.MemberID, entry.Amount.String())
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgProgressRepository) FindByMember(ctx context.Context, memberID string) ([]*ProgressEntry, error) {
	query := `
		SELECT id, member_id, group_id, amount::text, description, created_at
		FROM progress_entries WHERE member_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProgressEntries(rows)
}

func (r *pgProgressRepository) FindByGroup(ctx context.Context, groupID string) ([]*ProgressEntry, error) {
	query := `
		SELECT id, member_id, group_id, amount::text, description, created_at
		FROM progress_entries WHERE group_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProgressEntries(rows)
}

func (r *pgProgressRepository) GroupTotal(ctx context.Context, groupID string) (decimal.Decimal, error) {
	var total string
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text FROM progress_entries WHERE group_id = $1
	`, groupID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}

func scanProgressEntries(rows pgx.Rows) ([]*ProgressEntry, error) {
	var entries []*ProgressEntry
	for rows.Next() {
		entry := &ProgressEntry{}
		var amount string
		if err := rows.Scan(
			&entry.ID, &entry.MemberID, &entry.GroupID, &amount,
			&entry.Description, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse entry amount: %w", err)
		}
		entry.Amount = parsed
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
