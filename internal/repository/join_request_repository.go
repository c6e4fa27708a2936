package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePending is returned when a pending request already exists
// for the same (group, user) pair. Backed by a partial unique index so
// concurrent submissions cannot slip through.
var ErrDuplicatePending = errors.New("pending join request already exists")

type JoinRequestRepository interface {
	Create(ctx context.Context, request *JoinRequest) error
	FindByID(ctx context.Context, id string) (*JoinRequest, error)
	FindPendingByGroup(ctx context.Context, groupID string) ([]*JoinRequest, error)
	FindByUser(ctx context.Context, userID string) ([]*JoinRequest, error)
	// Resolve flips a pending request to the given terminal status. When
	// the new status is approved, the member roster insert happens in the
	// same transaction. Returns false if the request was not pending.
	Resolve(ctx context.Context, id, status string, member *Member) (bool, error)
}

type pgJoinRequestRepository struct {
	pool *pgxpool.Pool
}

func NewJoinRequestRepository(pool *pgxpool.Pool) JoinRequestRepository {
	return &pgJoinRequestRepository{pool: pool}
}

func (r *pgJoinRequestRepository) Create(ctx context.Context, request *JoinRequest) error {
	query := `
		INSERT INTO join_requests (group_id, user_id, name, message, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, status, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		request.GroupID, request.UserID, request.Name, request.Message,
	).Scan(&request.ID, &request.Status, &request.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePending
	}
	return err
}

func (r *pgJoinRequestRepository) FindByID(ctx context.Context, id string) (*JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, name, message, status, created_at
		FROM join_requests WHERE id = $1
	`
	request := &JoinRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.GroupID, &request.UserID, &request.Name,
		&request.Message, &request.Status, &request.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *pgJoinRequestRepository) FindPendingByGroup(ctx context.Context, groupID string) ([]*JoinRequest, error) {
	// Oldest first so leaders resolve earlier requesters first.
	query := `
		SELECT id, group_id, user_id, name, message, status, created_at
		FROM join_requests WHERE group_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJoinRequests(rows)
}

func (r *pgJoinRequestRepository) FindByUser(ctx context.Context, userID string) ([]*JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, name, message, status, created_at
		FROM join_requests WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJoinRequests(rows)
}

func (r *pgJoinRequestRepository) Resolve(ctx context.Context, id, status string, member *Member) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE join_requests SET status = $2
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return false, err
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if member != nil {
		var total string
		err = tx.QueryRow(ctx, `
			INSERT INTO members (group_id, name, user_id, contact_handle, goal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, total_contributed::text, goals_reached, joined_at
		`, member.GroupID, member.Name, member.UserID, member.ContactHandle, member.Goal.String()).
			Scan(&member.ID, &total, &member.GoalsReached, &member.JoinedAt)
		if err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func scanJoinRequests(rows pgx.Rows) ([]*JoinRequest, error) {
	var requests []*JoinRequest
	for rows.Next() {
		request := &JoinRequest{}
		if err := rows.Scan(
			&request.ID, &request.GroupID, &request.UserID, &request.Name,
			&request.Message, &request.Status, &request.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
