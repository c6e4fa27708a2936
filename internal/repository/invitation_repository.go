package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindByCode(ctx context.Context, code string) (*Invitation, error)
	FindPendingByGroup(ctx context.Context, groupID string) ([]*Invitation, error)
	// Consume flips the invitation from pending to consumed and inserts the
	// membership row in one transaction. The conditional update is the
	// whole point: two concurrent redeems of the same code see exactly one
	// row flip, so the loser gets consumed=false and no member is created.
	Consume(ctx context.Context, id, userID string, member *Member) (bool, error)
	ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) (bool, error)
	Revoke(ctx context.Context, id string) (bool, error)
	MarkExpired(ctx context.Context) (int, error)
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

const invitationColumns = `
	id, group_id, email, code, status, invited_by, consumed_by, consumed_at, expires_at, created_at
`

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	invitation.Code = uuid.New().String()
	query := `
		INSERT INTO invitations (group_id, email, code, status, invited_by, expires_at)
		VALUES ($1, $2, $3, 'pending', $4, $5)
		RETURNING id, status, created_at
	`
	return r.pool.QueryRow(ctx, query,
		invitation.GroupID, invitation.Email, invitation.Code,
		invitation.InvitedBy, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.Status, &invitation.CreatedAt)
}

func (r *pgInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, id))
}

func (r *pgInvitationRepository) FindByCode(ctx context.Context, code string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE code = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, code))
}

func (r *pgInvitationRepository) FindPendingByGroup(ctx context.Context, groupID string) ([]*Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations WHERE group_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) Consume(ctx context.Context, id, userID string, member *Member) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE invitations
		SET status = 'consumed', consumed_by = $2, consumed_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, userID)
	if err != nil {
		return false, err
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

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

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *pgInvitationRepository) ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE invitations SET expires_at = $2, status = 'pending'
		WHERE id = $1 AND status IN ('pending', 'expired')
	`, id, expiresAt)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *pgInvitationRepository) Revoke(ctx context.Context, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE invitations SET status = 'revoked'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *pgInvitationRepository) MarkExpired(ctx context.Context) (int, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE invitations SET status = 'expired'
		WHERE status = 'pending' AND expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func scanInvitation(row pgx.Row) (*Invitation, error) {
	invitation := &Invitation{}
	err := row.Scan(
		&invitation.ID, &invitation.GroupID, &invitation.Email, &invitation.Code,
		&invitation.Status, &invitation.InvitedBy, &invitation.ConsumedBy,
		&invitation.ConsumedAt, &invitation.ExpiresAt, &invitation.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return invitation, nil
}
