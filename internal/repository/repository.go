// internal/repository/repository.go
package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================
// Models / Entities
// ============================================

type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Phone     *string
	Role      string
	Avatar    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Group struct {
	ID             string
	Name           string
	City           string
	DonationType   string
	Goal           decimal.Decimal
	LeaderID       string
	IsPrivate      bool
	MembersVisible bool
	BeneficiaryID  *string
	EndsAt         *time.Time
	DeactivatedAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Computed
	MemberCount int
	TotalRaised decimal.Decimal
}

// Member is a roster slot inside a group. UserID stays nil for
// placeholder members added directly by the leader until a registered
// account with a matching contact handle claims the slot.
type Member struct {
	ID               string
	GroupID          string
	Name             string
	UserID           *string
	ContactHandle    *string
	Goal             decimal.Decimal
	TotalContributed decimal.Decimal
	GoalsReached     int
	JoinedAt         time.Time
}

type JoinRequest struct {
	ID        string
	GroupID   string
	UserID    string
	Name      string
	Message   *string
	Status    string
	CreatedAt time.Time
}

// Invitation is a code-based entry grant. Email-bound invitations carry
// the target email; link-bound invitations leave Email nil and any
// authenticated user may redeem them.
type Invitation struct {
	ID         string
	GroupID    string
	Email      *string
	Code       string
	Status     string
	InvitedBy  string
	ConsumedBy *string
	ConsumedAt *time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invitation) IsEmailBound() bool {
	return i.Email != nil && *i.Email != ""
}

type ProgressEntry struct {
	ID          string
	MemberID    string
	GroupID     string
	Amount      decimal.Decimal
	Description *string
	CreatedAt   time.Time
}

type Partner struct {
	ID          string
	Name        string
	Category    string
	City        string
	Description *string
	LogoURL     *string
	Website     *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Beneficiary struct {
	ID          string
	Name        string
	City        string
	Description *string
	Verified    bool
	CreatedAt   time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Data      map[string]interface{}
	Read      bool
	CreatedAt time.Time
}

// MemberRanking is a per-member total used for the group leaderboard.
type MemberRanking struct {
	MemberID         string
	Name             string
	TotalContributed decimal.Decimal
	GoalsReached     int
}
