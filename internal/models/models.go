package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateUserRequest struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Avatar *string `json:"avatar,omitempty"`
}

// ============================================
// Group DTOs
// ============================================

type CreateGroupRequest struct {
	Name           string          `json:"name" binding:"required,min=2"`
	City           string          `json:"city" binding:"required"`
	DonationType   string          `json:"donationType" binding:"required"`
	Goal           decimal.Decimal `json:"goal" binding:"required"`
	IsPrivate      bool            `json:"isPrivate"`
	MembersVisible *bool           `json:"membersVisible"`
	BeneficiaryID  *string         `json:"beneficiaryId"`
	EndsAt         *time.Time      `json:"endsAt"`
}

type UpdateGroupRequest struct {
	Name           *string          `json:"name"`
	City           *string          `json:"city"`
	Goal           *decimal.Decimal `json:"goal"`
	IsPrivate      *bool            `json:"isPrivate"`
	MembersVisible *bool            `json:"membersVisible"`
	BeneficiaryID  *string          `json:"beneficiaryId"`
	EndsAt         *time.Time       `json:"endsAt"`
}

type GroupResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	City           string          `json:"city"`
	DonationType   string          `json:"donationType"`
	Goal           decimal.Decimal `json:"goal"`
	LeaderID       string          `json:"leaderId"`
	IsPrivate      bool            `json:"isPrivate"`
	MembersVisible bool            `json:"membersVisible"`
	BeneficiaryID  *string         `json:"beneficiaryId,omitempty"`
	EndsAt         *time.Time      `json:"endsAt,omitempty"`
	MemberCount    int             `json:"memberCount"`
	TotalRaised    decimal.Decimal `json:"totalRaised"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ============================================
// Member DTOs
// ============================================

type AddMemberRequest struct {
	Name          string          `json:"name" binding:"required,min=2"`
	ContactHandle string          `json:"contactHandle"`
	Goal          decimal.Decimal `json:"goal"`
}

type UpdateMemberRequest struct {
	Name *string          `json:"name"`
	Goal *decimal.Decimal `json:"goal"`
}

type MemberResponse struct {
	ID               string          `json:"id"`
	GroupID          string          `json:"groupId"`
	Name             string          `json:"name"`
	UserID           *string         `json:"userId,omitempty"`
	Goal             decimal.Decimal `json:"goal"`
	TotalContributed decimal.Decimal `json:"totalContributed"`
	GoalsReached     int             `json:"goalsReached"`
	JoinedAt         time.Time       `json:"joinedAt"`
}

type RankingEntryResponse struct {
	MemberID         string          `json:"memberId"`
	Name             string          `json:"name"`
	TotalContributed decimal.Decimal `json:"totalContributed"`
	GoalsReached     int             `json:"goalsReached"`
}

// ============================================
// Join Request DTOs
// ============================================

type CreateJoinRequestRequest struct {
	Name    string  `json:"name" binding:"required,min=2"`
	Message *string `json:"message"`
}

type JoinRequestResponse struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Message   *string   `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================
// Invitation DTOs
// ============================================

type CreateEmailInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type InvitationResponse struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"groupId"`
	Email     *string    `json:"email,omitempty"`
	Code      string     `json:"code"`
	Status    string     `json:"status"`
	InvitedBy string     `json:"invitedBy"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}

// ============================================
// Progress DTOs
// ============================================

type RecordProgressRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description *string         `json:"description"`
}

type ProgressEntryResponse struct {
	ID          string          `json:"id"`
	MemberID    string          `json:"memberId"`
	GroupID     string          `json:"groupId"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ============================================
// Partner / Beneficiary DTOs
// ============================================

type CreatePartnerRequest struct {
	Name        string  `json:"name" binding:"required,min=2"`
	Category    string  `json:"category" binding:"required"`
	City        string  `json:"city"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	Website     *string `json:"website"`
}

type UpdatePartnerRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	City        *string `json:"city"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	Website     *string `json:"website"`
	IsActive    *bool   `json:"isActive"`
}

type PartnerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logoUrl,omitempty"`
	Website     *string   `json:"website,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateBeneficiaryRequest struct {
	Name        string  `json:"name" binding:"required,min=2"`
	City        string  `json:"city"`
	Description *string `json:"description"`
}

type VerifyBeneficiaryRequest struct {
	Verified bool `json:"verified"`
}

type BeneficiaryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Description *string   `json:"description,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`
}
