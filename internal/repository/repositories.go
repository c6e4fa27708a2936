package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	GroupRepo        GroupRepository
	MemberRepo       MemberRepository
	JoinRequestRepo  JoinRequestRepository
	InvitationRepo   InvitationRepository
	ProgressRepo     ProgressRepository
	PartnerRepo      PartnerRepository
	BeneficiaryRepo  BeneficiaryRepository
	NotificationRepo NotificationRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		GroupRepo:        NewGroupRepository(pool),
		MemberRepo:       NewMemberRepository(pool),
		JoinRequestRepo:  NewJoinRequestRepository(pool),
		InvitationRepo:   NewInvitationRepository(pool),
		ProgressRepo:     NewProgressRepository(pool),
		PartnerRepo:      NewPartnerRepository(pool),
		BeneficiaryRepo:  NewBeneficiaryRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
	}
}
