package service

import (
	"errors"
	"strings"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/analysis"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/config"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/db"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/email"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	// Membership / invitation business errors
	ErrDuplicateRequest = errors.New("a pending join request already exists for this group")
	ErrAlreadyResolved  = errors.New("join request has already been resolved")
	ErrInvalidOrExpired = errors.New("invitation code is invalid or expired")
	ErrEmailMismatch    = errors.New("invitation is bound to a different email")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrAlreadyConsumed  = errors.New("invitation code has already been used")

	// Progress ledger errors
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// External analysis errors
	ErrRateLimited = errors.New("analysis service is rate limited, try again later")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth        AuthService
	User        UserService
	Group       GroupService
	Member      MemberService
	Invitation  InvitationService
	Progress    ProgressService
	Partner     PartnerService
	Analysis    AnalysisService
	Broadcaster *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	AnalysisCli *analysis.Client
	Cache       *db.RedisDB
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	memberService := NewMemberService(
		deps.Repos.GroupRepo,
		deps.Repos.MemberRepo,
		deps.Repos.JoinRequestRepo,
		deps.NotifSvc,
		deps.Broadcaster,
	)

	progressService := NewProgressService(
		deps.Repos.GroupRepo,
		deps.Repos.MemberRepo,
		deps.Repos.ProgressRepo,
		deps.NotifSvc,
		deps.Broadcaster,
		deps.Cache,
	)

	return &Services{
		Auth:       NewAuthService(deps.Config, deps.Repos.UserRepo, deps.Repos.MemberRepo),
		User:       NewUserService(deps.Repos.UserRepo),
		Group:      NewGroupService(deps.Repos.GroupRepo, deps.Repos.MemberRepo, deps.Repos.BeneficiaryRepo, deps.Broadcaster),
		Member:     memberService,
		Invitation: NewInvitationService(deps.Config, deps.Repos.InvitationRepo, deps.Repos.GroupRepo, deps.Repos.MemberRepo, deps.Repos.UserRepo, deps.NotifSvc, deps.EmailSvc),
		Progress:   progressService,
		Partner:    NewPartnerService(deps.Repos.PartnerRepo, deps.Repos.BeneficiaryRepo, deps.Repos.UserRepo),
		Analysis:   NewAnalysisService(deps.AnalysisCli, deps.Repos.GroupRepo, deps.Repos.MemberRepo, progressService, deps.Cache),

		Broadcaster: deps.Broadcaster,
	}
}

// normalizeEmail lowercases and trims an email address.
func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// normalizeHandle canonicalizes a contact handle (phone or email) so
// placeholder roster slots can be matched against new accounts. Phone
// numbers keep digits only; emails are lowercased.
func normalizeHandle(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	if strings.Contains(h, "@") {
		return strings.ToLower(h)
	}
	var digits strings.Builder
	for _, r := range h {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
