package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

// In-memory repository fakes. They hold the same invariants the
// Postgres implementations enforce (conditional state flips, duplicate
// pending requests) so the concurrency-sensitive service paths can be
// tested without a database.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *repository.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context) ([]*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *repository.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SaveRefreshToken(_ context.Context, token *repository.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeUserRepo) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  map[string]*repository.Group
	members *fakeMemberRepo
}

func newFakeGroupRepo(members *fakeMemberRepo) *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]*repository.Group), members: members}
}

func (f *fakeGroupRepo) CreateWithLeader(ctx context.Context, group *repository.Group, leaderName string, leaderHandle *string) error {
	f.mu.Lock()
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	group.CreatedAt = time.Now()
	f.groups[group.ID] = group
	f.mu.Unlock()

	if f.members != nil {
		leaderID := group.LeaderID
		return f.members.Create(ctx, &repository.Member{
			GroupID:       group.ID,
			Name:          leaderName,
			UserID:        &leaderID,
			ContactHandle: leaderHandle,
		})
	}
	return nil
}

func (f *fakeGroupRepo) FindByID(_ context.Context, id string) (*repository.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups[id], nil
}

func (f *fakeGroupRepo) FindByLeader(_ context.Context, leaderID string) ([]*repository.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Group
	for _, g := range f.groups {
		if g.LeaderID == leaderID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) FindPublic(_ context.Context, city, donationType string, limit, offset int) ([]*repository.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Group
	for _, g := range f.groups {
		if g.IsPrivate || g.DeactivatedAt != nil {
			continue
		}
		if city != "" && g.City != city {
			continue
		}
		if donationType != "" && g.DonationType != donationType {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGroupRepo) FindByMemberUser(ctx context.Context, userID string) ([]*repository.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Group
	for _, g := range f.groups {
		if f.members == nil {
			continue
		}
		if ok, _ := f.members.ExistsByGroupAndUser(ctx, g.ID, userID); ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) Update(_ context.Context, group *repository.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[group.ID] = group
	return nil
}

func (f *fakeGroupRepo) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.groups[id]; ok {
		now := time.Now()
		g.DeactivatedAt = &now
	}
	return nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*repository.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*repository.Member)}
}

func (f *fakeMemberRepo) Create(_ context.Context, member *repository.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	member.JoinedAt = time.Now()
	f.members[member.ID] = member
	return nil
}

func (f *fakeMemberRepo) FindByID(_ context.Context, id string) (*repository.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[id], nil
}

func (f *fakeMemberRepo) FindByGroup(_ context.Context, groupID string) ([]*repository.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Member
	for _, m := range f.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) FindByGroupAndUser(_ context.Context, groupID, userID string) (*repository.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.GroupID == groupID && m.UserID != nil && *m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberRepo) ExistsByGroupAndUser(ctx context.Context, groupID, userID string) (bool, error) {
	m, err := f.FindByGroupAndUser(ctx, groupID, userID)
	return m != nil, err
}

func (f *fakeMemberRepo) Update(_ context.Context, member *repository.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[member.ID] = member
	return nil
}

func (f *fakeMemberRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, id)
	return nil
}

func (f *fakeMemberRepo) LinkUserByHandle(_ context.Context, userID, handle string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	linked := 0
	for _, m := range f.members {
		if m.UserID == nil && m.ContactHandle != nil && *m.ContactHandle == handle {
			id := userID
			m.UserID = &id
			linked++
		}
	}
	return linked, nil
}

func (f *fakeMemberRepo) Ranking(_ context.Context, groupID string, limit int) ([]*repository.MemberRanking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.MemberRanking
	for _, m := range f.members {
		if m.GroupID != groupID {
			continue
		}
		out = append(out, &repository.MemberRanking{
			MemberID:         m.ID,
			Name:             m.Name,
			TotalContributed: m.TotalContributed,
			GoalsReached:     m.GoalsReached,
		})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalContributed.GreaterThan(out[i].TotalContributed) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeJoinRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*repository.JoinRequest
	members  *fakeMemberRepo
}

func newFakeJoinRequestRepo(members *fakeMemberRepo) *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{requests: make(map[string]*repository.JoinRequest), members: members}
}

func (f *fakeJoinRequestRepo) Create(_ context.Context, request *repository.JoinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.GroupID == request.GroupID && r.UserID == request.UserID && r.Status == types.RequestPending {
			return repository.ErrDuplicatePending
		}
	}
	request.ID = uuid.New().String()
	request.Status = types.RequestPending
	request.CreatedAt = time.Now()
	f.requests[request.ID] = request
	return nil
}

func (f *fakeJoinRequestRepo) FindByID(_ context.Context, id string) (*repository.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[id], nil
}

func (f *fakeJoinRequestRepo) FindPendingByGroup(_ context.Context, groupID string) ([]*repository.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.JoinRequest
	for _, r := range f.requests {
		if r.GroupID == groupID && r.Status == types.RequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeJoinRequestRepo) FindByUser(_ context.Context, userID string) ([]*repository.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.JoinRequest
	for _, r := range f.requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeJoinRequestRepo) Resolve(ctx context.Context, id, status string, member *repository.Member) (bool, error) {
	f.mu.Lock()
	request, ok := f.requests[id]
	if !ok || request.Status != types.RequestPending {
		f.mu.Unlock()
		return false, nil
	}
	request.Status = status
	f.mu.Unlock()

	if member != nil && f.members != nil {
		if err := f.members.Create(ctx, member); err != nil {
			return false, err
		}
	}
	return true, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*repository.Invitation
	members     *fakeMemberRepo
}

func newFakeInvitationRepo(members *fakeMemberRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*repository.Invitation), members: members}
}

func (f *fakeInvitationRepo) Create(_ context.Context, invitation *repository.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation.ID = uuid.New().String()
	invitation.Code = uuid.New().String()
	invitation.Status = types.InvitationPending
	invitation.CreatedAt = time.Now()
	f.invitations[invitation.ID] = invitation
	return nil
}

func (f *fakeInvitationRepo) FindByID(_ context.Context, id string) (*repository.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invitations[id], nil
}

func (f *fakeInvitationRepo) FindByCode(_ context.Context, code string) (*repository.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.Code == code {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvitationRepo) FindPendingByGroup(_ context.Context, groupID string) ([]*repository.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Invitation
	for _, inv := range f.invitations {
		if inv.GroupID == groupID && inv.Status == types.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) Consume(ctx context.Context, id, userID string, member *repository.Member) (bool, error) {
	f.mu.Lock()
	invitation, ok := f.invitations[id]
	if !ok || invitation.Status != types.InvitationPending {
		f.mu.Unlock()
		return false, nil
	}
	now := time.Now()
	invitation.Status = types.InvitationConsumed
	invitation.ConsumedBy = &userID
	invitation.ConsumedAt = &now
	f.mu.Unlock()

	if member != nil && f.members != nil {
		if err := f.members.Create(ctx, member); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (f *fakeInvitationRepo) ExtendExpiry(_ context.Context, id string, expiresAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation, ok := f.invitations[id]
	if !ok {
		return false, nil
	}
	if invitation.Status != types.InvitationPending && invitation.Status != types.InvitationExpired {
		return false, nil
	}
	invitation.Status = types.InvitationPending
	invitation.ExpiresAt = expiresAt
	return true, nil
}

func (f *fakeInvitationRepo) Revoke(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation, ok := f.invitations[id]
	if !ok || invitation.Status != types.InvitationPending {
		return false, nil
	}
	invitation.Status = types.InvitationRevoked
	return true, nil
}

func (f *fakeInvitationRepo) MarkExpired(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, inv := range f.invitations {
		if inv.Status == types.InvitationPending && time.Now().After(inv.ExpiresAt) {
			inv.Status = types.InvitationExpired
			n++
		}
	}
	return n, nil
}

type fakePartnerRepo struct {
	mu       sync.Mutex
	partners map[string]*repository.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[string]*repository.Partner)}
}

func (f *fakePartnerRepo) Create(_ context.Context, partner *repository.Partner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	partner.CreatedAt = time.Now()
	f.partners[partner.ID] = partner
	return nil
}

func (f *fakePartnerRepo) FindByID(_ context.Context, id string) (*repository.Partner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.partners[id], nil
}

func (f *fakePartnerRepo) FindActive(_ context.Context, category, city string) ([]*repository.Partner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Partner
	for _, p := range f.partners {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if city != "" && p.City != city {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePartnerRepo) Update(_ context.Context, partner *repository.Partner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partners[partner.ID] = partner
	return nil
}

func (f *fakePartnerRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.partners, id)
	return nil
}

type fakeBeneficiaryRepo struct {
	mu            sync.Mutex
	beneficiaries map[string]*repository.Beneficiary
}

func newFakeBeneficiaryRepo() *fakeBeneficiaryRepo {
	return &fakeBeneficiaryRepo{beneficiaries: make(map[string]*repository.Beneficiary)}
}

func (f *fakeBeneficiaryRepo) Create(_ context.Context, beneficiary *repository.Beneficiary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if beneficiary.ID == "" {
		beneficiary.ID = uuid.New().String()
	}
	beneficiary.CreatedAt = time.Now()
	f.beneficiaries[beneficiary.ID] = beneficiary
	return nil
}

func (f *fakeBeneficiaryRepo) FindByID(_ context.Context, id string) (*repository.Beneficiary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.beneficiaries[id], nil
}

func (f *fakeBeneficiaryRepo) FindAll(_ context.Context) ([]*repository.Beneficiary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Beneficiary
	for _, b := range f.beneficiaries {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBeneficiaryRepo) SetVerified(_ context.Context, id string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.beneficiaries[id]; ok {
		b.Verified = verified
	}
	return nil
}

type fakeProgressRepo struct {
	mu      sync.Mutex
	entries []*repository.ProgressEntry
	members *fakeMemberRepo
}

func newFakeProgressRepo(members *fakeMemberRepo) *fakeProgressRepo {
	return &fakeProgressRepo{members: members}
}

func (f *fakeProgressRepo) Append(ctx context.Context, entry *repository.ProgressEntry) error {
	f.mu.Lock()
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	f.mu.Unlock()

	if f.members != nil {
		member, _ := f.members.FindByID(ctx, entry.MemberID)
		if member != nil {
			before := member.TotalContributed
			member.TotalContributed = before.Add(entry.Amount)
			if member.Goal.IsPositive() && before.LessThan(member.Goal) && !member.TotalContributed.LessThan(member.Goal) {
				member.GoalsReached++
			}
		}
	}
	return nil
}

func (f *fakeProgressRepo) FindByMember(_ context.Context, memberID string) ([]*repository.ProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.ProgressEntry
	for _, e := range f.entries {
		if e.MemberID == memberID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) FindByGroup(_ context.Context, groupID string) ([]*repository.ProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.ProgressEntry
	for _, e := range f.entries {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) GroupTotal(ctx context.Context, groupID string) (decimal.Decimal, error) {
	entries, _ := f.FindByGroup(ctx, groupID)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}
