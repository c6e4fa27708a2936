package seed

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

// SeedData creates development data: a few accounts, two groups with
// rosters and donation history, and a small partner directory.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	users, _ := repos.UserRepo.FindAll(ctx)
	if len(users) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial data...")

	// ============================================
	// USERS
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("senha12345"), bcrypt.DefaultCost)

	ana := &repository.User{
		Email:    "ana.souza@example.com",
		Password: string(password),
		Name:     "Ana Souza",
		Phone:    stringPtr("11987654321"),
		Role:     types.RoleUser,
	}
	repos.UserRepo.Create(ctx, ana)

	bruno := &repository.User{
		Email:    "bruno.lima@example.com",
		Password: string(password),
		Name:     "Bruno Lima",
		Role:     types.RoleUser,
	}
	repos.UserRepo.Create(ctx, bruno)

	carla := &repository.User{
		Email:    "carla.mendes@example.com",
		Password: string(password),
		Name:     "Carla Mendes",
		Role:     types.RoleAdmin,
	}
	repos.UserRepo.Create(ctx, carla)

	log.Println("✅ Created 3 users: Ana (leader), Bruno (member), Carla (admin)")

	// ============================================
	// BENEFICIARIES
	// ============================================
	lar := &repository.Beneficiary{
		Name:        "Lar São Francisco",
		City:        "São Paulo",
		Description: stringPtr("Abrigo para idosos na zona leste"),
		Verified:    true,
	}
	repos.BeneficiaryRepo.Create(ctx, lar)

	// ============================================
	// GROUPS
	// ============================================
	cesta := &repository.Group{
		Name:           "Cesta Básica Centro",
		City:           "São Paulo",
		DonationType:   types.DonationFood,
		Goal:           decimal.NewFromInt(200),
		LeaderID:       ana.ID,
		IsPrivate:      true,
		MembersVisible: true,
		BeneficiaryID:  &lar.ID,
	}
	anaHandle := "ana.souza@example.com"
	repos.GroupRepo.CreateWithLeader(ctx, cesta, ana.Name, &anaHandle)

	sangue := &repository.Group{
		Name:           "Doadores de Sangue SP",
		City:           "São Paulo",
		DonationType:   types.DonationBlood,
		Goal:           decimal.NewFromInt(50),
		LeaderID:       carla.ID,
		IsPrivate:      false,
		MembersVisible: true,
	}
	carlaHandle := "carla.mendes@example.com"
	repos.GroupRepo.CreateWithLeader(ctx, sangue, carla.Name, &carlaHandle)

	// Bruno joins Ana's group; one placeholder slot waits for a
	// neighbor who has no account yet.
	brunoMember := &repository.Member{
		GroupID: cesta.ID,
		Name:    bruno.Name,
		UserID:  &bruno.ID,
		Goal:    decimal.NewFromInt(40),
	}
	repos.MemberRepo.Create(ctx, brunoMember)

	neighborHandle := "11912340000"
	repos.MemberRepo.Create(ctx, &repository.Member{
		GroupID:       cesta.ID,
		Name:          "Dona Maria",
		ContactHandle: &neighborHandle,
		Goal:          decimal.NewFromInt(20),
	})

	log.Println("✅ Created 2 groups with rosters")

	// ============================================
	// DONATION HISTORY
	// ============================================
	for _, amount := range []int64{10, 30, 35} {
		repos.ProgressRepo.Append(ctx, &repository.ProgressEntry{
			MemberID:    brunoMember.ID,
			GroupID:     cesta.ID,
			Amount:      decimal.NewFromInt(amount),
			Description: stringPtr("Entrega semanal"),
		})
	}

	// ============================================
	// INVITATIONS
	// ============================================
	invitedEmail := "diego.alves@example.com"
	repos.InvitationRepo.Create(ctx, &repository.Invitation{
		GroupID:   cesta.ID,
		Email:     &invitedEmail,
		InvitedBy: ana.ID,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	})

	// ============================================
	// PARTNERS
	// ============================================
	repos.PartnerRepo.Create(ctx, &repository.Partner{
		Name:     "Mercado Bom Preço",
		Category: "alimentos",
		City:     "São Paulo",
		IsActive: true,
	})
	repos.PartnerRepo.Create(ctx, &repository.Partner{
		Name:     "Hemocentro Paulista",
		Category: "sangue",
		City:     "São Paulo",
		IsActive: true,
	})

	log.Println("[Seed] ✅ Seed data created")
}

func stringPtr(s string) *string {
	return &s
}
