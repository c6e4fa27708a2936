package types

// Donation type values for groups
const (
	DonationFood    = "alimentos"
	DonationClothes = "roupas"
	DonationMoney   = "dinheiro"
	DonationBlood   = "sangue"
	DonationOther   = "outros"
)

// Join request status values
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Invitation status values
const (
	InvitationPending  = "pending"
	InvitationConsumed = "consumed"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

// User role values
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Valid donation types for validation
var ValidDonationTypes = []string{
	DonationFood, DonationClothes, DonationMoney,
	DonationBlood, DonationOther,
}

func IsValidDonationType(donationType string) bool {
	for _, t := range ValidDonationTypes {
		if t == donationType {
			return true
		}
	}
	return false
}
