package model

import "time"

// Subscription tier constants. The paid tier unlocks SMS notifications
// for the daily check-in; help alerts go out regardless of tier.
const (
	TierFree = "free"
	TierPaid = "paid"
)

// Role constants. An admin owns a family group; members are profiles
// that joined through the admin's invite code.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Profile struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	FamilyName       string    `json:"family_name"`
	Phone            string    `json:"phone"`
	Role             string    `json:"role"`
	InvitedBy        *int64    `json:"invited_by,omitempty"`
	InviteCode       string    `json:"invite_code"`
	SubscriptionTier string    `json:"subscription_tier"`
	StripeCustomerID string    `json:"-"`
	Onboarded        bool      `json:"onboarded"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DisplayName returns the name used in outbound notifications.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.FamilyName != "" {
		return p.FamilyName + " Family"
	}
	return p.Email
}

// SMSEnabled reports whether the profile's tier allows check-in SMS fan-out.
func (p *Profile) SMSEnabled() bool {
	return p.SubscriptionTier == TierPaid
}
