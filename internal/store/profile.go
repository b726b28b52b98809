package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rriggins/seniorsafe/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	var invitedBy sql.NullInt64
	var onboarded int

	err := scanner.Scan(
		&p.ID, &p.Email, &p.FullName, &p.FamilyName, &p.Phone, &p.Role,
		&invitedBy, &p.InviteCode, &p.SubscriptionTier, &p.StripeCustomerID,
		&onboarded, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if invitedBy.Valid {
		p.InvitedBy = &invitedBy.Int64
	}
	p.Onboarded = onboarded != 0
	return &p, nil
}

const profileCols = `id, email, full_name, family_name, phone, role, invited_by, invite_code, subscription_tier, stripe_customer_id, onboarded, created_at, updated_at`

// Create inserts a new profile. A member profile carries the admin's id in
// invitedBy; admins get nil. Every profile receives a fresh invite code.
func (s *ProfileStore) Create(email, passwordHash, fullName, familyName, phone, role string, invitedBy *int64) (*model.Profile, error) {
	var inv sql.NullInt64
	if invitedBy != nil {
		inv = sql.NullInt64{Int64: *invitedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO profiles (email, password_hash, full_name, family_name, phone, role, invited_by, invite_code)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		email, passwordHash, fullName, familyName, phone, role, inv, uuid.NewString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) GetByID(id int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) GetByEmail(email string) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE email = ?`, email)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) GetByInviteCode(code string) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE invite_code = ?`, code)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by invite code: %w", err)
	}
	return p, nil
}

// GetPasswordHash returns the stored bcrypt hash for an email, or "" when no
// such profile exists.
func (s *ProfileStore) GetPasswordHash(email string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM profiles WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// ListFamilyMembers returns every profile invited by the given admin.
func (s *ProfileStore) ListFamilyMembers(adminID int64) ([]model.Profile, error) {
	rows, err := s.db.Query(
		`SELECT `+profileCols+` FROM profiles WHERE invited_by = ? ORDER BY created_at ASC`,
		adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *p)
	}
	return members, rows.Err()
}

func (s *ProfileStore) Update(id int64, fullName, familyName, phone string, onboarded bool) (*model.Profile, error) {
	var onboardedInt int
	if onboarded {
		onboardedInt = 1
	}
	_, err := s.db.Exec(
		`UPDATE profiles SET full_name = ?, family_name = ?, phone = ?, onboarded = ?, updated_at = datetime('now') WHERE id = ?`,
		fullName, familyName, phone, onboardedInt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

// SetSubscriptionTierByEmail flips the tier for the profile with the given
// email. Used by the billing webhook; a missing profile is not an error.
func (s *ProfileStore) SetSubscriptionTierByEmail(email, tier string) error {
	_, err := s.db.Exec(
		`UPDATE profiles SET subscription_tier = ?, updated_at = datetime('now') WHERE email = ?`,
		tier, email,
	)
	if err != nil {
		return fmt.Errorf("set subscription tier: %w", err)
	}
	return nil
}

// SetStripeCustomerIDByEmail records the Stripe customer backing a profile's
// subscription. Captured at checkout so later webhook events that carry only
// the customer ID can be resolved.
func (s *ProfileStore) SetStripeCustomerIDByEmail(email, customerID string) error {
	_, err := s.db.Exec(
		`UPDATE profiles SET stripe_customer_id = ?, updated_at = datetime('now') WHERE email = ?`,
		customerID, email,
	)
	if err != nil {
		return fmt.Errorf("set stripe customer id: %w", err)
	}
	return nil
}

// SetSubscriptionTierByCustomerID flips the tier for the profile holding the
// given Stripe customer ID. A missing profile is not an error.
func (s *ProfileStore) SetSubscriptionTierByCustomerID(customerID, tier string) error {
	if customerID == "" {
		return nil
	}
	_, err := s.db.Exec(
		`UPDATE profiles SET subscription_tier = ?, updated_at = datetime('now') WHERE stripe_customer_id = ?`,
		tier, customerID,
	)
	if err != nil {
		return fmt.Errorf("set subscription tier by customer: %w", err)
	}
	return nil
}

// Unlink detaches a member from their admin's family group and promotes them
// to a standalone admin profile.
func (s *ProfileStore) Unlink(memberID int64) error {
	_, err := s.db.Exec(
		`UPDATE profiles SET invited_by = NULL, role = ?, updated_at = datetime('now') WHERE id = ?`,
		model.RoleAdmin, memberID,
	)
	if err != nil {
		return fmt.Errorf("unlink profile: %w", err)
	}
	return nil
}
