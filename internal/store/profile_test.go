package store

import (
	"testing"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
)

func setupProfileTestDB(t *testing.T) *ProfileStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProfileStore(db)
}

func TestProfileCreate(t *testing.T) {
	ps := setupProfileTestDB(t)

	p, err := ps.Create("martha@example.com", "hash", "Martha Riggins", "Riggins", "336-555-0100", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if p.InviteCode == "" {
		t.Error("expected invite code to be generated")
	}
	if p.SubscriptionTier != model.TierFree {
		t.Errorf("tier = %q, want %q", p.SubscriptionTier, model.TierFree)
	}
	if p.InvitedBy != nil {
		t.Error("admin profile should have no inviter")
	}
	if p.SMSEnabled() {
		t.Error("free tier should not enable SMS")
	}
}

func TestProfileInviteFlow(t *testing.T) {
	ps := setupProfileTestDB(t)

	admin, err := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	inviter, err := ps.GetByInviteCode(admin.InviteCode)
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if inviter == nil || inviter.ID != admin.ID {
		t.Fatal("invite code should resolve to the admin")
	}

	member, err := ps.Create("dave@example.com", "hash", "Dave", "Riggins", "336-555-0101", model.RoleMember, &admin.ID)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if member.InvitedBy == nil || *member.InvitedBy != admin.ID {
		t.Error("member should record the inviting admin")
	}

	// Unknown code resolves to nothing
	missing, err := ps.GetByInviteCode("not-a-code")
	if err != nil {
		t.Fatalf("get by unknown code: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown invite code")
	}
}

func TestListFamilyMembers(t *testing.T) {
	ps := setupProfileTestDB(t)

	admin, _ := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	other, _ := ps.Create("stranger@example.com", "hash", "Stranger", "", "", model.RoleAdmin, nil)
	ps.Create("dave@example.com", "hash", "Dave", "Riggins", "336-555-0101", model.RoleMember, &admin.ID)
	ps.Create("sue@example.com", "hash", "Sue", "Riggins", "", model.RoleMember, &admin.ID)

	members, err := ps.ListFamilyMembers(admin.ID)
	if err != nil {
		t.Fatalf("list family members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("len = %d, want 2", len(members))
	}

	// Another admin's group is empty
	members, _ = ps.ListFamilyMembers(other.ID)
	if len(members) != 0 {
		t.Errorf("expected 0 members for unrelated admin, got %d", len(members))
	}
}

func TestSetSubscriptionTierByEmail(t *testing.T) {
	ps := setupProfileTestDB(t)

	ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)

	if err := ps.SetSubscriptionTierByEmail("martha@example.com", model.TierPaid); err != nil {
		t.Fatalf("set tier: %v", err)
	}

	p, _ := ps.GetByEmail("martha@example.com")
	if p.SubscriptionTier != model.TierPaid {
		t.Errorf("tier = %q, want %q", p.SubscriptionTier, model.TierPaid)
	}
	if !p.SMSEnabled() {
		t.Error("paid tier should enable SMS")
	}

	// Unknown email is a silent no-op
	if err := ps.SetSubscriptionTierByEmail("nobody@example.com", model.TierPaid); err != nil {
		t.Fatalf("set tier for unknown email: %v", err)
	}
}

func TestUnlink(t *testing.T) {
	ps := setupProfileTestDB(t)

	admin, _ := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	member, _ := ps.Create("dave@example.com", "hash", "Dave", "Riggins", "", model.RoleMember, &admin.ID)

	if err := ps.Unlink(member.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}

	p, _ := ps.GetByID(member.ID)
	if p.InvitedBy != nil {
		t.Error("unlinked member should have no inviter")
	}
	if p.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", p.Role, model.RoleAdmin)
	}

	members, _ := ps.ListFamilyMembers(admin.ID)
	if len(members) != 0 {
		t.Errorf("expected 0 members after unlink, got %d", len(members))
	}
}
