package store

import (
	"testing"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, *ProfileStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewProfileStore(db)
}

func TestPushCreateSubscription(t *testing.T) {
	ps, prof := setupPushTestDB(t)
	p, _ := prof.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)

	sub, err := ps.CreateSubscription(p.ID, "https://push.example.com/sub1", "p256dh-key", "auth-secret", "Martha's iPad")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero id")
	}
	if sub.Endpoint != "https://push.example.com/sub1" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}

	subs, err := ps.ListByUser(p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("len = %d, want 1", len(subs))
	}
}

func TestPushResubscribeSameEndpoint(t *testing.T) {
	ps, prof := setupPushTestDB(t)
	p, _ := prof.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)

	ps.CreateSubscription(p.ID, "https://push.example.com/sub1", "old-key", "old-auth", "")
	sub, err := ps.CreateSubscription(p.ID, "https://push.example.com/sub1", "new-key", "new-auth", "")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if sub.P256dhKey != "new-key" {
		t.Errorf("p256dh = %q, want refreshed key", sub.P256dhKey)
	}

	subs, _ := ps.ListByUser(p.ID)
	if len(subs) != 1 {
		t.Errorf("len = %d, want 1 (same endpoint must not duplicate)", len(subs))
	}
}

func TestPushListByUsers(t *testing.T) {
	ps, prof := setupPushTestDB(t)
	admin, _ := prof.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	member, _ := prof.Create("dave@example.com", "hash", "Dave", "Riggins", "", model.RoleMember, &admin.ID)
	outsider, _ := prof.Create("zed@example.com", "hash", "Zed", "Other", "", model.RoleAdmin, nil)

	ps.CreateSubscription(admin.ID, "https://push.example.com/a", "k", "a", "")
	ps.CreateSubscription(member.ID, "https://push.example.com/b", "k", "a", "")
	ps.CreateSubscription(outsider.ID, "https://push.example.com/c", "k", "a", "")

	subs, err := ps.ListByUsers([]int64{admin.ID, member.ID})
	if err != nil {
		t.Fatalf("list by users: %v", err)
	}
	if len(subs) != 2 {
		t.Errorf("len = %d, want 2", len(subs))
	}

	subs, err = ps.ListByUsers(nil)
	if err != nil {
		t.Fatalf("list by empty users: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("len = %d, want 0 for empty id list", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, prof := setupPushTestDB(t)
	p, _ := prof.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)

	ps.CreateSubscription(p.ID, "https://push.example.com/gone", "k", "a", "")
	if err := ps.DeleteByEndpoint("https://push.example.com/gone"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, _ := ps.ListByUser(p.ID)
	if len(subs) != 0 {
		t.Errorf("len = %d, want 0 after delete", len(subs))
	}
}

func TestPushDeleteSubscriptionOwnership(t *testing.T) {
	ps, prof := setupPushTestDB(t)
	p, _ := prof.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	other, _ := prof.Create("zed@example.com", "hash", "Zed", "Other", "", model.RoleAdmin, nil)

	sub, _ := ps.CreateSubscription(p.ID, "https://push.example.com/mine", "k", "a", "")

	// Another user cannot delete it
	if err := ps.DeleteSubscription(sub.ID, other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ := ps.ListByUser(p.ID)
	if len(subs) != 1 {
		t.Fatal("subscription should survive a foreign delete")
	}

	if err := ps.DeleteSubscription(sub.ID, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ = ps.ListByUser(p.ID)
	if len(subs) != 0 {
		t.Error("expected empty after owner delete")
	}
}
