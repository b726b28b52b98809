package store

import (
	"testing"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *ProfileStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewProfileStore(db)
}

func TestSessionCreate(t *testing.T) {
	ss, ps := setupSessionTestDB(t)

	p, err := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	sess, err := ss.Create(p.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != p.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, p.ID)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, ps := setupSessionTestDB(t)

	p, _ := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	created, _ := ss.Create(p.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, ps := setupSessionTestDB(t)

	p, _ := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	created, _ := ss.Create(p.ID)

	if err := ss.Delete(created.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}
