package store

import (
	"testing"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
)

func setupChatTestDB(t *testing.T) (*ChatStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ps := NewProfileStore(db)
	p, err := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return NewChatStore(db), p.ID
}

func TestChatAppendAndHistory(t *testing.T) {
	cs, uid := setupChatTestDB(t)

	if _, err := cs.Append(uid, model.ChatRoleUser, "What is Lisinopril for?"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := cs.Append(uid, model.ChatRoleAssistant, "It helps lower blood pressure."); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := cs.History(uid, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len = %d, want 2", len(history))
	}
	// Oldest first, ready to replay to the API
	if history[0].Role != model.ChatRoleUser {
		t.Errorf("first role = %q, want user", history[0].Role)
	}
	if history[1].Role != model.ChatRoleAssistant {
		t.Errorf("second role = %q, want assistant", history[1].Role)
	}
}

func TestChatHistoryLimitKeepsNewest(t *testing.T) {
	cs, uid := setupChatTestDB(t)

	for i := 0; i < 5; i++ {
		cs.Append(uid, model.ChatRoleUser, "question")
		cs.Append(uid, model.ChatRoleAssistant, "answer")
	}

	history, err := cs.History(uid, 4)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("len = %d, want 4", len(history))
	}
	// The window is the most recent messages, still oldest-first
	if history[len(history)-1].Role != model.ChatRoleAssistant {
		t.Errorf("last role = %q, want assistant", history[len(history)-1].Role)
	}
}

func TestChatClear(t *testing.T) {
	cs, uid := setupChatTestDB(t)

	cs.Append(uid, model.ChatRoleUser, "hi")
	if err := cs.Clear(uid); err != nil {
		t.Fatalf("clear: %v", err)
	}

	history, err := cs.History(uid, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len = %d, want 0 after clear", len(history))
	}
}
