package store

import (
	"testing"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
)

func setupDoseLogTestDB(t *testing.T) (*DoseLogStore, int64, int64) {
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
	ms := NewMedicationStore(db)
	med, err := ms.Create(p.ID, "Lisinopril", "10mg", "daily", []string{"08:00"}, false, "")
	if err != nil {
		t.Fatalf("create medication: %v", err)
	}
	return NewDoseLogStore(db), med.ID, p.ID
}

func TestMarkTaken(t *testing.T) {
	ds, medID, uid := setupDoseLogTestDB(t)

	taken, err := ds.Exists(medID, "2026-09-01", "08:00")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if taken {
		t.Error("expected not taken")
	}

	if err := ds.MarkTaken(medID, "2026-09-01", "08:00"); err != nil {
		t.Fatalf("mark taken: %v", err)
	}
	taken, _ = ds.Exists(medID, "2026-09-01", "08:00")
	if !taken {
		t.Error("expected taken after marking")
	}

	// Marking twice is a no-op, not an error or a second row
	if err := ds.MarkTaken(medID, "2026-09-01", "08:00"); err != nil {
		t.Fatalf("double mark should not error: %v", err)
	}
	logs, err := ds.ListByDate(uid, "2026-09-01")
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("len = %d, want 1", len(logs))
	}
}

func TestUnmarkTaken(t *testing.T) {
	ds, medID, _ := setupDoseLogTestDB(t)

	ds.MarkTaken(medID, "2026-09-01", "08:00")
	if err := ds.UnmarkTaken(medID, "2026-09-01", "08:00"); err != nil {
		t.Fatalf("unmark taken: %v", err)
	}

	taken, _ := ds.Exists(medID, "2026-09-01", "08:00")
	if taken {
		t.Error("expected not taken after unmarking")
	}

	// Unmarking an absent marker is a no-op
	if err := ds.UnmarkTaken(medID, "2026-09-01", "08:00"); err != nil {
		t.Fatalf("unmark absent should not error: %v", err)
	}
}
