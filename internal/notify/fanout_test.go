package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type fanoutFixture struct {
	fanout   *Fanout
	sender   *fakeSender
	profiles *store.ProfileStore
	adminID  int64
}

// setupFanout builds an admin with three invited members: two with phones,
// one without.
func setupFanout(t *testing.T) *fanoutFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	profiles := store.NewProfileStore(db)
	checkins := store.NewCheckInStore(db)
	sender := &fakeSender{}

	admin, err := profiles.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := profiles.Create("dave@example.com", "hash", "Dave", "Riggins", "336-555-0101", model.RoleMember, &admin.ID); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := profiles.Create("sue@example.com", "hash", "Sue", "Riggins", "336-555-0102", model.RoleMember, &admin.ID); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := profiles.Create("bob@example.com", "hash", "Bob", "Riggins", "", model.RoleMember, &admin.ID); err != nil {
		t.Fatalf("create member: %v", err)
	}

	fanout := NewFanout(profiles, checkins, sender, time.UTC, slog.New(slog.DiscardHandler))
	return &fanoutFixture{fanout: fanout, sender: sender, profiles: profiles, adminID: admin.ID}
}

func TestCheckInPaidTierNotifiesFamily(t *testing.T) {
	f := setupFanout(t)
	if err := f.profiles.SetSubscriptionTierByEmail("martha@example.com", model.TierPaid); err != nil {
		t.Fatalf("set tier: %v", err)
	}

	res, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0))
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.Already {
		t.Error("first check-in should not be marked already")
	}
	if res.CheckIn == nil {
		t.Fatal("expected a recorded check-in")
	}
	if res.Notified != 2 {
		t.Errorf("notified = %d, want 2 (the phone-less member is skipped)", res.Notified)
	}

	// Two member texts; no confirmation because the admin has no phone
	calls := f.sender.sent()
	if len(calls) != 2 {
		t.Fatalf("sender calls = %d, want 2", len(calls))
	}
	seen := map[string]bool{}
	for _, c := range calls {
		seen[c.To] = true
		if !strings.Contains(c.Message, "Martha") || !strings.Contains(c.Message, "checked in") {
			t.Errorf("message = %q, want check-in text naming the user", c.Message)
		}
	}
	if !seen["+13365550101"] || !seen["+13365550102"] {
		t.Errorf("recipients = %v, want both normalized member phones", seen)
	}
}

func TestCheckInSendsConfirmationToOwnPhone(t *testing.T) {
	f := setupFanout(t)
	f.profiles.SetSubscriptionTierByEmail("martha@example.com", model.TierPaid)
	if _, err := f.profiles.Update(f.adminID, "Martha", "Riggins", "336-555-0199", true); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	if _, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0)); err != nil {
		t.Fatalf("check in: %v", err)
	}

	calls := f.sender.sent()
	if len(calls) != 3 {
		t.Fatalf("sender calls = %d, want 2 members + 1 confirmation", len(calls))
	}
	var confirmation *sentSMS
	for i := range calls {
		if calls[i].To == "+13365550199" {
			confirmation = &calls[i]
		}
	}
	if confirmation == nil {
		t.Fatal("expected a confirmation text to the user's own phone")
	}
	if !strings.Contains(confirmation.Message, "2 family member(s)") {
		t.Errorf("confirmation = %q, want recipient count", confirmation.Message)
	}
}

func TestCheckInFreeTierRecordsWithoutSending(t *testing.T) {
	f := setupFanout(t)

	res, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0))
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.CheckIn == nil {
		t.Fatal("free tier must still record the check-in")
	}
	if res.Notified != 0 {
		t.Errorf("notified = %d, want 0 on free tier", res.Notified)
	}
	if calls := f.sender.sent(); len(calls) != 0 {
		t.Errorf("sender calls = %d, want 0 on free tier", len(calls))
	}
}

func TestCheckInIdempotentPerDay(t *testing.T) {
	f := setupFanout(t)
	f.profiles.SetSubscriptionTierByEmail("martha@example.com", model.TierPaid)

	first, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0))
	if err != nil {
		t.Fatalf("first check in: %v", err)
	}
	sentAfterFirst := len(f.sender.sent())

	second, err := f.fanout.CheckIn(context.Background(), f.adminID, at(14, 30))
	if err != nil {
		t.Fatalf("second check in: %v", err)
	}
	if !second.Already {
		t.Error("same-day second check-in should report already_checked_in")
	}
	if second.CheckIn.ID != first.CheckIn.ID {
		t.Errorf("second returned check-in %d, want existing %d", second.CheckIn.ID, first.CheckIn.ID)
	}
	if len(f.sender.sent()) != sentAfterFirst {
		t.Error("second check-in must not send again")
	}

	// A new day is a new check-in
	third, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0).AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next-day check in: %v", err)
	}
	if third.Already {
		t.Error("next-day check-in should be fresh")
	}
}

func TestCheckInSurvivesPartialSendFailure(t *testing.T) {
	f := setupFanout(t)
	f.profiles.SetSubscriptionTierByEmail("martha@example.com", model.TierPaid)
	f.sender.failFor = map[string]error{"+13365550101": errors.New("carrier rejected")}

	res, err := f.fanout.CheckIn(context.Background(), f.adminID, at(9, 0))
	if err != nil {
		t.Fatalf("check in should not fail on a recipient error: %v", err)
	}
	if res.Notified != 2 {
		t.Errorf("notified = %d, want 2 attempted", res.Notified)
	}
	if calls := f.sender.sent(); len(calls) != 2 {
		t.Errorf("sender calls = %d, want both attempted", len(calls))
	}
}

func TestHelpAlertSendsRegardlessOfTier(t *testing.T) {
	f := setupFanout(t)
	// Free tier on purpose

	notified, err := f.fanout.HelpAlert(context.Background(), f.adminID, at(15, 4))
	if err != nil {
		t.Fatalf("help alert: %v", err)
	}
	if notified != 2 {
		t.Errorf("notified = %d, want 2", notified)
	}

	calls := f.sender.sent()
	if len(calls) != 2 {
		t.Fatalf("sender calls = %d, want 2", len(calls))
	}
	for _, c := range calls {
		if !strings.Contains(c.Message, "URGENT") || !strings.Contains(c.Message, "Martha") {
			t.Errorf("message = %q, want urgent text naming the user", c.Message)
		}
		if !strings.Contains(c.Message, "3:04 PM") {
			t.Errorf("message = %q, want local alert time", c.Message)
		}
	}
}

func TestHelpAlertRepeatable(t *testing.T) {
	f := setupFanout(t)

	if _, err := f.fanout.HelpAlert(context.Background(), f.adminID, at(15, 0)); err != nil {
		t.Fatalf("first alert: %v", err)
	}
	if _, err := f.fanout.HelpAlert(context.Background(), f.adminID, at(15, 10)); err != nil {
		t.Fatalf("second alert: %v", err)
	}
	if calls := f.sender.sent(); len(calls) != 4 {
		t.Errorf("sender calls = %d, want 4 (alerts are never deduplicated)", len(calls))
	}
}
