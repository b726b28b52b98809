package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/sms"
	"github.com/rriggins/seniorsafe/internal/store"
)

// Fanout broadcasts check-in and help-alert texts to a user's linked family
// members. All sends are best effort: per-recipient failures are logged,
// never surfaced to the acting user.
type Fanout struct {
	profiles *store.ProfileStore
	checkins *store.CheckInStore
	sender   Sender
	loc      *time.Location
	logger   *slog.Logger
}

func NewFanout(profiles *store.ProfileStore, checkins *store.CheckInStore, sender Sender, loc *time.Location, logger *slog.Logger) *Fanout {
	return &Fanout{
		profiles: profiles,
		checkins: checkins,
		sender:   sender,
		loc:      loc,
		logger:   logger,
	}
}

// SendResult is the outcome of one recipient's send. Kept per recipient for
// logging even though callers only see the aggregate.
type SendResult struct {
	Name  string
	Phone string
	Err   error
}

// CheckInResult reports what a check-in action did.
type CheckInResult struct {
	CheckIn  *model.CheckIn `json:"check_in"`
	Already  bool           `json:"already_checked_in"`
	Notified int            `json:"notified"`
}

// CheckIn records the user's daily "I'm okay" and notifies their family.
// Idempotent per calendar day: a second call returns the existing row and
// sends nothing. The SMS fan-out only runs for paid-tier profiles; free
// tier records the check-in and silently skips the texts.
func (f *Fanout) CheckIn(ctx context.Context, userID int64, now time.Time) (*CheckInResult, error) {
	profile, err := f.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %d not found", userID)
	}

	local := now.In(f.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, f.loc)
	existing, err := f.checkins.GetForDay(userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CheckInResult{CheckIn: existing, Already: true}, nil
	}

	checkIn, err := f.checkins.Create(userID, profile.FamilyName, now)
	if err != nil {
		return nil, err
	}

	if !profile.SMSEnabled() {
		return &CheckInResult{CheckIn: checkIn}, nil
	}

	recipients := f.familyRecipients(userID)
	msg := fmt.Sprintf("✅ %s checked in with SeniorSafe today. All is well.", profile.DisplayName())
	results := f.broadcast(ctx, recipients, msg)

	if profile.Phone != "" {
		confirmation := fmt.Sprintf("SeniorSafe: Your check-in was shared with %d family member(s).", len(recipients))
		_, err := f.sender.Send(ctx, sms.NormalizePhone(profile.Phone), confirmation)
		results = append(results, SendResult{Name: profile.DisplayName(), Phone: profile.Phone, Err: err})
	}

	f.logResults("check-in", userID, results)
	return &CheckInResult{CheckIn: checkIn, Notified: len(recipients)}, nil
}

// HelpAlert broadcasts an urgent message to every linked family member with
// a phone on file, regardless of subscription tier. Returns the number of
// recipients attempted.
func (f *Fanout) HelpAlert(ctx context.Context, userID int64, now time.Time) (int, error) {
	profile, err := f.profiles.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, fmt.Errorf("profile %d not found", userID)
	}

	recipients := f.familyRecipients(userID)
	msg := fmt.Sprintf("🚨 URGENT: %s needs help! Alert sent at %s. Please check on them right away. — SeniorSafe",
		profile.DisplayName(), now.In(f.loc).Format("3:04 PM"))

	results := f.broadcast(ctx, recipients, msg)
	f.logResults("help-alert", userID, results)
	return len(recipients), nil
}

// familyRecipients resolves the linked members who can receive a text.
// Members without a phone are skipped, not errors.
func (f *Fanout) familyRecipients(userID int64) []model.Profile {
	members, err := f.profiles.ListFamilyMembers(userID)
	if err != nil {
		f.logger.Error("fan-out: list family members", "user_id", userID, "error", err)
		return nil
	}

	var recipients []model.Profile
	for _, m := range members {
		if m.Phone != "" {
			recipients = append(recipients, m)
		}
	}
	return recipients
}

// broadcast dispatches one send per recipient concurrently and joins them
// all before returning. Recipients are independent; no ordering holds.
func (f *Fanout) broadcast(ctx context.Context, recipients []model.Profile, message string) []SendResult {
	results := make([]SendResult, len(recipients))

	var wg sync.WaitGroup
	for i, p := range recipients {
		wg.Add(1)
		go func(i int, p model.Profile) {
			defer wg.Done()
			_, err := f.sender.Send(ctx, sms.NormalizePhone(p.Phone), message)
			results[i] = SendResult{Name: p.DisplayName(), Phone: p.Phone, Err: err}
		}(i, p)
	}
	wg.Wait()

	return results
}

func (f *Fanout) logResults(action string, userID int64, results []SendResult) {
	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	if errs != nil {
		f.logger.Warn("fan-out: some sends failed", "action", action, "user_id", userID,
			"attempted", len(results), "error", errs)
		return
	}
	f.logger.Info("fan-out complete", "action", action, "user_id", userID, "attempted", len(results))
}
