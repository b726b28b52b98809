// Package notify implements the medication reminder sweep and the
// check-in / help-alert SMS fan-out.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rriggins/seniorsafe/internal/sms"
	"github.com/rriggins/seniorsafe/internal/store"
)

// Sender delivers one SMS. Satisfied by *sms.Client.
type Sender interface {
	Send(ctx context.Context, to, message string) ([]byte, error)
}

// reminderWindow is the half-window in minutes around a scheduled dose time
// during which the dose counts as due. Paired with an invocation cadence of
// at most this many minutes, every due dose is evaluated by at least one
// sweep run; the reminder log, not scheduling precision, provides the
// at-most-once guarantee.
const reminderWindow = 5

// Sweep evaluates scheduled doses against the clock and sends due reminders.
// Stateless between runs; all coordination goes through the store.
type Sweep struct {
	meds      *store.MedicationStore
	doses     *store.DoseLogStore
	reminders *store.ReminderLogStore
	sender    Sender
	loc       *time.Location
	logger    *slog.Logger
}

func NewSweep(meds *store.MedicationStore, doses *store.DoseLogStore, reminders *store.ReminderLogStore, sender Sender, loc *time.Location, logger *slog.Logger) *Sweep {
	return &Sweep{
		meds:      meds,
		doses:     doses,
		reminders: reminders,
		sender:    sender,
		loc:       loc,
		logger:    logger,
	}
}

// Run performs one sweep invocation against the single reference time now
// and returns the number of reminders attempted. Scheduled times are
// interpreted in the configured facility timezone. A failure on one
// medication never aborts the rest of the sweep.
func (s *Sweep) Run(ctx context.Context, now time.Time) int {
	meds, err := s.meds.ListReminderCandidates()
	if err != nil {
		s.logger.Error("reminder sweep: list candidates", "error", err)
		return 0
	}

	local := now.In(s.loc)
	today := local.Format("2006-01-02")
	nowMins := local.Hour()*60 + local.Minute()

	sent := 0
	for _, med := range meds {
		for _, scheduled := range med.Times {
			schedMins, ok := parseClock(scheduled)
			if !ok {
				s.logger.Warn("reminder sweep: bad scheduled time", "medication_id", med.ID, "time", scheduled)
				continue
			}

			diff := nowMins - schedMins
			if diff < 0 {
				diff = -diff
			}
			if diff > reminderWindow {
				continue
			}

			taken, err := s.doses.Exists(med.ID, today, scheduled)
			if err != nil {
				s.logger.Error("reminder sweep: check dose log", "medication_id", med.ID, "error", err)
				continue
			}
			if taken {
				continue
			}

			already, err := s.reminders.WasSent(med.ID, today, scheduled)
			if err != nil {
				s.logger.Error("reminder sweep: check reminder log", "medication_id", med.ID, "error", err)
				continue
			}
			if already {
				continue
			}

			msg := fmt.Sprintf("💊 Medication reminder: Time to take your %s. — SeniorSafe", med.DoseDescription())
			if _, err := s.sender.Send(ctx, sms.NormalizePhone(med.ReminderPhone), msg); err != nil {
				s.logger.Warn("reminder sweep: send failed", "medication_id", med.ID, "error", err)
			}

			// The marker goes in whether or not the send succeeded, so this
			// dose is done for the day either way.
			if err := s.reminders.RecordSent(med.ID, med.UserID, today, scheduled, now); err != nil {
				s.logger.Error("reminder sweep: record sent", "medication_id", med.ID, "error", err)
			}
			sent++
		}
	}
	return sent
}

// parseClock converts an "HH:MM" wall-clock string to minutes since
// midnight.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, false
	}
	return hour*60 + min, true
}
