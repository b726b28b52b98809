package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/rriggins/seniorsafe/internal/notify"
)

type ReminderHandler struct {
	sweep    *notify.Sweep
	jobToken string
}

// NewReminderHandler exposes the sweep as an endpoint for external cron
// services. An empty jobToken leaves the endpoint open, matching a
// deployment where the built-in scheduler is the only caller.
func NewReminderHandler(s *notify.Sweep, jobToken string) *ReminderHandler {
	return &ReminderHandler{sweep: s, jobToken: jobToken}
}

// Run triggers one sweep and reports how many reminders were attempted.
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.jobToken != "" {
		got := r.Header.Get("X-Job-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.jobToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
	}

	sent := h.sweep.Run(r.Context(), time.Now())
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
