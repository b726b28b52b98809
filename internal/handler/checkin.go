package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/notify"
	"github.com/rriggins/seniorsafe/internal/store"
)

type CheckInHandler struct {
	fanout       *notify.Fanout
	checkInStore *store.CheckInStore
}

func NewCheckInHandler(f *notify.Fanout, cs *store.CheckInStore) *CheckInHandler {
	return &CheckInHandler{fanout: f, checkInStore: cs}
}

// Create records today's check-in and notifies family. Repeat calls on the
// same day return the existing check-in with already_checked_in set.
func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	result, err := h.fanout.CheckIn(r.Context(), auth.UserID(r.Context()), time.Now())
	if err != nil {
		log.Printf("failed to check in: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check in"})
		return
	}

	status := http.StatusCreated
	if result.Already {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (h *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			limit = n
		}
	}

	checkIns, err := h.checkInStore.ListRecent(auth.UserID(r.Context()), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list check-ins"})
		return
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}
	writeJSON(w, http.StatusOK, checkIns)
}
