package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/notify"
)

type AlertHandler struct {
	fanout *notify.Fanout
}

func NewAlertHandler(f *notify.Fanout) *AlertHandler {
	return &AlertHandler{fanout: f}
}

// Create broadcasts a help alert. The client must send confirm: true so a
// stray tap on the big red button cannot page the whole family.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirm must be true"})
		return
	}

	notified, err := h.fanout.HelpAlert(r.Context(), auth.UserID(r.Context()), time.Now())
	if err != nil {
		log.Printf("failed to send help alert: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to send help alert"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"notified": notified})
}
