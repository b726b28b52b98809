package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rriggins/seniorsafe/internal/notify"
	"github.com/rriggins/seniorsafe/internal/sms"
)

type SMSHandler struct {
	sender notify.Sender
}

func NewSMSHandler(sender notify.Sender) *SMSHandler {
	return &SMSHandler{sender: sender}
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send delivers a single SMS on behalf of an authenticated caller and
// echoes the provider's response body so the client sees delivery status
// verbatim.
func (h *SMSHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.To == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to and message are required"})
		return
	}

	body, err := h.sender.Send(r.Context(), req.To, req.Message)
	if err != nil {
		if errors.Is(err, sms.ErrMissingInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("failed to send sms: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to send sms"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
