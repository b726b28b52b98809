package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/rriggins/seniorsafe/internal/assistant"
	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

// chatHistoryLimit bounds how much prior conversation goes back to the
// assistant API on each turn.
const chatHistoryLimit = 20

type AssistantHandler struct {
	client    *assistant.Client
	chatStore *store.ChatStore
}

func NewAssistantHandler(c *assistant.Client, cs *store.ChatStore) *AssistantHandler {
	return &AssistantHandler{client: c, chatStore: cs}
}

// Chat relays one user message, persists both sides of the exchange, and
// returns the assistant's reply.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant not configured"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	userID := auth.UserID(r.Context())
	history, err := h.chatStore.History(userID, chatHistoryLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load chat history"})
		return
	}

	reply, err := h.client.Chat(r.Context(), history, req.Message)
	if err != nil {
		log.Printf("assistant chat failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "assistant is unavailable right now"})
		return
	}

	if _, err := h.chatStore.Append(userID, model.ChatRoleUser, req.Message); err != nil {
		log.Printf("failed to save user message: %v", err)
	}
	saved, err := h.chatStore.Append(userID, model.ChatRoleAssistant, reply)
	if err != nil {
		log.Printf("failed to save assistant reply: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.chatStore.History(auth.UserID(r.Context()), chatHistoryLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load chat history"})
		return
	}
	if history == nil {
		history = []model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *AssistantHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatStore.Clear(auth.UserID(r.Context())); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear chat history"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
