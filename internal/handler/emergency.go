package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type EmergencyHandler struct {
	infoStore *store.EmergencyInfoStore
}

func NewEmergencyHandler(es *store.EmergencyInfoStore) *EmergencyHandler {
	return &EmergencyHandler{infoStore: es}
}

func (h *EmergencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.infoStore.GetByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get emergency info"})
		return
	}
	if info == nil {
		info = &model.EmergencyInfo{UserID: auth.UserID(r.Context())}
	}
	writeJSON(w, http.StatusOK, info)
}

// Put replaces the user's emergency card wholesale. One card per user.
func (h *EmergencyHandler) Put(w http.ResponseWriter, r *http.Request) {
	var info model.EmergencyInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	info.UserID = auth.UserID(r.Context())

	saved, err := h.infoStore.Upsert(&info)
	if err != nil {
		log.Printf("failed to save emergency info: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save emergency info"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
