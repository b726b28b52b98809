package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type AppointmentHandler struct {
	apptStore *store.AppointmentStore
}

func NewAppointmentHandler(as *store.AppointmentStore) *AppointmentHandler {
	return &AppointmentHandler{apptStore: as}
}

type appointmentRequest struct {
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
	StartsAt time.Time `json:"starts_at"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.StartsAt.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "starts_at is required"})
		return
	}

	appt, err := h.apptStore.Create(auth.UserID(r.Context()), req.Title, req.Location, req.Notes, req.StartsAt)
	if err != nil {
		log.Printf("failed to create appointment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create appointment"})
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.apptStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list appointments"})
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	appt, err := h.apptStore.Update(id, auth.UserID(r.Context()), req.Title, req.Location, req.Notes, req.StartsAt)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update appointment"})
		return
	}
	if appt == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.apptStore.Delete(id, auth.UserID(r.Context())); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete appointment"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
