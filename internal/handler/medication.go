package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type MedicationHandler struct {
	medStore  *store.MedicationStore
	doseStore *store.DoseLogStore
}

func NewMedicationHandler(ms *store.MedicationStore, ds *store.DoseLogStore) *MedicationHandler {
	return &MedicationHandler{medStore: ms, doseStore: ds}
}

type medicationRequest struct {
	MedName         string   `json:"med_name"`
	Dosage          string   `json:"dosage"`
	Frequency       string   `json:"frequency"`
	Times           []string `json:"times"`
	ReminderEnabled bool     `json:"reminder_enabled"`
	ReminderPhone   string   `json:"reminder_phone"`
}

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func (req *medicationRequest) validate() string {
	req.MedName = strings.TrimSpace(req.MedName)
	if req.MedName == "" {
		return "med_name is required"
	}
	for _, t := range req.Times {
		if !clockRe.MatchString(t) {
			return "times must be HH:MM (24-hour)"
		}
	}
	if req.ReminderEnabled && strings.TrimSpace(req.ReminderPhone) == "" {
		return "reminder_phone is required when reminders are enabled"
	}
	return ""
}

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	med, err := h.medStore.Create(auth.UserID(r.Context()), req.MedName, req.Dosage, req.Frequency, req.Times, req.ReminderEnabled, req.ReminderPhone)
	if err != nil {
		log.Printf("failed to create medication: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create medication"})
		return
	}
	writeJSON(w, http.StatusCreated, med)
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.medStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list medications"})
		return
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	writeJSON(w, http.StatusOK, meds)
}

func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	med, err := h.medStore.Update(id, auth.UserID(r.Context()), req.MedName, req.Dosage, req.Frequency, req.Times, req.ReminderEnabled, req.ReminderPhone)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update medication"})
		return
	}
	if med == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "medication not found"})
		return
	}
	writeJSON(w, http.StatusOK, med)
}

// Delete deactivates the medication. The row stays so dose history keeps
// its foreign key.
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.medStore.Deactivate(id, auth.UserID(r.Context())); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete medication"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type doseRequest struct {
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduled_time"`
}

func (req *doseRequest) validate(loc *time.Location) string {
	if req.Date == "" {
		req.Date = time.Now().In(loc).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	if !clockRe.MatchString(req.ScheduledTime) {
		return "scheduled_time must be HH:MM (24-hour)"
	}
	return ""
}

// MarkDose records one scheduled dose as taken. Marking an already-taken
// dose is a no-op, not an error.
func (h *MedicationHandler) MarkDose(loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		med, req, ok := h.doseTarget(w, r, loc)
		if !ok {
			return
		}

		if err := h.doseStore.MarkTaken(med.ID, req.Date, req.ScheduledTime); err != nil {
			log.Printf("failed to mark dose: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to mark dose"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UnmarkDose reverses MarkDose.
func (h *MedicationHandler) UnmarkDose(loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		med, req, ok := h.doseTarget(w, r, loc)
		if !ok {
			return
		}

		if err := h.doseStore.UnmarkTaken(med.ID, req.Date, req.ScheduledTime); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unmark dose"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *MedicationHandler) doseTarget(w http.ResponseWriter, r *http.Request, loc *time.Location) (*model.Medication, doseRequest, bool) {
	var req doseRequest

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, req, false
	}
	if msg := req.validate(loc); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return nil, req, false
	}

	med, err := h.medStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get medication"})
		return nil, req, false
	}
	if med == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "medication not found"})
		return nil, req, false
	}
	return med, req, true
}

// ListDoses returns the dose log for one date, defaulting to today.
func (h *MedicationHandler) ListDoses(loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().In(loc).Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}

		logs, err := h.doseStore.ListByDate(auth.UserID(r.Context()), date)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list doses"})
			return
		}
		if logs == nil {
			logs = []model.DoseLog{}
		}
		writeJSON(w, http.StatusOK, logs)
	}
}
