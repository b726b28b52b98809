package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type ProfileHandler struct {
	profileStore *store.ProfileStore
}

func NewProfileHandler(ps *store.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profileStore: ps}
}

type profileRequest struct {
	FullName   string `json:"full_name"`
	FamilyName string `json:"family_name"`
	Phone      string `json:"phone"`
	Onboarded  bool   `json:"onboarded"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	profile, err := h.profileStore.Update(auth.UserID(r.Context()), req.FullName, req.FamilyName, req.Phone, req.Onboarded)
	if err != nil {
		log.Printf("failed to update profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListFamily returns the members linked to the caller's family group.
func (h *ProfileHandler) ListFamily(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	profile, err := h.profileStore.GetByID(userID)
	if err != nil || profile == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}

	// Members see their whole family group; the group is rooted at the
	// admin who issued the invite.
	rootID := userID
	if profile.InvitedBy != nil {
		rootID = *profile.InvitedBy
	}

	members, err := h.profileStore.ListFamilyMembers(rootID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list family members"})
		return
	}
	if members == nil {
		members = []model.Profile{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Unlink removes a member from the caller's family group. Admin only; the
// member's profile survives as a standalone account.
func (h *ProfileHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.profileStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil || member.InvitedBy == nil || *member.InvitedBy != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	if err := h.profileStore.Unlink(id); err != nil {
		log.Printf("failed to unlink member: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unlink member"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
