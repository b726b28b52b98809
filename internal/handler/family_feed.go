package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/push"
	"github.com/rriggins/seniorsafe/internal/store"
	"github.com/rriggins/seniorsafe/internal/vault"
	"github.com/rriggins/seniorsafe/internal/websocket"
)

const feedPageSize = 50

// FamilyFeedHandler serves the shared message board and photo wall. Writes
// fan out over the WebSocket hub for open browsers and web push for
// closed ones.
type FamilyFeedHandler struct {
	feedStore    *store.FamilyFeedStore
	profileStore *store.ProfileStore
	pushStore    *store.PushStore
	storage      *vault.Storage
	hub          *websocket.Hub
	pushService  *push.Service
}

func NewFamilyFeedHandler(
	fs *store.FamilyFeedStore,
	ps *store.ProfileStore,
	pushStore *store.PushStore,
	storage *vault.Storage,
	hub *websocket.Hub,
	pushService *push.Service,
) *FamilyFeedHandler {
	return &FamilyFeedHandler{
		feedStore:    fs,
		profileStore: ps,
		pushStore:    pushStore,
		storage:      storage,
		hub:          hub,
		pushService:  pushService,
	}
}

// familyGroup resolves the caller's profile, the group root, and every
// member ID in the group (root included).
func (h *FamilyFeedHandler) familyGroup(userID int64) (*model.Profile, int64, []int64, error) {
	profile, err := h.profileStore.GetByID(userID)
	if err != nil {
		return nil, 0, nil, err
	}
	if profile == nil {
		return nil, 0, nil, errors.New("profile not found")
	}

	rootID := userID
	if profile.InvitedBy != nil {
		rootID = *profile.InvitedBy
	}

	members, err := h.profileStore.ListFamilyMembers(rootID)
	if err != nil {
		return nil, 0, nil, err
	}

	ids := []int64{rootID}
	for _, m := range members {
		if m.ID != rootID {
			ids = append(ids, m.ID)
		}
	}
	return profile, rootID, ids, nil
}

func (h *FamilyFeedHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	userID := auth.UserID(r.Context())
	profile, rootID, memberIDs, err := h.familyGroup(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load family"})
		return
	}

	msg, err := h.feedStore.CreateMessage(userID, profile.DisplayName(), req.Body)
	if err != nil {
		log.Printf("failed to create message: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create message"})
		return
	}

	h.hub.Broadcast(rootID, websocket.NewMessage("message", "created", msg.ID, nil))
	h.notifyFamily(memberIDs, userID, push.Payload{
		Title: "New family message",
		Body:  profile.DisplayName() + ": " + truncate(req.Body, 80),
		Tag:   "family-message",
	})

	writeJSON(w, http.StatusCreated, msg)
}

func (h *FamilyFeedHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	_, _, memberIDs, err := h.familyGroup(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load family"})
		return
	}

	msgs, err := h.feedStore.ListMessages(memberIDs, feedPageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list messages"})
		return
	}
	if msgs == nil {
		msgs = []model.FamilyMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *FamilyFeedHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.feedStore.DeleteMessage(id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete message"})
		return
	}

	if _, rootID, _, err := h.familyGroup(userID); err == nil {
		h.hub.Broadcast(rootID, websocket.NewMessage("message", "deleted", id, nil))
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts a multipart form with a "photo" part and an optional
// "caption" field.
func (h *FamilyFeedHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "photo storage not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo must be an image"})
		return
	}

	userID := auth.UserID(r.Context())
	profile, rootID, memberIDs, err := h.familyGroup(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load family"})
		return
	}

	key := vault.ObjectKey(userID, "photos", header.Filename)
	if err := h.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		log.Printf("failed to upload photo: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload photo"})
		return
	}

	photo, err := h.feedStore.CreatePhoto(userID, profile.DisplayName(), key, r.FormValue("caption"), contentType)
	if err != nil {
		log.Printf("failed to create photo record: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save photo"})
		return
	}

	h.hub.Broadcast(rootID, websocket.NewMessage("photo", "created", photo.ID, nil))
	h.notifyFamily(memberIDs, userID, push.Payload{
		Title: "New family photo",
		Body:  profile.DisplayName() + " shared a photo",
		Tag:   "family-photo",
	})

	writeJSON(w, http.StatusCreated, photo)
}

func (h *FamilyFeedHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	_, _, memberIDs, err := h.familyGroup(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load family"})
		return
	}

	photos, err := h.feedStore.ListPhotos(memberIDs, feedPageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list photos"})
		return
	}
	if photos == nil {
		photos = []model.FamilyPhoto{}
	}
	writeJSON(w, http.StatusOK, photos)
}

// DownloadPhoto streams the image. Any group member can view any group
// photo.
func (h *FamilyFeedHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	photo, err := h.feedStore.GetPhoto(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get photo"})
		return
	}
	if photo == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo not found"})
		return
	}

	_, _, memberIDs, err := h.familyGroup(auth.UserID(r.Context()))
	if err != nil || !containsID(memberIDs, photo.UserID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo not found"})
		return
	}

	body, contentType, err := h.storage.Download(r.Context(), photo.ObjectKey)
	if err != nil {
		log.Printf("failed to download photo: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to download photo"})
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = photo.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	io.Copy(w, body)
}

func (h *FamilyFeedHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	photo, err := h.feedStore.GetPhoto(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get photo"})
		return
	}
	if photo == nil || photo.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo not found"})
		return
	}

	if err := h.storage.Delete(r.Context(), photo.ObjectKey); err != nil {
		log.Printf("failed to delete stored photo %s: %v", photo.ObjectKey, err)
	}
	if err := h.feedStore.DeletePhoto(id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete photo"})
		return
	}

	if _, rootID, _, err := h.familyGroup(userID); err == nil {
		h.hub.Broadcast(rootID, websocket.NewMessage("photo", "deleted", id, nil))
	}
	w.WriteHeader(http.StatusNoContent)
}

// notifyFamily pushes a browser notification to every group member except
// the author. Expired subscriptions are pruned as they surface.
func (h *FamilyFeedHandler) notifyFamily(memberIDs []int64, authorID int64, payload push.Payload) {
	if h.pushService == nil || !h.pushService.Configured() {
		return
	}

	var targets []int64
	for _, id := range memberIDs {
		if id != authorID {
			targets = append(targets, id)
		}
	}
	subs, err := h.pushStore.ListByUsers(targets)
	if err != nil {
		log.Printf("failed to list push subscriptions: %v", err)
		return
	}

	go func() {
		for i := range subs {
			sub := subs[i]
			if err := h.pushService.Send(&sub, payload); err != nil {
				if errors.Is(err, push.ErrExpired) {
					h.pushStore.DeleteByEndpoint(sub.Endpoint)
					continue
				}
				log.Printf("failed to send push to %d: %v", sub.UserID, err)
			}
		}
	}()
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
