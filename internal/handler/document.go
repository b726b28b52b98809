package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
	"github.com/rriggins/seniorsafe/internal/vault"
)

// maxUploadBytes caps vault uploads at 25 MB.
const maxUploadBytes = 25 << 20

type DocumentHandler struct {
	docStore *store.DocumentStore
	storage  *vault.Storage
}

func NewDocumentHandler(ds *store.DocumentStore, storage *vault.Storage) *DocumentHandler {
	return &DocumentHandler{docStore: ds, storage: storage}
}

// Upload accepts a multipart form with a "file" part and an optional
// "category" field. The file body goes to object storage, metadata to
// SQLite.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "document storage not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	userID := auth.UserID(r.Context())
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := vault.ObjectKey(userID, "documents", header.Filename)
	if err := h.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		log.Printf("failed to upload document: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload document"})
		return
	}

	doc, err := h.docStore.Create(userID, header.Filename, key, contentType, header.Size, r.FormValue("category"))
	if err != nil {
		log.Printf("failed to create document record: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save document"})
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Download streams the stored file back to the owner.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	doc, err := h.docStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	body, contentType, err := h.storage.Download(r.Context(), doc.ObjectKey)
	if err != nil {
		log.Printf("failed to download document: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to download document"})
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = doc.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	io.Copy(w, body)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	doc, err := h.docStore.GetByID(id, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	if err := h.storage.Delete(r.Context(), doc.ObjectKey); err != nil {
		// Metadata delete proceeds; an orphaned object is recoverable,
		// a dangling record is visible to the user.
		log.Printf("failed to delete stored object %s: %v", doc.ObjectKey, err)
	}

	if err := h.docStore.Delete(id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete document"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
