package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/sms"
	"github.com/rriggins/seniorsafe/internal/store"
)

func setupTestServer(t *testing.T) (http.Handler, *store.ProfileStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := Config{
		Location:  time.UTC,
		SMSClient: sms.NewClient("", "", ""),
	}
	srv := New(db, cfg, slog.New(slog.DiscardHandler))
	return srv.Router(), store.NewProfileStore(db), store.NewSessionStore(db)
}

func TestSendSMSPreflight(t *testing.T) {
	router, _, _ := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/functions/send-sms", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The preflight must be answered before the cookie check
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("expected Access-Control-Allow-Headers on preflight")
	}
}

func TestSendSMSRequiresAuth(t *testing.T) {
	router, _, _ := setupTestServer(t)

	req := httptest.NewRequest("POST", "/functions/send-sms", strings.NewReader(`{"to":"+13365550100","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d without a session", rec.Code, http.StatusUnauthorized)
	}
	// CORS headers still present so the browser can read the error
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSendSMSAuthenticatedReachesHandler(t *testing.T) {
	router, ps, ss := setupTestServer(t)

	p, err := ps.Create("martha@example.com", "hash", "Martha", "Riggins", "", model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	sess, err := ss.Create(p.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Empty body: past auth, the handler rejects it itself
	req := httptest.NewRequest("POST", "/functions/send-sms", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: "seniorsafe_session", Value: sess.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d from the handler", rec.Code, http.StatusBadRequest)
	}
}

func TestReminderFunctionPreflight(t *testing.T) {
	router, _, _ := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/functions/medication-reminders", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
