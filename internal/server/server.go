package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rriggins/seniorsafe/internal/assistant"
	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/billing"
	"github.com/rriggins/seniorsafe/internal/handler"
	"github.com/rriggins/seniorsafe/internal/middleware"
	"github.com/rriggins/seniorsafe/internal/notify"
	"github.com/rriggins/seniorsafe/internal/push"
	"github.com/rriggins/seniorsafe/internal/sms"
	"github.com/rriggins/seniorsafe/internal/store"
	"github.com/rriggins/seniorsafe/internal/vault"
	ws "github.com/rriggins/seniorsafe/internal/websocket"
)

// Config collects the external services the server depends on. Zero values
// disable the matching feature rather than failing startup.
type Config struct {
	Location  *time.Location
	SMSClient *sms.Client
	Assistant *assistant.Client
	Stripe    billing.Config
	Vault     vault.Config
	VAPID     struct {
		PublicKey  string
		PrivateKey string
	}
	JobToken string
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH        *handler.AuthHandler
	profileH     *handler.ProfileHandler
	medicationH  *handler.MedicationHandler
	checkInH     *handler.CheckInHandler
	alertH       *handler.AlertHandler
	reminderH    *handler.ReminderHandler
	smsH         *handler.SMSHandler
	appointmentH *handler.AppointmentHandler
	documentH    *handler.DocumentHandler
	feedH        *handler.FamilyFeedHandler
	emergencyH   *handler.EmergencyHandler
	assistantH   *handler.AssistantHandler
	billingH     *handler.BillingHandler
	pushH        *handler.PushHandler

	sessionStore *store.SessionStore
	profileStore *store.ProfileStore
	rateLimiter  *middleware.RateLimiter
	scheduler    *notify.Scheduler
	location     *time.Location
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	profileStore := store.NewProfileStore(db)
	sessionStore := store.NewSessionStore(db)
	medStore := store.NewMedicationStore(db)
	doseStore := store.NewDoseLogStore(db)
	reminderStore := store.NewReminderLogStore(db)
	checkInStore := store.NewCheckInStore(db)
	apptStore := store.NewAppointmentStore(db)
	docStore := store.NewDocumentStore(db)
	feedStore := store.NewFamilyFeedStore(db)
	emergencyStore := store.NewEmergencyInfoStore(db)
	chatStore := store.NewChatStore(db)
	pushStore := store.NewPushStore(db)

	storage := vault.New(cfg.Vault)
	stripeClient := billing.NewClient(cfg.Stripe)
	pushService := push.NewService(cfg.VAPID.PublicKey, cfg.VAPID.PrivateKey)

	sweep := notify.NewSweep(medStore, doseStore, reminderStore, cfg.SMSClient, cfg.Location,
		logger.With("component", "sweep"))
	fanout := notify.NewFanout(profileStore, checkInStore, cfg.SMSClient, cfg.Location,
		logger.With("component", "fanout"))

	return &Server{
		db:  db,
		hub: hub,

		authH:        handler.NewAuthHandler(profileStore, sessionStore),
		profileH:     handler.NewProfileHandler(profileStore),
		medicationH:  handler.NewMedicationHandler(medStore, doseStore),
		checkInH:     handler.NewCheckInHandler(fanout, checkInStore),
		alertH:       handler.NewAlertHandler(fanout),
		reminderH:    handler.NewReminderHandler(sweep, cfg.JobToken),
		smsH:         handler.NewSMSHandler(cfg.SMSClient),
		appointmentH: handler.NewAppointmentHandler(apptStore),
		documentH:    handler.NewDocumentHandler(docStore, storage),
		feedH:        handler.NewFamilyFeedHandler(feedStore, profileStore, pushStore, storage, hub, pushService),
		emergencyH:   handler.NewEmergencyHandler(emergencyStore),
		assistantH:   handler.NewAssistantHandler(cfg.Assistant, chatStore),
		billingH:     handler.NewBillingHandler(stripeClient, profileStore),
		pushH:        handler.NewPushHandler(pushStore, pushService),

		sessionStore: sessionStore,
		profileStore: profileStore,
		rateLimiter:  middleware.NewRateLimiter(),
		scheduler:    notify.NewScheduler(sweep, 5*time.Minute),
		location:     cfg.Location,
		logger:       logger,
	}
}

// Scheduler returns the reminder sweep scheduler for lifecycle control.
func (s *Server) Scheduler() *notify.Scheduler {
	return s.scheduler
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/billing/webhook", s.billingH.HandleWebhook)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.profileStore)

	// Function-style endpoints; CORS-open so browser-origin callers can hit
	// them cross-origin. CORS sits outside auth so the preflight OPTIONS is
	// answered before the cookie check.
	outerMux.Handle("/functions/medication-reminders", middleware.CORS(http.HandlerFunc(s.reminderH.Run)))
	outerMux.Handle("/functions/send-sms", middleware.CORS(authMiddleware(http.HandlerFunc(s.smsH.Send))))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Profile + family
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("GET /api/family", s.profileH.ListFamily)
	mux.HandleFunc("DELETE /api/family/{id}", s.profileH.Unlink)

	// Medications + dose log
	mux.HandleFunc("POST /api/medications", s.medicationH.Create)
	mux.HandleFunc("GET /api/medications", s.medicationH.List)
	mux.HandleFunc("PUT /api/medications/{id}", s.medicationH.Update)
	mux.HandleFunc("DELETE /api/medications/{id}", s.medicationH.Delete)
	mux.HandleFunc("POST /api/medications/{id}/doses", s.medicationH.MarkDose(s.location))
	mux.HandleFunc("DELETE /api/medications/{id}/doses", s.medicationH.UnmarkDose(s.location))
	mux.HandleFunc("GET /api/doses", s.medicationH.ListDoses(s.location))

	// Check-ins + help alerts
	mux.HandleFunc("POST /api/checkins", s.checkInH.Create)
	mux.HandleFunc("GET /api/checkins", s.checkInH.List)
	mux.HandleFunc("POST /api/alerts", s.alertH.Create)

	// Appointments
	mux.HandleFunc("POST /api/appointments", s.appointmentH.Create)
	mux.HandleFunc("GET /api/appointments", s.appointmentH.List)
	mux.HandleFunc("PUT /api/appointments/{id}", s.appointmentH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.appointmentH.Delete)

	// Document vault
	mux.HandleFunc("POST /api/documents", s.documentH.Upload)
	mux.HandleFunc("GET /api/documents", s.documentH.List)
	mux.HandleFunc("GET /api/documents/{id}/download", s.documentH.Download)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Delete)

	// Family feed
	mux.HandleFunc("POST /api/feed/messages", s.feedH.CreateMessage)
	mux.HandleFunc("GET /api/feed/messages", s.feedH.ListMessages)
	mux.HandleFunc("DELETE /api/feed/messages/{id}", s.feedH.DeleteMessage)
	mux.HandleFunc("POST /api/feed/photos", s.feedH.UploadPhoto)
	mux.HandleFunc("GET /api/feed/photos", s.feedH.ListPhotos)
	mux.HandleFunc("GET /api/feed/photos/{id}/image", s.feedH.DownloadPhoto)
	mux.HandleFunc("DELETE /api/feed/photos/{id}", s.feedH.DeletePhoto)

	// Emergency info
	mux.HandleFunc("GET /api/emergency-info", s.emergencyH.Get)
	mux.HandleFunc("PUT /api/emergency-info", s.emergencyH.Put)

	// Assistant
	mux.HandleFunc("POST /api/assistant/chat", s.assistantH.Chat)
	mux.HandleFunc("GET /api/assistant/history", s.assistantH.History)
	mux.HandleFunc("DELETE /api/assistant/history", s.assistantH.Clear)

	// Billing
	mux.HandleFunc("POST /api/billing/checkout", s.billingH.CreateCheckout)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	// WebSocket feed sync; the connection joins the caller's family group
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.resolveFamily, s.logger.With("component", "websocket")))
}

// resolveFamily maps the authenticated user to their family group root.
func (s *Server) resolveFamily(r *http.Request) (int64, error) {
	profile, err := s.profileStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, errors.New("profile not found")
	}
	if profile.InvitedBy != nil {
		return *profile.InvitedBy, nil
	}
	return profile.ID, nil
}
