package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rriggins/seniorsafe/internal/assistant"
	"github.com/rriggins/seniorsafe/internal/billing"
	"github.com/rriggins/seniorsafe/internal/database"
	"github.com/rriggins/seniorsafe/internal/logging"
	"github.com/rriggins/seniorsafe/internal/server"
	"github.com/rriggins/seniorsafe/internal/sms"
	"github.com/rriggins/seniorsafe/internal/vault"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	port := envOr("SENIORSAFE_PORT", "8080")
	dbPath := envOr("SENIORSAFE_DB_PATH", "seniorsafe.db")

	logger := logging.Setup(os.Getenv("SENIORSAFE_LOG_LEVEL"))

	tzName := envOr("SENIORSAFE_TIMEZONE", "America/New_York")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", tzName, err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	smsClient := sms.NewClient(
		os.Getenv("SENIORSAFE_TWILIO_ACCOUNT_SID"),
		os.Getenv("SENIORSAFE_TWILIO_AUTH_TOKEN"),
		os.Getenv("SENIORSAFE_TWILIO_FROM_NUMBER"),
	)
	if !smsClient.Configured() {
		logger.Warn("twilio credentials not set; reminders and alerts will fail to send")
	}

	cfg := server.Config{
		Location:  loc,
		SMSClient: smsClient,
		Assistant: assistant.NewClient(
			os.Getenv("SENIORSAFE_ANTHROPIC_API_KEY"),
			assistant.WithModel(os.Getenv("SENIORSAFE_ASSISTANT_MODEL")),
		),
		Stripe: billing.Config{
			SecretKey:     os.Getenv("SENIORSAFE_STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("SENIORSAFE_STRIPE_WEBHOOK_SECRET"),
			PriceID:       os.Getenv("SENIORSAFE_STRIPE_PRICE_ID"),
			SuccessURL:    envOr("SENIORSAFE_STRIPE_SUCCESS_URL", "http://localhost:"+port+"/billing/success"),
			CancelURL:     envOr("SENIORSAFE_STRIPE_CANCEL_URL", "http://localhost:"+port+"/billing/cancel"),
		},
		Vault: vault.Config{
			Endpoint:  os.Getenv("SENIORSAFE_S3_ENDPOINT"),
			Bucket:    os.Getenv("SENIORSAFE_S3_BUCKET"),
			Region:    envOr("SENIORSAFE_S3_REGION", "auto"),
			AccessKey: os.Getenv("SENIORSAFE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("SENIORSAFE_S3_SECRET_KEY"),
		},
		JobToken: os.Getenv("SENIORSAFE_JOB_TOKEN"),
	}
	cfg.VAPID.PublicKey = os.Getenv("SENIORSAFE_VAPID_PUBLIC_KEY")
	cfg.VAPID.PrivateKey = os.Getenv("SENIORSAFE_VAPID_PRIVATE_KEY")

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Scheduler().Start(ctx)
	defer srv.Scheduler().Stop()

	// Periodic housekeeping: expired sessions and stale rate limit entries
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Warn("session cleanup failed", "error", err)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("SeniorSafe running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
