package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/rriggins/seniorsafe/internal/auth"
	"github.com/rriggins/seniorsafe/internal/billing"
	"github.com/rriggins/seniorsafe/internal/model"
	"github.com/rriggins/seniorsafe/internal/store"
)

type BillingHandler struct {
	stripeClient *billing.Client
	profileStore *store.ProfileStore
}

func NewBillingHandler(sc *billing.Client, ps *store.ProfileStore) *BillingHandler {
	return &BillingHandler{stripeClient: sc, profileStore: ps}
}

// CreateCheckout starts a subscription checkout for the caller and returns
// the hosted payment URL.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if !h.stripeClient.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "billing not configured"})
		return
	}

	profile, err := h.profileStore.GetByID(auth.UserID(r.Context()))
	if err != nil || profile == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}
	if profile.SubscriptionTier == model.TierPaid {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already subscribed"})
		return
	}

	url, err := h.stripeClient.CreateCheckoutSession(profile.Email)
	if err != nil {
		log.Printf("failed to create checkout session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start checkout"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// HandleWebhook processes Stripe events. Checkout completion upgrades the
// account to the paid tier; subscription deletion drops it back to free.
func (h *BillingHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.stripeClient.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *BillingHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Printf("webhook: unmarshal checkout session: %v", err)
		return
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" {
		log.Printf("webhook: checkout session missing email")
		return
	}

	if err := h.profileStore.SetSubscriptionTierByEmail(email, model.TierPaid); err != nil {
		log.Printf("webhook: upgrade tier for %s: %v", email, err)
		return
	}

	// Later subscription events carry only the customer ID, so capture it now.
	if sess.Customer != nil && sess.Customer.ID != "" {
		if err := h.profileStore.SetStripeCustomerIDByEmail(email, sess.Customer.ID); err != nil {
			log.Printf("webhook: store stripe customer id: %v", err)
		}
	}
	log.Printf("webhook: checkout completed for %s", email)
}

func (h *BillingHandler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		log.Printf("webhook: unmarshal subscription: %v", err)
		return
	}

	// Deletion payloads reference the customer as a bare ID, never an
	// expanded object, so the ID stored at checkout is the only join key.
	if sub.Customer == nil || sub.Customer.ID == "" {
		log.Printf("webhook: subscription missing customer")
		return
	}

	if err := h.profileStore.SetSubscriptionTierByCustomerID(sub.Customer.ID, model.TierFree); err != nil {
		log.Printf("webhook: downgrade tier for %s: %v", sub.Customer.ID, err)
	}
}
