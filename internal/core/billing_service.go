package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"forexpro-backend-go/internal/db"
	"forexpro-backend-go/internal/models"
)

// Errors surfaced by billing operations.
var (
	ErrStripeClient     = errors.New("stripe client operation failed")
	ErrWebhookSignature = errors.New("stripe webhook signature verification failed")
)

// checkoutSessionCreator is the slice of the Stripe client the service needs.
// *session.Client satisfies it; tests substitute a fake.
type checkoutSessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// billingService implements the BillingService interface against Stripe.
type billingService struct {
	userRepo      db.UserRepository
	sessions      checkoutSessionCreator
	webhookSecret string
	appID         string
}

// NewBillingService creates a BillingService backed by the Stripe API.
func NewBillingService(userRepo db.UserRepository, stripeSecretKey, webhookSecret, appID string) BillingService {
	sc := &client.API{}
	sc.Init(stripeSecretKey, nil)

	return &billingService{
		userRepo:      userRepo,
		sessions:      sc.CheckoutSessions,
		webhookSecret: webhookSecret,
		appID:         appID,
	}
}

// newBillingServiceWithDeps wires explicit dependencies; used by tests.
func newBillingServiceWithDeps(userRepo db.UserRepository, sessions checkoutSessionCreator, webhookSecret, appID string) *billingService {
	return &billingService{
		userRepo:      userRepo,
		sessions:      sessions,
		webhookSecret: webhookSecret,
		appID:         appID,
	}
}

// CreateCheckoutSession creates a subscription-mode hosted checkout session.
// customerEmail is attached when present; origin supplies default redirect
// targets when the request omits them.
func (s *billingService) CreateCheckoutSession(ctx context.Context, req models.CreateCheckoutSessionRequest, customerEmail, origin string) (string, string, error) {
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = origin + "/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = origin + "/subscription"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	if s.appID != "" {
		params.AddMetadata("app_id", s.appID)
	}
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStripeClient, err)
	}
	return sess.ID, sess.URL, nil
}

// checkoutSessionEvent is the slice of a checkout.session.completed payload
// the synchronizer reads. Customer and Subscription arrive as plain IDs.
type checkoutSessionEvent struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	CustomerEmail string `json:"customer_email"`
}

// subscriptionEvent is the slice of a customer.subscription.* payload the
// synchronizer reads.
type subscriptionEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleStripeWebhook verifies the event signature against the configured
// webhook secret and applies at most one user record mutation. An event that
// references no known user is acknowledged without action so the provider
// does not redeliver it.
func (s *billingService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session checkoutSessionEvent
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to decode checkout session payload: %w", err)
		}
		return s.applyCheckoutCompleted(ctx, session)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub subscriptionEvent
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription payload: %w", err)
		}
		return s.applySubscriptionStatus(ctx, sub)

	default:
		// Acknowledge without action; the provider only needs receipt.
		log.Printf("Stripe webhook: ignoring event type %s", event.Type)
		return nil
	}
}

// applyCheckoutCompleted promotes the matching user to the pro plan and
// stores the provider's customer and subscription ids.
func (s *billingService) applyCheckoutCompleted(ctx context.Context, session checkoutSessionEvent) error {
	email := strings.TrimSpace(session.CustomerEmail)
	if email == "" || session.Mode != string(stripe.CheckoutSessionModeSubscription) {
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// No matching user; never create one from a billing event.
			log.Printf("Stripe webhook: checkout completed for unknown email, ignoring")
			return nil
		}
		return fmt.Errorf("failed to look up user by email: %w", err)
	}

	user.SubscriptionPlan = models.PlanPro
	user.StripeCustomerID = session.Customer
	user.StripeSubscriptionID = session.Subscription
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user '%s' after checkout: %w", user.ID, err)
	}
	log.Printf("Stripe webhook: user %s upgraded to pro", user.ID)
	return nil
}

// applySubscriptionStatus sets the plan to pro iff the provider reports the
// subscription as active, free otherwise.
func (s *billingService) applySubscriptionStatus(ctx context.Context, sub subscriptionEvent) error {
	user, err := s.userRepo.GetByStripeSubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("Stripe webhook: subscription %s references no known user, ignoring", sub.ID)
			return nil
		}
		return fmt.Errorf("failed to look up user by subscription id: %w", err)
	}

	if sub.Status == string(stripe.SubscriptionStatusActive) {
		user.SubscriptionPlan = models.PlanPro
	} else {
		user.SubscriptionPlan = models.PlanFree
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user '%s' subscription status: %w", user.ID, err)
	}
	log.Printf("Stripe webhook: user %s plan set to %s", user.ID, user.SubscriptionPlan)
	return nil
}
