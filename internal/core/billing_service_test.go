package core

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"forexpro-backend-go/internal/db"
	"forexpro-backend-go/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

// fakeUserRepository is an in-memory db.UserRepository for service tests.
type fakeUserRepository struct {
	users      map[string]*models.User // keyed by ID
	updates    int
	failGet    bool
	failCreate bool
}

func newFakeUserRepository(users ...*models.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if r.failGet {
		return nil, errors.New("storage unavailable")
	}
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.failGet {
		return nil, errors.New("storage unavailable")
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("email %s: %w", email, db.ErrNotFound)
}

func (r *fakeUserRepository) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	if r.failGet {
		return nil, errors.New("storage unavailable")
	}
	for _, u := range r.users {
		if u.StripeSubscriptionID == subscriptionID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("subscription %s: %w", subscriptionID, db.ErrNotFound)
}

func (r *fakeUserRepository) Create(ctx context.Context, user *models.User) error {
	if r.failCreate {
		return errors.New("storage unavailable")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	r.updates++
	return nil
}

// fakeSessionCreator records the params it was called with.
type fakeSessionCreator struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeSessionCreator) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

// signedHeader computes a valid Stripe-Signature header for the payload,
// using the documented t=...,v1=... scheme.
func signedHeader(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload(mode, email, customer, subscription string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"mode": %q,
				"customer_email": %q,
				"customer": %q,
				"subscription": %q
			}
		}
	}`, mode, email, customer, subscription))
}

func subscriptionPayload(eventType, subID, status string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"object": "event",
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "subscription",
				"status": %q
			}
		}
	}`, eventType, subID, status))
}

func TestHandleStripeWebhook_CheckoutCompleted(t *testing.T) {
	user := &models.User{ID: "uid-1", Email: "a@x.com", SubscriptionPlan: models.PlanFree}
	repo := newFakeUserRepository(user)
	svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

	payload := checkoutCompletedPayload("subscription", "a@x.com", "cus_9", "sub_9")
	err := svc.HandleStripeWebhook(context.Background(), payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)

	updated := repo.users["uid-1"]
	assert.Equal(t, models.PlanPro, updated.SubscriptionPlan)
	assert.Equal(t, "cus_9", updated.StripeCustomerID)
	assert.Equal(t, "sub_9", updated.StripeSubscriptionID)
	assert.Equal(t, 1, repo.updates)
}

func TestHandleStripeWebhook_CheckoutCompleted_NoMutation(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "unknown email is acknowledged without action",
			payload: checkoutCompletedPayload("subscription", "nobody@x.com", "cus_9", "sub_9"),
		},
		{
			name:    "payment mode session is ignored",
			payload: checkoutCompletedPayload("payment", "a@x.com", "cus_9", "sub_9"),
		},
		{
			name:    "missing email is ignored",
			payload: checkoutCompletedPayload("subscription", "", "cus_9", "sub_9"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{ID: "uid-1", Email: "a@x.com", SubscriptionPlan: models.PlanFree}
			repo := newFakeUserRepository(user)
			svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

			err := svc.HandleStripeWebhook(context.Background(), tt.payload, signedHeader(tt.payload, testWebhookSecret))
			require.NoError(t, err)
			assert.Equal(t, 0, repo.updates)
			assert.Equal(t, models.PlanFree, repo.users["uid-1"].SubscriptionPlan)
		})
	}
}

func TestHandleStripeWebhook_SubscriptionStatus(t *testing.T) {
	tests := []struct {
		name         string
		eventType    string
		status       string
		expectedPlan string
	}{
		{"updated active keeps pro", "customer.subscription.updated", "active", models.PlanPro},
		{"updated past_due downgrades", "customer.subscription.updated", "past_due", models.PlanFree},
		{"updated canceled downgrades", "customer.subscription.updated", "canceled", models.PlanFree},
		{"deleted downgrades", "customer.subscription.deleted", "canceled", models.PlanFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{
				ID:                   "uid-1",
				Email:                "a@x.com",
				SubscriptionPlan:     models.PlanPro,
				StripeSubscriptionID: "sub_9",
			}
			repo := newFakeUserRepository(user)
			svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

			payload := subscriptionPayload(tt.eventType, "sub_9", tt.status)
			err := svc.HandleStripeWebhook(context.Background(), payload, signedHeader(payload, testWebhookSecret))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPlan, repo.users["uid-1"].SubscriptionPlan)
			assert.Equal(t, 1, repo.updates)
		})
	}
}

func TestHandleStripeWebhook_UnknownSubscriptionID(t *testing.T) {
	repo := newFakeUserRepository(&models.User{ID: "uid-1", StripeSubscriptionID: "sub_other"})
	svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

	payload := subscriptionPayload("customer.subscription.deleted", "sub_unknown", "canceled")
	err := svc.HandleStripeWebhook(context.Background(), payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, 0, repo.updates)
}

func TestHandleStripeWebhook_InvalidSignature(t *testing.T) {
	user := &models.User{ID: "uid-1", Email: "a@x.com", SubscriptionPlan: models.PlanFree}
	repo := newFakeUserRepository(user)
	svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

	payload := checkoutCompletedPayload("subscription", "a@x.com", "cus_9", "sub_9")

	tests := []struct {
		name      string
		signature string
	}{
		{"garbage header", "t=123,v1=deadbeef"},
		{"empty header", ""},
		{"wrong secret", signedHeader(payload, "whsec_wrong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.HandleStripeWebhook(context.Background(), payload, tt.signature)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrWebhookSignature)
			assert.Equal(t, 0, repo.updates)
			assert.Equal(t, models.PlanFree, repo.users["uid-1"].SubscriptionPlan)
		})
	}
}

func TestHandleStripeWebhook_UnhandledType(t *testing.T) {
	repo := newFakeUserRepository()
	svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

	payload := []byte(`{"id":"evt_3","object":"event","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`)
	err := svc.HandleStripeWebhook(context.Background(), payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, 0, repo.updates)
}

func TestHandleStripeWebhook_LookupFailure(t *testing.T) {
	repo := newFakeUserRepository(&models.User{ID: "uid-1", Email: "a@x.com"})
	repo.failGet = true
	svc := newBillingServiceWithDeps(repo, &fakeSessionCreator{}, testWebhookSecret, "app-1")

	payload := checkoutCompletedPayload("subscription", "a@x.com", "cus_9", "sub_9")
	err := svc.HandleStripeWebhook(context.Background(), payload, signedHeader(payload, testWebhookSecret))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWebhookSignature)
}

func TestCreateCheckoutSession(t *testing.T) {
	creator := &fakeSessionCreator{}
	svc := newBillingServiceWithDeps(newFakeUserRepository(), creator, testWebhookSecret, "app-1")

	req := models.CreateCheckoutSessionRequest{PriceID: "price_123"}
	sessionID, sessionURL, err := svc.CreateCheckoutSession(context.Background(), req, "a@x.com", "https://forexpro.example")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", sessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", sessionURL)

	require.NotNil(t, creator.params)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), stripe.StringValue(creator.params.Mode))
	require.Len(t, creator.params.LineItems, 1)
	assert.Equal(t, "price_123", stripe.StringValue(creator.params.LineItems[0].Price))
	assert.Equal(t, int64(1), stripe.Int64Value(creator.params.LineItems[0].Quantity))
	assert.Equal(t, "a@x.com", stripe.StringValue(creator.params.CustomerEmail))
	assert.Equal(t, "https://forexpro.example/success?session_id={CHECKOUT_SESSION_ID}", stripe.StringValue(creator.params.SuccessURL))
	assert.Equal(t, "https://forexpro.example/subscription", stripe.StringValue(creator.params.CancelURL))
	assert.Equal(t, "app-1", creator.params.Metadata["app_id"])
}

func TestCreateCheckoutSession_ExplicitURLsAndAnonymous(t *testing.T) {
	creator := &fakeSessionCreator{}
	svc := newBillingServiceWithDeps(newFakeUserRepository(), creator, testWebhookSecret, "app-1")

	req := models.CreateCheckoutSessionRequest{
		PriceID:    "price_123",
		SuccessURL: "https://forexpro.example/thanks",
		CancelURL:  "https://forexpro.example/plans",
	}
	_, _, err := svc.CreateCheckoutSession(context.Background(), req, "", "https://ignored.example")
	require.NoError(t, err)

	assert.Equal(t, "https://forexpro.example/thanks", stripe.StringValue(creator.params.SuccessURL))
	assert.Equal(t, "https://forexpro.example/plans", stripe.StringValue(creator.params.CancelURL))
	assert.Nil(t, creator.params.CustomerEmail)
}

func TestCreateCheckoutSession_ProviderFailure(t *testing.T) {
	creator := &fakeSessionCreator{err: errors.New("stripe is down")}
	svc := newBillingServiceWithDeps(newFakeUserRepository(), creator, testWebhookSecret, "app-1")

	_, _, err := svc.CreateCheckoutSession(context.Background(), models.CreateCheckoutSessionRequest{PriceID: "price_123"}, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStripeClient)
}
