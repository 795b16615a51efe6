package core

import (
	"context"

	"forexpro-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one with default values.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// BillingService defines the interface for billing operations: creating
// hosted checkout sessions and synchronizing subscription state from
// provider webhooks.
type BillingService interface {
	// CreateCheckoutSession starts a subscription checkout. customerEmail is
	// best-effort and may be empty; origin is used to derive default redirect
	// URLs when the request carries none.
	CreateCheckoutSession(ctx context.Context, req models.CreateCheckoutSessionRequest, customerEmail, origin string) (sessionID, sessionURL string, err error)
	// HandleStripeWebhook verifies the event signature and applies at most
	// one user record mutation for the event.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
}

// MarketService defines the interface for the market data relays.
type MarketService interface {
	// GetSnapshot fetches current quotes for the given pairs concurrently.
	// Pairs that fail or lack a close price are dropped from the result.
	GetSnapshot(ctx context.Context, pairs []string) (*models.SnapshotResponse, error)
	// GetTimeSeries fetches historical candles for one pair in chronological
	// ascending order.
	GetTimeSeries(ctx context.Context, req models.TimeSeriesRequest) (*models.TimeSeriesResponse, error)
}

// ContentService defines the interface for generated market content.
type ContentService interface {
	GetNews(ctx context.Context) (*models.NewsResponse, error)
	GetSignals(ctx context.Context) (*models.SignalsResponse, error)
	GetCalendar(ctx context.Context) (*models.CalendarResponse, error)
}
