package db

import (
	"context"

	"forexpro-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
// Lookups by email and subscription id serve the billing event synchronizer;
// both return ErrNotFound when no matching document exists.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}
