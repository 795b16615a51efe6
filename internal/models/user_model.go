package models

import "time"

// Subscription plan values stored on a user document.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents a user profile in the system.
type User struct {
	ID                   string    `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email                string    `json:"email" firestore:"email"`
	DisplayName          string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL             string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	SubscriptionPlan     string    `json:"subscriptionPlan" firestore:"subscriptionPlan"` // "free" or "pro"
	StripeCustomerID     string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId,omitempty" firestore:"stripeSubscriptionId,omitempty"`
	CreatedAt            time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt            time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsPro reports whether the user currently has a paid subscription.
func (u *User) IsPro() bool {
	return u.SubscriptionPlan == PlanPro
}
