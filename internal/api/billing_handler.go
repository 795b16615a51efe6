package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"forexpro-backend-go/internal/core"
	"forexpro-backend-go/internal/models"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// CreateCheckoutSession handles POST /billing/create-checkout-session.
// Authentication is optional: when the optional-auth middleware resolved a
// user, their email is attached to the session; anonymous checkout is allowed.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Price ID is required", Details: err.Error()})
		return
	}

	// Best-effort: absent when the caller is not authenticated.
	customerEmail := c.GetString("userEmail")

	sessionID, sessionURL, err := h.billingService.CreateCheckoutSession(c.Request.Context(), req, customerEmail, c.GetHeader("Origin"))
	if err != nil {
		log.Printf("CreateCheckoutSession Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create checkout session", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CreateCheckoutSessionResponse{SessionID: sessionID, URL: sessionURL})
}

// HandleStripeWebhook handles POST /billing/webhooks/stripe.
// This endpoint is public; Stripe authenticates webhooks via the
// 'Stripe-Signature' header, verified by the billing service. The handler
// fails closed: no event is applied without a valid signature.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Stripe Webhook: Error reading request body: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload", Details: err.Error()})
		return
	}
	defer c.Request.Body.Close()

	signature := c.GetHeader("Stripe-Signature")

	err = h.billingService.HandleStripeWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, core.ErrWebhookSignature) {
			log.Printf("Stripe Webhook: signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook verification failed"})
			return
		}
		// Processing failures return 500 so the provider redelivers.
		log.Printf("Stripe Webhook: processing error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook processing error", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{Received: true})
}
