package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forexpro-backend-go/internal/core"
	"forexpro-backend-go/internal/db"
	"forexpro-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) is expected to be
// applied to the router before this function is called, typically in main.go.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userService core.UserService,
	billingService core.BillingService,
	marketService core.MarketService,
	contentService core.ContentService,
) {
	// Get Firebase Auth client. This must be available after db.InitFirestore().
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
		panic("Firebase Auth client is nil during route setup. Ensure db.InitFirestore() was called and succeeded.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService)
	billingHandler := NewBillingHandler(billingService)
	marketHandler := NewMarketHandler(marketService)
	contentHandler := NewContentHandler(contentService, userService)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Authentication Endpoints ---
		userAuthGroup := apiV1.Group("/users")
		{
			// POST /api/v1/users/initialize - called after client-side Firebase
			// login/signup to ensure a backend profile exists.
			userAuthGroup.POST("/initialize", authMW.VerifyToken(), authHandler.InitializeUserProfile)

			// GET /api/v1/users/me
			userAuthGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
		}

		// --- Billing Endpoints ---
		billingRouteGroup := apiV1.Group("/billing")
		{
			// Checkout works for anonymous callers too; a resolved identity only
			// attaches the customer email to the session.
			billingRouteGroup.POST("/create-checkout-session", authMW.OptionalToken(), billingHandler.CreateCheckoutSession)

			// Public webhook endpoint for Stripe (no auth middleware here).
			// Stripe authenticates webhooks via signature, handled by the service.
			billingRouteGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)
		}

		// --- Market Data Endpoints ---
		marketRouteGroup := apiV1.Group("/market")
		{
			marketRouteGroup.POST("/snapshot", marketHandler.GetSnapshot)
			marketRouteGroup.POST("/timeseries", marketHandler.GetTimeSeries)
		}

		// --- Generated Content Endpoints ---
		contentRouteGroup := apiV1.Group("/content", authMW.VerifyToken())
		{
			contentRouteGroup.GET("/news", contentHandler.GetNews)
			contentRouteGroup.GET("/signals", contentHandler.GetSignals)
			contentRouteGroup.GET("/calendar", contentHandler.GetCalendar)
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "ForexPro backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
