package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"forexpro-backend-go/internal/api"
	"forexpro-backend-go/internal/cache"
	"forexpro-backend-go/internal/config"
	"forexpro-backend-go/internal/core"
	"forexpro-backend-go/internal/db"
	"forexpro-backend-go/internal/marketdata"
	"forexpro-backend-go/internal/middleware"
	"forexpro-backend-go/internal/platform"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	// NewDevelopment gives verbose, human-readable output; switch to
	// zap.NewProduction() for production deployments.
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync() // Flushes buffer, if any. IMPORTANT for buffered loggers.
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	// A local .env is optional; real deployments inject env vars directly.
	if err := godotenv.Load(); err != nil {
		zapLogger.Info("No .env file found, relying on process environment.")
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (includes Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Repositories and External Clients ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)

	marketClient := marketdata.NewClient(appConfig.TwelveDataBaseURL, appConfig.TwelveDataAPIKey)
	platformClient := platform.NewClient(appConfig.PlatformAPIURL, appConfig.PlatformAppID, appConfig.PlatformAPIKey)

	// The snapshot cache is optional; without REDIS_ADDR every request goes
	// straight to the upstream.
	var snapshotCache cache.Cache
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Snapshot cache disabled: failed to connect to Redis", zap.Error(err))
		} else {
			snapshotCache = redisCache
			zapLogger.Info("Snapshot cache enabled", zap.String("addr", appConfig.RedisAddr))
		}
	}
	zapLogger.Info("Repositories and external clients initialized successfully.")

	// --- 5. Initialize Services ---
	userService := core.NewUserService(userRepo)
	billingService := core.NewBillingService(userRepo, appConfig.StripeSecretKey, appConfig.StripeWebhookSecret, appConfig.PlatformAppID)
	marketService := core.NewMarketService(marketClient, snapshotCache, time.Duration(appConfig.SnapshotCacheTTLSeconds)*time.Second)
	contentService := core.NewContentService(platformClient)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	// gin.New() keeps control over the middleware stack (no default logger).
	router := gin.New()

	// --- 7. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. API might not be accessible from a web frontend.")
	}

	// --- 8. Setup API Routes ---
	api.SetupRoutes(
		router,
		zapLogger,
		userService,
		billingService,
		marketService,
		contentService,
	)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
