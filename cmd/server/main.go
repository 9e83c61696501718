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

	"civiguard-backend-go/internal/api"
	"civiguard-backend-go/internal/auth"
	"civiguard-backend-go/internal/config"
	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/events"
	"civiguard-backend-go/internal/genai"
	"civiguard-backend-go/internal/mailer"
	"civiguard-backend-go/internal/middleware"
)

func newLogger(ginMode string) (*zap.Logger, error) {
	if strings.ToLower(ginMode) == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Environment and logger ---
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: failed to read .env: %v", err)
	}

	zapLogger, err := newLogger(os.Getenv("GIN_MODE"))
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.",
		zap.String("store", appConfig.StoreDriver),
		zap.String("aiProvider", appConfig.AIProvider),
	)

	// --- 3. Connect the document store ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	store, err := db.Open(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open document store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("Failed to close document store", zap.Error(err))
		}
	}()

	// --- 4. Optional infrastructure ---
	var stateStore auth.StateStore = auth.NewSignedStateStore(appConfig.JWTSecret)
	if appConfig.RedisAddr != "" {
		redisStates, err := auth.NewRedisStateStore(initCtx, auth.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect OAuth state store", zap.Error(err))
		}
		defer redisStates.Close()
		stateStore = redisStates
		zapLogger.Info("OAuth state kept in Redis", zap.String("addr", appConfig.RedisAddr))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(events.RabbitMQConfig{
			URL:   appConfig.AMQPURL,
			Queue: appConfig.AMQPQueue,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		publisher = rabbit
		zapLogger.Info("Complaint events published to RabbitMQ", zap.String("queue", appConfig.AMQPQueue))
	}
	defer publisher.Close()

	var outbox mailer.Mailer
	if appConfig.SMTPEnabled() {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			From:     appConfig.MailFrom,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to configure SMTP mailer", zap.Error(err))
		}
		outbox = smtpMailer
	} else {
		zapLogger.Warn("SMTP is not configured; admin email sending is disabled.")
	}

	generator, err := genai.New(appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize text generator", zap.Error(err))
	}
	if generator == nil {
		zapLogger.Warn("Text generation disabled; assist endpoints answer with fallbacks.")
	}

	// --- 5. Initialize Services ---
	auditService := core.NewAuditService(store.AuditLogs())
	userService := core.NewUserService(store.Users(), appConfig.AdminEmails, zapLogger)
	enhancementService := core.NewEnhancementService(generator, appConfig.AITimeout, appConfig.DefaultLocation(), zapLogger)
	complaintService := core.NewComplaintService(
		store.Complaints(),
		store.Users(),
		enhancementService,
		auditService,
		publisher,
		core.ComplaintOptions{
			PublicByDefault:      appConfig.PublicByDefault,
			StrictStatusWorkflow: appConfig.StrictStatusWorkflow,
		},
		zapLogger,
	)
	adminService := core.NewAdminService(
		db.NewCSVOfficerRepository(appConfig.OfficersCSVPath),
		store.Complaints(),
		enhancementService,
		outbox,
		auditService,
		zapLogger,
	)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.FrontendURL))

	api.SetupRoutes(router, appConfig, zapLogger, api.Dependencies{
		UserService:        userService,
		ComplaintService:   complaintService,
		AdminService:       adminService,
		EnhancementService: enhancementService,
		OAuthProvider: auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     appConfig.GoogleClientID,
			ClientSecret: appConfig.GoogleClientSecret,
			RedirectURL:  appConfig.GoogleCallbackURL,
		}),
		StateStore: stateStore,
		Tokens:     auth.NewTokenManager(appConfig.JWTSecret, appConfig.TokenTTL),
		Store:      store,
	})

	// --- 7. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 8. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("Server exiting gracefully.")
}
