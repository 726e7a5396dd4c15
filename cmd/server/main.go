package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"observer-console.backend/internal/config"
	"observer-console.backend/internal/domain/entities"
	"observer-console.backend/internal/infrastructure/jobs"
	"observer-console.backend/internal/infrastructure/messaging"
	"observer-console.backend/internal/infrastructure/repositories"
	"observer-console.backend/internal/infrastructure/vendor"
	"observer-console.backend/internal/interfaces/http/handlers"
	"observer-console.backend/internal/usecases"
	"observer-console.backend/pkg/crypto"
	"observer-console.backend/pkg/jwt"
	"observer-console.backend/pkg/logger"
	"observer-console.backend/pkg/redis"
)

const (
	webhookPath     = "/api/v1/webhooks/verification"
	shutdownTimeout = 10 * time.Second
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer     = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Verification.WebhookSecret == "" {
		logger.Warn(ctx, "VERIFICATION_WEBHOOK_SECRET is empty; unsigned webhooks will be accepted")
	}
	if cfg.Verification.VendorAPIKey == "" || cfg.Verification.WorkflowID == "" {
		logger.Warn(ctx, "Vendor credentials are not configured; start_verification will fail")
	}

	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "REDIS_URL is empty; config cache and idempotency are disabled")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to PostgreSQL via GORM")
	}

	keyring, err := newFieldKeyring(ctx, cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize field encryption: %w", err)
	}
	var sealer repositories.FieldSealer
	if keyring != nil {
		sealer = keyring
	}

	publisher, closePublisher := newStatusPublisher(ctx, cfg.RabbitMQ)
	defer closePublisher()

	// Repositories
	uow := repositories.NewUnitOfWork(db)
	sessionRepo := repositories.NewVerificationSessionRepository(db, sealer)
	profileRepo := repositories.NewUserProfileRepository(db)
	configRepo := repositories.NewCachedVerificationConfigRepository(
		repositories.NewVerificationConfigRepository(db, defaultVerificationConfig(ctx, cfg.Verification)),
		redis.NewJSONCache(redis.GetClient(), "verification_config"),
		cfg.Verification.ConfigCacheTTL,
	)

	// Usecases
	verificationUsecase := usecases.NewVerificationUsecase(
		sessionRepo, profileRepo, configRepo, uow,
		vendor.NewClient(cfg.Verification.VendorBaseURL, cfg.Verification.VendorAPIKey, cfg.Verification.VendorTimeout),
		publisher,
		usecases.VerificationSettings{
			VendorAPIKey:            cfg.Verification.VendorAPIKey,
			WorkflowID:              cfg.Verification.WorkflowID,
			WebhookURL:              cfg.Server.PublicBaseURL + webhookPath,
			SessionTTL:              cfg.Verification.SessionTTL,
			CancelPropagatesProfile: cfg.Verification.CancelPropagatesProfile,
			PhoneDefaultRegion:      cfg.Verification.PhoneDefaultRegion,
		},
	)
	webhookUsecase := usecases.NewWebhookUsecase(sessionRepo, profileRepo, uow, publisher, cfg.Verification.WebhookSecret)

	r := newRouter(cfg, routeDeps{
		verificationHandler: handlers.NewVerificationHandler(verificationUsecase),
		webhookHandler:      handlers.NewWebhookHandler(webhookUsecase, cfg.Verification.SignatureHeader),
		authMiddleware:      authMiddlewareFor(jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)),
	})

	sigCtx, stop := signalContext()
	defer stop()

	if keyring != nil {
		reloads, stopReloads := reloadSignals()
		defer stopReloads()
		go watchKeyReloads(sigCtx, reloads, keyring)
	}

	if cfg.Verification.ExpirySweepEnabled {
		expiryJob := jobs.NewVerificationExpiryJob(verificationUsecase, cfg.Verification.ExpirySweepInterval, cfg.Verification.ExpirySweepBatchSize)
		go expiryJob.Start(sigCtx)
		defer expiryJob.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "Observer console backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("webhook_url", cfg.Server.PublicBaseURL+webhookPath),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- runServer(srv) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
		logger.Info(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newFieldKeyring builds the at-rest keyring. Without a key it returns nil and payloads
// are stored in plaintext.
func newFieldKeyring(ctx context.Context, cfg config.SecurityConfig) (*crypto.Keyring, error) {
	if cfg.FieldEncryptionKey == "" {
		logger.Warn(ctx, "FIELD_ENCRYPTION_KEY is empty; verification payloads are stored unencrypted")
		return nil, nil
	}
	keyring, err := crypto.NewKeyring(cfg.FieldEncryptionKey, cfg.PreviousFieldEncryptionKeys...)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Field encryption enabled", zap.String("key_id", keyring.ActiveKeyID()))
	return keyring, nil
}

// newStatusPublisher returns the broker publisher, or a logging one when no broker is configured
func newStatusPublisher(ctx context.Context, cfg config.RabbitMQConfig) (usecases.StatusEventPublisher, func()) {
	if cfg.URL == "" {
		logger.Warn(ctx, "RABBITMQ_URL is empty; status events are only logged")
		return messaging.LogPublisher{}, func() {}
	}
	publisher := messaging.NewRabbitMQPublisher(cfg.URL, cfg.Queue)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn(ctx, "Failed to close RabbitMQ publisher", zap.Error(err))
		}
	}
}

// defaultVerificationConfig is used while no configuration row is active
func defaultVerificationConfig(ctx context.Context, cfg config.VerificationConfig) *entities.VerificationConfig {
	documentTypes := make([]string, 0, len(entities.AllDocumentTypes))
	for _, d := range entities.AllDocumentTypes {
		documentTypes = append(documentTypes, string(d))
	}
	defaults, dropped := entities.NewVerificationConfig(cfg.DefaultMethods, documentTypes)
	if len(dropped) > 0 {
		logger.Warn(ctx, "Ignoring unknown VERIFICATION_DEFAULT_METHODS values", zap.Strings("values", dropped))
	}
	defaults.IsDefault = true
	return defaults
}
