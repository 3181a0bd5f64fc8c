package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/usermgmt/internal/usermgmt/http"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/mail"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/notify"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/postgres"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/sqlite"
	"github.com/aussiebroadwan/usermgmt/pkg/cryptox"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the user management service and all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier

	// Notifications
	hub        *notify.Hub
	dispatcher *notify.Dispatcher
	closers    []func() error // Sink connections closed after the dispatcher drains

	housekeepingService *service.HousekeepingService // nil when retention is 0

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service:      "usermgmt",
			Version:      BuildVersion,
			Env:          cfg.Env,
			Level:        cfg.LogLevel,
			Format:       cfg.LogFormat,
			File:         cfg.LogFile,
			RotationTime: cfg.LogRotationTime,
			MaxAge:       cfg.LogMaxAge,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initTokens(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initNotifications(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.dispatcher.Start()
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("usermgmt service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down usermgmt service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Event streams never finish on their own
	app.hub.Close()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	// Deliver what is queued before closing the broker connections
	if err := app.dispatcher.Stop(ctx); err != nil {
		app.logger.Warn("notification queue not drained", "error", err, "dropped", app.dispatcher.Dropped())
	}
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil {
			app.logger.Error("error closing notification sink", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("usermgmt service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return errors.New("UM_DATABASE_URL is required for the postgres driver")
		}
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	case "sqlite", "":
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initTokens builds the HS256 signer and verifier from the shared secret
func (app *Application) initTokens() error {
	secret := []byte(app.cfg.JWTSecret)
	if len(secret) == 0 {
		generated, err := cryptox.GenerateToken(jwtx.MinSecretLength)
		if err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = []byte(generated)
		app.logger.Warn("UM_JWT_SECRET not set, using a per-process secret; tokens will not survive a restart")
	}

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return fmt.Errorf("invalid jwt secret: %w", err)
	}
	app.signer = signer
	app.verifier = jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{
		Issuer: app.cfg.Issuer,
		Leeway: 30 * time.Second,
	})
	return nil
}

// initNotifications assembles the sinks behind the dispatcher. The hub and
// the log sink are always on; the brokers only when configured.
func (app *Application) initNotifications() error {
	app.hub = notify.NewHub()
	sinks := []notify.Sink{app.hub, notify.LogSink{Logger: app.logger}}

	if len(app.cfg.KafkaBrokers) > 0 {
		k := notify.NewKafkaSink(app.cfg.KafkaBrokers, app.cfg.KafkaTopic)
		sinks = append(sinks, k)
		app.closers = append(app.closers, k.Close)
		app.logger.Info("kafka notification sink enabled", "topic", app.cfg.KafkaTopic)
	}

	if app.cfg.RabbitMQURL != "" {
		r, err := notify.DialRabbitSink(app.cfg.RabbitMQURL, app.cfg.RabbitMQQueue)
		if err != nil {
			for _, closeFn := range app.closers {
				_ = closeFn()
			}
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		sinks = append(sinks, r)
		app.closers = append(app.closers, r.Close)
		app.logger.Info("rabbitmq notification sink enabled", "queue", app.cfg.RabbitMQQueue)
	}

	app.dispatcher = notify.NewDispatcher(app.logger, app.cfg.NotifyQueueSize, sinks...)
	return nil
}

func (app *Application) mailer() service.Mailer {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set, verification codes are logged instead of mailed")
		return mail.LogMailer{Logger: app.logger}
	}
	return mail.NewSMTPMailer(mail.Config{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
		FromName: app.cfg.SMTPFromName,
	})
}

// initHTTP wires the services into the router and builds the server
func (app *Application) initHTTP() {
	hasher := cryptox.BcryptHasher{Cost: app.cfg.BcryptCost}

	router := httpapi.NewRouter(
		app.signer,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = &service.AccountService{Store: app.db, Hasher: hasher, Notifier: app.dispatcher}
	router.DirectoryService = &service.DirectoryService{Store: app.db, Hasher: hasher, Notifier: app.dispatcher}
	router.VerificationService = &service.VerificationService{
		Store:    app.db,
		Mailer:   app.mailer(),
		Notifier: app.dispatcher,
		TTL:      app.cfg.CodeTTL,
	}
	router.TokenService = &service.TokenService{
		Signer: app.signer,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.TokenTTL,
	}
	router.RolesService = &service.RolesService{Store: app.db}
	router.StatusService = &service.AccountStatusService{Store: app.db}
	router.ProfileService = &service.ProfileService{Store: app.db, Notifier: app.dispatcher}
	router.BootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: hasher,
		Token:  app.cfg.BootstrapToken,
	}
	router.Hub = app.hub
	router.ApplyRoutes()

	app.router = router

	if app.cfg.CodeRetention > 0 {
		app.housekeepingService = service.NewHousekeepingService(
			app.db,
			app.logger,
			app.cfg.HousekeepingInterval,
			app.cfg.CodeRetention,
		)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
