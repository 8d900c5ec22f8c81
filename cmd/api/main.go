package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/melcoco/registration-service/internal/api/http"
	"github.com/melcoco/registration-service/internal/api/http/handlers"
	"github.com/melcoco/registration-service/internal/auth"
	"github.com/melcoco/registration-service/internal/config"
	"github.com/melcoco/registration-service/internal/events"
	"github.com/melcoco/registration-service/internal/mail"
	"github.com/melcoco/registration-service/internal/observability"
	"github.com/melcoco/registration-service/internal/persistence"
	"github.com/melcoco/registration-service/internal/repository"
	"github.com/melcoco/registration-service/internal/service"
	"github.com/melcoco/registration-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	sender, err := mail.NewSMTPSender(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to configure mail transport", zap.Error(err))
	}

	pool := pg.PoolHandle()
	identityRepo := repository.NewIdentityRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewQueueDispatcher(cfg.Notify.QueueSize, logger)
	defer dispatcher.Close()

	verificationService := service.NewVerificationService(cfg.Verification, redis.Client, identityRepo, logger)
	registrationService := service.NewRegistrationService(cfg.Registration, service.RegistrationDependencies{
		IdentityRepo: identityRepo,
		ProfileRepo:  profileRepo,
		Dispatcher:   dispatcher,
	}, logger)
	notificationService := service.NewNotificationService(
		dispatcher, sender, verificationService, metrics, logger,
		cfg.Notify, cfg.Registration, cfg.SMTP.FromName)
	accountService := service.NewAccountService(identityRepo, cfg.Registration.BcryptCost)

	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Register: handlers.NewRegisterHandler(registrationService),
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Verify:   handlers.NewVerifyHandler(verificationService),
		Debug:    handlers.NewDebugHandler(sender, notificationService, metrics, cfg.Notify.AdminEmail, cfg.App.Name),
		Admin:    handlers.NewAdminHandler(accountService),
		AdminKey: auth.NewAdminKeyMiddleware(cfg.Admin.APIKey),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
