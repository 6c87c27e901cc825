package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/stockwatch-tech/go-backend/internal/cfg"
	v1Http "github.com/stockwatch-tech/go-backend/internal/delivery/v1/http"
	"github.com/stockwatch-tech/go-backend/internal/infrastructure/kafka"
	"github.com/stockwatch-tech/go-backend/internal/infrastructure/mail"
	"github.com/stockwatch-tech/go-backend/internal/infrastructure/shopify"
	"github.com/stockwatch-tech/go-backend/internal/repository/pgdb"
	redisRepo "github.com/stockwatch-tech/go-backend/internal/repository/redis"
	"github.com/stockwatch-tech/go-backend/internal/scheduler"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/clients"
	"github.com/stockwatch-tech/go-backend/pkg/closer"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
	"github.com/stockwatch-tech/go-backend/pkg/postgres"
)

func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	appCloser := closer.NewCloser(5 * time.Second)

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()
	appCloser.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	productRepo := pgdb.NewProductRepo(db.Pool)
	alertRepo := pgdb.NewAlertRepo(db.Pool)
	recipientRepo := pgdb.NewRecipientRepo(db.Pool)
	locker := redisRepo.NewLeaseRepo(redisClient, cfg.Redis.DedupLeaseTTL)

	catalog := shopify.NewClient(cfg.Shopify, redisClient, logger)
	mailer := mail.NewSMTPMailer(cfg.Alerts)
	dispatcher := usecase.NewAlertDispatcher(recipientRepo, alertRepo, mailer, cfg.Alerts.CCEmails, logger)

	inventoryUC := usecase.NewInventoryUC(
		productRepo,
		locker,
		catalog,
		dispatcher,
		db.Pool,
		logger,
		cfg.Sync.Ceiling,
	)
	productOpsUC := usecase.NewProductOpsUC(productRepo, catalog, dispatcher, logger, cfg.Sync.Ceiling)
	syncUC := usecase.NewSyncUC(catalog, inventoryUC, productRepo, cfg.Sync, logger)

	producer := kafka.NewProducer(logger, cfg.Kafka)
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Errorf(err, "failed to ensure kafka topic")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	consumer := kafka.NewConsumer(inventoryUC, logger, cfg.Kafka)
	consumer.Start(consumerCtx)
	appCloser.Add(func(ctx context.Context) error {
		consumerCancel()
		consumer.Stop()
		return nil
	})

	sched, err := scheduler.NewScheduler(syncUC, cfg.Sync, logger)
	if err != nil {
		logger.Errorf(err, "failed to initialize sync scheduler")
		os.Exit(1)
	}
	sched.Start()
	appCloser.Add(func(ctx context.Context) error {
		sched.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(producer, productOpsUC, syncUC, cfg.Shopify)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	appCloser.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := appCloser.Close(shutdownCtx); err != nil {
		logger.Warnf("shutdown finished with errors: %v", err)
	}

	logger.Infof("Application shutdown complete")
	if appErr != nil {
		os.Exit(1)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
