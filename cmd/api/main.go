package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luminastudio/lumina-backend/api/routes"
	"github.com/luminastudio/lumina-backend/internal/auth"
	"github.com/luminastudio/lumina-backend/internal/paymentconfigs"
	"github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/internal/templates"
	"github.com/luminastudio/lumina-backend/pkg/auth/session"
	"github.com/luminastudio/lumina-backend/pkg/config"
	"github.com/luminastudio/lumina-backend/pkg/db"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	"github.com/luminastudio/lumina-backend/pkg/metrics"
	"github.com/luminastudio/lumina-backend/pkg/migrate"
	"github.com/luminastudio/lumina-backend/pkg/redis"
	"github.com/luminastudio/lumina-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cloud storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    auth.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	proposalMetrics := metrics.NewProposalMetrics(prometheus.DefaultRegisterer)
	proposalService, err := proposals.NewService(
		proposals.NewRepository(dbClient.DB()),
		dbClient,
		gcsClient,
		proposalMetrics,
		proposals.Config{
			PublicTokenBytes: cfg.Proposals.PublicTokenBytes,
			DefaultValidDays: cfg.Proposals.DefaultValidDays,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create proposal service", err)
		os.Exit(1)
	}

	templateService, err := templates.NewService(templates.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create template service", err)
		os.Exit(1)
	}

	paymentConfigService, err := paymentconfigs.NewService(paymentconfigs.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create payment config service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:               cfg,
			Logger:               logg,
			DB:                   dbClient,
			Redis:                redisClient,
			GCS:                  gcsClient,
			SessionChecker:       sessionManager,
			AuthService:          authService,
			ProposalService:      proposalService,
			TemplateService:      templateService,
			PaymentConfigService: paymentConfigService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
