package cmd

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

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/activity"
	activityMongo "github.com/frahmantamala/stagiaire-management/internal/activity/mongo"
	activityPostgres "github.com/frahmantamala/stagiaire-management/internal/activity/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/auth"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"github.com/frahmantamala/stagiaire-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/stagiaire-management/internal/dashboard/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/stagiaire-management/internal/evaluation/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/mediastore/cloudinary"
	"github.com/frahmantamala/stagiaire-management/internal/mission"
	missionPostgres "github.com/frahmantamala/stagiaire-management/internal/mission/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	stagiairePostgres "github.com/frahmantamala/stagiaire-management/internal/stagiaire/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
	"github.com/frahmantamala/stagiaire-management/internal/transport/middleware"
	"github.com/frahmantamala/stagiaire-management/internal/transport/rest"
	"github.com/frahmantamala/stagiaire-management/internal/transport/swagger"
	"github.com/frahmantamala/stagiaire-management/internal/user"
	userPostgres "github.com/frahmantamala/stagiaire-management/internal/user/postgres"
	"github.com/frahmantamala/stagiaire-management/internal/webhook"
	"github.com/frahmantamala/stagiaire-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 30 * time.Second
	indexTimeout    = 10 * time.Second
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *gorm.DB
	Mongo         *mongo.Client
	MongoDB       *mongo.Database
	Router        *chi.Mux
	HealthChecker *rest.HealthHandler
	EventBus      *events.EventBus
	Webhooks      *webhook.Dispatcher
	Logger        *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close drains in-flight event handlers and webhooks before releasing the stores.
func (d *Dependencies) close(ctx context.Context) {
	d.EventBus.Wait()
	if d.Webhooks != nil {
		if err := d.Webhooks.Shutdown(ctx); err != nil {
			d.Logger.Error("Webhook dispatcher shutdown error", "error", err)
		}
	}
	if d.Mongo != nil {
		if err := d.Mongo.Disconnect(ctx); err != nil {
			d.Logger.Error("Mongo disconnect error", "error", err)
		}
	}
	if err := database.Close(d.DB); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	baseHandler := transport.NewBaseHandler(deps.Logger)

	// repositories
	userRepo := userPostgres.NewRepository(deps.DB)
	stagiaireRepo := stagiairePostgres.NewStagiaireRepository(deps.DB)
	evaluationRepo := evaluationPostgres.NewEvaluationRepository(deps.DB)
	missionRepo := missionPostgres.NewMissionRepository(deps.DB)

	sqlxDB, err := database.SQLX(deps.DB)
	if err != nil {
		return fmt.Errorf("failed to share connection pool with sqlx: %w", err)
	}
	dashboardRepo := dashboardPostgres.NewRepository(sqlxDB)

	// avatar uploads stay disabled until Cloudinary credentials are configured
	var media stagiaire.MediaStore
	if store, err := cloudinary.NewStore(cfg.Cloudinary); err == nil {
		media = store
	} else {
		deps.Logger.Warn("avatar uploads disabled", "reason", err)
	}

	var activityRepo activity.RepositoryAPI = activityPostgres.NewRepository(deps.DB)
	if deps.Mongo != nil {
		mongoRepo := activityMongo.NewRepository(deps.MongoDB)
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create activity indexes: %w", err)
		}
		activityRepo = mongoRepo
		deps.HealthChecker.AddCheck("mongo", mongoRepo.Ping)
	}

	// services
	tokenGenerator := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGenerator, deps.EventBus, cfg.Security.BCryptCost, deps.Logger)
	userService := user.NewService(userRepo, deps.EventBus, cfg.Security.BCryptCost, deps.Logger)
	stagiaireService := stagiaire.NewService(stagiaireRepo, media, deps.EventBus, deps.Logger)
	evaluationService := evaluation.NewService(evaluationRepo, stagiaireService, deps.EventBus, deps.Logger)
	missionService := mission.NewService(missionRepo, stagiaireService, deps.EventBus, deps.Logger)
	dashboardService := dashboard.NewService(dashboardRepo, deps.Logger)
	activityService := activity.NewService(activityRepo, deps.Logger)

	// event subscribers
	activityService.Subscribe(deps.EventBus)
	if deps.Webhooks != nil {
		deps.Webhooks.Subscribe(deps.EventBus)
	}

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(baseHandler, authService),
		User:       user.NewHandler(baseHandler, userService),
		Stagiaire:  stagiaire.NewHandler(baseHandler, stagiaireService),
		Evaluation: evaluation.NewHandler(baseHandler, evaluationService),
		Mission:    mission.NewHandler(baseHandler, missionService),
		Dashboard:  dashboard.NewHandler(baseHandler, dashboardService),
		Activity:   activity.NewHandler(baseHandler, activityService),
	}

	opts := rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
	}
	if cfg.Server.OpenAPIPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := swagger.LoadSpec(ctx, cfg.Server.OpenAPIPath); err != nil {
			deps.Logger.Warn("openapi document not served", "path", cfg.Server.OpenAPIPath, "error", err)
		} else {
			opts.OpenAPIPath = cfg.Server.OpenAPIPath
		}
	}
	if cfg.Observability.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = middleware.NewHTTPMetrics(registry)
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, deps.HealthChecker, handlers, opts, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	db, err := database.Open(config.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if config.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	healthChecker := rest.NewHealthHandler().AddCheck("database", sqlDB.PingContext)

	deps := &Dependencies{
		Config:        config,
		Logger:        log,
		DB:            db,
		Router:        chi.NewRouter(),
		HealthChecker: healthChecker,
		EventBus:      events.NewEventBus(log),
	}

	if config.Mongo.Enabled {
		client, mongoDB, err := database.OpenMongo(context.Background(), config.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		deps.Mongo = client
		deps.MongoDB = mongoDB
	}

	if config.Webhook.URL != "" {
		deps.Webhooks = webhook.NewDispatcher(config.Webhook, log)
	}

	return deps, nil
}
