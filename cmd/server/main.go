package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"lab-backend/internal/auth"
	"lab-backend/internal/cache"
	"lab-backend/internal/config"
	"lab-backend/internal/database"
	"lab-backend/internal/database/migrations"
	"lab-backend/internal/db"
	"lab-backend/internal/email"
	"lab-backend/internal/handlers"
	"lab-backend/internal/health"
	h "lab-backend/internal/http"
	"lab-backend/internal/logger"
	"lab-backend/internal/metrics"
	"lab-backend/internal/middleware"
	"lab-backend/internal/monitoring"
	"lab-backend/internal/repositories"
	"lab-backend/internal/services"
	"lab-backend/internal/storage"
	"lab-backend/internal/timeutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", config.DefaultConfigFile, "Path to the YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	migrateOnly := flag.Bool("migrate-only", false, "Apply database migrations and exit")
	createAdmin := flag.Bool("create-admin", false, "Create or reset the admin account from auth.admin_* and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(logger.Options{
		ServiceName: "lab-backend",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid configuration", err)
		os.Exit(1)
	}
	if err := timeutil.SetLocation(cfg.Lab.Timezone); err != nil {
		log.Error(ctx, "invalid lab.timezone", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, *migrateOnly, *createAdmin); err != nil {
		log.Error(ctx, "server stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, migrateOnly, createAdmin bool) error {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info(log.WithField(ctx, "database", cfg.Database.Name), "connected to postgres")

	if err := database.NewMigrator(pool, migrations.FS, log).RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if migrateOnly {
		log.Info(ctx, "migrations applied, exiting")
		return nil
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	materialRepo := repositories.NewMaterialRepository(pool)
	equipmentRepo := repositories.NewEquipmentRepository(pool)
	maintenanceRepo := repositories.NewMaintenanceRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	authService := services.NewAuthService(userRepo, jwtManager, cfg.Auth.TOTPIssuer)

	if cfg.Auth.AdminPassword != "" || createAdmin {
		admin, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("admin account: %w", err)
		}
		log.Info(log.WithField(ctx, "email", admin.Email), "admin account ready")
	}
	if createAdmin {
		return nil
	}

	// Redis is optional; without it stats are computed on every request
	// and the email history lives in memory.
	cacheClient, err := cache.Open(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn(ctx, "redis unavailable, caching disabled: "+err.Error())
		cacheClient = nil
	}
	defer cacheClient.Close()

	var history email.HistoryStore
	if rdb := cacheClient.Redis(); rdb != nil {
		history = email.NewRedisHistory(rdb, cfg.Email.HistoryLimit)
	} else {
		history = email.NewMemoryHistory(int(cfg.Email.HistoryLimit))
	}

	optional := map[string]health.Pinger{"redis": nil, "storage": nil}
	if cacheClient != nil {
		optional["redis"] = cacheClient
	}

	var docs services.DocumentStore
	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.Options{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		docs = store
		optional["storage"] = store
	} else {
		log.Warn(ctx, "storage.bucket not set, FISPQ uploads disabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Services
	materialService := services.NewMaterialService(materialRepo, docs, cacheClient, log.Component("materials"))
	materialService.Metrics = appMetrics
	materialService.MaxUploadBytes = cfg.Storage.MaxUploadMB << 20
	equipmentService := services.NewEquipmentService(equipmentRepo)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, equipmentRepo)
	supplierService := services.NewSupplierService(
		email.NewSimulatedProvider(cfg.Email.BlockedHosts, log),
		history,
	)

	// Stock alert monitor
	hub := monitoring.NewHub(cfg.Server.CorsAllowedOrigins, log)
	monitor := monitoring.NewStockMonitor(materialService, cfg.Alerts.Interval, hub, appMetrics, log)
	materialService.Notifier = monitor

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Alerts.Enabled {
		go monitor.Run(runCtx)
	}

	router := h.NewRouter(cfg, log, appMetrics, registry,
		handlers.NewAuthHandler(authService, log),
		handlers.NewMaterialHandler(materialService, log),
		handlers.NewEquipmentHandler(equipmentService, log),
		handlers.NewMaintenanceHandler(maintenanceService, log),
		handlers.NewSupplierHandler(supplierService, log),
		handlers.NewAlertHandler(materialService, monitor, hub, log),
		handlers.NewHealthHandler(health.NewHealthChecker(pool, version, optional)),
		middleware.NewAuthMiddleware(jwtManager, userRepo, cfg.Auth.Required),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithFields(ctx, map[string]any{"addr": srv.Addr, "version": version}), "server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
