package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"clinicore/internal/core/tenant"
	"clinicore/internal/domain/maintenance"
	"clinicore/internal/domain/registry"
	v1 "clinicore/internal/infrastructure/http/v1"
	infraseq "clinicore/internal/infrastructure/sequence"
	"clinicore/internal/infrastructure/storage/postgres"
	"clinicore/internal/infrastructure/storage/postgres/record_repo"
	"clinicore/pkg/logger"
)

var version = "dev"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "production") == "development",
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatalw("server exited", "error", err)
	}
}

func run(log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := mustEnv("DATABASE_URL", log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Infow("database connected")

	txManager := postgres.NewTxManager(pool)
	maintenanceTx := postgres.NewMaintenanceTxManager(txManager)

	tenantRegistry := tenant.NewCachedRegistry(
		tenant.NewPostgresRegistry(pool.Unwrap()),
		getEnvDuration("TENANT_CACHE_TTL", 30*time.Second),
	)

	allocator := infraseq.NewFromContext()

	patients := record_repo.NewPatientRepo()
	visits := record_repo.NewVisitRepo()
	labs := record_repo.NewLabOrderRepo()
	bills := record_repo.NewBillRepo()
	payments := record_repo.NewPaymentRepo()
	admissions := record_repo.NewAdmissionRepo()
	identifiers := record_repo.NewIdentifierStore()

	journal, err := postgres.NewJournalService(txManager)
	if err != nil {
		return err
	}

	recordsService := registry.NewService(
		allocator,
		patients, visits, labs, bills, payments, admissions,
		txManager,
		log.WithComponent("registry"),
	)

	cascade := maintenance.NewCascadeEngine(
		patients, visits, bills, payments, admissions,
		journal,
		maintenanceTx,
		log.WithComponent("cascade"),
	)
	resequencer := maintenance.NewResequenceEngine(
		identifiers,
		allocator,
		journal,
		maintenanceTx,
		log.WithComponent("resequence"),
	)

	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool.Unwrap(),
		TxManager: txManager,
		Registry:  tenantRegistry,
		Logger:    log.WithComponent("http"),
		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		Version:   version,

		Records:     recordsService,
		Patients:    patients,
		Allocator:   allocator,
		Cascade:     cascade,
		Resequencer: resequencer,
		Journal:     journal,
	})

	srv := &http.Server{
		Addr:              getEnv("HTTP_ADDR", ":8080"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func mustEnv(key string, log *logger.Logger) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalw("required environment variable is not set", "key", key)
	}
	return v
}
