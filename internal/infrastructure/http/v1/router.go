// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinicore/internal/core/sequence"
	"clinicore/internal/core/tenant"
	"clinicore/internal/domain/maintenance"
	"clinicore/internal/domain/records"
	"clinicore/internal/domain/registry"
	"clinicore/internal/infrastructure/http/v1/handlers"
	"clinicore/internal/infrastructure/http/v1/middleware"
	"clinicore/internal/infrastructure/storage/postgres"
	"clinicore/pkg/logger"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Pool      *pgxpool.Pool
	TxManager *postgres.TxManager
	Registry  tenant.Registry
	Logger    *logger.Logger
	JWTSecret []byte
	Version   string

	Records     *registry.Service
	Patients    records.PatientRepo
	Allocator   sequence.Allocator
	Cascade     *maintenance.CascadeEngine
	Resequencer *maintenance.ResequenceEngine
	Journal     *postgres.JournalService
}

// NewRouter builds the Gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")

	// Admin routes run outside tenant scope.
	tenantsHandler := handlers.NewTenantsHandler(cfg.Registry)
	admin := api.Group("/admin")
	{
		admin.POST("/tenants", tenantsHandler.Create)
		admin.GET("/tenants", tenantsHandler.List)
		admin.GET("/tenants/:id", tenantsHandler.Get)
		admin.PUT("/tenants/:id/status", tenantsHandler.UpdateStatus)
		admin.PUT("/tenants/:id/settings", tenantsHandler.UpdateSettings)
	}

	scoped := api.Group("")
	scoped.Use(middleware.TenantScope(middleware.TenantConfig{
		Registry:  cfg.Registry,
		Pool:      cfg.Pool,
		TxManager: cfg.TxManager,
		JWTSecret: cfg.JWTSecret,
	}))

	recordsHandler := handlers.NewRecordsHandler(cfg.Records, cfg.Patients)
	{
		scoped.POST("/patients", recordsHandler.CreatePatient)
		scoped.GET("/patients/:id", recordsHandler.GetPatient)
		scoped.POST("/visits", recordsHandler.CreateVisit)
		scoped.POST("/lab-orders", recordsHandler.CreateLabOrder)
		scoped.POST("/bills", recordsHandler.CreateBill)
		scoped.POST("/payments", recordsHandler.CreatePayment)
		scoped.POST("/admissions", recordsHandler.CreateAdmission)
	}

	sequenceHandler := handlers.NewSequenceHandler(cfg.Allocator)
	{
		scoped.GET("/sequences/:kind/next", sequenceHandler.Peek)
		scoped.PUT("/sequences/:kind", sequenceHandler.Reset)
	}

	maintenanceHandler := handlers.NewMaintenanceHandler(cfg.Cascade, cfg.Resequencer, cfg.Journal)
	mnt := scoped.Group("/maintenance")
	{
		mnt.POST("/purge", maintenanceHandler.Purge)
		mnt.POST("/thin", maintenanceHandler.Thin)
		mnt.POST("/resequence", maintenanceHandler.Resequence)
		mnt.GET("/journal", maintenanceHandler.Journal)
	}

	return router
}
