package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appControllers "github.com/yigit/degreeplan/internal/app/controllers"
	appMigrations "github.com/yigit/degreeplan/internal/app/migrations"
	appRepos "github.com/yigit/degreeplan/internal/app/repositories"
	appRoutes "github.com/yigit/degreeplan/internal/app/routes"
	appServices "github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/config"
	"github.com/yigit/degreeplan/internal/db"
	appMiddleware "github.com/yigit/degreeplan/internal/middleware"
	"github.com/yigit/degreeplan/internal/pkg/logger"
	"github.com/yigit/degreeplan/internal/pkg/satsolver"
	"github.com/yigit/degreeplan/internal/seed"
)

// DefaultConfigPath is used when no config path is given.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Source            appServices.CatalogSource
	Repos             *appRepos.Repositories // nil for the yaml catalog source
	PlannerService    *appServices.PlannerService
	CatalogService    *appServices.CatalogService
	PlanController    *appControllers.PlanController
	CatalogController *appControllers.CatalogController
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres, runs migrations and optionally seeds
// the catalog. It returns a nil pool when the catalog is served from YAML.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	if !cfg.UsesPostgres() {
		lgr.Info().Str("dataDir", cfg.Catalog.DataDir).Msg("Serving catalog from YAML, skipping database setup")
		return nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Catalog.Seed {
		if _, err := SeedCatalog(ctx, cfg, dbPool, lgr); err != nil {
			// the database may already hold a usable catalog
			lgr.Error().Err(err).Msg("Failed to seed catalog, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// SeedCatalog copies the YAML catalog under cfg.Catalog.DataDir into Postgres.
func SeedCatalog(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (seed.Stats, error) {
	static, err := appRepos.LoadCatalogDir(cfg.Catalog.DataDir, lgr)
	if err != nil {
		return seed.Stats{}, err
	}
	return seed.ImportCatalog(ctx, static, appRepos.NewRepositories(dbPool), lgr)
}

// BuildDependencies initializes the catalog source, services and controllers.
// dbPool may be nil, in which case the YAML catalog is loaded.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if dbPool != nil {
		deps.Repos = appRepos.NewRepositories(dbPool)
		deps.Source = deps.Repos
	} else {
		static, err := appRepos.LoadCatalogDir(cfg.Catalog.DataDir, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to load catalog")
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		deps.Source = static
	}

	deps.PlannerService = appServices.NewPlannerService(deps.Source, satsolver.New(lgr), cfg.Planner, lgr)
	deps.CatalogService = appServices.NewCatalogService(deps.Source)

	deps.PlanController = appControllers.NewPlanController(deps.PlannerService, appServices.SolveTimeout(cfg.Planner))
	deps.CatalogController = appControllers.NewCatalogController(deps.CatalogService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.PlanController, deps.CatalogController)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
