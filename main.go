package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/config"
	"github.com/disparu-project/disparu-engine/pkg/database"
	"github.com/disparu-project/disparu-engine/pkg/handlers"
	"github.com/disparu-project/disparu-engine/pkg/logging"
	"github.com/disparu-project/disparu-engine/pkg/middleware"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
	"github.com/disparu-project/disparu-engine/pkg/resolver"
	"github.com/disparu-project/disparu-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("database_host", cfg.Database.Host),
		zap.String("redis_host", cfg.Redis.Host))

	ctx := context.Background()

	// Migrations run over database/sql; the pool below uses native pgx.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection",
			zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(migrationDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	galaxyRepo := repositories.NewGalaxyRepository(db)
	subtractionRepo := repositories.NewSubtractionRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	sourceRepo := repositories.NewSourceRepository(db)

	sesame := resolver.NewSesame(cfg.Resolver.BaseURL, cfg.Resolver.Timeout(), logger)
	res := resolver.NewCached(sesame, redisClient, logger)

	catalogService := services.NewCatalogService(
		galaxyRepo, subtractionRepo, candidateRepo, sourceRepo,
		res, cfg.Catalog.PageSize, cfg.Catalog.MatchRadiusArcsec, logger)
	promotionService := services.NewPromotionService(
		candidateRepo, sourceRepo, galaxyRepo,
		cfg.Catalog.MatchRadiusArcsec, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalogService, logger).RegisterRoutes(mux)
	handlers.NewPromotionHandler(promotionService, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting disparu-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
