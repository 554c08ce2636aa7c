package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/config"
	"github.com/cinecat/cinecat-engine/pkg/database"
	"github.com/cinecat/cinecat-engine/pkg/entities"
	"github.com/cinecat/cinecat-engine/pkg/handlers"
	"github.com/cinecat/cinecat-engine/pkg/llm"
	"github.com/cinecat/cinecat-engine/pkg/logging"
	"github.com/cinecat/cinecat-engine/pkg/middleware"
	"github.com/cinecat/cinecat-engine/pkg/repositories"
	"github.com/cinecat/cinecat-engine/pkg/services"
	"github.com/cinecat/cinecat-engine/pkg/vector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("version_key", cfg.VersionKey),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("vector_store", cfg.Vector.BaseURL))

	ctx := context.Background()

	// Migrations run over database/sql; the pgx pool serves requests.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	catalog, err := entities.Load()
	if err != nil {
		logger.Fatal("failed to load entity catalog", zap.Error(err))
	}

	store := vector.NewChromaStore(cfg.Vector.BaseURL,
		time.Duration(cfg.Vector.TimeoutSeconds)*time.Second, logger)

	factory := llm.NewFactory(&cfg.LLM, logger)
	translator := llm.NewTranslator(factory,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, logger)

	cacheRepo := repositories.NewCacheRepository(db)
	refRepo := repositories.NewReferenceRepository(db)

	resolver := services.NewCacheResolver(cacheRepo, store, translator,
		cfg.VersionKey, cfg.Vector.QuestionsCollection,
		cfg.Cache.NeighborCount, cfg.Cache.SimilarityThreshold, logger)
	substituter := services.NewSubstituter(refRepo, store, catalog,
		cfg.Cache.NeighborCount, logger)
	executor := services.NewQueryExecutor(db, logger)
	searchService := services.NewSearchService(cfg, db, resolver, translator,
		substituter, executor, cacheRepo, store, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(searchService, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(
		middleware.APIKeyAuth(cfg.APIKey, "/health", "/ping")(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting cinecat-engine", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
