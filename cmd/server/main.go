package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/aura-backend/internal/config"
	"github.com/AnshRaj112/aura-backend/internal/controller"
	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/handlers"
	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/repository/mongostore"
	"github.com/AnshRaj112/aura-backend/internal/repository/sqlstore"
	"github.com/AnshRaj112/aura-backend/internal/routes"
	"github.com/AnshRaj112/aura-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	lg := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("connecting to Redis")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		lg.Fatal("failed to connect to Redis", "error", err)
	}
	defer rdb.Close()

	entries, users, closeStores := openStores(ctx, cfg, lg)
	defer closeStores()

	var gen services.Generator
	if cfg.Gemini.APIKey != "" {
		g, err := services.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			lg.Fatal("failed to create Gemini client", "error", err)
		}
		gen = g
		lg.Info("AI analysis enabled", "model", cfg.Gemini.Model)
	} else {
		lg.Warn("GEMINI_API_KEY not set, analysis will return the fallback")
	}

	sessions := services.NewRedisSessionStore(rdb)
	auth := services.NewAuthService(users, sessions, lg)
	analyzer := services.NewAnalysisService(gen, services.NewCacheService(rdb), lg, cfg.AnalysisTimeout)

	registry := controller.NewRegistry(controller.RegistryOptions{
		Options: controller.Options{
			Entries:         entries,
			Analyzer:        analyzer,
			Log:             lg,
			StoreTimeout:    cfg.StoreTimeout,
			AnalysisTimeout: cfg.AnalysisTimeout,
		},
		NewIdentity: func(token string) models.Identity {
			return auth.Bind(token)
		},
		IdleTTL: cfg.ClientIdleTTL,
	})
	go registry.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(lg))
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: routes.Methods(),
	}))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		lg.Info("production security enabled")
	} else {
		r.Use(middleware.RedisRateLimit(rdb, lg))
	}

	r.Get("/health", handlers.Health)

	h := handlers.New(registry, lg, handlers.Options{
		SecureCookies:  cfg.IsProduction(),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	routes.SetupRoutes(r, h, sessions)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("aura backend running", "port", cfg.Port, "backend", cfg.EntryBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", "error", err)
	}
}

// openStores connects the configured entry backend. Users always live in SQL:
// PostgreSQL next to a Mongo or Postgres entry store, SQLite otherwise.
func openStores(ctx context.Context, cfg *config.Config, lg *logger.Logger) (models.EntryStore, models.UserStore, func()) {
	migrate := func(db *sql.DB, dialect sqlstore.Dialect) *sqlstore.Store {
		store := sqlstore.New(db, dialect)
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := store.Migrate(mctx); err != nil {
			lg.Fatal("failed to migrate database", "error", err)
		}
		return store
	}

	switch cfg.EntryBackend {
	case config.BackendSQLite:
		lg.Info("opening SQLite", "path", cfg.SQLitePath)
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			lg.Fatal("failed to open SQLite", "error", err)
		}
		store := migrate(db, sqlstore.SQLite)
		return store, store, func() { db.Close() }

	case config.BackendPostgres:
		lg.Info("connecting to PostgreSQL")
		db, err := database.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			lg.Fatal("failed to connect to PostgreSQL", "error", err)
		}
		store := migrate(db, sqlstore.Postgres)
		return store, store, func() { db.Close() }

	default:
		lg.Info("connecting to PostgreSQL")
		pg, err := database.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			lg.Fatal("failed to connect to PostgreSQL", "error", err)
		}
		users := migrate(pg, sqlstore.Postgres)

		lg.Info("connecting to MongoDB")
		mdb, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			lg.Fatal("failed to connect to MongoDB", "error", err)
		}
		entries := mongostore.NewEntryStore(mdb)

		ictx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := entries.EnsureIndexes(ictx); err != nil {
			lg.Warn("failed to ensure MongoDB indexes", "error", err)
		}

		return entries, users, func() {
			if err := database.DisconnectMongo(mdb); err != nil {
				lg.Error("failed to disconnect MongoDB", "error", err)
			}
			pg.Close()
		}
	}
}
