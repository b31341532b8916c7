package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"opennotebook/internal/auth"
	"opennotebook/internal/config"
	"opennotebook/internal/domain/repositories"
	"opennotebook/internal/handler"
	"opennotebook/internal/middleware"
	"opennotebook/internal/observability"
	"opennotebook/internal/repository/postgres"
	"opennotebook/internal/repository/surreal"
	"opennotebook/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"auth_type", cfg.AuthType(),
	)

	// Identity provider wiring. Verifier and login client are both nil
	// when the provider is not configured; the chain and handlers accept
	// that and run on the shared secret alone.
	var verifier auth.TokenVerifier
	var loginClient *auth.Client
	if cfg.ProviderConfigured() {
		switch cfg.SupabaseVerifyMode {
		case config.VerifyJWKS:
			v, err := auth.NewJWKSVerifier(cfg.SupabaseJWKSURL, logger)
			if err != nil {
				logger.Error("failed to initialize JWKS verifier, provider auth disabled", "error", err)
			} else {
				verifier = v
			}
		default:
			verifier = auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
		}
		loginClient = auth.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	}
	if verifier != nil {
		defer verifier.Close()
		logger.Info("supabase authentication enabled", "verify_mode", cfg.SupabaseVerifyMode)
	}

	// Build the authentication chain: provider first, shared secret as
	// the emergency/back-compat fallback. Strict priority order.
	var strategies []auth.Strategy
	if verifier != nil {
		strategies = append(strategies, auth.NewProviderStrategy(verifier, logger))
	}
	if cfg.Password != "" {
		strategies = append(strategies, auth.NewSharedSecretStrategy(cfg.Password))
	}
	chain := auth.NewChain(strategies...)

	if cfg.LegacyPasswordAuth && cfg.Password == "" {
		logger.Warn("No authentication configured. API will be publicly accessible.")
	}
	if !cfg.LegacyPasswordAuth && chain.Empty() {
		logger.Warn("No authentication configured. All requests to protected routes will be rejected.")
	}

	// Storage
	ctx := context.Background()
	var notebookRepo repositories.NotebookRepository
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.PostgresDBURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		notebookRepo = postgres.NewNotebookRepository(pool)
	case config.StorageSurreal:
		db, err := surreal.Connect(ctx, cfg.SurrealURL, cfg.SurrealNamespace, cfg.SurrealDatabase, cfg.SurrealUser, cfg.SurrealPass)
		if err != nil {
			log.Fatalf("Failed to connect to SurrealDB: %v", err)
		}
		defer db.Close(ctx)
		notebookRepo = surreal.NewNotebookRepository(db)
	default:
		log.Fatalf("Unknown storage backend: %s", cfg.StorageBackend)
	}

	logger.Info("storage connected", "backend", cfg.StorageBackend)

	// Services and handlers
	notebookService := service.NewNotebookService(notebookRepo, logger)
	notebookHandler := handler.NewNotebookHandler(notebookService, logger)
	authHandler := handler.NewAuthHandler(cfg, loginClient, logger)

	// Routes (Go 1.22+ method patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Open Notebook API"}`))
	})
	mux.HandleFunc("GET /health", notebookHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth routes (both exempt so clients can bootstrap a session)
	mux.HandleFunc("GET /auth/status", authHandler.Status)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Notebook routes
	mux.HandleFunc("GET /api/notebooks", notebookHandler.List)
	mux.HandleFunc("POST /api/notebooks", notebookHandler.Create)
	mux.HandleFunc("GET /api/notebooks/{id}", notebookHandler.Get)
	mux.HandleFunc("PUT /api/notebooks/{id}", notebookHandler.Update)
	mux.HandleFunc("DELETE /api/notebooks/{id}", notebookHandler.Delete)
	mux.HandleFunc("GET /api/notebooks/{id}/sources", notebookHandler.ListSources)
	mux.HandleFunc("GET /api/notebooks/{id}/notes", notebookHandler.ListNotes)
	mux.HandleFunc("POST /api/notebooks/{id}/sources/{sourceID}", notebookHandler.LinkSource)
	mux.HandleFunc("DELETE /api/notebooks/{id}/sources/{sourceID}", notebookHandler.UnlinkSource)

	logger.Info("services initialized")

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → Recovery → Metrics → Auth → Routes
	var h http.Handler = mux

	if cfg.LegacyPasswordAuth {
		h = middleware.PasswordAuth(cfg.Password, cfg.ExemptPaths)(h)
	} else {
		h = middleware.Auth(chain, cfg.ExemptPaths, logger)(h)
	}
	h = observability.Middleware(h)
	h = middleware.Recovery(logger)(h)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Team-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
