// Parlante - multi-speaker chat assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/svaldes/parlante/internal/api"
	"github.com/svaldes/parlante/internal/chat"
	"github.com/svaldes/parlante/internal/config"
	"github.com/svaldes/parlante/internal/llm"
	"github.com/svaldes/parlante/internal/llm/openai"
	"github.com/svaldes/parlante/internal/middleware"
	"github.com/svaldes/parlante/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize history store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close history store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("History store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("History store connected", "path", cfg.DBPath)

	prompts := llm.DefaultPrompts()
	if cfg.PromptsPath != "" {
		prompts, err = llm.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			slog.Error("Failed to load prompts", "path", cfg.PromptsPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Prompts loaded", "path", cfg.PromptsPath)
	}

	// A client-level timeout bounds classification and generation calls; a
	// call past this deadline surfaces as a per-turn failure, never a hang.
	provider, err := openai.New(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Prompts: prompts,
		Client:  &http.Client{Timeout: cfg.OpenAI.Timeout},
	})
	if err != nil {
		slog.Error("Failed to initialize generation provider", "error", err)
		os.Exit(1)
	}
	slog.Info("Generation provider ready", "model", cfg.OpenAI.Model)

	// Initialize the chat core and its front-end bindings.
	svc := chat.NewService(repo, provider, prompts)
	handler := api.NewHandler(svc)
	wsHandler := api.NewWebSocketHandler(svc, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.FrontendURL, cfg.IsDevelopment()))

	handler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Create server. Generation calls can run long, so the write timeout
	// stays well above the provider timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.OpenAI.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
