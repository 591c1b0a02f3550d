package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/CB5Capital/research-terminal-backend/internal/agent"
	"github.com/CB5Capital/research-terminal-backend/internal/api"
	"github.com/CB5Capital/research-terminal-backend/internal/config"
	"github.com/CB5Capital/research-terminal-backend/internal/conversation"
	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
	"github.com/CB5Capital/research-terminal-backend/internal/openai"
	"github.com/CB5Capital/research-terminal-backend/internal/scrape"
)

func main() {
	slog.Info("Starting research-terminal-svc")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading it", "error", err)
	}

	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("Failed to process config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts := &slog.HandlerOptions{Level: level}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
		slog.SetDefault(logger)
	}

	slog.Info("Starting Research Terminal Service",
		"environment", cfg.Environment,
		"host", cfg.APIHost,
		"port", cfg.ListenPort(),
		"openai_model", cfg.OpenAIModel,
	)

	lib := library.New(cfg.DataDir, logger)
	store := dashboard.NewStore(cfg.DataDir)
	scraper := scrape.New(logger)
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)

	memory := conversation.NewStore(50, time.Hour)
	defer memory.Close()

	optimizer := agent.NewOptimizer(llm, store, logger)
	generator := agent.NewGenerator(llm, store, lib, optimizer, logger)
	composer := agent.NewComposer(llm, store, lib, logger)
	chat := agent.NewChat(llm, lib, memory, logger)

	handler := api.NewHandler(lib, store, scraper, generator, composer, chat, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.APIHost, cfg.ListenPort()),
		Handler: api.WithCORS(mux, cfg.AllowedOrigins()),
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	slog.Info("Received signal, shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	slog.Info("Service shutdown complete")
}
