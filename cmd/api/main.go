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

	"github.com/joho/godotenv"

	httpadapter "github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/adapters/http"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/bootstrap"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/config"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/observability/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}

	cfg, cfgErr := config.Load()
	slog.SetDefault(logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel))
	if cfgErr != nil {
		slog.Warn("config_file_ignored", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.AnalyticsUC, app.ChatUC, app.AssistUC, app.Metrics).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Duration(cfg.LLMTimeoutSecs)*time.Second + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "addr", server.Addr, "llm_provider", cfg.LLMProvider, "semantic_search", cfg.EmbeddingEnabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
