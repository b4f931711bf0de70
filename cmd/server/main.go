// Package main initializes and starts the CyberChat backend proxy, setting up
// configuration, logging, the optional database, services, handlers and TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/cyberchat/internal/config"
	"github.com/atinyakov/cyberchat/internal/db"
	"github.com/atinyakov/cyberchat/internal/llm"
	"github.com/atinyakov/cyberchat/internal/logger"
	"github.com/atinyakov/cyberchat/internal/middleware"
	"github.com/atinyakov/cyberchat/internal/repository"
	"github.com/atinyakov/cyberchat/internal/server/handler/http"
	"github.com/atinyakov/cyberchat/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cleanInterval is how often expired status checks are removed.
const cleanInterval = time.Hour

func main() {
	// Parse command-line, environment and file configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Upstream provider gateway.
	gateway := llm.NewRouter(&nethttp.Client{}, llm.Endpoints{
		OpenAI:    options.OpenAIURL,
		Anthropic: options.AnthropicURL,
		Google:    options.GoogleURL,
	}, options.RequestTimeout, zapLogger)

	keyHandler := &http.KeyHandler{KeyService: service.NewKeyService(gateway)}
	chatHandler := &http.ChatHandler{ChatService: service.NewChatService(gateway)}

	// Status checks need PostgreSQL and are skipped without a DSN.
	var statusHandler *http.StatusHandler
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()

		db.StartStatusCleaner(ctx, postgresDB, cleanInterval, options.StatusRetention, zapLogger)

		statusRepo := repository.NewPostgresStatusRepository(postgresDB)
		statusHandler = &http.StatusHandler{StatusService: service.NewStatusService(statusRepo), Log: zapLogger}
	} else {
		zapLogger.Info("no database configured, status checks disabled")
	}

	limiter := middleware.NewRateLimiter(options.RateLimit, options.RateBurst)
	router := http.NewRouter(keyHandler, chatHandler, statusHandler, limiter, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" && options.TLSKey != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
