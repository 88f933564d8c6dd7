package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/counterdesk/counterdesk/internal/catalog"
	"github.com/counterdesk/counterdesk/internal/config"
	"github.com/counterdesk/counterdesk/internal/dashboard"
	"github.com/counterdesk/counterdesk/internal/gateway"
	"github.com/counterdesk/counterdesk/internal/health"
	"github.com/counterdesk/counterdesk/internal/metrics"
	"github.com/counterdesk/counterdesk/internal/sales"
	"github.com/counterdesk/counterdesk/internal/session"
	"github.com/counterdesk/counterdesk/internal/telemetry"
	"github.com/counterdesk/counterdesk/internal/web"
	"github.com/redis/go-redis/v9"
)

const sessionKey = "counterdesk:session:token"

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	// Session store setup
	store, err := newSessionStore(cfg)
	if err != nil {
		slog.Error("❌ Error setting up session store", "error", err.Error())
		os.Exit(1)
	}

	gw := gateway.New(store, cfg.InventoryAPI.BaseURL, cfg.InventoryAPI.Timeout)
	catalogClient := catalog.NewClient(gw)
	salesClient := sales.NewClient(gw)
	submitter := sales.NewSubmitter(gw)
	summary := dashboard.NewService(catalogClient, salesClient)

	webServer := web.NewServer(gw, catalogClient, salesClient, submitter, summary, store)
	defer webServer.Close()

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("clients initialized",
		slog.String("env", cfg.Env),
		slog.String("api_base_url", cfg.InventoryAPI.BaseURL),
		slog.String("session_backend", cfg.Session.Backend))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.Handle("/", webServer.Routes())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = web.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr(),
			Username: cfg.Session.Redis.Username,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})

		return session.NewRedisStore(client, sessionKey, cfg.Session.Redis.TTL), nil
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return session.NewFileStore(cfg.Session.FilePath)
	}
}
