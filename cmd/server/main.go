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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/arueda/gestion/internal/auth"
	"github.com/arueda/gestion/internal/config"
	"github.com/arueda/gestion/internal/events"
	"github.com/arueda/gestion/internal/httpapi"
	"github.com/arueda/gestion/internal/service"
	"github.com/arueda/gestion/internal/storage/sqlite"
	"github.com/arueda/gestion/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		slog.Info("Event publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	authenticator := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	handler := httpapi.NewServer(
		authenticator,
		tokens,
		service.NewPlanService(store, store),
		service.NewLedgerService(store, publisher),
		service.NewSettlementService(store, store, publisher),
		service.NewLeaveService(store, publisher),
	)

	// h2c allows HTTP/2 without TLS so streaming works behind plain proxies.
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
