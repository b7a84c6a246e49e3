package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/config"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/events"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.GetDefaultLogger().Fatal("Failed to read .env file", map[string]interface{}{"error": err.Error()})
	}

	cfg := config.Load()
	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting finance tracker", map[string]interface{}{
		"port":    cfg.Port,
		"backend": cfg.DataBackend,
		"events":  cfg.EventsEnabled(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open transaction store", map[string]interface{}{
			"backend": cfg.DataBackend,
			"error":   err.Error(),
		})
	}
	defer store.Close()

	publisher := events.Connect(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, log)
	defer publisher.Close()

	// Initialize services
	queryService := service.NewQueryService(store.repo, log)
	writeService := service.NewWriteService(store.repo, log, service.WithPublisher(publisher))
	summaryService := service.NewSummaryService(queryService, log)

	// Initialize handlers
	router := handler.NewRouter(log,
		handler.NewTransactionHandler(queryService, writeService, log),
		handler.NewSummaryHandler(summaryService, log),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server", map[string]interface{}{
			"timeout": cfg.ShutdownTimeout.String(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", map[string]interface{}{"error": err.Error()})
		publisher.Close()
		store.Close()
		os.Exit(1)
	}

	log.Info("Server stopped gracefully", nil)
}
