package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/adapter/secondary/database"
	"github.com/cashflow/invader-payment/internal/adapter/secondary/messaging"
	"github.com/cashflow/invader-payment/internal/config"
	"github.com/cashflow/invader-payment/internal/constant/model/db"
	"github.com/cashflow/invader-payment/internal/core/service"
	"github.com/cashflow/invader-payment/internal/logger"
	"github.com/cashflow/invader-payment/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New("invader-payment-worker", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	err = run(cfg, logg)
	if err != nil {
		logg.Error("Worker stopped", zap.Error(err))
	}
	logg.Sync()
	if err != nil {
		log.Fatalf("Worker stopped: %v", err)
	}
}

// run returns when the worker is interrupted or the consumer dies
func run(cfg *config.Config, logg *zap.Logger) error {
	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize core service: transaction event recorder
	recorder := service.NewTransactionEventRecorder(
		database.NewGormTransactionEventRepository(dbConn.DB),
		m,
		logg,
	)

	// Initialize secondary adapter: Messaging (concrete type for worker)
	msgClient, err := messaging.NewRabbitMQClientConcrete(cfg.RabbitMQURL, m, logg)
	if err != nil {
		return err
	}
	defer msgClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerErrs, err := msgClient.ConsumeTransactionEvents(ctx, recorder.Record)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logg.Info("Transaction event worker started. Press CTRL+C to exit.")

	select {
	case <-ctx.Done():
		logg.Info("Shutting down worker...")
		return nil
	case err := <-consumerErrs:
		return err
	}
}
