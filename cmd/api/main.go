package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/adapter/primary/http"
	"github.com/cashflow/invader-payment/internal/adapter/secondary/cache"
	"github.com/cashflow/invader-payment/internal/adapter/secondary/database"
	"github.com/cashflow/invader-payment/internal/adapter/secondary/messaging"
	"github.com/cashflow/invader-payment/internal/adapter/secondary/stripe"
	"github.com/cashflow/invader-payment/internal/config"
	"github.com/cashflow/invader-payment/internal/constant/model/db"
	"github.com/cashflow/invader-payment/internal/core/service"
	"github.com/cashflow/invader-payment/internal/logger"
	"github.com/cashflow/invader-payment/internal/metrics"
	"github.com/cashflow/invader-payment/internal/port/output"
	"github.com/cashflow/invader-payment/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New("invader-payment-api", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	if err := cfg.RequireStripe(); err != nil {
		logg.Fatal("Invalid configuration", zap.Error(err))
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), "invader-payment-api", cfg.OTLPEndpoint)
	if err != nil {
		logg.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	// Initialize secondary adapters: Repositories and Messaging (implement output ports)
	transactions := database.NewGormTransactionRepository(dbConn.DB)
	orders := database.NewGormOrderRepository(dbConn.DB)
	paymentModes := database.NewGormPaymentModeRepository(dbConn.DB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	publisher, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL, m, logg)
	if err != nil {
		logg.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	var responseCache output.ResponseCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisResponseCache(context.Background(), cfg.RedisURL)
		if err != nil {
			logg.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		responseCache = redisCache
	} else {
		logg.Info("REDIS_URL not set, Idempotency-Key replay disabled")
	}

	// Initialize core services (implement input ports)
	payables := service.NewOrderPayableResolver(orders, paymentModes, transactions, logg)
	confirmation := service.NewPaymentConfirmationService(service.PaymentConfirmationDeps{
		Transactions: transactions,
		PaymentModes: paymentModes,
		Payables:     payables,
		Provider:     stripe.NewClient(cfg.StripeSecretKey, nil),
		Events:       publisher,
		Metrics:      m,
		Logger:       logg,
	})
	cartPayment := service.NewCartPaymentService(payables)

	// Initialize primary adapter: HTTP handlers (use input ports)
	e := http.NewRouter(
		http.NewPaymentHandler(confirmation, responseCache, cfg.IdempotencyTTL, logg),
		http.NewCartHandler(cartPayment),
		registry,
	)

	addr := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		logg.Info("Starting API server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logg.Error("Server forced to shutdown", zap.Error(err))
	}
}
