package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dental-shop/config"
	"dental-shop/internal/api"
	"dental-shop/internal/broker"
	"dental-shop/internal/redisclient"
	"dental-shop/internal/service"
	"dental-shop/internal/store"
	"dental-shop/internal/util"
	"dental-shop/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting dental-shop admin service")

	tp, err := util.InitTracer("dental-shop", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	reportService := service.NewReportService(db, redisClient, service.ReportOptions{
		CacheTTL:        cfg.Reports.CacheTTL,
		RefreshInterval: cfg.Reports.SalesRefresh,
		DayCap:          cfg.Reports.DailyBucketCap,
	})
	alertService := service.NewAlertService(db, db, service.AlertConfig{
		LowStockThreshold:     cfg.Alerts.LowStockThreshold,
		ExpiryWarningDays:     cfg.Alerts.ExpiryWarningDays,
		PendingOrderThreshold: cfg.Business.PendingOrderAlertThreshold,
	})
	catalogService := service.NewCatalogService(db, cfg.Alerts.LowStockThreshold, cfg.Business.CatalogMaxLimit)
	orderService := service.NewOrderService(db, db, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	eventConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	eventWorker := worker.NewEventWorker(eventConsumer, redisClient, cfg.Alerts.LowStockThreshold)
	go func() {
		if err := eventWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Event worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(reportService, alertService, catalogService, orderService)
	handler.AddReadinessCheck("database", db.Ping)
	handler.AddReadinessCheck("redis", redisClient.Ping)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	eventWorker.Stop()

	log.Println("Server exited")
}
