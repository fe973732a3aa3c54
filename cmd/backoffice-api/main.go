package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/cache"
	"github.com/iyhunko/storefront-backoffice/internal/config"
	httpAPI "github.com/iyhunko/storefront-backoffice/internal/http"
	"github.com/iyhunko/storefront-backoffice/internal/http/controller"
	"github.com/iyhunko/storefront-backoffice/internal/http/middleware"
	"github.com/iyhunko/storefront-backoffice/internal/logger"
	"github.com/iyhunko/storefront-backoffice/internal/metrics"
	"github.com/iyhunko/storefront-backoffice/internal/repository/sql"
	"github.com/iyhunko/storefront-backoffice/internal/service"
	sqspkg "github.com/iyhunko/storefront-backoffice/internal/sqs"
	"github.com/iyhunko/storefront-backoffice/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	gateway := sql.NewGateway(db)

	// Product cache is optional
	var productCache *cache.ProductCache
	if conf.Cache.Enabled() {
		redisClient, err := cache.NewClient(ctx, conf.Cache.Addr, conf.Cache.Password)
		if err != nil {
			slog.Warn("product cache disabled", slog.Any("err", err))
		} else {
			defer redisClient.Close()
			productCache = cache.NewProductCache(redisClient, conf.Cache.TTL)
		}
	}

	// Lifecycle events are written to the outbox and published to SQS
	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating SQS client", err)
	publisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
	outboxWorker := service.NewOutboxWorker(gateway.Events(), publisher, conf.Outbox.Interval, conf.Outbox.BatchSize)
	go outboxWorker.Start(ctx)

	s3Client, err := storage.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating S3 client", err)
	uploader := storage.NewUploader(s3Client, conf.AWS.S3Bucket, conf.AWS.Region, conf.AWS.S3PublicURL)

	guard := auth.NewGuard(auth.NewTokenVerifier(conf.Auth.JWTSecret, conf.Auth.JWTIssuer), gateway.UserProfiles())

	productService := service.NewProductService(gateway, productCache)
	orderService := service.NewOrderService(gateway, service.ShippingPolicy{
		Fee:                 conf.Checkout.ShippingFee,
		FreeShippingMinimum: conf.Checkout.FreeShippingMinimum,
	})
	setupService := service.NewSetupService(gateway, func() error { return sql.RunMigrations(db) }, productCache)

	router := httpAPI.InitRouter(conf, gin.New(), middleware.New(guard), httpAPI.Controllers{
		Health:   controller.New(db),
		Product:  controller.NewProductController(productService),
		Category: controller.NewCategoryController(service.NewCategoryService(gateway)),
		Order:    controller.NewOrderController(orderService),
		Account:  controller.NewAccountController(service.NewAccountService(gateway)),
		Admin: controller.NewAdminController(
			service.NewAuditService(gateway.AuditLogs()),
			service.NewCustomerService(gateway.UserProfiles()),
			setupService,
		),
		Storage: controller.NewStorageController(uploader),
	})

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	outboxWorker.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
