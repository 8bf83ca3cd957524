package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/adapter/handler"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/adapter/messaging"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/adapter/storage"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/config"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/service"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/platform/observability"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

const publishTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel)
	if err != nil {
		return err
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping mysql: %w", err)
	}
	logger.Info("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		return err
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	logger.Info("connected to redis")
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.Redis.CacheTTL)

	var publisher port.EventPublisher
	if cfg.Kafka.Broker != "" {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		logger.Info("publishing product events to kafka",
			zap.String("broker", cfg.Kafka.Broker),
			zap.String("topic", cfg.Kafka.Topic),
		)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Initialize services
	rules := domain.NewDomainService()
	commandService, err := service.NewProductCommandService(mysqlAdapter, redisAdapter, rules, cfg.Workers.QueueSize, logger)
	if err != nil {
		return err
	}
	queryService, err := service.NewProductQueryService(mysqlAdapter, redisAdapter, rules, logger)
	if err != nil {
		return err
	}

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers.Count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, commandService.Events(), publisher, logger)
		}(i)
	}
	logger.Info("started workers", zap.Int("count", cfg.Workers.Count))

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCatalogServer(grpcServer, handler.NewGRPCHandler(commandService, queryService, logger))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(commandService, queryService, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(httpHandler.Routes(), "catalog-http"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Late writes after a failed HTTP shutdown only drop their events
	// once the queue is closed.
	commandService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	if err := publisher.Close(); err != nil {
		logger.Warn("event publisher close", zap.Error(err))
	}
	rdb.Close()
	db.Close()
	logger.Info("connections closed")

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	return nil
}

func workerLoop(id int, events <-chan domain.ProductEvent, publisher port.EventPublisher, logger *zap.Logger) {
	for event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to publish product event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.String("product_id", event.ProductID),
				zap.Error(err),
			)
		} else {
			logger.Debug("published product event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
			)
		}

		cancel()
	}
}
