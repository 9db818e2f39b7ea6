package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/inheritance/internal/adapter/handler"
	"github.com/rl1809/inheritance/internal/adapter/handler/rpc"
	"github.com/rl1809/inheritance/internal/adapter/storage"
	"github.com/rl1809/inheritance/internal/config"
	"github.com/rl1809/inheritance/internal/core/service"
	"github.com/rl1809/inheritance/internal/logging"
	"github.com/rl1809/inheritance/internal/metrics"
	"github.com/rl1809/inheritance/internal/port"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	var (
		configPath string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC ledger API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, debug, cfg.Log.Path)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return serve(cmd.Context(), cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flags.String("http", ":8080", "HTTP listen address")
	flags.String("grpc", ":50051", "gRPC listen address")
	flags.String("store", config.StoreMemory, "ledger store: memory, bolt or mysql")
	flags.String("redis", "", "redis address, empty for the in-process cache")
	_ = v.BindPFlag("http.address", flags.Lookup("http"))
	_ = v.BindPFlag("grpc.address", flags.Lookup("grpc"))
	_ = v.BindPFlag("store.type", flags.Lookup("store"))
	_ = v.BindPFlag("redis.address", flags.Lookup("redis"))
	return cmd
}

// resources are closed in reverse order on shutdown.
type resources struct {
	closers []func() error
}

func (r *resources) add(fn func() error) {
	r.closers = append(r.closers, fn)
}

func (r *resources) close(log *zap.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Warn("close resource", zap.Error(err))
		}
	}
}

func serve(parent context.Context, cfg config.Config, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var res resources
	defer res.close(log)

	repo, err := openStore(ctx, cfg, log, &res)
	if err != nil {
		return err
	}
	cache, publisher, err := openCache(ctx, cfg, log, &res)
	if err != nil {
		return err
	}

	// Initialize service
	ledgerService := service.NewLedgerService(repo, cache, clock.New(), log, cfg.Events.QueueSize)
	ledgerService.StartWorkers(cfg.Events.Workers, publisher)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	rpc.RegisterLedgerServiceServer(grpcServer, handler.NewGRPCHandler(ledgerService, log))

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	go func() {
		log.Info("gRPC server listening", zap.String("address", cfg.GRPC.Address))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(ledgerService, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           cors.Default().Handler(httpHandler.Router()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	metricsService := metrics.NewService(cfg.Metrics.Address, cfg.Metrics.Enabled, log)
	go metricsService.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	metricsService.ShutDown(shutdownCtx)

	// Drain queued events and wait for workers
	ledgerService.Close()
	log.Info("workers stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger, res *resources) (port.LedgerRepository, error) {
	switch cfg.Store.Type {
	case config.StoreBolt:
		b, err := storage.NewBoltAdapter(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		res.add(b.Close)
		log.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return b, nil

	case config.StoreMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		res.add(db.Close)
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		log.Info("connected to mysql")

		m := storage.NewMySQLAdapter(db)
		if err := m.Migrate(ctx); err != nil {
			return nil, err
		}
		return m, nil

	default:
		log.Info("using in-memory store")
		return storage.NewMemoryAdapter(), nil
	}
}

func openCache(ctx context.Context, cfg config.Config, log *zap.Logger, res *resources) (port.CacheRepository, port.EventPublisher, error) {
	if cfg.Redis.Address == "" {
		c := storage.NewLocalCache(cfg.Redis.CacheTTL)
		log.Info("using in-process cache")
		return c, c, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		PoolSize: cfg.Redis.PoolSize,
	})
	res.add(rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	log.Info("connected to redis", zap.String("address", cfg.Redis.Address))

	r := storage.NewRedisAdapter(rdb, cfg.Redis.CacheTTL)
	return r, r, nil
}
