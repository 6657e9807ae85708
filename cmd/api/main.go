package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/YBushi/bar-ordering-app/internal/app"
	"github.com/YBushi/bar-ordering-app/internal/clock"
	"github.com/YBushi/bar-ordering-app/internal/config"
	"github.com/YBushi/bar-ordering-app/internal/domain"
	"github.com/YBushi/bar-ordering-app/internal/hub"
	"github.com/YBushi/bar-ordering-app/internal/storage/postgres"
	transporthttp "github.com/YBushi/bar-ordering-app/internal/transport/http"
	"github.com/YBushi/bar-ordering-app/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	bootstrap := zap.Must(zap.NewProduction())
	config.LoadEnvFile(bootstrap)

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Fatal("load config", zap.Error(err))
	}
	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	if err := catalogRepo.SeedItems(startupCtx, domain.DefaultCatalog()); err != nil {
		logger.Fatal("seed catalog", zap.Error(err))
	}

	notifications := hub.New(logger, hub.WithSendTimeout(cfg.WSSendTimeout))
	orderRepo := postgres.NewOrderRepository(pool)
	orderSvc := app.NewOrderService(orderRepo, catalogRepo, notifications, clock.NewSystem(), logger)

	corsOrigins := parseCSV(cfg.CORSOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/items", transporthttp.HandleListItems(catalogRepo, logger))
	mux.Handle("/orders", transporthttp.HandleOrders(orderSvc, logger))
	mux.Handle("/orders/", transporthttp.HandleCompleteOrder(orderSvc, logger))
	mux.Handle("/ws", transporthttp.HandleLiveUpdates(notifications, corsOrigins, logger))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runRetentionSweep(stopCtx, orderSvc, cfg.PurgeInterval, cfg.PurgeAge, logger)

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// runRetentionSweep periodically deletes completed orders older than the
// retention age. Pending orders are never touched.
func runRetentionSweep(ctx context.Context, svc *app.OrderService, interval, age time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := svc.PurgeCompleted(sweepCtx, age); err != nil {
				logger.Warn("retention sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return zap.Must(cfg.Build())
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
