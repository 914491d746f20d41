package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/rigbuilders/settlement-svc/internal/catalog"
	"github.com/rigbuilders/settlement-svc/internal/coupon"
	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	"github.com/rigbuilders/settlement-svc/internal/dal/rabbitmq"
	redisdal "github.com/rigbuilders/settlement-svc/internal/dal/redis"
	counterrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/counter/postgres"
	outboxrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/outbox/postgres"
	"github.com/rigbuilders/settlement-svc/internal/explosion"
	"github.com/rigbuilders/settlement-svc/internal/otel"
	"github.com/rigbuilders/settlement-svc/internal/sequence"
	"github.com/rigbuilders/settlement-svc/internal/service/services/settlementsvc"
	"github.com/rigbuilders/settlement-svc/internal/signature"
	httptransport "github.com/rigbuilders/settlement-svc/internal/transport/http"
	outboxworker "github.com/rigbuilders/settlement-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	settlementSvc  *settlementsvc.SettlementService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	redisClient    *goredis.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	redisClient := redisdal.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	verifier := signature.NewVerifier(os.Getenv("PAYMENT_WEBHOOK_SECRET"))
	allocator := sequence.NewAllocator(counterrepo.NewCounterRepository(postgresClient.Pool()))

	catalogClient := catalog.NewHTTPClient(
		viper.GetString("catalog.base_url"),
		viper.GetDuration("catalog.timeout"),
	)
	engine := explosion.NewEngine(
		catalogClient,
		explosion.WithLookupTimeout(viper.GetDuration("catalog.timeout")),
	)

	couponValidator := coupon.NewHTTPValidator(
		viper.GetString("coupons.base_url"),
		viper.GetDuration("coupons.timeout"),
	)

	settlementSvc := settlementsvc.MustNewSettlementService(
		settlementsvc.WithPostgresClient(postgresClient),
		settlementsvc.WithRedisClient(redisClient),
		settlementsvc.WithVerifier(verifier),
		settlementsvc.WithAllocator(allocator),
		settlementsvc.WithExplosionEngine(engine),
	)

	transport := httptransport.NewHTTPTransport(settlementSvc, couponValidator)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		settlementSvc:  settlementSvc,
		transport:      transport,
		outboxWorker:   worker,
		postgresClient: postgresClient,
		redisClient:    redisClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ close error", "error", err)
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
