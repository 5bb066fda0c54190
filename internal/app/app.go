// Package app собирает зависимости и управляет жизненным циклом сервиса.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/cart"
	healthcheck "github.com/vladislavdragonenkov/houseit/internal/health"
	"github.com/vladislavdragonenkov/houseit/internal/identity"
	"github.com/vladislavdragonenkov/houseit/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/houseit/internal/metrics"
	"github.com/vladislavdragonenkov/houseit/internal/notify"
	"github.com/vladislavdragonenkov/houseit/internal/service/httpapi"
	"github.com/vladislavdragonenkov/houseit/internal/service/idempotency"
	"github.com/vladislavdragonenkov/houseit/internal/service/outbox"
	"github.com/vladislavdragonenkov/houseit/internal/version"
)

// Run запускает сервис и блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	cartMetrics := metrics.NewCartMetrics()
	notifier := notify.NewChannel(notify.WithLogger(logger.WithField("layer", "notify")))
	registry := cart.NewRegistry(
		deps.Carts,
		deps.Requests,
		notifier,
		logger.WithField("layer", "cart"),
		cart.WithMetrics(cartMetrics),
		cart.WithOutbox(deps.Outbox),
	)

	resolver := identity.NewJWTResolver([]byte(cfg.JWTSecret), logger.WithField("layer", "identity"))
	apiService := httpapi.NewService(
		deps.Catalog,
		registry,
		deps.Carts,
		deps.Requests,
		resolver,
		httpapi.WithIdempotencyRepo(deps.IdemRepo),
		httpapi.WithLogger(logger.WithField("layer", "http")),
	)

	// фоновые воркеры: публикация outbox и чистка idempotency-ключей
	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicBookingEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(deps.Outbox, publisher,
			outbox.WithLogger(logger.WithField("layer", "outbox")),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		go worker.Run(ctx)
	}
	cleanup := idempotency.NewCleanupWorker(deps.IdemRepo,
		idempotency.WithLogger(logger.WithField("layer", "idempotency")))
	go cleanup.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("cart_store", healthcheck.NewSimpleChecker("cart_store", func() error {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_, err := deps.Carts.ListAll(checkCtx, "healthcheck")
		return err
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apiService.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

// splitBrokers нормализует список брокеров из конфигурации.
func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
