package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/config"
	"github.com/ariefcatur/go-marketplace/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/logging"
	"github.com/ariefcatur/go-marketplace/internal/metrics"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// metricsAddr serves /metrics and /healthz for the consumer process.
const metricsAddr = ":9102"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	service := cfg.ServiceName + "-fulfillment"
	log := logging.New(service, cfg.LogLevel, cfg.LogPretty)

	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New("fulfillment", reg)

	svc := fulfillment.NewService(
		fulfillment.NewRedisProjection(rdb),
		fulfillment.NewRedisDedup(rdb, "fulfillment"),
		m,
		log,
	)
	cons := kafkax.NewConsumer(brokers, cfg.FulfillmentGroup, cfg.KafkaTopic, cfg.FulfillmentWorkers, log)

	srv := &http.Server{
		Addr:              metricsAddr,
		Handler:           opsRouter(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("group", cfg.FulfillmentGroup).
			Str("topic", cfg.KafkaTopic).
			Int("workers", cfg.FulfillmentWorkers).
			Msg("fulfillment consumer started")
		return cons.Start(gctx, svc.HandleMessage)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down consumer")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("exit")
	}
}

// opsRouter serves the health check and metrics of the consumer process.
func opsRouter(ping func(ctx context.Context) error, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}
