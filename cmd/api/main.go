package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/carts"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/config"
	"github.com/ariefcatur/go-marketplace/internal/fulfillment"
	"github.com/ariefcatur/go-marketplace/internal/httpx"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/logging"
	"github.com/ariefcatur/go-marketplace/internal/metrics"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/ariefcatur/go-marketplace/internal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.Options{
		MaxConns:         cfg.PGMaxConns,
		MinConns:         cfg.PGMinConns,
		StatementTimeout: cfg.PGStatementTimeout,
		TxWatchdog:       cfg.PGTxWatchdog,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("api", reg)

	events, prod := orderEvents(cfg, log)

	sessions := auth.NewSessions(rdb, cfg.SessionTTL)
	products := catalog.NewService(catalog.NewRepo(db))
	h := &httpx.Handler{
		Users:       users.NewService(users.NewRepo(db), sessions),
		Catalog:     products,
		Carts:       carts.NewService(carts.NewRepo(db), products),
		Orders:      orders.NewEngine(orders.NewRepo(db), events, m, log),
		Fulfillment: fulfillment.NewService(fulfillment.NewRedisProjection(rdb), nil, nil, log),
		Sessions:    sessions,
		Metrics:     m,
		Log:         log,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if prod != nil {
		prod.Start(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if prod != nil {
			prod.Close() // closes the inbox, the loop flushes and closes the writer
			prod.WaitClosed()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("exit")
	}
}

// orderEvents builds the Kafka publisher. Both results are nil when no
// brokers are configured, so the engine sees a nil interface.
func orderEvents(cfg config.Config, log zerolog.Logger) (orders.EventPublisher, *kafkax.Producer) {
	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		log.Warn().Msg("KAFKA_BROKERS empty, order events disabled")
		return nil, nil
	}
	prod := kafkax.NewProducer(brokers, cfg.KafkaTopic, 1024, log)
	return kafkax.NewOrderEvents(prod, cfg.ServiceName), prod
}
