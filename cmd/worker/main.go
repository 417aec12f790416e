package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/decision-api/config"
	"github.com/clinicore/decision-api/internal/repository/postgres"
	"github.com/clinicore/decision-api/pkg/logger"
	redisBroker "github.com/clinicore/decision-api/pkg/messaging/redis"
	"github.com/clinicore/decision-api/pkg/metrics"
	"github.com/clinicore/decision-api/pkg/worker"

	"github.com/prometheus/client_golang/prometheus"
)

// The worker drains the clinical event outbox and publishes to Redis,
// keeping event delivery out of the request path.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewRedisBroker(cfg.Redis, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.New("decision_worker", prometheus.DefaultRegisterer)
	outboxRepo := postgres.NewOutboxRepository(db)
	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()
}
