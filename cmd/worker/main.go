package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logging"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/ariefcatur/go-storefront/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Orders: &store.OrderRepo{DB: db},
		Dedup:  &redisx.Dedup{R: rdb, Service: cfg.ServiceName + "-worker"},
		Cache:  &redisx.OrderCache{R: rdb},
		Log:    log,
	}

	group := getenv("WORKER_GROUP", "storefront-worker")
	workers := mustAtoi(os.Getenv("WORKER_COUNT"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, store.TopicOrderPlaced, workers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("consumer started",
			zap.String("group", group),
			zap.String("topic", store.TopicOrderPlaced),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Error("consumer exit", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer")
	cancel()
	<-done
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
