package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logging"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/store"
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

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, store.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Handlers
	router := httpx.NewRouter(log)

	(&httpx.ProductsHandler{
		Products: &store.ProductRepo{DB: db},
		Reviews:  &store.ReviewRepo{DB: db},
		Log:      log,
	}).Register(router)
	(&httpx.CollectionsHandler{
		Collections: &store.CollectionRepo{DB: db},
		Log:         log,
	}).Register(router)
	(&httpx.CartsHandler{
		Carts: &store.CartRepo{DB: db},
		Log:   log,
	}).Register(router)
	(&httpx.CustomersHandler{
		Customers: &store.CustomerRepo{DB: db},
		Addresses: &store.AddressRepo{DB: db},
		Log:       log,
	}).Register(router)
	(&httpx.OrdersHandler{
		Orders:   &store.OrderRepo{DB: db},
		Producer: prod,
		Cache:    &redisx.OrderCache{R: rdb},
		Service:  cfg.ServiceName,
		Log:      log,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox, flush and close writer
	cancel()
	prod.WaitClosed()
}
