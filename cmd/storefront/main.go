package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kangoro5/leather-walk/internal/account"
	"github.com/kangoro5/leather-walk/internal/admin"
	"github.com/kangoro5/leather-walk/internal/api"
	"github.com/kangoro5/leather-walk/internal/cart"
	"github.com/kangoro5/leather-walk/internal/cart/cache"
	"github.com/kangoro5/leather-walk/internal/catalog"
	"github.com/kangoro5/leather-walk/internal/checkout"
	"github.com/kangoro5/leather-walk/internal/config"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/internal/events"
	h "github.com/kangoro5/leather-walk/internal/http"
	"github.com/kangoro5/leather-walk/internal/session"
	"github.com/kangoro5/leather-walk/internal/storage"
	"github.com/kangoro5/leather-walk/pkg/circuitbreaker"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	defer db.Close()
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("failed to migrate local store: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
	}

	var store session.Store = session.NewSQLiteStore(db)
	if cfg.SessionStore == "redis" {
		if redisClient == nil {
			log.Fatalf("SESSION_STORE=redis requires REDIS_ADDR")
		}
		store = session.NewRedisStore(redisClient)
	}
	sess := session.New(store)

	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithTokenSource(sess),
		api.WithAuthFailureHook(sess.Expire),
		api.WithBreaker(circuitbreaker.Settings{
			Name:        "storefront-api",
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
		}),
	)
	if err != nil {
		log.Fatalf("failed to create api client: %v", err)
	}
	products := api.NewProductClient(client)
	orders := api.NewOrderClient(client)

	// the synchronizer resolves products through the browser, which adds through the synchronizer
	var browser *catalog.Browser
	cartOpts := []cart.Option{
		cart.WithResyncTimeout(cfg.APITimeout),
		cart.WithProductResolver(cart.ResolverFunc(func(ctx context.Context, id string) (domain.Product, bool) {
			return browser.Lookup(ctx, id)
		})),
	}
	if cfg.CartCache && redisClient != nil {
		cartOpts = append(cartOpts, cart.WithCache(cache.NewRedisCache(redisClient)))
	}
	carts := cart.NewSynchronizer(api.NewCartClient(client), cartOpts...)
	defer carts.Close()

	browser = catalog.NewBrowser(products, sess, carts, catalog.WithMirror(catalog.NewMirror(db)))

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	orchestrator := checkout.NewOrchestrator(carts, orders, sess,
		checkout.WithShippingCost(cfg.ShippingCost),
		checkout.WithPublisher(publisher),
	)
	// sign-in, sign-out and the restored session re-fill the shipping form
	unsubscribe := sess.Subscribe(func(session.State) { orchestrator.ResetForm() })
	defer unsubscribe()
	go func() {
		// requests are answered 503 until the stored session is loaded
		if err := sess.Start(ctx); err != nil {
			log.Printf("session restore error: %v", err)
		}
	}()

	accounts := account.NewService(api.NewAuthClient(client), orders, sess)
	console := admin.NewConsole(products, orders, api.NewUserClient(client))

	router := h.NewRouter(h.Handlers{
		Session:  sess,
		Account:  h.NewAccountHandler(accounts, sess, cfg.APITimeout),
		Products: h.NewProductHandler(browser, cfg.APITimeout),
		Cart:     h.NewCartHandler(carts, browser, cfg.APITimeout),
		Checkout: h.NewCheckoutHandler(orchestrator, cfg.APITimeout),
		Admin:    h.NewAdminHandler(console, cfg.APITimeout),
	}, cfg.APITimeout+5*time.Second)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...), nil
	case "rabbitmq":
		p, err := events.DialRabbit(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "", "none":
		return events.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
	}
}
