package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/tmwansa/markethub-backend/internal/modules/auth"
	"github.com/tmwansa/markethub-backend/internal/modules/bundle"
	"github.com/tmwansa/markethub-backend/internal/modules/catalog"
	"github.com/tmwansa/markethub-backend/internal/modules/commission"
	"github.com/tmwansa/markethub-backend/internal/modules/inventory"
	"github.com/tmwansa/markethub-backend/internal/modules/notification"
	"github.com/tmwansa/markethub-backend/internal/modules/order"
	"github.com/tmwansa/markethub-backend/internal/modules/shipping"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	slog.Info("connected to database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Events ──────────────────────────────────────────────
	bus := notification.NewBus()
	orderEvents := []string{
		notification.EventOrderPlaced,
		notification.EventOrderStatusChanged,
		notification.EventOrderCancelled,
	}
	for _, name := range orderEvents {
		bus.Subscribe(name, notification.LogListener)
	}
	if amqpURL := os.Getenv("RABBITMQ_URL"); amqpURL != "" {
		publisher, err := notification.NewAMQPPublisher(amqpURL, "order.events")
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer publisher.Close()
		for _, name := range orderEvents {
			bus.Subscribe(name, publisher.Handle)
		}
	}

	// ── Gateways ────────────────────────────────────────────
	inventoryService := inventory.NewService(inventory.NewPostgresRepository(db))
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	bundleService := bundle.NewService(bundle.NewPostgresRepository(db))

	shippingService := shipping.NewService(shipping.NewPostgresRepository(db))
	shipping.NewHandler(shippingService).RegisterRoutes(router)

	catalogRepo := catalog.NewPostgresRepository(db)
	catalog.NewHandler(catalogRepo).RegisterRoutes(router)

	var cache *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: addr})
	}
	calculator := commission.NewCalculator(commission.NewPostgresRepository(db), cache)
	commission.NewHandler(calculator).RegisterRoutes(router)

	// ── Orders ──────────────────────────────────────────────
	authmw := auth.NewMiddleware(os.Getenv("JWT_SECRET"))
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, inventoryService, bundleService,
		shippingService, calculator, bus)
	order.NewHandler(orderService, authmw).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("markethub API server starting", "port", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
