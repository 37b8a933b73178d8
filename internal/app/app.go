// Package app wires repositories, services and HTTP routes for the binaries.
package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/georgemunganga/stockly-pos/internal/modules/auth"
	"github.com/georgemunganga/stockly-pos/internal/modules/cashier"
	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/inventory"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/georgemunganga/stockly-pos/internal/platform/config"
	"github.com/georgemunganga/stockly-pos/internal/platform/database"
	"github.com/georgemunganga/stockly-pos/internal/platform/metrics"
	"github.com/georgemunganga/stockly-pos/internal/storage/memory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Backend is one storage implementation behind every repository.
type Backend struct {
	Catalog   catalog.Repository
	Inventory inventory.Repository
	Sales     sales.Repository
	Cashiers  cashier.Repository
	Outbox    outbox.Store
	Checkout  checkout.Repository

	db *sql.DB
}

// Open selects PostgreSQL when cfg.DatabaseURL is set and the in-memory
// store otherwise.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	if cfg.DatabaseURL == "" {
		return Memory(memory.NewStore()), nil
	}
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Backend{
		Catalog:   catalog.NewPostgresRepository(db),
		Inventory: inventory.NewPostgresRepository(db),
		Sales:     sales.NewPostgresRepository(db),
		Cashiers:  cashier.NewPostgresRepository(db),
		Outbox:    outbox.NewPostgresStore(db),
		Checkout:  checkout.NewPostgresRepository(db),
		db:        db,
	}, nil
}

// Memory wraps an in-memory store.
func Memory(store *memory.Store) *Backend {
	return &Backend{
		Catalog:   store.Catalog(),
		Inventory: store.Inventory(),
		Sales:     store.Sales(),
		Cashiers:  store.Cashiers(),
		Outbox:    store.Outbox(),
		Checkout:  store,
	}
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Services are the business services built on a Backend.
type Services struct {
	Catalog   catalog.Service
	Inventory inventory.Service
	Sales     sales.Service
	Cashiers  cashier.Service
	Auth      auth.Service
	Checkout  checkout.Service
	Engine    *checkout.Engine
}

func NewServices(cfg config.Config, b *Backend, m *metrics.CheckoutMetrics) *Services {
	engine := checkout.NewEngine(b.Checkout, payment.DefaultRegistry(), cfg.EventsTopic)
	return &Services{
		Catalog:   catalog.NewService(b.Catalog),
		Inventory: inventory.NewService(b.Inventory, cfg.LowStockThreshold),
		Sales:     sales.NewService(b.Sales),
		Cashiers:  cashier.NewService(b.Cashiers),
		Auth:      auth.NewService(b.Cashiers, cfg.JWTSecret),
		Checkout:  checkout.NewService(engine, b.Catalog, cfg.TaxRate, m),
		Engine:    engine,
	}
}

// Router builds the HTTP API. reg receives the HTTP collectors and is
// served on /metrics.
func Router(cfg config.Config, svc *Services, reg *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(metrics.NewServerMetrics(reg).Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", metrics.Handler(reg))

	auth.NewHandler(svc.Auth).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		if cfg.AuthRequired {
			r.Use(auth.Middleware(svc.Auth))
		}
		cashier.NewHandler(svc.Cashiers).RegisterRoutes(r)
		catalog.NewHandler(svc.Catalog).RegisterRoutes(r)
		inventory.NewHandler(svc.Inventory).RegisterRoutes(r)
		sales.NewHandler(svc.Sales).RegisterRoutes(r)
		checkout.NewHandler(svc.Checkout).RegisterRoutes(r)
	})
	return router
}
