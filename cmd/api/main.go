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

	"github.com/georgemunganga/stockly-pos/internal/app"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/georgemunganga/stockly-pos/internal/platform/broker"
	"github.com/georgemunganga/stockly-pos/internal/platform/config"
	"github.com/georgemunganga/stockly-pos/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Storage ─────────────────────────────────────────────
	backend, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()
	if cfg.DatabaseURL == "" {
		fmt.Println("DATABASE_URL not set, using in-memory store")
	} else {
		fmt.Println("Successfully connected to the database!")
	}

	// ── Metrics ─────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ── Services & Router ───────────────────────────────────
	services := app.NewServices(cfg, backend, metrics.NewCheckoutMetrics(reg))
	router := app.Router(cfg, services, reg)

	// ── Outbox relay ────────────────────────────────────────
	pub, err := broker.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pub.Close()
	relay := outbox.NewRelay(backend.Outbox, pub, cfg.OutboxInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Server starting on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return relay.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
