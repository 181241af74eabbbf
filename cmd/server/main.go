// Package main is the entry point for the hive controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"shieldhive/internal/briefing"
	"shieldhive/internal/config"
	"shieldhive/internal/controller"
	"shieldhive/internal/controller/handlers"
	"shieldhive/internal/jobqueue"
	"shieldhive/internal/logger"
	"shieldhive/internal/observability"
	"shieldhive/internal/registry"
	"shieldhive/internal/store"
	"shieldhive/internal/store/postgres"
	"shieldhive/internal/sweeper"
	"shieldhive/internal/threats"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "shieldhive-controller", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("Failed to shutdown tracer: %v", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Observable gauges query the DB only when scraped.
	meter := otel.Meter("shieldhive-controller")
	registerGauge(meter, "shieldhive.jobs.pending", "Jobs waiting for dispatch", func(ctx context.Context) (int64, error) {
		return db.CountJobsByStatus(ctx, store.JobStatusPending)
	})
	registerGauge(meter, "shieldhive.agents.online", "Agents currently Online", func(ctx context.Context) (int64, error) {
		return db.CountAgentsByStatus(ctx, store.AgentStatusOnline)
	})
	registerGauge(meter, "shieldhive.threats.tracked", "Distinct threat fingerprints tracked", func(ctx context.Context) (int64, error) {
		return db.CountThreats(ctx)
	})

	// Components
	queue := jobqueue.New(db)
	reg := registry.New(db, queue)
	ledger := threats.New(db)

	var oracle briefing.Oracle
	if cfg.OracleAPIKey != "" {
		oracle = briefing.NewOracleClient(cfg.OracleURL, cfg.OracleModel, cfg.OracleAPIKey, cfg.OracleTimeout)
	} else {
		slogger.Info("no oracle credential configured, narratives run in offline mode")
	}
	engine := briefing.New(db, oracle, slogger)

	h := handlers.New(reg, queue, ledger, engine, db, slogger)

	// Staleness sweep, opt-in.
	if cfg.SweepInterval > 0 {
		sw := sweeper.New(db, cfg.SweepInterval, cfg.OfflineAfter, slogger)
		go sw.Run(ctx)
		slogger.Info("staleness sweep enabled",
			"interval", cfg.SweepInterval.String(),
			"offline_after", cfg.OfflineAfter.String(),
		)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, h, controller.Options{
		ServerKey:      cfg.ServerKey,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		Logger:         slogger,
		MetricsHandler: metricsHandler,
	})

	go func() {
		log.Printf("Hive controller starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down controller...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}

func registerGauge(meter metric.Meter, name, description string, count func(context.Context) (int64, error)) {
	_, err := meter.Int64ObservableGauge(name,
		metric.WithDescription(description),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			v, err := count(ctx)
			if err != nil {
				log.Printf("Failed to observe %s: %v", name, err)
				return nil // Don't crash metrics scrape on DB error
			}
			obs.Observe(v)
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register %s metric: %v", name, err)
	}
}
