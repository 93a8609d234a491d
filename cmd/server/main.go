/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Payroll Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), then apply flags
  2. Build the logrus logger
  3. Initialize SQLite store, optionally importing a seed organization
  4. Build the forecast engine (tax rates, override and salary policy)
  5. Create API handler and start the forecast scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (overrides APP_ADDR)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database
  -seed    Organization YAML file imported at startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the forecast scheduler (waits for a running refresh)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run in memory with a demo organization
  ./server -db=":memory:" -seed=./salon.yaml

ENVIRONMENT:
  See config/config.go for every key and its default.

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Forecast refresh
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/commission"
	"github.com/warp/payroll-engine/compensation"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/forecast"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seed := flag.String("seed", "", "organization YAML imported at startup")
	flag.Parse()

	log := logging.New(cfg.LogLevel, cfg.Environment)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	if *seed != "" {
		if err := importSeed(store, *seed); err != nil {
			log.WithError(err).WithField("file", *seed).Fatal("Failed to import seed organization")
		}
		log.WithField("file", *seed).Info("seed organization imported")
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to build forecast engine")
	}

	// Initialize handler and scheduler
	handler := api.NewHandler(store, engine, log)
	handler.Scheduler.Spec = cfg.ForecastCron
	handler.Scheduler.Enabled = cfg.ForecastCronEnabled
	if err := handler.Scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start forecast scheduler")
	}

	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": *addr, "db": *dbPath, "env": cfg.Environment}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	handler.Scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

func buildEngine(cfg config.Config) (forecast.Engine, error) {
	rates := compensation.DefaultTaxRates()
	if cfg.TaxRatesFile != "" {
		loaded, err := compensation.LoadTaxRates(cfg.TaxRatesFile)
		if err != nil {
			return forecast.Engine{}, err
		}
		rates = loaded
	}

	return forecast.Engine{
		Resolver: commission.Resolver{
			InheritLevelRatesOnPartialOverride: cfg.PartialOverrideInherit,
		},
		Calculator: compensation.Calculator{
			Rates:            &rates,
			PaychecksPerYear: cfg.SalaryPaychecksPerYear,
		},
	}, nil
}

func importSeed(store *sqlite.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	org, err := factory.NewOrgFactory().ParseOrgYAML(data)
	if err != nil {
		return err
	}
	return store.ImportOrg(context.Background(), org)
}
