/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave planner server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, file, .env, LEAVE_* variables)
  3. Build the logger
  4. Initialize SQLite store
  5. Choose the public holiday calendar
  6. Create API handler and router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)
  -port    HTTP server port, overrides server.port
  -db      SQLite database path, overrides db.path
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the rate limiter sweeper and close the database
  4. Exit

EXAMPLES:
  ./server -db="./data/leave.db"
  ./server -db=":memory:" -port=3000
  LEAVE_LOG_FORMAT=console LEAVE_HOLIDAYS_SOURCE=computed ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-planner/api"
	"github.com/warp/leave-planner/config"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
	"github.com/warp/leave-planner/logger"
	"github.com/warp/leave-planner/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, publicHolidays(cfg.Holidays), zl)
	if cfg.Holidays.Region != "" {
		handler.Region = cfg.Holidays.Region
	}
	if cfg.Holidays.Source == config.HolidaySourceStatic {
		years := leave.YearsCovered(handler.Region)
		if len(years) == 0 {
			zl.Warn("built-in holiday table has no entries for region", zap.String("region", handler.Region))
		} else {
			zl.Info("using built-in holiday table", zap.String("region", handler.Region), zap.Ints("years", years))
		}
	}

	limiter := api.NewRateLimiter(cfg.Server.RateLimit)
	limiter.Start()
	defer limiter.Stop()

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.CORS.AllowOrigins,
		Limiter:        limiter,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path),
			zap.String("holidays", cfg.Holidays.Source))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	zl.Info("server stopped")
	return nil
}

func publicHolidays(cfg config.HolidayConfig) generic.HolidayCalendar {
	if cfg.Source == config.HolidaySourceComputed {
		return leave.NewComputedCalendar()
	}
	return leave.StaticCalendar{}
}
