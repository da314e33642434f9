package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matrix-bruteforce/internal/api"
	"matrix-bruteforce/internal/cipher"
	"matrix-bruteforce/internal/config"
	"matrix-bruteforce/internal/db"
	"matrix-bruteforce/internal/logger"
	"matrix-bruteforce/internal/notify"
	"matrix-bruteforce/internal/report"
	"matrix-bruteforce/internal/retry"
	"matrix-bruteforce/internal/scanner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	lcfg := logger.DefaultConfig()
	lcfg.Level = cfg.LogLevel
	appLogger, err := logger.New(500, lcfg)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	var database db.Database
	if cfg.DatabaseURL == "" {
		appLogger.Warn("DATABASE_URL not set - running in demo mode")
		database = db.NewMock()
	} else {
		database, err = retry.DoWithResult(ctx, retry.DefaultConfig(), func() (db.Database, error) {
			return db.New(cfg.DatabaseURL)
		})
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		appLogger.Info("Connected to database")
	}
	defer database.Close()

	notifier := notify.New(cfg.PushoverAppToken, cfg.PushoverUserKey)
	if notifier.IsEnabled() {
		appLogger.Info("Pushover notifications enabled")
	}

	sc := scanner.New(database, appLogger, notifier, cipher.Ciphertexts(), cfg.Workers)

	res, err := sc.Run(ctx, cfg.TargetChar)
	if err != nil {
		return err
	}
	for _, m := range res.Matches {
		fmt.Println(m)
	}

	if cfg.ExportPath != "" {
		if err := report.WriteFile(cfg.ExportPath, res.Export()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		appLogger.Info("Wrote export to %s", cfg.ExportPath)
	}
	if cfg.ChartPath != "" {
		if err := writeChart(cfg.ChartPath, res); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
		appLogger.Info("Wrote chart to %s", cfg.ChartPath)
	}

	if len(cfg.SweepTargets) > 0 {
		results, err := sc.Sweep(ctx, cfg.SweepTargets)
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		for _, r := range results {
			appLogger.Info("[%s] %d matches (digest %s)", r.Target, len(r.Matches), r.Digest)
		}
	}

	if !cfg.Serve {
		return nil
	}
	return serve(ctx, cfg, sc, database, appLogger)
}

func writeChart(path string, res *scanner.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.RenderScatter(f, res.Target, res.Matches)
}

func serve(ctx context.Context, cfg *config.Config, sc *scanner.Scanner, database db.Database, log *logger.Logger) error {
	handler := api.NewHandler(sc, database, log, cfg.TargetChar)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addrs := cfg.Addrs()
	servers := make([]*http.Server, 0, len(addrs))
	errCh := make(chan error, len(addrs))
	for _, addr := range addrs {
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		servers = append(servers, srv)
		log.Info("Starting server on %s", addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listener %s: %w", srv.Addr, err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		srv.Shutdown(shutdownCtx)
	}
	return serveErr
}
