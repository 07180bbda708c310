// Package main is the entry point for the parlay tracker.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/parlaydesk/tracker/internal/api"
	"github.com/parlaydesk/tracker/internal/config"
	"github.com/parlaydesk/tracker/internal/ingest"
	"github.com/parlaydesk/tracker/internal/ledger"
	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/refresh"
	"github.com/parlaydesk/tracker/internal/scheduler"
	"github.com/parlaydesk/tracker/internal/store"
	"github.com/parlaydesk/tracker/internal/ui"
)

const version = "1.0.0"

// ShutdownTimeout bounds the graceful HTTP shutdown.
const ShutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file while it runs.
	logOut := io.Writer(os.Stdout)
	if cfg.EnableTUI && cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.LogFile, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}

	logger := setupLogger(cfg.LogLevel, logOut)
	slog.SetDefault(logger)

	slog.Info("tracker starting",
		"version", version,
	)

	slog.Info("config_loaded",
		"data_source", cfg.DataSource,
		"sheet_id", cfg.MaskedSheetID(),
		"sheet_name", cfg.SheetName,
		"sheet_format", cfg.SheetFormat,
		"refresh_interval", cfg.RefreshInterval,
		"season_start", fmt.Sprintf("%d-%02d", cfg.SeasonStartYear, int(cfg.SeasonStartMonth)),
		"group_key", cfg.GroupKey,
		"bank_policy", cfg.BankPolicy,
		"starting_bank", cfg.StartingBank,
		"default_stake", cfg.DefaultStake,
		"db_path", cfg.DBPath,
		"enable_http", cfg.EnableHTTP,
		"http_port", cfg.HTTPPort,
		"enable_tui", cfg.EnableTUI,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Data source
	source, bets, err := openSource(cfg)
	if err != nil {
		slog.Error("failed to open data source", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	if bets != nil {
		defer bets.Close()
	}

	tracker := metrics.NewTracker(source.Name())
	refresher := refresh.New(ctx, source, ledgerOptions(cfg), tracker, refresh.DefaultTimeout)

	// First cycle before anything is served; a failure leaves the tracker
	// in its error state and the schedule retries.
	sched := scheduler.New(logger)
	if err := sched.RunNow(refresher); err != nil {
		slog.Warn("initial_refresh_failed", "error", err)
	}

	if err := sched.AddJob(scheduler.Every(cfg.RefreshInterval), refresher); err != nil {
		slog.Error("failed to schedule refresh", "error", err)
		os.Exit(1)
	}
	sched.Start()

	// HTTP API
	var server *api.Server
	if cfg.EnableHTTP {
		apiCfg := api.Config{
			Port:      cfg.HTTPPort,
			Logger:    logger,
			Tracker:   tracker,
			Refresher: refresher,
			RateLimit: cfg.APIRateLimit,
		}
		if bets != nil {
			apiCfg.Bets = bets
		}

		server = api.New(apiCfg)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("http_server_error", "error", err)
				cancel()
			}
		}()
	}

	slog.Info("tracker_started",
		"source", source.Name(),
		"http_enabled", cfg.EnableHTTP,
		"tui_enabled", cfg.EnableTUI,
	)

	// Start TUI or run in background mode
	if cfg.EnableTUI {
		slog.Info("starting_tui")
		app := ui.NewApp(tracker, refresher, cfg.UIRefreshRate)

		// Start TUI in goroutine so we can still handle signals
		go func() {
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
			}
			cancel()
		}()

		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-app.Done():
			slog.Info("tui_closed")
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
		case <-ctx.Done():
		}
	}

	cancel()

	// Graceful shutdown
	slog.Info("shutting_down", "status", "stopping scheduler")
	sched.Stop()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http_shutdown_error", "error", err)
		}
		shutdownCancel()
	}

	slog.Info("shutdown_complete")
}

// openSource builds the configured data source. The bet store is returned
// only for the local source.
func openSource(cfg *config.Config) (refresh.Source, *store.BetStore, error) {
	switch cfg.DataSource {
	case config.SourceLocal:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		bets, err := store.OpenBetStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("bet_store_opened", "path", cfg.DBPath)
		return ingest.NewLocalSource(bets), bets, nil

	default:
		sheetURL := cfg.SheetURL
		format := ingest.Format(cfg.SheetFormat)
		if sheetURL == "" {
			sheetURL = ingest.SheetURL(cfg.SheetID, cfg.SheetName, format)
		} else {
			format = ingest.FormatAuto
		}
		return ingest.NewSheetSource(sheetURL, format, cfg.HTTPTimeout), nil, nil
	}
}

func ledgerOptions(cfg *config.Config) ledger.Options {
	return ledger.Options{
		Season: ledger.Season{
			StartYear:  cfg.SeasonStartYear,
			StartMonth: cfg.SeasonStartMonth,
		},
		Key: ledger.KeyPolicy(cfg.GroupKey),
		Bank: ledger.BankConfig{
			Policy:       ledger.BankPolicy(cfg.BankPolicy),
			StartingBank: cfg.StartingBank,
			DefaultStake: cfg.DefaultStake,
		},
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// setupLogger creates a structured logger with the specified level.
// Format: 2025-01-04 14:32:01 [INFO]  message key=value
func setupLogger(levelStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(w, opts)
	return slog.New(handler)
}
