package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lexhaven/gavel/pkg/auditlog"
	"lexhaven/gavel/pkg/config"
	"lexhaven/gavel/pkg/docket/reminder"
	"lexhaven/gavel/pkg/rules/engine"
	"lexhaven/gavel/pkg/rules/source"
	"lexhaven/gavel/pkg/storage"
	"lexhaven/gavel/pkg/telemetry/logging"
	"lexhaven/gavel/pkg/telemetry/metrics"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine daemon",
	Long: `Start the engine daemon with the specified configuration.

The daemon keeps the local-rule snapshot hot (reloading rule files when
they change), runs the scheduled deadline reminder scan, and serves
Prometheus metrics. Docket events are evaluated one at a time with
"gavel event".

Examples:
  # Start with default config
  gavel run

  # Start with custom config
  gavel run --config /etc/gavel/config.yaml

  # Validate config without starting
  gavel run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

// loadRuntime loads the config file with environment overrides and
// builds the process logger from it. Shared by run and event.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		AddSource:  cfg.Logging.AddSource,
		RedactKeys: cfg.Logging.RedactKeys,
	}
	if runFlags.logLevel != "" {
		logCfg.Level = runFlags.logLevel
	}
	if verbose {
		logCfg.Level = "debug"
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// ruleSource picks where local rules come from: the configured file
// path when set, otherwise the rule table in the state database.
func ruleSource(cfg *config.Config, store *storage.Store, logger *slog.Logger) source.Source {
	if cfg.Rules.Path != "" {
		return source.NewFileSource(cfg.Rules.Path, logger,
			source.WithDebounce(time.Duration(cfg.Rules.DebounceMS)*time.Millisecond))
	}
	return store.Rules()
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Gavel v%s\n", Version)
	fmt.Printf("Court: %s\n", cfg.Court)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.OpenWithConfig(storage.Config{
		DBPath:      cfg.Storage.StatePath,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	audit, err := auditlog.Open(auditlog.Config{
		Path:        cfg.Storage.AuditPath,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer audit.Close()
	fmt.Println("✓ State and audit stores opened")

	m := metrics.New(prometheus.NewRegistry())

	// Rule snapshot: load once at startup, then rebuild on file change.
	rules := ruleSource(cfg, store, logger)
	rebuild := func() error {
		loaded, err := rules.Load(ctx)
		if err != nil {
			return err
		}
		snap := engine.NewSnapshot(loaded, time.Now())
		m.RulesReloaded()
		logger.Info("rule snapshot rebuilt",
			"federal_rules", len(snap.Federal),
			"local_rules", len(snap.Local),
		)
		return nil
	}
	if err := rebuild(); err != nil {
		return fmt.Errorf("failed to load local rules: %w", err)
	}
	fmt.Println("✓ Local rules loaded")

	if cfg.Rules.Watch {
		watchable, ok := rules.(source.Reloadable)
		if !ok {
			return fmt.Errorf("rules.watch requires a file-backed rule source")
		}
		go func() {
			if err := watchable.Watch(ctx, rebuild); err != nil {
				logger.Error("rule watcher exited", "error", err)
			}
		}()
		fmt.Println("✓ Rule file watcher started")
	}

	if cfg.Reminder.Enabled {
		scanner := reminder.New(store, store, reminder.Config{
			Schedule:      cfg.Reminder.Schedule,
			LookaheadDays: cfg.Reminder.LookaheadDays,
		}, logger, reminder.WithRecorder(m))
		if err := scanner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start reminder scanner: %w", err)
		}
		defer scanner.Stop()
		fmt.Printf("✓ Reminder scanner started (%s, %d-day lookahead)\n",
			cfg.Reminder.Schedule, cfg.Reminder.LookaheadDays)
	}

	errChan := make(chan error, 1)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: mux}
		go func() {
			logger.Info("metrics server starting", "address", cfg.Metrics.ListenAddress)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Metrics.ListenAddress)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	fmt.Println("\nShutting down...")
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}
	fmt.Println("✓ Stopped")
	return nil
}
