package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/config"
	"github.com/haskel/studycost/internal/logger"
	"github.com/haskel/studycost/internal/metrics"
	"github.com/haskel/studycost/internal/monitor"
	"github.com/haskel/studycost/internal/server"
	"github.com/haskel/studycost/internal/session"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the studycost server",
	Long:  `Start the studycost server in foreground mode.`,
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := loadStartConfig()
	if err != nil {
		return err
	}

	// Override port if specified via flag
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	// Create logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("studycost starting",
		"version", Version,
		"config", cfgFile,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Load model and check it against the schema
	est, err := newEstimator(cfg, m, log)
	if err != nil {
		return err
	}

	// Load dataset for EDA
	data, err := loadDataset(ctx, cfg.Dataset)
	if err != nil {
		log.Warn("dataset unavailable, EDA disabled", "source", cfg.Dataset.Source, "error", err)
	} else if data != nil {
		log.Info("dataset loaded", "source", data.Source, "rows", data.Summary.Rows)
	}

	// Open session store
	store, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Start resource monitoring
	agg := monitor.NewAggregator(monitor.Default(), cfg.MonitoringInterval(), log)
	agg.Start(ctx)

	// Write PID file if configured
	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	rl := &reloader{
		cfgFile: cfgFile,
		est:     est,
		metrics: m,
		log:     log,
	}

	// Create and start server
	srv, err := server.New(cfg, server.Deps{
		Estimator:  est,
		Sessions:   store,
		Dataset:    data,
		Aggregator: agg,
		Metrics:    m,
		Reload:     rl.Reload,
	}, log, Version)
	if err != nil {
		store.Close()
		agg.Stop()
		return fmt.Errorf("failed to create server: %w", err)
	}
	rl.apply = func(newCfg *config.Config) {
		newCfg.Server.Host = cfg.Server.Host
		newCfg.Server.Port = cfg.Server.Port
		srv.ReloadConfig(newCfg)
	}

	// Signal channels
	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Handle SIGHUP for hot-reload
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration and model")

				if err := rl.Reload(ctx); err != nil {
					log.Error("reload failed, keeping current model", "error", err)
				}
			case <-shutdownDone:
				return
			}
		}
	}()

	// Handle shutdown signals
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sigCh

		log.Info("shutdown signal received")

		// Stop receiving signals
		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		teardown(shutdownCtx, srv, store, agg, log)
		cancel()
	}()

	log.Info("studycost ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	// Start returns as soon as the listener closes; wait for the final session flush.
	<-stopped

	log.Info("studycost stopped")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// teardown drains the server, then closes the session store (the file
// backend writes its final state here) and stops monitoring.
func teardown(ctx context.Context, srv shutdowner, store session.Store, agg *monitor.Aggregator, log *slog.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("session store shutdown error", "error", err)
	}

	if agg != nil {
		agg.Stop()
	}
}

// loadStartConfig fails on a broken config file instead of falling back to defaults.
func loadStartConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
