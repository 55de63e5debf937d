package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/nodewatch/internal/control"
	"github.com/vietddude/nodewatch/internal/core/config"
	"github.com/vietddude/nodewatch/internal/monitoring/cycle"
)

var (
	cfgPath string
	isDebug bool
	runOnce bool
)

var rootCmd = &cobra.Command{
	Use:   "nodewatch",
	Short: "Validator connectivity monitor",
	Long: `nodewatch polls platform.getCurrentValidators for a fixed set of node IDs
and reports validators that are disconnected during their validation period.`,
	Run: runWatcher,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
}

// loadConfig reads .env, the YAML file and environment overrides, then
// installs the console logger. A missing default config file is not an
// error so the monitor can be configured from the environment alone.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	_ = godotenv.Load()

	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		stylelog.InitDefault()
		return nil, err
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

func controlConfig(cfg *config.AppConfig) control.Config {
	return control.Config{
		Port:     cfg.Server.Port,
		Platform: cfg.Platform,
		Monitor:  cfg.Monitor,
		Notify:   cfg.Notify,
	}
}

func runWatcher(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	// Initialize Watcher
	app, err := control.NewWatcher(controlConfig(cfg))
	if err != nil {
		slog.Error("Failed to initialize Watcher", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if runOnce {
		os.Exit(runSingle(ctx, app))
	}

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start Watcher", "error", err)
		os.Exit(1)
	}

	slog.Info("Watcher started", "config", cfgPath)

	<-ctx.Done()
	slog.Info("Received signal, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Watcher stopped gracefully")
}

func runSingle(ctx context.Context, app *control.Watcher) int {
	defer app.Close()

	o := app.RunOnce(ctx)
	switch o.Status {
	case cycle.StatusFailed, cycle.StatusSkipped:
		slog.Error("Cycle did not complete", "status", o.Status, "error", o.Err)
		return 1
	}
	if o.SendErr != nil {
		slog.Error("Report not delivered", "error", o.SendErr)
		return 1
	}
	slog.Info("Cycle completed", "status", o.Status, "flagged", len(o.Result.Flagged))
	return 0
}

// failf prints an error to stderr and returns exit code 1.
func failf(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return 1
}
