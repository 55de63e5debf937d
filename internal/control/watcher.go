package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/nodewatch/internal/core/config"
	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/chain/avalanche"
	"github.com/vietddude/nodewatch/internal/infra/notify"
	redisclient "github.com/vietddude/nodewatch/internal/infra/redis"
	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
	"github.com/vietddude/nodewatch/internal/infra/rpc/routing"
	"github.com/vietddude/nodewatch/internal/monitoring/cycle"
	"github.com/vietddude/nodewatch/internal/monitoring/health"
)

// Watcher is the main application struct that manages the monitor lifecycle.
type Watcher struct {
	cfg          Config
	provider     *provider.HTTPProvider
	runner       *cycle.Runner
	sink         notify.Sink
	healthMon    *health.Monitor
	healthServer *health.Server
	closers      []io.Closer
	group        *errgroup.Group
	stopOnce     sync.Once
	log          *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port     int
	Platform config.PlatformConfig
	Monitor  config.MonitorConfig
	Notify   config.NotifyConfig
}

// NewWatcher creates a new Watcher instance with all dependencies initialized.
func NewWatcher(cfg Config) (*Watcher, error) {
	log := slog.Default().With("component", "watcher")

	nodes := domain.NewTrackedNodeSet(cfg.Monitor.NodeIDs)
	if nodes.Len() == 0 {
		return nil, errors.New("no validator node ids configured")
	}

	// 1. Platform API
	rpcProvider := provider.NewHTTPProvider(cfg.Platform.Name, cfg.Platform.RPC, cfg.Platform.Timeout)
	fetcher := avalanche.NewAdapter(rpcProvider)

	// 2. Notification sinks
	sink, closers, err := buildSinks(cfg.Notify, log)
	if err != nil {
		_ = rpcProvider.Close()
		return nil, err
	}

	// 3. Health and the cycle runner
	healthMon := health.NewMonitor(cfg.Monitor.Interval, rpcProvider)
	healthServer := health.NewServer(healthMon, cfg.Port)

	runner := cycle.NewRunner(cycle.Config{
		Nodes:    nodes,
		Interval: cfg.Monitor.Interval,
		Retry: routing.RetryConfig{
			MaxAttempts:  cfg.Platform.Retry.MaxAttempts,
			InitialDelay: cfg.Platform.Retry.InitialDelay,
			MaxDelay:     cfg.Platform.Retry.MaxDelay,
			Jitter:       cfg.Platform.Retry.Jitter,
		},
	}, fetcher, sink, healthMon)

	log.Info("Watcher initialized",
		"rpc", cfg.Platform.RPC,
		"nodes", nodes.Len(),
		"interval", cfg.Monitor.Interval,
		"sink", sink.Name(),
	)

	return &Watcher{
		cfg:          cfg,
		provider:     rpcProvider,
		runner:       runner,
		sink:         sink,
		healthMon:    healthMon,
		healthServer: healthServer,
		closers:      closers,
		log:          log,
	}, nil
}

// buildSinks opens every configured sink. Discord and webhook failures abort
// startup; an unreachable Redis only disables that sink. With nothing
// configured, reports go to the operator log.
func buildSinks(cfg config.NotifyConfig, log *slog.Logger) (notify.Sink, []io.Closer, error) {
	var sinks []notify.Sink
	var closers []io.Closer

	if cfg.Discord.Enabled() {
		discord, err := notify.NewDiscordSink(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init discord sink: %w", err)
		}
		sinks = append(sinks, discord)
		closers = append(closers, discord)
	}

	if cfg.Webhook.Enabled() {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Webhook.URL, cfg.Webhook.Timeout))
	}

	if cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.Redis.Config)
		if err != nil {
			log.Warn("Failed to connect to Redis, redis sink disabled", "error", err)
		} else {
			sinks = append(sinks, notify.NewRedisSink(client, cfg.Redis.Channel))
			closers = append(closers, client)
		}
	}

	switch len(sinks) {
	case 0:
		log.Warn("No notification sink configured, reports go to the log")
		return notify.NewLogSink(nil), closers, nil
	case 1:
		return sinks[0], closers, nil
	default:
		multi := notify.NewMultiSink(sinks...)
		log.Info("Notification fan-out enabled", "sinks", multi.Len())
		return multi, closers, nil
	}
}

// RunOnce executes a single cycle without starting the loop or the health server.
func (w *Watcher) RunOnce(ctx context.Context) cycle.Outcome {
	return w.runner.RunCycle(ctx)
}

// Evaluate fetches and evaluates once without touching the sink.
func (w *Watcher) Evaluate(ctx context.Context) (domain.CycleResult, error) {
	return w.runner.Evaluate(ctx)
}

// Start starts the health server and the monitor loop. It returns
// immediately; Stop waits for both to finish. A health server failure is
// logged and never stops the loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.group = &errgroup.Group{}

	w.group.Go(func() error {
		w.log.Info("Health server listening", "port", w.cfg.Port)
		if err := w.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.log.Error("Health server failed", "error", err)
		}
		return nil
	})

	w.group.Go(func() error {
		w.runner.Start(ctx)
		return nil
	})

	return nil
}

// Stop shuts down the health server, waits for the loop to exit and closes
// every sink. The caller must cancel the context passed to Start first.
func (w *Watcher) Stop(ctx context.Context) error {
	var errs []error
	w.stopOnce.Do(func() {
		w.log.Info("Stopping Watcher...")

		if err := w.healthServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop health server: %w", err))
		}

		if w.group != nil {
			if err := w.group.Wait(); err != nil {
				errs = append(errs, err)
			}
		}

		errs = append(errs, w.closeResources()...)
	})
	return errors.Join(errs...)
}

// Close releases sinks and the RPC client without starting anything.
func (w *Watcher) Close() error {
	return errors.Join(w.closeResources()...)
}

func (w *Watcher) closeResources() []error {
	var errs []error
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			w.log.Warn("Failed to close sink", "error", err)
			errs = append(errs, err)
		}
	}
	w.closers = nil
	if err := w.provider.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
