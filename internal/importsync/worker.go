package importsync

import (
	"context"
	"io"
	"log"
	"time"
)

type workerRunner interface {
	Run(context.Context) (Summary, error)
}

// ConfigProvider supplies the worker configuration. It is consulted before
// every run so interval and enablement changes apply without a restart.
type ConfigProvider interface {
	GetWorkerConfig(ctx context.Context) (WorkerConfig, error)
}

// ConfigFunc adapts a function to ConfigProvider.
type ConfigFunc func(ctx context.Context) (WorkerConfig, error)

func (f ConfigFunc) GetWorkerConfig(ctx context.Context) (WorkerConfig, error) { return f(ctx) }

type WorkerConfig struct {
	Enabled      bool
	StartupDelay time.Duration
	Interval     time.Duration
	Timeout      time.Duration
}

type Worker struct {
	runner       workerRunner
	configSource ConfigProvider
	fallbackCfg  WorkerConfig
	logger       *log.Logger
}

// NewWorker creates a worker. If configSource is nil, fallbackCfg is used statically.
func NewWorker(runner workerRunner, fallbackCfg WorkerConfig, configSource ConfigProvider, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if fallbackCfg.StartupDelay < 0 {
		fallbackCfg.StartupDelay = 0
	}
	if fallbackCfg.Interval < 0 {
		fallbackCfg.Interval = 0
	}

	return &Worker{
		runner:       runner,
		configSource: configSource,
		fallbackCfg:  fallbackCfg,
		logger:       logger,
	}
}

func (w *Worker) getConfig(ctx context.Context) WorkerConfig {
	if w.configSource == nil {
		return w.fallbackCfg
	}
	cfg, err := w.configSource.GetWorkerConfig(ctx)
	if err != nil {
		w.logger.Printf("failed to read import config, using fallback: %v", err)
		return w.fallbackCfg
	}
	return cfg
}

func (w *Worker) Run(ctx context.Context) {
	cfg := w.getConfig(ctx)
	if !cfg.Enabled || w.runner == nil {
		return
	}
	if cfg.StartupDelay > 0 {
		timer := time.NewTimer(cfg.StartupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	w.runOnce(ctx, cfg)

	if cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			latest := w.getConfig(ctx)
			if !latest.Enabled {
				w.logger.Printf("import disabled via config, pausing")
				continue
			}
			if latest.Interval > 0 && latest.Interval != cfg.Interval {
				ticker.Reset(latest.Interval)
				w.logger.Printf("import interval updated to %s", latest.Interval)
			}
			cfg = latest
			w.runOnce(ctx, cfg)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, cfg WorkerConfig) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	summary, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Printf("import failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	w.logger.Printf(
		"import finished in %s: customers=%d leads=%d owners=%d",
		time.Since(start).Round(time.Millisecond),
		summary.Customers,
		summary.Leads,
		len(summary.Owners),
	)
}
