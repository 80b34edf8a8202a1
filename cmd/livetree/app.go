package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/livetree/internal/config"
	"github.com/vango-dev/livetree/pkg/dom"
	"github.com/vango-dev/livetree/pkg/reactive"
	"github.com/vango-dev/livetree/pkg/reconcile"
	"github.com/vango-dev/livetree/pkg/telemetry"
)

// app holds what every command shares: configuration and the ambient
// logging, metrics and tracing built from it.
type app struct {
	configPath string

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
	provider *sdktrace.TracerProvider
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg)

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(a.registry),
		)
	}

	if cfg.Tracing.Enabled {
		opts := []telemetry.TracerOption{telemetry.WithTracerName(cfg.Tracing.TracerName)}
		if cfg.Tracing.Stdout {
			tp, err := telemetry.NewStdoutProvider(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.provider = tp
			opts = append(opts, telemetry.WithTracerProvider(tp))
		}
		a.tracer = telemetry.NewTracer(opts...)
	}

	a.logger.Debug("config loaded",
		"path", cfg.Path(),
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.provider == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.provider.Shutdown(ctx)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) schedulerOptions() []reactive.Option {
	return []reactive.Option{
		reactive.WithMaxRounds(a.cfg.Reactive.MaxFlushRounds),
		reactive.WithStackCapture(a.cfg.Reactive.CaptureStacks),
		reactive.WithLogger(a.logger),
		reactive.WithMetrics(a.metrics),
		reactive.WithTracer(a.tracer),
	}
}

// buildOptions keeps freshly built trees in line with reconcileOptions.
func (a *app) buildOptions() []dom.BuildOption {
	return []dom.BuildOption{dom.WithPropertyMirrors(a.cfg.Reconcile.PropertyMirrors...)}
}

func (a *app) reconcileOptions() []reconcile.Option {
	return []reconcile.Option{
		reconcile.WithPropertyMirrors(a.cfg.Reconcile.PropertyMirrors...),
		reconcile.WithLogger(a.logger),
		reconcile.WithMetrics(a.metrics),
		reconcile.WithTracer(a.tracer),
	}
}
