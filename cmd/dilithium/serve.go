package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vango-dev/dilithium/internal/config"
	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/internal/preview"
	"github.com/vango-dev/dilithium/internal/scene"
	"github.com/vango-dev/dilithium/pkg/telemetry"
)

type serveOptions struct {
	host     string
	port     int
	interval time.Duration
}

func serveCmd(g *globals) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve <scene>",
		Short: "Serve a scene over HTTP and WebSocket",
		Long: `Serve a scene for inspection.

Routes:
  /          the scene as an HTML page (?step=N stops after N steps)
  /html      the rendered fragment only
  /metrics   Prometheus metrics (when metrics.enabled)
  /ws        a binary frame stream replaying the scene

Examples:
  dilithium serve scenes/shuffle.yaml
  dilithium serve scenes/shuffle.yaml --port=8080 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E140").WithSuggestion("dilithium serve <scene.yaml>")
			}
			return runServe(cmd.Context(), g, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from dilithium.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from dilithium.json)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Delay between steps on /ws (default from dilithium.json)")

	return cmd
}

// applyServeFlags copies command-line overrides onto cfg.
func applyServeFlags(cfg *config.Config, opts serveOptions) error {
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.interval != 0 {
		cfg.Server.StepInterval = opts.interval.String()
	}
	return cfg.Validate()
}

func previewOptions(g *globals, sc *scene.Scene) preview.Options {
	opts := preview.Options{
		Addr:         g.cfg.Address(),
		Scene:        sc,
		Registry:     scene.NewRegistry(),
		Logger:       g.logger,
		StepInterval: g.cfg.StepDuration(),
	}
	if g.cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		opts.Metrics = telemetry.NewMetrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(g.cfg.Metrics.Namespace),
		)
		opts.Gatherer = reg
	}
	if g.cfg.Tracing.Enabled {
		opts.Tracer = telemetry.NewTracer(telemetry.WithTracerName(g.cfg.Tracing.TracerName))
	}
	return opts
}

func runServe(ctx context.Context, g *globals, path string, opts serveOptions) error {
	if err := applyServeFlags(g.cfg, opts); err != nil {
		return err
	}
	sc, err := scene.Load(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := preview.New(previewOptions(g, sc))
	if err != nil {
		return errors.New("E142").Wrap(err)
	}
	fmt.Fprintf(os.Stderr, "Serving %s at http://%s\n", sc.Name, g.cfg.Address())
	if err := srv.Start(ctx); err != nil {
		return errors.New("E142").Wrap(err)
	}
	return nil
}
