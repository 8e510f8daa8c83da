package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/internal/scene"
	"github.com/vango-dev/dilithium/pkg/memdom"
	"github.com/vango-dev/dilithium/pkg/reconcile"
	"github.com/vango-dev/dilithium/pkg/snapshot"
	"github.com/vango-dev/dilithium/pkg/telemetry"
)

type renderOptions struct {
	save     bool
	location string
	format   string
	html     bool
}

func renderCmd(g *globals) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Replay a scene and print each pass's operations",
		Long: `Replay a scene file and print the sibling operations each pass produced,
followed by the final HTML.

Snapshots go to snapshot.dir or snapshot.s3 from dilithium.json, or to
the location given with --snapshot.

Examples:
  dilithium render scenes/shuffle.yaml
  dilithium render scenes/shuffle.yaml --html
  dilithium render scenes/shuffle.yaml --save
  dilithium render scenes/shuffle.yaml --snapshot s3://render-snapshots/ci --format msgpack`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E140").WithSuggestion("dilithium render <scene.yaml>")
			}
			return runRender(cmd.Context(), g, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "Write a snapshot of the final tree to the configured location")
	cmd.Flags().StringVar(&opts.location, "snapshot", "", "Write a snapshot to this directory or s3://bucket/prefix (implies --save)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Snapshot format: html or msgpack (default from dilithium.json)")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the HTML after every pass")

	return cmd
}

func runRender(ctx context.Context, g *globals, path string, opts renderOptions, out io.Writer) error {
	sc, err := scene.Load(path)
	if err != nil {
		return err
	}

	format := g.cfg.SnapshotFormat()
	if opts.format != "" {
		if format, err = snapshot.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	doc := memdom.New()
	target := doc.Container("main")
	rec := &reconcile.Recorder{}
	observers := reconcile.MultiObserver{rec}
	if g.cfg.Tracing.Enabled {
		tracer := telemetry.NewTracer(telemetry.WithTracerName(g.cfg.Tracing.TracerName))
		observers = append(observers, tracer.Observer(ctx))
	}
	engine := reconcile.NewEngine(doc,
		reconcile.WithLogger(g.logger),
		reconcile.WithObserver(observers),
	)
	player := scene.NewPlayer(sc, scene.NewRegistry(), engine, target)

	fmt.Fprintf(out, "scene %s: %d steps\n", sc.Name, len(sc.Steps))

	if err := player.Start(); err != nil {
		return err
	}
	report(out, "initial", rec, target, opts.html)

	for i := 1; ; i++ {
		rec.Reset()
		more, err := player.Step()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		report(out, fmt.Sprintf("step %d", i), rec, target, opts.html)
	}

	if !opts.html {
		fmt.Fprintln(out, memdom.InnerHTML(target))
	}

	if opts.save || opts.location != "" {
		location := opts.location
		if location == "" {
			location = g.cfg.SnapshotLocation()
		}
		store, err := snapshot.Open(location, g.cfg.S3())
		if err != nil {
			return errors.New("E060").Wrap(err)
		}
		saved, err := snapshot.Save(ctx, store, sc.Name, target.Children[0], format)
		if err != nil {
			return errors.Classify(err, "E060")
		}
		fmt.Fprintf(out, "snapshot: %s\n", saved)
	}
	return nil
}

// report prints one pass: its instance churn and operations.
func report(out io.Writer, label string, rec *reconcile.Recorder, target *memdom.Node, html bool) {
	ops := rec.Ops()
	fmt.Fprintf(out, "%s: %d mounted, %d unmounted, %d ops\n", label, len(rec.Mounts), len(rec.Unmounts), len(ops))
	for _, op := range ops {
		fmt.Fprintf(out, "  %s\n", op)
	}
	if html {
		fmt.Fprintf(out, "  %s\n", memdom.InnerHTML(target))
	}
}
