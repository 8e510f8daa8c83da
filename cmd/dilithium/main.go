package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/dilithium/internal/config"
	"github.com/vango-dev/dilithium/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds state shared by every command.
type globals struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "dilithium",
		Short: "Replay element trees through the reconciler",
		Long: `dilithium mounts element trees described in scene files and replays
their updates through the reconciler.

A scene is an initial tree plus a list of steps. Each step either
re-renders the root or sets state on a mounted component. The CLI
prints the sibling operations every pass produced, serves the scene
over HTTP and WebSocket, and writes snapshots of the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to dilithium.json (default: nearest in the working directory or its parents)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override log.level: debug, info, warn or error")

	rootCmd.AddCommand(
		renderCmd(g),
		serveCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and installs the logger.
func (g *globals) load(stderr io.Writer) error {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.cfg = cfg
	g.logger = cfg.NewLogger(stderr)
	slog.SetDefault(g.logger)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(errors.Classify(err, "E143"))
		os.Exit(1)
	}
}
