// Package cli contains the flightperf commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"flightperf/internal/config"
)

// Global flags
type globalFlags struct {
	source   string
	encoding string
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "flightperf",
		Short: "Airline on-time performance reports",
		Long: `flightperf loads the BTS airline on-time table and serves yearly
performance and average delay reports over HTTP.

Settings come from environment variables (DATASET_SOURCE, HTTP_ADDR,
LOG_LEVEL, ...). Flags override them.

Examples:
  flightperf serve --addr :9090
  flightperf report --type avgdelay --year 2010 --format json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.source, "source", "", "Dataset path or http(s) URL (overrides DATASET_SOURCE)")
	root.PersistentFlags().StringVar(&g.encoding, "encoding", "", "Dataset encoding: iso-8859-1 | utf-8 (overrides DATASET_ENCODING)")

	serve := newServeCmd(g)
	root.AddCommand(serve, newReportCmd(g))
	root.RunE = serve.RunE
	return root
}

// Execute runs the root command until it returns or the process is
// signalled. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(g *globalFlags, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "source":
			cfg.DatasetSource = g.source
		case "encoding":
			cfg.DatasetEncoding = g.encoding
		case "addr":
			cfg.HTTPAddr = f.Value.String()
		case "watch":
			cfg.DatasetWatch = f.Value.String() == "true"
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
