package main

import (
	"log/slog"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string
	driver     string
	format     string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lattice",
		Short: "Lattice composes discrete-event models into persistent networks",
		Long: `Lattice wires component models together through numbered ports and saves the
resulting networks with shared components, repeated couplings and boundary
couplings intact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultFile, "Path to the configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.driver, "store", "", "Snapshot store driver (memory, file, redis, sqlite)")
	flags.StringVar(&a.format, "format", "", "Document format for stored snapshots (json, yaml, compact)")

	root.AddCommand(
		newVersionCmd(),
		newInspectCmd(a),
		newValidateCmd(a),
		newGraphCmd(a),
		newConvertCmd(a),
		newRouteCmd(a),
		newBuildCmd(a),
		newStoreCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads the configuration, applying flag overrides last.
func (a *app) setup(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(a.configPath, !explicit)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.driver != "" {
		cfg.Store.Driver = a.driver
	}
	if a.format != "" {
		cfg.Format = a.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(level)
	return nil
}

// environment opens the configured snapshot store.
func (a *app) environment(metrics *observability.Metrics) (*cli.Environment, error) {
	return cli.NewEnvironment(a.cfg, metrics, a.logger)
}
