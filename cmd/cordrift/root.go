package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/cordrift/drift"
)

// options are the flags shared by every command.
type options struct {
	config   string
	workers  int
	logLevel string
	onbeads  bool
	log      *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{log: logrus.New()}
	cmd := &cobra.Command{
		Use:          "cordrift",
		Short:        "Event detection and drift correction for track experiments",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.log.SetLevel(level)
			opts.log.SetOutput(cmd.ErrOrStderr())

			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "YAML drift configuration")
	flags.IntVar(&opts.workers, "workers", 0, "parallel beads or cycles (0: one per CPU)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "panic|fatal|error|warn|info|debug|trace")
	flags.BoolVar(&opts.onbeads, "onbeads", true, "one profile per bead instead of per cycle")

	cmd.AddCommand(
		simulateCmd(opts),
		eventsCmd(opts),
		profileCmd(opts),
		correctCmd(opts),
	)

	return cmd
}

// load reads --config, then applies the flags given on the command line.
func (o *options) load(cmd *cobra.Command) (drift.Config, error) {
	cfg := drift.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = drift.LoadConfigFile(o.config); err != nil {
			return drift.Config{}, err
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = o.workers
	}
	if cmd.Flags().Changed("onbeads") {
		cfg.OnBeads = o.onbeads
	}
	if err := cfg.Validate(); err != nil {
		return drift.Config{}, fmt.Errorf("cordrift: %w", err)
	}

	return cfg, nil
}

func (o *options) runner(cmd *cobra.Command, root string) (*drift.Runner, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	task, err := drift.NewTask(cfg)
	if err != nil {
		return nil, err
	}

	return drift.NewRunner(task, drift.WithLogger(o.log), drift.WithRoot(root)), nil
}
