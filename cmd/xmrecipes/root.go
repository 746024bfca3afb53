package main

import (
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmrecipes/config"
	"github.com/mensylisir/xmrecipes/logger"
	"github.com/mensylisir/xmrecipes/util"

	// Built-in recipes and actions register themselves.
	_ "github.com/mensylisir/xmrecipes/action/runcmd"
	_ "github.com/mensylisir/xmrecipes/recipe/diagnostics"
)

type rootOptions struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "xmrecipes",
		Short:         "Runs operational recipes against the external platform CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides the config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose (debug) logging")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	return cmd
}

// setup loads configuration and initializes the global logger. Flags win
// over the config file.
func (o *rootOptions) setup() error {
	if o.configPath != "" {
		cfg, err := config.NewLoader(o.configPath).Load()
		if err != nil {
			return err
		}
		o.cfg = cfg
	} else {
		o.cfg = config.Default()
	}

	o.cfg.LogLevel = util.FirstNonEmpty(o.logLevel, o.cfg.LogLevel)
	level, err := o.cfg.Level()
	if err != nil {
		return err
	}
	return logger.Init(level, o.verbose, o.cfg.LogDir)
}
