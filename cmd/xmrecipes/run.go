package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmrecipes/config"
	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/logger"
	"github.com/mensylisir/xmrecipes/progress"
	"github.com/mensylisir/xmrecipes/recipe"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <recipe>",
		Short: "Runs a recipe and prints its outcome tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recipe.Get(args[0])
			if err != nil {
				return err
			}

			exec, err := buildExecutor(opts.cfg)
			if err != nil {
				return err
			}
			defer exec.Close()

			log := logger.Log.WithField("app", "xmrecipes")
			engine := recipe.NewEngine(recipe.Deps{
				Exec: exec,
				Cfg:  opts.cfg,
				Sink: progress.NewLogSink(log),
			}, log)

			root, _, runErr := engine.Run(cmd.Context(), r)
			fmt.Fprintln(cmd.OutOrStdout(), root.Render())
			if runErr != nil {
				return errors.Wrapf(runErr, "recipe %q did not succeed", r.Name())
			}
			return nil
		},
	}
}

// buildExecutor returns an SSH executor when a remote host is configured,
// a local one otherwise.
func buildExecutor(cfg *config.Config) (executor.Executor, error) {
	if cfg.Remote == nil {
		return executor.NewLocalExecutor(), nil
	}
	return executor.NewSSHExecutor(executor.SSHConfig{
		Address:        cfg.Remote.Address,
		Port:           cfg.Remote.Port,
		User:           cfg.Remote.User,
		Password:       cfg.Remote.Password,
		PrivateKeyPath: cfg.Remote.PrivateKeyPath,
		Timeout:        30 * time.Second,
	})
}
