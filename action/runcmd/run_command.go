// Package runcmd provides the generic run-command action: it executes one
// external command through the configured executor and classifies the raw
// result into the action's outcome node.
package runcmd

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/classify"
	"github.com/mensylisir/xmrecipes/common"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/util"
)

// ActionName is the registry name of this action.
const ActionName = "run-command"

// Option keys understood by the action. Command and args are rendered as
// templates against the shared run context, so a recipe can write
// "{{ .cli }}" and let an earlier task decide the binary.
const (
	OptCommand = "command"
	OptArgs    = "args"
)

func init() {
	if err := action.Register(ActionName, func() action.Action { return New() }); err != nil {
		panic(err)
	}
}

// RunCommand executes a single external command.
type RunCommand struct {
	action.Base
}

// New creates a RunCommand action.
func New() *RunCommand {
	return &RunCommand{
		Base: action.NewBase(ActionName, "executes an external command and classifies its output"),
	}
}

// RequiredOptions implements action.Action.
func (r *RunCommand) RequiredOptions() []string {
	return []string{OptCommand}
}

// Execute implements action.Action.
func (r *RunCommand) Execute(ctx context.Context, env action.Env, opts action.Options, node *outcome.Node, log *logrus.Entry) error {
	vars := util.Data(env.Shared.Snapshot())

	cmdTmpl, _ := opts.GetString(OptCommand)
	command, err := util.RenderString(cmdTmpl, vars)
	if err != nil {
		return err
	}

	rawArgs, _ := opts.GetStringSlice(OptArgs)
	args := make([]string, 0, len(rawArgs))
	for _, a := range rawArgs {
		rendered, err := util.RenderString(a, vars)
		if err != nil {
			return err
		}
		args = append(args, rendered)
	}

	_ = node.Put("command", command)
	_ = node.Put("args", args)

	execLog := log.WithField(common.LogFieldExecutorName, command)
	execLog.Debugf("Executing command %s", command)

	res, execErr := env.Exec.Execute(ctx, command, args...)
	if execErr != nil {
		// The process never ran; record the attempt and abort.
		child := outcome.New(command, outcome.KindExecutor, outcome.Options{StartNow: true})
		_ = child.Error(execErr)
		if err := node.AddChild(child); err != nil {
			return err
		}
		return execErr
	}

	child := classify.Command(command, res)
	if err := node.AddChild(child); err != nil {
		return err
	}

	// The single command is the whole action; its classification becomes
	// the action's own.
	switch child.Status() {
	case outcome.StatusFailure:
		return node.Failure(child.Detail())
	case outcome.StatusError:
		return child.Err()
	default:
		return node.Success(outcome.Detail{"result": child.Detail()})
	}
}
