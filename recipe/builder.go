package recipe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// Builder is handed to Recipe.Tasks so the declared tasks can reach the
// run's dependencies and attach their action nodes to the recipe's root.
type Builder struct {
	deps      Deps
	root      *outcome.Node
	runnerCfg action.RunnerConfig
}

// Deps returns the run's dependencies for tasks that talk to the
// executor or context directly.
func (b *Builder) Deps() Deps {
	return b.deps
}

// Root returns the recipe's root outcome node.
func (b *Builder) Root() *outcome.Node {
	return b.root
}

// ActionTask wraps a registered action into a task. The action's terminal
// node is attached to the recipe root; a non-succeeded node fails the
// task so the surrounding group's policy decides whether to halt.
func (b *Builder) ActionTask(title, actionName string, opts action.Options) *tasktree.Task {
	return &tasktree.Task{
		Title: title,
		Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
			a, err := action.Get(actionName)
			if err != nil {
				return err
			}
			runner := action.NewRunner(a, action.Env{Exec: b.deps.Exec, Shared: c}, b.runnerCfg)
			node := runner.Run(ctx, opts, log)
			if err := b.root.AddChild(node); err != nil {
				return err
			}
			if !node.Succeeded() {
				if nodeErr := node.Err(); nodeErr != nil {
					return nodeErr
				}
				return errors.Errorf("action %q failed: %s", actionName, node.Message())
			}
			return nil
		},
	}
}

// Group declares a task whose children run as one group.
func (b *Builder) Group(title string, concurrent, continueOnError bool, children ...*tasktree.Task) *tasktree.Task {
	return &tasktree.Task{
		Title:           title,
		Tasks:           children,
		Concurrent:      concurrent,
		ContinueOnError: continueOnError,
	}
}
