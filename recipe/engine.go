package recipe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/common"
	"github.com/mensylisir/xmrecipes/config"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// Engine runs recipes. One engine can run many recipes against the same
// dependencies; each run gets its own context and root node.
type Engine struct {
	deps Deps
	log  *logrus.Entry
}

// NewEngine creates an Engine. A nil Cfg falls back to defaults.
func NewEngine(deps Deps, log *logrus.Entry) *Engine {
	if deps.Cfg == nil {
		deps.Cfg = config.Default()
	}
	return &Engine{deps: deps, log: log}
}

// Run executes the recipe with a fresh run context and returns the
// recipe's root node, which is always terminal, together with the
// per-task results. The error aggregates every failed task.
func (e *Engine) Run(ctx context.Context, r Recipe) (*outcome.Node, []*tasktree.TaskResult, error) {
	return e.RunWithContext(ctx, r, tasktree.NewContext())
}

// RunWithContext executes the recipe against a caller-provided context,
// e.g. one pre-seeded with facts the recipe's predicates read.
func (e *Engine) RunWithContext(ctx context.Context, r Recipe, c *tasktree.Context) (*outcome.Node, []*tasktree.TaskResult, error) {
	log := e.log.WithFields(logrus.Fields{
		common.LogFieldRecipeName: r.Name(),
		common.LogFieldRunID:      c.RunID(),
	})
	log.Infof("Starting recipe %s (%s)", r.Name(), r.Description())

	root := outcome.New(r.Name(), outcome.KindRecipe, outcome.Options{StartNow: true})
	b := &Builder{
		deps: e.deps,
		root: root,
		runnerCfg: action.RunnerConfig{
			ProgressInterval: e.deps.Cfg.ProgressInterval(),
			SuccessDelay:     e.deps.Cfg.SuccessDelay(),
			ErrorDelay:       e.deps.Cfg.ErrorDelay(),
			Sink:             e.deps.Sink,
		},
	}

	tasks := r.Tasks(b)
	if len(tasks) == 0 {
		err := errors.Errorf("recipe %q declares no tasks", r.Name())
		_ = root.Error(err)
		return root, nil, err
	}

	runner := tasktree.NewRunner(e.deps.Cfg.Concurrency, log)
	results, runErr := runner.Run(ctx, c, tasks)

	e.finalize(root, runErr)
	if runErr != nil {
		log.Errorf("Recipe %s finished with status %s: %v", r.Name(), root.Status(), runErr)
	} else {
		log.Infof("Recipe %s finished with status %s", r.Name(), root.Status())
	}
	return root, results, runErr
}

// finalize classifies the root from the run's aggregate error and its
// children. An action-level ERROR anywhere makes the whole run an ERROR;
// ordinary tool failures make it a FAILURE.
func (e *Engine) finalize(root *outcome.Node, runErr error) {
	if root.IsTerminal() {
		return
	}
	if runErr == nil {
		_ = root.Success(summarize(root))
		return
	}
	for _, child := range root.Children() {
		if child.Status() == outcome.StatusError {
			_ = root.Error(runErr)
			return
		}
	}
	_ = root.Failure(summarize(root).Merge(outcome.Detail{"message": runErr.Error()}))
}

func summarize(root *outcome.Node) outcome.Detail {
	// A plain map, not a nested Detail: cast.ToStringMapE (behind
	// Detail.GetMap) rejects the named Detail type.
	counts := map[string]interface{}{}
	for _, child := range root.Children() {
		key := child.Status().String()
		n, _ := counts[key].(int)
		counts[key] = n + 1
	}
	return outcome.Detail{"actions": counts}
}
