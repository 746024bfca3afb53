package action

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/common"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/progress"
)

// RunnerConfig shapes one runner's lifecycle timing.
type RunnerConfig struct {
	// ProgressInterval is the notifier tick interval.
	ProgressInterval time.Duration
	// SuccessDelay is the post-completion display pause on the success path.
	SuccessDelay time.Duration
	// ErrorDelay is the post-completion display pause on the failure and
	// error paths.
	ErrorDelay time.Duration
	// Sink receives progress lines; nil disables notification.
	Sink progress.Sink
}

// Runner drives one action through the fixed lifecycle
// VALIDATE → RESET → INVOKE → CLASSIFY → NOTIFY-DELAY. A runner is
// reusable across invocations; transient state is cleared on every run.
// Whatever the body does, the returned node is always terminal: nothing
// escapes the lifecycle unclassified.
type Runner struct {
	action Action
	env    Env
	cfg    RunnerConfig

	// transient, cleared by reset
	notifier *progress.Notifier
	lastNode *outcome.Node

	sleep func(time.Duration)
}

// NewRunner creates a Runner for one action.
func NewRunner(a Action, env Env, cfg RunnerConfig) *Runner {
	return &Runner{
		action: a,
		env:    env,
		cfg:    cfg,
		sleep:  time.Sleep,
	}
}

// LastNode returns the node of the most recent invocation, nil before the
// first run.
func (r *Runner) LastNode() *outcome.Node {
	return r.lastNode
}

// Run executes one invocation and returns the action's terminal node.
func (r *Runner) Run(ctx context.Context, opts Options, log *logrus.Entry) *outcome.Node {
	alog := log.WithField(common.LogFieldActionName, r.action.Name())

	// VALIDATE: fail fast before any executor node exists.
	if err := r.validate(opts); err != nil {
		alog.Errorf("Validation failed for action %s: %v", r.action.Name(), err)
		node := outcome.New(r.action.Name(), outcome.KindAction, opts.NodeOptions())
		_ = node.Error(errors.Wrapf(err, "invalid options for action %q", r.action.Name()))
		r.lastNode = node
		r.sleep(r.cfg.ErrorDelay)
		return node
	}

	// RESET: runners are reusable and must not leak prior state.
	r.reset()

	node := outcome.New(r.action.Name(), outcome.KindAction, opts.NodeOptions()).Start()
	r.lastNode = node

	r.notifier = progress.NewNotifier(r.cfg.Sink,
		fmt.Sprintf("%s: %s", r.action.Name(), r.action.Description()),
		r.cfg.ProgressInterval).Start()
	node.AttachNotifier(r.notifier)

	// INVOKE
	err := r.invoke(ctx, node, opts, alog)

	// CLASSIFY
	switch {
	case err != nil && !node.IsTerminal():
		if bubbled, ok := outcome.AsBubbled(err); ok && bubbled.Child.Status() == outcome.StatusFailure {
			// The body aborted on a bubbled tool failure; the action
			// inherits the child's classification.
			_ = node.Failure(bubbled.Child.Detail())
		} else {
			_ = node.Error(err)
		}
	case err != nil:
		// Body finalized the node itself before returning the error; the
		// node's classification wins, the error is recorded as detail.
		alog.Debugf("Action %s returned error after finalizing its node: %v", r.action.Name(), err)
	case !node.IsTerminal():
		// Finalization was left to the runner.
		_ = node.Success(nil)
	}

	// Finalization stops the attached notifier; stopping again is a no-op.
	r.notifier.Stop()

	// NOTIFY-DELAY: give a human observer time to read the status line.
	if node.Succeeded() {
		alog.Infof("Action %s completed: %s", r.action.Name(), node.Status())
		r.sleep(r.cfg.SuccessDelay)
	} else {
		alog.Errorf("Action %s completed: %s (%s)", r.action.Name(), node.Status(), node.Message())
		r.sleep(r.cfg.ErrorDelay)
	}
	return node
}

func (r *Runner) validate(opts Options) error {
	if err := opts.Require(r.action.RequiredOptions()...); err != nil {
		return err
	}
	if v, ok := r.action.(OptionValidator); ok {
		return v.ValidateOptions(opts)
	}
	return nil
}

func (r *Runner) reset() {
	if r.notifier != nil {
		r.notifier.Stop()
		r.notifier = nil
	}
	r.lastNode = nil
}

// invoke calls the body, converting panics into errors so a buggy body
// cannot unwind past the lifecycle.
func (r *Runner) invoke(ctx context.Context, node *outcome.Node, opts Options, log *logrus.Entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("panic in action %q: %v", r.action.Name(), rec)
		}
	}()
	return r.action.Execute(ctx, r.env, opts, node, log)
}
