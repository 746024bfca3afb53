package action

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// Env is the execution environment threaded into every action body:
// the external-process adapter and the shared per-run context. Ambient
// state is never reached for implicitly.
type Env struct {
	Exec   executor.Executor
	Shared *tasktree.Context
}

// Action is one logical step of a recipe, composed of zero or more
// executor calls. Implementations register a constructor instead of
// subclassing; the runner drives the lifecycle around Execute.
type Action interface {
	// Name returns the display name of the action.
	Name() string

	// Description provides a human-readable summary of what the action does.
	Description() string

	// RequiredOptions lists option keys that must be present before the
	// body runs. The runner fails fast on missing keys without creating
	// any executor node.
	RequiredOptions() []string

	// Execute runs the body against node, which the runner created in
	// WAITING. The body attaches EXECUTOR children for its external calls
	// and may finalize node itself; a node still WAITING on return is
	// forced to SUCCESS. A returned error aborts the action and is
	// classified by the runner; nothing escapes unclassified.
	Execute(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error
}

// OptionValidator is an optional extension for actions whose validation
// goes beyond required-key presence.
type OptionValidator interface {
	ValidateOptions(opts Options) error
}

// Base provides common fields for action implementations.
type Base struct {
	ActionName        string
	ActionDescription string
}

// NewBase is a helper constructor for the common fields.
func NewBase(name, description string) Base {
	return Base{ActionName: name, ActionDescription: description}
}

// Name returns the name of the action.
func (b *Base) Name() string {
	return b.ActionName
}

// Description returns the description of the action.
func (b *Base) Description() string {
	return b.ActionDescription
}

// RequiredOptions defaults to none.
func (b *Base) RequiredOptions() []string {
	return nil
}
