// Package recipe is the orchestration layer: a recipe declares a task
// tree of actions, and the engine runs it, collecting everything into a
// single recipe-kind outcome node.
package recipe

import (
	"github.com/mensylisir/xmrecipes/config"
	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/progress"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// Deps bundles everything a recipe run needs from the outside world.
type Deps struct {
	// Exec runs external commands for all actions of the run.
	Exec executor.Executor
	// Cfg supplies timing and concurrency settings; nil means defaults.
	Cfg *config.Config
	// Sink receives progress lines from running actions; nil disables them.
	Sink progress.Sink
}

// Factory creates a fresh recipe instance.
type Factory func() Recipe

// Recipe represents a high-level workflow composed of tasks.
type Recipe interface {
	Name() string
	Description() string

	// Tasks declares the task tree for one run. The builder carries the
	// run's dependencies and the root node that action results attach to.
	Tasks(b *Builder) []*tasktree.Task
}

// Base provides the common fields for recipe implementations.
type Base struct {
	RecipeName        string
	RecipeDescription string
}

// NewBase is a helper constructor for the common fields.
func NewBase(name, description string) Base {
	return Base{RecipeName: name, RecipeDescription: description}
}

// Name returns the name of the recipe.
func (b *Base) Name() string {
	return b.RecipeName
}

// Description returns the description of the recipe.
func (b *Base) Description() string {
	return b.RecipeDescription
}
