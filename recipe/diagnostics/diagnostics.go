// Package diagnostics ships a built-in recipe that collects independent
// platform facts from the external CLI. The facts are gathered
// concurrently and a failing probe does not stop the others.
package diagnostics

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/action/runcmd"
	"github.com/mensylisir/xmrecipes/recipe"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// RecipeName is the registry name of this recipe.
const RecipeName = "diagnostics"

// Context keys published by the detect task and read by later predicates.
const (
	// KeyCLI holds the platform CLI binary; pre-seed it to point the
	// recipe at a non-default binary.
	KeyCLI = "cli"
	// KeyInstalled reports whether the CLI was found on the target.
	KeyInstalled = "cliInstalled"
)

// DefaultCLI is probed when no binary was pre-seeded.
const DefaultCLI = "xmctl"

func init() {
	if err := recipe.Register(RecipeName, func() recipe.Recipe { return New() }); err != nil {
		panic(err)
	}
}

// Diagnostics collects platform facts.
type Diagnostics struct {
	recipe.Base
}

// New creates the diagnostics recipe.
func New() *Diagnostics {
	return &Diagnostics{
		Base: recipe.NewBase(RecipeName, "collects platform facts from the external CLI"),
	}
}

// Tasks implements recipe.Recipe.
func (r *Diagnostics) Tasks(b *recipe.Builder) []*tasktree.Task {
	detect := &tasktree.Task{
		Title: "Detect platform CLI",
		Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
			c.GetOrSet(KeyCLI, DefaultCLI)
			cli, _ := c.GetString(KeyCLI)
			res, err := b.Deps().Exec.Execute(ctx, "sh", "-c", "command -v "+cli)
			installed := err == nil && res.ExitCode == 0
			c.Set(KeyInstalled, installed)
			if installed {
				log.Infof("Platform CLI %s found", cli)
			} else {
				log.Warnf("Platform CLI %s not found, fact collection will be skipped", cli)
			}
			return nil
		},
	}

	facts := b.Group("Collect platform facts", true, true,
		factTask(b, "Platform version", "version"),
		factTask(b, "Session info", "session", "info"),
		factTask(b, "Storage status", "storage", "status"),
	)
	facts.Enabled = func(c *tasktree.Context) bool { return c.GetBool(KeyInstalled) }

	report := &tasktree.Task{
		Title: "Render report",
		Skip:  func(c *tasktree.Context) bool { return !c.GetBool(KeyInstalled) },
		Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
			log.Infof("Diagnostics outcome:\n%s", b.Root().Render())
			return nil
		},
	}

	return []*tasktree.Task{detect, facts, report}
}

func factTask(b *recipe.Builder, title string, args ...string) *tasktree.Task {
	return b.ActionTask(title, runcmd.ActionName, action.Options{
		runcmd.OptCommand: "{{ .cli }}",
		runcmd.OptArgs:    args,
	})
}
