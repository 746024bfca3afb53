package recipe

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

type stubRecipe struct {
	Base
	tasks func(b *Builder) []*tasktree.Task
}

func (s *stubRecipe) Tasks(b *Builder) []*tasktree.Task {
	return s.tasks(b)
}

func newStub(name string, tasks func(b *Builder) []*tasktree.Task) *stubRecipe {
	return &stubRecipe{Base: NewBase(name, "test recipe"), tasks: tasks}
}

func testEngine() *Engine {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewEngine(Deps{Exec: executor.NewLocalExecutor()}, logrus.NewEntry(l))
}

func TestEngine_EmptyRecipeIsError(t *testing.T) {
	e := testEngine()
	root, results, err := e.Run(context.Background(), newStub("empty", func(b *Builder) []*tasktree.Task {
		return nil
	}))

	require.Error(t, err)
	assert.Equal(t, outcome.StatusError, root.Status())
	assert.Empty(t, results)
}

func TestEngine_SuccessfulRunSummarizesChildren(t *testing.T) {
	e := testEngine()
	r := newStub("ok", func(b *Builder) []*tasktree.Task {
		return []*tasktree.Task{{
			Title: "attach",
			Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
				child := outcome.New("probe", outcome.KindAction, outcome.Options{StartNow: true})
				require.NoError(t, child.Success(nil))
				return b.Root().AddChild(child)
			},
		}}
	})

	root, results, err := e.Run(context.Background(), r)

	require.NoError(t, err)
	assert.Equal(t, outcome.StatusSuccess, root.Status())
	require.Len(t, results, 1)
	actions, ok := root.Detail().GetMap("actions")
	require.True(t, ok)
	n, _ := actions.GetInt(outcome.StatusSuccess.String())
	assert.Equal(t, 1, n)
}

func TestEngine_TaskFailureBecomesRootFailure(t *testing.T) {
	e := testEngine()
	r := newStub("fails", func(b *Builder) []*tasktree.Task {
		return []*tasktree.Task{{
			Title: "boom",
			Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
				return errors.New("tool said no")
			},
		}}
	})

	root, _, err := e.Run(context.Background(), r)

	require.Error(t, err)
	assert.Equal(t, outcome.StatusFailure, root.Status())
	msg, ok := root.Detail().GetString("message")
	require.True(t, ok)
	assert.Contains(t, msg, "tool said no")
}

func TestEngine_ErroredChildPromotesRootToError(t *testing.T) {
	e := testEngine()
	r := newStub("errs", func(b *Builder) []*tasktree.Task {
		return []*tasktree.Task{{
			Title: "broken",
			Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
				child := outcome.New("probe", outcome.KindAction, outcome.Options{StartNow: true})
				cause := errors.New("cannot reach target")
				require.NoError(t, child.Error(cause))
				if err := b.Root().AddChild(child); err != nil {
					return err
				}
				return cause
			},
		}}
	})

	root, _, err := e.Run(context.Background(), r)

	require.Error(t, err)
	assert.Equal(t, outcome.StatusError, root.Status())
}

func TestEngine_ContextSeedVisibleToTasks(t *testing.T) {
	e := testEngine()
	var seen string
	r := newStub("seeded", func(b *Builder) []*tasktree.Task {
		return []*tasktree.Task{{
			Title: "read",
			Run: func(ctx context.Context, c *tasktree.Context, log *logrus.Entry) error {
				seen, _ = c.GetString("target")
				return nil
			},
		}}
	})

	c := tasktree.NewContext()
	c.Set("target", "10.0.0.5")
	_, _, err := e.RunWithContext(context.Background(), r, c)

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", seen)
}

func TestRegistry(t *testing.T) {
	require.NoError(t, Register("reg-test", func() Recipe {
		return newStub("reg-test", func(b *Builder) []*tasktree.Task { return nil })
	}))
	assert.Error(t, Register("reg-test", func() Recipe { return nil }))

	r, err := Get("reg-test")
	require.NoError(t, err)
	assert.Equal(t, "reg-test", r.Name())

	_, err = Get("no-such-recipe")
	assert.Error(t, err)

	assert.Contains(t, RegisteredNames(), "reg-test")
}
