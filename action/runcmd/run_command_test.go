package runcmd

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

func newTestRunner(t *testing.T) (*action.Runner, *tasktree.Context) {
	t.Helper()
	shared := tasktree.NewContext()
	env := action.Env{Exec: executor.NewLocalExecutor(), Shared: shared}
	return action.NewRunner(New(), env, action.RunnerConfig{}), shared
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestRunCommand_Success(t *testing.T) {
	runner, _ := newTestRunner(t)

	node := runner.Run(context.Background(), action.Options{
		OptCommand: "sh",
		OptArgs:    []string{"-c", `echo '{"status":0,"result":{"ok":true}}'`},
	}, testLog())

	assert.Equal(t, outcome.StatusSuccess, node.Status())
	require.Len(t, node.Children(), 1)
	assert.Equal(t, outcome.KindExecutor, node.Children()[0].Kind())
	assert.Equal(t, outcome.StatusSuccess, node.Children()[0].Status())
}

func TestRunCommand_TemplateFromSharedContext(t *testing.T) {
	runner, shared := newTestRunner(t)
	shared.Set("bin", "sh")

	node := runner.Run(context.Background(), action.Options{
		OptCommand: "{{ .bin }}",
		OptArgs:    []string{"-c", `echo '{"status":0}'`},
	}, testLog())

	assert.Equal(t, outcome.StatusSuccess, node.Status())
	command, ok := node.Detail().GetString("command")
	require.True(t, ok)
	assert.Equal(t, "sh", command)
}

func TestRunCommand_UnresolvedTemplateIsError(t *testing.T) {
	runner, _ := newTestRunner(t)

	node := runner.Run(context.Background(), action.Options{
		OptCommand: "{{ .missing }}",
	}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
}

func TestRunCommand_ToolFailure(t *testing.T) {
	runner, _ := newTestRunner(t)

	node := runner.Run(context.Background(), action.Options{
		OptCommand: "sh",
		OptArgs:    []string{"-c", `echo '{"status":3,"error":{"message":"disk full"}}'; exit 3`},
	}, testLog())

	assert.Equal(t, outcome.StatusFailure, node.Status())
	status, ok := outcome.ToolStatus(node.Detail())
	require.True(t, ok)
	assert.Equal(t, 3, status)
}

func TestRunCommand_SpawnFailureIsError(t *testing.T) {
	runner, _ := newTestRunner(t)

	node := runner.Run(context.Background(), action.Options{
		OptCommand: "/nonexistent/tool-xyz",
	}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	// The attempted call is still recorded as an executor child.
	require.Len(t, node.Children(), 1)
	assert.Equal(t, outcome.StatusError, node.Children()[0].Status())
}

func TestRunCommand_MissingCommandOption(t *testing.T) {
	runner, _ := newTestRunner(t)

	node := runner.Run(context.Background(), action.Options{}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	assert.Empty(t, node.Children())
}

func TestRunCommand_Registered(t *testing.T) {
	a, err := action.Get(ActionName)
	require.NoError(t, err)
	assert.Equal(t, ActionName, a.Name())
}
