package action

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/tasktree"
)

// mockAction drives the runner through arbitrary body behavior.
type mockAction struct {
	Base
	required    []string
	validateErr error
	body        func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error
	invocations int
}

func newMockAction(name string, body func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error) *mockAction {
	return &mockAction{Base: NewBase(name, "a mock action"), body: body}
}

func (m *mockAction) RequiredOptions() []string {
	return m.required
}

func (m *mockAction) ValidateOptions(opts Options) error {
	return m.validateErr
}

func (m *mockAction) Execute(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
	m.invocations++
	if m.body == nil {
		return nil
	}
	return m.body(ctx, env, opts, node, log)
}

var _ Action = (*mockAction)(nil)
var _ OptionValidator = (*mockAction)(nil)

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testEnv() Env {
	return Env{Shared: tasktree.NewContext()}
}

func newTestRunner(a Action, cfg RunnerConfig) (*Runner, *sleepRecorder) {
	r := NewRunner(a, testEnv(), cfg)
	rec := &sleepRecorder{}
	r.sleep = rec.sleep
	return r, rec
}

func TestRunner_BodyLeftWaitingIsForcedToSuccess(t *testing.T) {
	a := newMockAction("noop", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		return node.Put("touched", true)
	})
	r, rec := newTestRunner(a, RunnerConfig{SuccessDelay: 1 * time.Second, ErrorDelay: 5 * time.Second})

	node := r.Run(context.Background(), Options{}, testLog())

	assert.Equal(t, outcome.StatusSuccess, node.Status())
	assert.Equal(t, outcome.KindAction, node.Kind())
	require.Len(t, rec.slept, 1)
	assert.Equal(t, 1*time.Second, rec.slept[0], "success delay applies on the success path")
}

func TestRunner_MissingRequiredOptionFailsFast(t *testing.T) {
	a := newMockAction("strict", nil)
	a.required = []string{"targetOrg"}
	r, rec := newTestRunner(a, RunnerConfig{ErrorDelay: 2 * time.Second})

	node := r.Run(context.Background(), Options{}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	assert.Contains(t, node.Err().Error(), "targetOrg")
	assert.Zero(t, a.invocations, "body must not run after failed validation")
	assert.Empty(t, node.Children(), "no executor node is created")
	require.Len(t, rec.slept, 1)
	assert.Equal(t, 2*time.Second, rec.slept[0])
}

func TestRunner_CustomValidatorRejects(t *testing.T) {
	a := newMockAction("custom", nil)
	a.validateErr = errors.New("options are mutually exclusive")
	r, _ := newTestRunner(a, RunnerConfig{})

	node := r.Run(context.Background(), Options{}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	assert.Zero(t, a.invocations)
}

func TestRunner_BodyErrorIsClassified(t *testing.T) {
	a := newMockAction("boom", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		return errors.New("unexpected explosion")
	})
	r, rec := newTestRunner(a, RunnerConfig{SuccessDelay: time.Second, ErrorDelay: 3 * time.Second})

	node := r.Run(context.Background(), Options{}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	assert.Contains(t, node.Err().Error(), "unexpected explosion")
	require.Len(t, rec.slept, 1)
	assert.Equal(t, 3*time.Second, rec.slept[0], "error delay applies on the error path")
}

func TestRunner_BubbledFailureBecomesActionFailure(t *testing.T) {
	a := newMockAction("bubbling", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		child := outcome.New("tool-call", outcome.KindExecutor, outcome.Options{})
		require.NoError(t, child.Failure(outcome.Detail{"message": "tool said no", "status": 1}))
		if err := node.AddChild(child); err != nil {
			return err
		}
		return nil
	})
	r, _ := newTestRunner(a, RunnerConfig{})

	node := r.Run(context.Background(), Options{OptBubbleFailure: true}, testLog())

	assert.Equal(t, outcome.StatusFailure, node.Status())
	assert.Equal(t, "tool said no", node.Message())
	require.Len(t, node.Children(), 1)
}

func TestRunner_FailureIsErrorOptionPromotes(t *testing.T) {
	a := newMockAction("promoted", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		return node.Failure(outcome.Detail{"message": "soft failure"})
	})
	r, _ := newTestRunner(a, RunnerConfig{})

	node := r.Run(context.Background(), Options{OptFailureIsError: true}, testLog())
	assert.Equal(t, outcome.StatusError, node.Status())
}

func TestRunner_BodyFinalizedNodeWins(t *testing.T) {
	a := newMockAction("selfdone", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		require.NoError(t, node.Failure(outcome.Detail{"message": "my own classification"}))
		return errors.New("and an error on top")
	})
	r, _ := newTestRunner(a, RunnerConfig{})

	node := r.Run(context.Background(), Options{}, testLog())
	assert.Equal(t, outcome.StatusFailure, node.Status())
	assert.Equal(t, "my own classification", node.Message())
}

func TestRunner_PanicInBodyIsContained(t *testing.T) {
	a := newMockAction("panicky", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		panic("slice index out of range")
	})
	r, _ := newTestRunner(a, RunnerConfig{})

	node := r.Run(context.Background(), Options{}, testLog())

	assert.Equal(t, outcome.StatusError, node.Status())
	assert.Contains(t, node.Err().Error(), "panic in action")
}

func TestRunner_IsReusableAcrossInvocations(t *testing.T) {
	fail := true
	a := newMockAction("flaky", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		if fail {
			return errors.New("first run fails")
		}
		return nil
	})
	r, _ := newTestRunner(a, RunnerConfig{})

	first := r.Run(context.Background(), Options{}, testLog())
	assert.Equal(t, outcome.StatusError, first.Status())

	fail = false
	second := r.Run(context.Background(), Options{}, testLog())
	assert.Equal(t, outcome.StatusSuccess, second.Status())
	assert.NotSame(t, first, second, "no state leaks between invocations")
	assert.Same(t, second, r.LastNode())
	assert.Equal(t, 2, a.invocations)
}

type countingSink struct {
	mu       sync.Mutex
	received int
}

func (c *countingSink) Receive(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received++
}

func (c *countingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

func TestRunner_ProgressNotifierRunsDuringBodyAndStopsAfter(t *testing.T) {
	sink := &countingSink{}
	a := newMockAction("slow", func(ctx context.Context, env Env, opts Options, node *outcome.Node, log *logrus.Entry) error {
		time.Sleep(60 * time.Millisecond)
		return nil
	})
	r, _ := newTestRunner(a, RunnerConfig{ProgressInterval: 10 * time.Millisecond, Sink: sink})

	node := r.Run(context.Background(), Options{}, testLog())
	require.Equal(t, outcome.StatusSuccess, node.Status())
	assert.Greater(t, sink.count(), 0, "notifier fired while the body was in flight")

	count := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, sink.count(), "no notifications after finalization")
}
