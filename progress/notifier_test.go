package progress

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingSink) Receive(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

func (r *recordingSink) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

func TestNotifier_EmitsElapsedPrefixedLines(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, "deploying metadata", 10*time.Millisecond).Start()
	defer n.Stop()

	require.Eventually(t, func() bool { return sink.count() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.last(), "deploying metadata")
	assert.Regexp(t, `^\[\d{2}:\d{2}\] `, sink.last())
}

func TestNotifier_NoReceiveAfterStop(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, "working", 5*time.Millisecond).Start()

	require.Eventually(t, func() bool { return sink.count() >= 1 }, time.Second, time.Millisecond)
	n.Stop()
	countAtStop := sink.count()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, countAtStop, sink.count())
}

func TestNotifier_StopTwiceIsNoOp(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, "working", 5*time.Millisecond).Start()

	n.Stop()
	assert.NotPanics(t, func() { n.Stop() })
}

func TestNotifier_StopWithoutStart(t *testing.T) {
	n := NewNotifier(&recordingSink{}, "idle", time.Second)
	assert.NotPanics(t, func() { n.Stop() })
}

func TestNotifier_NilSinkIsNoOp(t *testing.T) {
	n := NewNotifier(nil, "silent", time.Millisecond).Start()
	time.Sleep(20 * time.Millisecond)
	n.Stop()
}

func TestNotifier_SetMessage(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, "phase one", 5*time.Millisecond).Start()
	defer n.Stop()

	require.Eventually(t, func() bool { return sink.count() >= 1 }, time.Second, time.Millisecond)
	assert.Contains(t, sink.last(), "phase one")

	n.SetMessage("phase two")
	require.Eventually(t, func() bool {
		return strings.HasSuffix(sink.last(), "phase two")
	}, time.Second, time.Millisecond)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", formatElapsed(300*time.Millisecond))
	assert.Equal(t, "00:05", formatElapsed(5*time.Second))
	assert.Equal(t, "02:35", formatElapsed(155*time.Second))
	assert.Equal(t, "1:00:01", formatElapsed(3601*time.Second))
}
