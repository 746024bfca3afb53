// Package progress emits periodic elapsed-time status lines for a step
// that is still in flight. The notifier runs independently of the step's
// own completion and is torn down exactly once, at outcome finalization.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the tick interval used when the caller passes zero.
const DefaultInterval = 1000 * time.Millisecond

// Sink receives status text. Absence of a sink is legal; notifications
// become no-ops.
type Sink interface {
	Receive(text string)
}

// Notifier periodically pushes "[elapsed] message" lines to a sink while
// a step executes. It never blocks or influences the step itself.
type Notifier struct {
	mu      sync.Mutex
	sink    Sink
	message string
	stopped bool

	interval time.Duration
	started  time.Time
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewNotifier creates a notifier. sink may be nil.
func NewNotifier(sink Sink, message string, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Notifier{
		sink:     sink,
		message:  message,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins ticking. Starting a nil-sink notifier is a no-op.
func (n *Notifier) Start() *Notifier {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sink == nil || n.stopped || n.ticker != nil {
		return n
	}
	n.started = time.Now()
	n.ticker = time.NewTicker(n.interval)
	go n.loop(n.ticker)
	return n
}

func (n *Notifier) loop(t *time.Ticker) {
	for {
		select {
		case <-n.done:
			return
		case <-t.C:
			n.emit()
		}
	}
}

// emit delivers one status line unless the notifier was stopped. Holding
// the lock across Receive guarantees that no line is delivered after Stop
// returns.
func (n *Notifier) emit() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped || n.sink == nil {
		return
	}
	n.sink.Receive(fmt.Sprintf("[%s] %s", formatElapsed(time.Since(n.started)), n.message))
}

// SetMessage replaces the status text for subsequent ticks.
func (n *Notifier) SetMessage(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
}

// Stop tears the notifier down. Stopping twice, or stopping a notifier
// that never started, is a safe no-op.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		n.mu.Lock()
		n.stopped = true
		if n.ticker != nil {
			n.ticker.Stop()
		}
		n.mu.Unlock()
		close(n.done)
	})
}

// formatElapsed renders a duration as mm:ss, growing to h:mm:ss past an
// hour.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// LogSink adapts a logrus entry into a Sink.
type LogSink struct {
	entry *logrus.Entry
}

// NewLogSink creates a Sink that logs received text at info level.
func NewLogSink(entry *logrus.Entry) *LogSink {
	return &LogSink{entry: entry}
}

// Receive implements Sink.
func (l *LogSink) Receive(text string) {
	l.entry.Info(text)
}
