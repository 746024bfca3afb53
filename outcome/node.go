package outcome

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind records which layer of the call chain produced a node.
type Kind string

const (
	KindUtility  Kind = "UTILITY"
	KindExecutor Kind = "EXECUTOR"
	KindAction   Kind = "ACTION"
	KindRecipe   Kind = "RECIPE"
)

// Status is the lifecycle state of a node. Waiting is the only
// non-terminal status; Warning is a soft success.
type Status int

const (
	StatusWaiting Status = iota
	StatusSuccess
	StatusWarning
	StatusFailure
	StatusError
)

// String returns a string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusWarning:
		return "WARNING"
	case StatusFailure:
		return "FAILURE"
	case StatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN_STATUS_%d", int(s))
	}
}

// Options are the construction-time policy flags of a node.
type Options struct {
	// StartNow begins timing at construction instead of on first mutation.
	StartNow bool
	// BubbleError makes AddChild reject an ERROR child.
	BubbleError bool
	// BubbleFailure makes AddChild reject a FAILURE child.
	BubbleFailure bool
	// FailureIsError promotes this node's own Failure calls to ERROR.
	FailureIsError bool
}

// Stopper is anything with an idempotent Stop, typically a progress
// notifier attached to an in-flight node.
type Stopper interface {
	Stop()
}

// Node is the tree-structured result of one layer of a recipe run. A node
// exclusively owns its children; the parent back-reference exists for
// traversal only.
type Node struct {
	mu       sync.RWMutex
	id       string
	name     string
	kind     Kind
	opts     Options
	status   Status
	detail   Detail
	err      error
	started  time.Time
	duration time.Duration
	parent   *Node
	children []*Node
	notifier Stopper
}

// New creates a node in WAITING with an empty detail record.
func New(name string, kind Kind, opts Options) *Node {
	n := &Node{
		id:     uuid.NewString(),
		name:   name,
		kind:   kind,
		opts:   opts,
		status: StatusWaiting,
		detail: Detail{},
	}
	if opts.StartNow {
		n.started = time.Now()
	}
	return n
}

// Start begins timing now, if it has not begun already.
func (n *Node) Start() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.markStartedLocked()
	return n
}

func (n *Node) markStartedLocked() {
	if n.started.IsZero() {
		n.started = time.Now()
	}
}

// finalizeLocked stops any attached notifier before the status flips; a
// notifier must never outlive finalization.
func (n *Node) finalizeLocked(status Status) {
	if n.notifier != nil {
		n.notifier.Stop()
		n.notifier = nil
	}
	n.markStartedLocked()
	n.duration = time.Since(n.started)
	n.status = status
}

// Put records one detail field on a node that is still in flight.
func (n *Node) Put(key string, value interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status != StatusWaiting {
		return contractErr("Put", n, "node already finalized as %s", n.status)
	}
	n.markStartedLocked()
	n.detail[key] = value
	return nil
}

// Success merges detail into the payload and transitions to SUCCESS.
func (n *Node) Success(detail Detail) error {
	return n.complete("Success", StatusSuccess, detail)
}

// Warning merges detail into the payload and transitions to WARNING,
// a soft success with reduced confidence.
func (n *Node) Warning(detail Detail) error {
	return n.complete("Warning", StatusWarning, detail)
}

// Failure transitions to FAILURE with the given detail. When the node was
// built with FailureIsError, the call routes through the error path and the
// node lands in ERROR instead.
func (n *Node) Failure(detail Detail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status != StatusWaiting {
		return contractErr("Failure", n, "node already finalized as %s", n.status)
	}
	n.detail.Merge(detail)
	if n.opts.FailureIsError {
		n.err = fmt.Errorf("failure promoted to error: %s", n.messageLocked())
		n.detail["error"] = n.err.Error()
		n.finalizeLocked(StatusError)
		return nil
	}
	n.finalizeLocked(StatusFailure)
	return nil
}

// Error stores err and transitions to ERROR.
func (n *Node) Error(err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status != StatusWaiting {
		return contractErr("Error", n, "node already finalized as %s", n.status)
	}
	if err == nil {
		return contractErr("Error", n, "finalizing with a nil error")
	}
	n.err = err
	n.detail["error"] = err.Error()
	n.finalizeLocked(StatusError)
	return nil
}

// Abort finalizes the node as ERROR and hands err back, so a body can
// unwind a multi-step sequence in one statement:
//
//	return node.Abort(err)
func (n *Node) Abort(err error) error {
	if fErr := n.Error(err); fErr != nil {
		// Already terminal; the original cause still wins.
		return err
	}
	return err
}

// AbortFailure finalizes the node as FAILURE and returns an error carrying
// the failure message for the caller to propagate.
func (n *Node) AbortFailure(detail Detail) error {
	if fErr := n.Failure(detail); fErr != nil {
		return fErr
	}
	return &BubbledError{Child: n}
}

// AddChild appends child and evaluates the bubbling policy. The child is
// recorded either way; when the policy triggers, a *BubbledError wrapping
// the child is returned and this node is left non-terminal, forcing the
// caller to decide whether to swallow or propagate.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return contractErr("AddChild", n, "child is nil")
	}
	n.mu.Lock()
	if n.status != StatusWaiting {
		n.mu.Unlock()
		return contractErr("AddChild", n, "parent already finalized as %s; use AuditChild for post-finalization records", n.status)
	}
	n.markStartedLocked()
	n.children = append(n.children, child)
	n.mu.Unlock()

	child.setParent(n)

	switch child.Status() {
	case StatusFailure:
		if n.opts.BubbleFailure {
			return &BubbledError{Child: child}
		}
	case StatusError:
		if n.opts.BubbleError {
			return &BubbledError{Child: child}
		}
	}
	return nil
}

// AuditChild appends child to an already-finalized node. Late auditing is
// rare but allowed; no bubbling is evaluated since there is no in-flight
// call left to abort.
func (n *Node) AuditChild(child *Node) error {
	if child == nil {
		return contractErr("AuditChild", n, "child is nil")
	}
	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()
	child.setParent(n)
	return nil
}

func (n *Node) setParent(p *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = p
}

// AttachNotifier ties a progress notifier's lifetime to the node. If the
// node is already terminal the notifier is stopped immediately.
func (n *Node) AttachNotifier(s Stopper) {
	if s == nil {
		return
	}
	n.mu.Lock()
	if n.status != StatusWaiting {
		n.mu.Unlock()
		s.Stop()
		return
	}
	n.notifier = s
	n.mu.Unlock()
}

func (n *Node) complete(op string, status Status, detail Detail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status != StatusWaiting {
		return contractErr(op, n, "node already finalized as %s", n.status)
	}
	n.detail.Merge(detail)
	n.finalizeLocked(status)
	return nil
}

// ID returns the node's diagnostic identifier.
func (n *Node) ID() string { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Kind returns the layer that produced the node.
func (n *Node) Kind() Kind { return n.kind }

// Status returns the current status.
func (n *Node) Status() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// IsTerminal reports whether the node left WAITING.
func (n *Node) IsTerminal() bool {
	return n.Status() != StatusWaiting
}

// Succeeded reports SUCCESS or WARNING.
func (n *Node) Succeeded() bool {
	s := n.Status()
	return s == StatusSuccess || s == StatusWarning
}

// Err returns the stored error for ERROR nodes, else nil.
func (n *Node) Err() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.err
}

// Detail returns a copy of the payload.
func (n *Node) Detail() Detail {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.detail.Clone()
}

// Children returns a copy of the child list in insertion order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c := make([]*Node, len(n.children))
	copy(c, n.children)
	return c
}

// Parent returns the non-owning back-reference, which may be nil.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Duration returns the recorded duration; zero until finalization.
func (n *Node) Duration() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.duration
}

// StartedAt returns the start timestamp; zero until timing begins.
func (n *Node) StartedAt() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.started
}

// Message returns a one-line human summary of the node's result.
func (n *Node) Message() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.messageLocked()
}

func (n *Node) messageLocked() string {
	if n.err != nil {
		return n.err.Error()
	}
	if msg, ok := n.detail.GetString("message"); ok && msg != "" {
		return msg
	}
	return ""
}

// Render produces an indented text rendering of the node tree for
// diagnostics.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n *Node) render(b *strings.Builder, depth int) {
	n.mu.RLock()
	status := n.status
	dur := n.duration
	msg := n.messageLocked()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	n.mu.RUnlock()

	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "- [%s] %s (%s", status, n.name, n.kind)
	if dur > 0 {
		fmt.Fprintf(b, ", %s", dur.Round(time.Millisecond))
	}
	b.WriteString(")")
	if msg != "" {
		fmt.Fprintf(b, ": %s", msg)
	}
	b.WriteString("\n")
	for _, c := range children {
		c.render(b, depth+1)
	}
}
