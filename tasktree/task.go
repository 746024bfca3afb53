package tasktree

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Predicate is evaluated against the shared run context. A nil Enabled
// predicate means always enabled; a nil Skip predicate means never
// skipped.
type Predicate func(c *Context) bool

// Body is the work of one task node.
type Body func(ctx context.Context, c *Context, log *logrus.Entry) error

// Task is one node of a task tree. Enabled is evaluated first: a disabled
// task does not appear in the run at all. Skip is evaluated after
// enablement: a skipped task appears, marked skipped. Concurrent and
// ContinueOnError describe how this node's children run.
type Task struct {
	Title           string
	Enabled         Predicate
	Skip            Predicate
	Run             Body
	Tasks           []*Task
	Concurrent      bool
	ContinueOnError bool
}

// TaskStatus is the recorded fate of one task node in a run.
type TaskStatus int

const (
	TaskSuccess TaskStatus = iota
	TaskFailed
	TaskSkipped
)

// String returns a string representation of the TaskStatus.
func (s TaskStatus) String() string {
	switch s {
	case TaskSuccess:
		return "SUCCESS"
	case TaskFailed:
		return "FAILED"
	case TaskSkipped:
		return "SKIPPED"
	default:
		return fmt.Sprintf("UNKNOWN_STATUS_%d", int(s))
	}
}

// TaskResult records what happened to one task node. Disabled tasks
// produce no result at all.
type TaskResult struct {
	Title    string
	Status   TaskStatus
	Err      error
	Children []*TaskResult
}
