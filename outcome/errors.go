package outcome

import (
	"fmt"

	"github.com/pkg/errors"
)

// ContractError marks a programming-contract violation: double
// finalization, attaching to a terminal parent without AuditChild, and the
// like. These indicate a bug in a step body, not a transient condition.
type ContractError struct {
	Op     string
	Node   string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("outcome contract violation in %s on node %q: %s", e.Op, e.Node, e.Reason)
}

func contractErr(op string, n *Node, format string, args ...interface{}) error {
	return &ContractError{
		Op:     op,
		Node:   n.name,
		Reason: fmt.Sprintf(format, args...),
	}
}

// IsContractError reports whether err (or its cause chain) is a
// contract violation.
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// BubbledError is returned by AddChild when the parent's bubbling policy
// rejects a failed or errored child. It carries the child so the caller can
// still inspect or re-attach it after deciding to swallow.
type BubbledError struct {
	Child *Node
}

func (e *BubbledError) Error() string {
	return fmt.Sprintf("child node %q bubbled %s: %s", e.Child.name, e.Child.Status(), e.Child.Message())
}

// Unwrap exposes the child's stored error so errors.Is/As keep working
// through the bubble.
func (e *BubbledError) Unwrap() error {
	return e.Child.Err()
}

// AsBubbled extracts a BubbledError from err's chain.
func AsBubbled(err error) (*BubbledError, bool) {
	var be *BubbledError
	ok := errors.As(err, &be)
	return be, ok
}
