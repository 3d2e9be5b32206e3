// Package herrors defines the typed error kinds surfaced by the engine.
// Every kind is a sentinel that participates in errors.Is/errors.As
// chains built with fmt.Errorf("...: %w", ...), plain errors.New/
// fmt.Errorf style with no third-party errors package wired in (see
// DESIGN.md).
package herrors

import "errors"

// Sentinel error kinds, one per row of the error handling table.
var (
	// ErrSchemaMismatch is raised when set_value/copy_assign is attempted
	// between incompatible TypeMetas.
	ErrSchemaMismatch = errors.New("hgraph: schema mismatch")

	// ErrNotHashable is raised when hashing a non-hashable TypeMeta.
	ErrNotHashable = errors.New("hgraph: type is not hashable")

	// ErrDanglingBind is raised when unbinding or destroying an output
	// that still has live bound inputs.
	ErrDanglingBind = errors.New("hgraph: dangling bind")

	// ErrDependencyCycle is raised when a mesh re-rank detects a cycle
	// in the dynamic dependency graph.
	ErrDependencyCycle = errors.New("hgraph: dependency cycle")

	// ErrNotStarted is raised by a life-cycle operation that requires a
	// started graph or node.
	ErrNotStarted = errors.New("hgraph: not started")

	// ErrAlreadyStarted is raised by a life-cycle operation that forbids
	// re-entrant starting.
	ErrAlreadyStarted = errors.New("hgraph: already started")

	// ErrPushQueueOverflow is raised when a bounded push queue is full
	// and its backpressure policy is "raise".
	ErrPushQueueOverflow = errors.New("hgraph: push queue overflow")
)

// NodeUserError wraps a failure raised by user compute code, with the
// index of the node that raised it. Nodes have no error output, and
// the scheduler does not construct this type: an error returned by a
// node's Eval reaches the AfterNodeEval callback and is returned from
// Advance unwrapped.
type NodeUserError struct {
	NodeIndex int
	Err       error
}

func (e *NodeUserError) Error() string {
	return "hgraph: node user error at index " + itoa(e.NodeIndex) + ": " + e.Err.Error()
}

func (e *NodeUserError) Unwrap() error { return e.Err }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
