package builder

import (
	"fmt"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
)

// OutputSelector names one of a node's three well-known outputs, the
// only kinds of output the spec allows a node to expose (main, error,
// state) per §3.3.
type OutputSelector int

const (
	MainOutput OutputSelector = iota
	ErrorOutput
	StateOutput
)

// NodeDescriptor is the builder-facing declaration of one node: enough
// to allocate its outputs and inputs and wire its compute body, without
// yet knowing what it will be bound to. A declarative node-spec record,
// generalized from a kernel-invocation record to a graph-node record.
type NodeDescriptor struct {
	Name string
	Kind string

	// Inputs declares every input this node exposes, keyed by name.
	Inputs map[string]*tsvalue.TSMeta
	// ActiveInputs lists which of Inputs should be marked active
	// (cause node activation on modification) once bound.
	ActiveInputs []string

	MakeMainOutput  func() *tsvalue.TSValue
	MakeErrorOutput func() *tsvalue.TSValue
	MakeStateOutput func() *tsvalue.TSValue

	Eval    node.EvalFunc
	OnStart node.LifecycleFunc
	OnStop  node.LifecycleFunc
}

// EdgeDescriptor wires one node's output to another's input. OutputPath
// addresses a nested slot within the source output's TSValue (empty for
// "the output itself"); DstInput is looked up by name since node.Inputs
// is a map rather than the spec's positional input-path list — a
// deliberate simplification recorded in DESIGN.md.
type EdgeDescriptor struct {
	SrcNode   int
	SrcOutput OutputSelector
	DstNode   int
	DstInput  string
}

// Build allocates a contiguous node slab inside a fresh Arena, wires
// every edge, and returns the resulting graph ready for Start, per spec
// §4.7's four-step construction contract: size/accounting, single slab
// allocation, in-place construction, edge resolution.
func Build(descs []NodeDescriptor, edges []EdgeDescriptor, id node.GraphID, parent *node.Node, traits *node.Traits) (*node.Graph, *Arena, error) {
	arena := newArena(len(descs))
	arena.accountedSize = AlignedSize(uintptr(len(descs)) * AlignedSize(nodeFootprint))

	g := node.NewGraph(id, parent, traits)

	for i, desc := range descs {
		n := arena.nodeAt(i)
		node.InitNode(n, i, id, desc.Name, desc.Kind)
		n.Eval = desc.Eval
		n.OnStart = desc.OnStart
		n.OnStop = desc.OnStop

		if desc.MakeMainOutput != nil {
			n.MainOutput = node.NewOutput(desc.MakeMainOutput())
		}
		if desc.MakeErrorOutput != nil {
			n.ErrorOutput = node.NewOutput(desc.MakeErrorOutput())
		}
		if desc.MakeStateOutput != nil {
			n.StateOutput = node.NewOutput(desc.MakeStateOutput())
		}

		for name, meta := range desc.Inputs {
			n.Inputs[name] = node.NewInput(n, name, meta)
		}
		for _, name := range desc.ActiveInputs {
			in, ok := n.Inputs[name]
			if !ok {
				return nil, nil, fmt.Errorf("builder: node %q: active input %q not declared", desc.Name, name)
			}
			in.MakeActive()
		}

		g.AddNode(n)
	}

	for _, e := range edges {
		if e.SrcNode < 0 || e.SrcNode >= len(g.Nodes) {
			return nil, nil, fmt.Errorf("builder: edge references out-of-range src node %d", e.SrcNode)
		}
		if e.DstNode < 0 || e.DstNode >= len(g.Nodes) {
			return nil, nil, fmt.Errorf("builder: edge references out-of-range dst node %d", e.DstNode)
		}
		src := g.Nodes[e.SrcNode]
		dst := g.Nodes[e.DstNode]

		out, err := selectOutput(src, e.SrcOutput)
		if err != nil {
			return nil, nil, fmt.Errorf("builder: edge %d->%d: %w", e.SrcNode, e.DstNode, err)
		}

		in, ok := dst.Inputs[e.DstInput]
		if !ok {
			return nil, nil, fmt.Errorf("builder: edge %d->%d: dst node %q has no input %q", e.SrcNode, e.DstNode, dst.Name, e.DstInput)
		}

		if err := in.BindOutput(out, 0); err != nil {
			return nil, nil, fmt.Errorf("builder: edge %d->%d: %w", e.SrcNode, e.DstNode, err)
		}
	}

	return g, arena, nil
}

func selectOutput(n *node.Node, sel OutputSelector) (*node.Output, error) {
	switch sel {
	case MainOutput:
		if n.MainOutput == nil {
			return nil, fmt.Errorf("node %q has no main output: %w", n.Name, herrors.ErrSchemaMismatch)
		}
		return n.MainOutput, nil
	case ErrorOutput:
		if n.ErrorOutput == nil {
			return nil, fmt.Errorf("node %q has no error output: %w", n.Name, herrors.ErrSchemaMismatch)
		}
		return n.ErrorOutput, nil
	case StateOutput:
		if n.StateOutput == nil {
			return nil, fmt.Errorf("node %q has no state output: %w", n.Name, herrors.ErrSchemaMismatch)
		}
		return n.StateOutput, nil
	default:
		return nil, fmt.Errorf("unknown output selector %d", sel)
	}
}

// nodeFootprint is a rough per-node byte estimate used only for the
// accounted-size diagnostic, not an allocation driver.
const nodeFootprint = 256
