// Package demo supplies the small, fixed graph definitions the cmd/
// tools build and run, in place of a graph-construction front end (a
// textual or host-language-embedded DSL), which is intentionally out of
// scope. A real deployment would supply its own NodeDescriptor slices
// from whatever language binding is wiring the graph.
package demo

import (
	"fmt"

	"github.com/sbl8/hgraph/builder"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
)

// intMeta is the scalar int64 TSMeta every demo graph's nodes share.
func intMeta() *tsvalue.TSMeta { return tsvalue.MakeScalarTSMeta(typeregistry.Int) }

// Scale returns descriptors for a graph with one push-source node
// feeding width independent "multiply its input by two" compute nodes,
// the shape cmd/hgraphperf scales by --size and cmd/hgraphrun/hgraphc
// build under the name "scale".
func Scale(width int) ([]builder.NodeDescriptor, []builder.EdgeDescriptor) {
	if width < 1 {
		width = 1
	}
	meta := intMeta()

	descs := make([]builder.NodeDescriptor, 0, width+1)
	descs = append(descs, builder.NodeDescriptor{
		Name:           "src",
		Kind:           "push",
		MakeMainOutput: func() *tsvalue.TSValue { return tsvalue.NewScalar(meta) },
	})

	edges := make([]builder.EdgeDescriptor, 0, width)
	for i := 0; i < width; i++ {
		descs = append(descs, builder.NodeDescriptor{
			Name:         fmt.Sprintf("double-%d", i),
			Kind:         "compute",
			Inputs:       map[string]*tsvalue.TSMeta{"in": meta},
			ActiveInputs: []string{"in"},
			MakeMainOutput: func() *tsvalue.TSValue {
				return tsvalue.NewScalar(meta)
			},
			Eval: func(n *node.Node, now hgtime.EngineTime) error {
				v, err := n.Inputs["in"].Value()
				if err != nil {
					return err
				}
				return n.MainOutput.SetValue(v.(int64)*2, now)
			},
		})
		edges = append(edges, builder.EdgeDescriptor{SrcNode: 0, SrcOutput: builder.MainOutput, DstNode: i + 1, DstInput: "in"})
	}
	return descs, edges
}

// Build resolves a demo graph by name. "scale" is presently the only
// one registered; width is ignored by graphs that don't scale.
func Build(name string, width int) ([]builder.NodeDescriptor, []builder.EdgeDescriptor, error) {
	switch name {
	case "", "scale":
		descs, edges := Scale(width)
		return descs, edges, nil
	default:
		return nil, nil, fmt.Errorf("demo: unknown graph %q", name)
	}
}
