// Package hgraph implements a functional-reactive time-series graph
// engine: nodes expose typed, observable time-series values (scalars,
// ordered dicts, bundles of named fields) and recompute only when an
// active input actually changes at the current engine time.
//
// # Architecture Overview
//
//   - typeregistry/tsvalue: interned schema descriptors and the typed,
//     observable time-series values nodes pass between each other.
//   - node: the node/port/graph model — inputs bound to outputs,
//     evaluated on demand, with a well-defined start/stop life cycle.
//   - schedule: the per-graph scheduler, an ordered multimap from
//     engine time to pending node work, with push-source ingestion.
//   - engine: the executor that drives a graph's scheduler from a
//     start to an end time and dispatches life-cycle callbacks.
//   - builder: allocates a graph's nodes into one contiguous arena from
//     a declarative NodeDescriptor/EdgeDescriptor list.
//   - nested: subgraph node kinds (component, map, mesh, reduce,
//     non-associative-reduce) that each own and drive child graphs.
//
// # Basic Usage
//
//	descs, edges, _ := demo.Build("scale", 4)
//	g, _, err := builder.Build(descs, edges, node.GraphID{}, nil, nil)
//	ex := engine.NewExecutor(g, nil, log)
//	err = ex.Run(ctx, start, end, schedule.Simulation)
//
// # Package Structure
//
//   - typeregistry, tsvalue, observe: value, schema, and observer layer
//   - node: node/port/graph model and life cycle
//   - schedule, engine: scheduling and execution
//   - builder: arena-backed graph construction
//   - nested: subgraph node kinds
//   - hgtime, herrors, hlog, config, pushsource: ambient support
//   - cmd: command-line tools (hgraphc, hgraphrun, hgraphperf)
package hgraph
