package nested

import (
	"context"
	"fmt"
	"sort"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
)

// MeshNode extends MapNode with dynamic dependency declaration: during
// its own evaluation a child may declare "graph for key K depends on
// graph for key K'", and the mesh assigns each child a rank (the
// longest path in the dependency DAG), evaluating children in rank
// order within a tick, per spec §4.6.
type MeshNode struct {
	*MapNode
	deps map[any][]any
	rank map[any]int
}

// NewMeshNode wires owner's Eval/OnStop to drive rank-ordered, key-
// dependent child graphs.
func NewMeshNode(owner *node.Node, keyInputName string, build KeyChildBuilder, stubNodeIndex, outputNodeIndex int) *MeshNode {
	mapNode := &MapNode{
		Owner:           owner,
		KeyInputName:    keyInputName,
		Build:           build,
		StubNodeIndex:   stubNodeIndex,
		OutputNodeIndex: outputNodeIndex,
		children:        make(map[any]*childGraph),
	}
	mesh := &MeshNode{MapNode: mapNode, deps: make(map[any][]any), rank: make(map[any]int)}
	owner.Eval = mesh.doEval
	owner.OnStop = mapNode.onStop
	return mesh
}

// DeclareDependency records that key's child graph depends on
// dependsOn's, re-ranking and detecting cycles. A rejected declaration
// (cycle) leaves the dependency set unchanged.
func (mesh *MeshNode) DeclareDependency(key, dependsOn any) error {
	for _, existing := range mesh.deps[key] {
		if existing == dependsOn {
			return nil
		}
	}
	mesh.deps[key] = append(mesh.deps[key], dependsOn)
	if err := mesh.rerank(); err != nil {
		mesh.deps[key] = mesh.deps[key][:len(mesh.deps[key])-1]
		return err
	}
	return nil
}

// Rank returns key's current rank, 0 if it has no recorded dependencies.
func (mesh *MeshNode) Rank(key any) int { return mesh.rank[key] }

// rerank recomputes every known key's rank as 1 + max(rank of its
// dependencies), 0 for keys with none, via a DFS coloring walk that
// fails with herrors.ErrDependencyCycle on a gray-to-gray revisit.
func (mesh *MeshNode) rerank() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[any]int)
	rank := make(map[any]int)

	var visit func(key any) (int, error)
	visit = func(key any) (int, error) {
		switch color[key] {
		case black:
			return rank[key], nil
		case gray:
			return 0, fmt.Errorf("nested: mesh %q: %w", mesh.Owner.Name, herrors.ErrDependencyCycle)
		}
		color[key] = gray
		best := 0
		for _, dep := range mesh.deps[key] {
			r, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if r+1 > best {
				best = r + 1
			}
		}
		color[key] = black
		rank[key] = best
		return best, nil
	}

	for key := range mesh.children {
		if _, err := visit(key); err != nil {
			return err
		}
	}
	for key := range mesh.deps {
		if _, ok := rank[key]; !ok {
			if _, err := visit(key); err != nil {
				return err
			}
		}
	}
	mesh.rank = rank
	return nil
}

func (mesh *MeshNode) doEval(n *node.Node, now hgtime.EngineTime) error {
	in, ok := n.Inputs[mesh.KeyInputName]
	if !ok {
		return fmt.Errorf("nested: mesh node %q has no key input %q", n.Name, mesh.KeyInputName)
	}
	tv := in.TSValue()
	if tv == nil {
		return nil
	}

	if tv.Modified(now) && tv.Delta != nil {
		for _, key := range tv.Delta.Removed {
			delete(mesh.deps, key)
			if err := mesh.destroyChild(key); err != nil {
				return err
			}
		}
		for _, key := range tv.Delta.Added {
			if err := mesh.buildChild(n, key, now); err != nil {
				return err
			}
		}
		for _, key := range tv.Delta.Modified {
			if err := mesh.forwardKeyValue(tv, key, now); err != nil {
				return err
			}
		}
		if err := mesh.rerank(); err != nil {
			return err
		}
	}

	keys := make([]any, 0, len(mesh.children))
	for k := range mesh.children {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := mesh.rank[keys[i]], mesh.rank[keys[j]]
		if ri != rj {
			return ri < rj
		}
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})

	for _, key := range keys {
		cg := mesh.children[key]
		if err := cg.driveTo(context.Background(), now); err != nil {
			return err
		}
		if err := mesh.collectOutput(key, cg, now); err != nil {
			return err
		}
	}
	return nil
}
