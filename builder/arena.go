// Package builder turns a flat list of node/edge descriptors into a
// wired, ready-to-start node.Graph. It follows a region-table, bump-
// allocation, cache-line-aligned arena pattern but adapted to Go's
// memory model: placement-new of arbitrary pointer-containing structs
// into a raw []byte is unsound here (the garbage collector does not
// scan a []byte for pointers it does not know about), so the "single
// allocation, offset cursor" contract is honored with a contiguous
// []node.Node slab addressed by index instead of raw byte offsets. The
// alignment accounting is kept as a size-reporting utility
// (Arena.AccountedSize), since the spec's build-time sizing step
// (memory_size/type_alignment) is still a useful diagnostic even when
// it no longer drives a literal malloc.
package builder

import "github.com/sbl8/hgraph/node"

// CacheLineSize is the alignment granularity used by AccountedSize.
const CacheLineSize = 64

// AlignedSize rounds size up to the nearest CacheLineSize multiple.
func AlignedSize(size uintptr) uintptr {
	return (size + uintptr(CacheLineSize-1)) &^ uintptr(CacheLineSize-1)
}

// Arena owns the contiguous node slab for one Build call.
type Arena struct {
	nodes         []node.Node
	accountedSize uintptr
}

func newArena(n int) *Arena {
	return &Arena{nodes: make([]node.Node, n)}
}

func (a *Arena) nodeAt(i int) *node.Node { return &a.nodes[i] }

// AccountedSize reports the cache-line-aligned byte footprint Build
// computed for the node slab, a size-query diagnostic.
func (a *Arena) AccountedSize() uintptr { return a.accountedSize }
