// Package typeregistry implements the value and schema layer: interned
// type metadata, polymorphic type operations dispatched through
// function-pointer vtables, and the KeySet (stable key-to-slot map)
// used by map and set time-series kinds.
//
// Type dispatch is by value kind (a finite tagged set) plus element
// type (another interned descriptor), never by Go type-switch at call
// sites that touch more than one kind — see spec §9 "Type dispatch".
package typeregistry

import "sync"

// ValueKind is the finite tag of scalar and container shapes a value
// can take.
type ValueKind uint8

const (
	KindScalarInt ValueKind = iota
	KindScalarFloat
	KindScalarBool
	KindScalarBytes
	KindScalarString
	KindScalarTime
	KindTuple
	KindSet
	KindMap
	KindBundle
	KindList
	KindTS
)

func (k ValueKind) String() string {
	switch k {
	case KindScalarInt:
		return "int"
	case KindScalarFloat:
		return "float"
	case KindScalarBool:
		return "bool"
	case KindScalarBytes:
		return "bytes"
	case KindScalarString:
		return "string"
	case KindScalarTime:
		return "time"
	case KindTuple:
		return "tuple"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindBundle:
		return "bundle"
	case KindList:
		return "list"
	case KindTS:
		return "ts"
	default:
		return "unknown"
	}
}

// TypeOps is the vtable a TypeMeta carries for polymorphic value
// operations. The scalar metas set every field; the list, set and
// bundle metas built in containers.go leave some nil (lists have no
// Hash; sets and bundles have no Hash, ToPython or FromPython, and sets
// have no ChildAt), so callers check a field before calling it.
//
// There is deliberately no unsafe.Pointer-based construct/destroy/
// assign path here: the arena builder addresses nodes by []node.Node
// slice index rather than raw byte offset precisely because Go's GC
// cannot trace pointers placed into a []byte by hand (see
// builder/arena.go), so a raw in-place layout op on a TypeMeta would
// have no caller that could safely use it. Assignable and CopyValue
// operate on boxed (interface{}) values instead, which is what the
// tsvalue layer's set_value/apply_delta contract and the arena builder
// both actually need.
type TypeOps struct {
	Hash       func(v any) (uint64, error)
	Equal      func(a, b any) bool
	ToPython   func(v any) (any, error)
	FromPython func(py any) (any, error)
	ChildCount func(v any) int
	ChildAt    func(v any, i int) any
	Assignable func(v any) bool
	CopyValue  func(v any) any
}

// TypeMeta is a process-lifetime, registry-interned descriptor of a
// value's shape. Identity equality (pointer comparison) defines type
// identity; TypeMetas are immutable once interned.
type TypeMeta struct {
	Kind  ValueKind
	Name  string
	Size  uintptr
	Align uintptr
	Ops   TypeOps

	// Elem is the element type for container kinds that carry exactly
	// one (List, Set, Tuple-of-identical). Nil for scalars.
	Elem *TypeMeta
	// Fields holds named sub-schemas for Bundle kinds. Nil otherwise.
	Fields []NamedField
	// KeyType is the key type for Map kinds. Nil otherwise.
	KeyType *TypeMeta
}

// NamedField is one named sub-schema slot of a bundle/tuple type.
type NamedField struct {
	Name string
	Meta *TypeMeta
}

// Registry is a process-wide, append-only interning table of TypeMeta
// values, keyed by structural shape. Every Intern call takes the
// mutex, including lookups of a key that is already interned.
type Registry struct {
	mu      sync.Mutex
	interns map[string]*TypeMeta
}

// NewRegistry creates an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{interns: make(map[string]*TypeMeta)}
}

// Intern returns the canonical *TypeMeta for the given shape key,
// constructing one via build on first use. Subsequent calls with the
// same key return the identical pointer, which is what gives type
// identity its pointer-equality semantics.
func (r *Registry) Intern(key string, build func() *TypeMeta) *TypeMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.interns[key]; ok {
		return m
	}
	m := build()
	r.interns[key] = m
	return m
}

// Global is the process-wide default registry used when callers do not
// need an isolated namespace; NewRegistry builds an isolated one.
var Global = NewRegistry()
