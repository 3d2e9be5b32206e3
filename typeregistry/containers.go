package typeregistry

import "unsafe"

// List is the runtime representation of a KindList value: an ordered,
// dense, index-addressed sequence of same-typed elements.
type List struct {
	Elem   *TypeMeta
	Values []any
}

// Set is the runtime representation of a KindSet value.
type Set struct {
	Elem   *TypeMeta
	Values map[any]struct{}
}

// Bundle is the runtime representation of a KindBundle value: a named
// record with a fixed field schema (see TypeMeta.Fields).
type Bundle struct {
	Schema *TypeMeta
	Values map[string]any
}

// MakeListMeta builds a fresh, non-interned TypeMeta describing a list
// of elem.
func MakeListMeta(elem *TypeMeta) *TypeMeta {
	return &TypeMeta{
		Kind: KindList, Name: "list<" + elem.Name + ">",
		Size: unsafe.Sizeof(List{}), Align: unsafe.Alignof(List{}),
		Elem: elem,
		Ops: TypeOps{
			Hash:       nil, // lists are not hashable
			Equal:      func(a, b any) bool { return listsEqual(elem, a, b) },
			ToPython:   func(v any) (any, error) { return v.(*List).Values, nil },
			FromPython: func(py any) (any, error) { return &List{Elem: elem, Values: py.([]any)}, nil },
			ChildCount: func(v any) int { return len(v.(*List).Values) },
			ChildAt:    func(v any, i int) any { return v.(*List).Values[i] },
			Assignable: func(v any) bool { _, ok := v.(*List); return ok },
			CopyValue: func(v any) any {
				l := v.(*List)
				return &List{Elem: l.Elem, Values: append([]any(nil), l.Values...)}
			},
		},
	}
}

func listsEqual(elem *TypeMeta, a, b any) bool {
	la, oka := a.(*List)
	lb, okb := b.(*List)
	if !oka || !okb || len(la.Values) != len(lb.Values) {
		return false
	}
	for i := range la.Values {
		if elem.Ops.Equal != nil && !elem.Ops.Equal(la.Values[i], lb.Values[i]) {
			return false
		}
	}
	return true
}

// MakeSetMeta builds a fresh, non-interned TypeMeta describing a set
// of elem.
func MakeSetMeta(elem *TypeMeta) *TypeMeta {
	return &TypeMeta{
		Kind: KindSet, Name: "set<" + elem.Name + ">",
		Size: unsafe.Sizeof(Set{}), Align: unsafe.Alignof(Set{}),
		Elem: elem,
		Ops: TypeOps{
			Equal: func(a, b any) bool {
				sa, oka := a.(*Set)
				sb, okb := b.(*Set)
				if !oka || !okb || len(sa.Values) != len(sb.Values) {
					return false
				}
				for k := range sa.Values {
					if _, ok := sb.Values[k]; !ok {
						return false
					}
				}
				return true
			},
			ChildCount: func(v any) int { return len(v.(*Set).Values) },
			Assignable: func(v any) bool { _, ok := v.(*Set); return ok },
			CopyValue: func(v any) any {
				s := v.(*Set)
				cp := &Set{Elem: s.Elem, Values: make(map[any]struct{}, len(s.Values))}
				for k := range s.Values {
					cp.Values[k] = struct{}{}
				}
				return cp
			},
		},
	}
}

// MakeBundleMeta builds a fresh, non-interned TypeMeta describing a
// named record with the given field schema, in declaration order.
func MakeBundleMeta(name string, fields []NamedField) *TypeMeta {
	return &TypeMeta{
		Kind: KindBundle, Name: name, Fields: fields,
		Size: unsafe.Sizeof(Bundle{}), Align: unsafe.Alignof(Bundle{}),
		Ops: TypeOps{
			Equal: func(a, b any) bool {
				ba, oka := a.(*Bundle)
				bb, okb := b.(*Bundle)
				if !oka || !okb || len(ba.Values) != len(bb.Values) {
					return false
				}
				for k, v := range ba.Values {
					ov, ok := bb.Values[k]
					if !ok || !valuesEqual(v, ov) {
						return false
					}
				}
				return true
			},
			ChildCount: func(v any) int { return len(fields) },
			ChildAt:    func(v any, i int) any { return v.(*Bundle).Values[fields[i].Name] },
			Assignable: func(v any) bool { _, ok := v.(*Bundle); return ok },
			CopyValue: func(v any) any {
				b := v.(*Bundle)
				cp := &Bundle{Schema: b.Schema, Values: make(map[string]any, len(b.Values))}
				for k, fv := range b.Values {
					cp.Values[k] = fv
				}
				return cp
			},
		},
	}
}

func valuesEqual(a, b any) bool {
	// best-effort equality for untyped field values used in tests and
	// generic bundle equality; scalars compare directly.
	return a == b
}

// NewBundle allocates a zero-valued Bundle instance for schema.
func NewBundle(schema *TypeMeta) *Bundle {
	values := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		values[f.Name] = zeroOf(f.Meta)
	}
	return &Bundle{Schema: schema, Values: values}
}

func zeroOf(meta *TypeMeta) any {
	switch meta.Kind {
	case KindScalarInt:
		return int64(0)
	case KindScalarFloat:
		return float64(0)
	case KindScalarBool:
		return false
	case KindScalarString:
		return ""
	case KindScalarBytes:
		return []byte(nil)
	default:
		return nil
	}
}
