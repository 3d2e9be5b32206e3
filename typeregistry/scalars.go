package typeregistry

import (
	"hash/maphash"
	"time"
	"unsafe"

	"github.com/sbl8/hgraph/herrors"
)

var scalarHashSeed = maphash.MakeSeed()

func hashBytes(b []byte) uint64 {
	var h maphash.Hash
	h.SetSeed(scalarHashSeed)
	h.Write(b)
	return h.Sum64()
}

func scalarOps[T comparable](toBytes func(T) []byte) TypeOps {
	return TypeOps{
		Hash: func(v any) (uint64, error) {
			t, ok := v.(T)
			if !ok {
				return 0, herrors.ErrSchemaMismatch
			}
			return hashBytes(toBytes(t)), nil
		},
		Equal: func(a, b any) bool {
			ta, oka := a.(T)
			tb, okb := b.(T)
			return oka && okb && ta == tb
		},
		ToPython:   func(v any) (any, error) { return v, nil },
		FromPython: func(py any) (any, error) { return py, nil },
		ChildCount: func(any) int { return 0 },
		ChildAt:    func(any, int) any { return nil },
		Assignable: func(v any) bool { _, ok := v.(T); return ok },
		CopyValue:  func(v any) any { return v },
	}
}

func int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func float64Bytes(v float64) []byte {
	return int64Bytes(int64(v))
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func stringBytes(v string) []byte { return []byte(v) }

func timeBytes(v time.Time) []byte { return int64Bytes(v.UnixNano()) }

// Builtin scalar TypeMetas, interned once in Global.
var (
	Int = Global.Intern("scalar:int", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarInt, Name: "int", Size: 8, Align: 8, Ops: scalarOps[int64](int64Bytes)}
	})
	Float = Global.Intern("scalar:float", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarFloat, Name: "float", Size: 8, Align: 8, Ops: scalarOps[float64](float64Bytes)}
	})
	Bool = Global.Intern("scalar:bool", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarBool, Name: "bool", Size: 1, Align: 1, Ops: scalarOps[bool](boolBytes)}
	})
	String = Global.Intern("scalar:string", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarString, Name: "string", Size: unsafe.Sizeof(""), Align: unsafe.Alignof(""), Ops: scalarOps[string](stringBytes)}
	})
	Bytes = Global.Intern("scalar:bytes", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarBytes, Name: "bytes", Size: unsafe.Sizeof([]byte(nil)), Align: unsafe.Alignof([]byte(nil)), Ops: TypeOps{
			Hash:       func(v any) (uint64, error) { b, ok := v.([]byte); if !ok { return 0, herrors.ErrNotHashable }; return hashBytes(b), nil },
			Equal:      func(a, b any) bool { ab, oka := a.([]byte); bb, okb := b.([]byte); return oka && okb && string(ab) == string(bb) },
			ToPython:   func(v any) (any, error) { return v, nil },
			FromPython: func(py any) (any, error) { return py, nil },
			ChildCount: func(any) int { return 0 },
			ChildAt:    func(any, int) any { return nil },
			Assignable: func(v any) bool { _, ok := v.([]byte); return ok },
			CopyValue:  func(v any) any { b := v.([]byte); return append([]byte(nil), b...) },
		}}
	})
	Time = Global.Intern("scalar:time", func() *TypeMeta {
		return &TypeMeta{Kind: KindScalarTime, Name: "time", Size: unsafe.Sizeof(time.Time{}), Align: unsafe.Alignof(time.Time{}), Ops: scalarOps[time.Time](timeBytes)}
	})
)
