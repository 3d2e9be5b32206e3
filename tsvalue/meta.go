// Package tsvalue implements the time-series value model: the TSValue
// storage unit (value/time/observer/delta/link parallel slots), the
// TSMeta specialization of typeregistry.TypeMeta for time-series kinds,
// and the view types (TSView/TSInputView/TSOutputView/ConstValueView/
// ValueView) that are the engine's single polymorphism mechanism —
// every TS-kind-specific behavior is reached through the TSOps vtable
// below, never through a type switch at a call site that handles more
// than one kind.
package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/typeregistry"
)

// TSKind is the finite tag of time-series shapes.
type TSKind uint8

const (
	TS TSKind = iota
	TSS
	TSD
	TSL
	TSB
	TSW
	REF
	SIGNAL
)

func (k TSKind) String() string {
	switch k {
	case TS:
		return "TS"
	case TSS:
		return "TSS"
	case TSD:
		return "TSD"
	case TSL:
		return "TSL"
	case TSB:
		return "TSB"
	case TSW:
		return "TSW"
	case REF:
		return "REF"
	case SIGNAL:
		return "SIGNAL"
	default:
		return "?"
	}
}

// TSOps is the vtable a TSMeta carries for TS-specific dispatch. Every
// function receives the owning *TSValue so it can read/write the
// parallel slots directly.
type TSOps struct {
	LastModifiedTime func(tv *TSValue) hgtime.EngineTime
	Modified         func(tv *TSValue, now hgtime.EngineTime) bool
	Valid            func(tv *TSValue) bool
	AllValid         func(tv *TSValue) bool
	Value            func(tv *TSValue) any
	DeltaValue       func(tv *TSValue) any
	SetValue         func(tv *TSValue, v any, now hgtime.EngineTime) error
	ApplyDelta       func(tv *TSValue, delta any, now hgtime.EngineTime) error
	Invalidate       func(tv *TSValue)
	ChildAt          func(tv *TSValue, i int, now hgtime.EngineTime) (*TSValue, error)
	ChildByName      func(tv *TSValue, name string, now hgtime.EngineTime) (*TSValue, error)
	// ChildByKey looks up a child by its native key value rather than its
	// string form, for collections whose KeyType isn't string (TSD keyed
	// by int, uuid, etc). Only dict-shaped TSOps populate this; leave nil
	// where a collection's children are only ever addressed by name.
	ChildByKey func(tv *TSValue, key any, now hgtime.EngineTime) (*TSValue, error)
	ChildCount func(tv *TSValue) int
}

// TSMeta specializes typeregistry.TypeMeta for a time-series kind. It
// embeds a KindTS TypeMeta naming the series, carries the element
// types (Elem for TS/TSS/TSW, KeyType for TSD, Fields for TSB) and adds
// the ts_ops vtable.
type TSMeta struct {
	*typeregistry.TypeMeta
	TSKind  TSKind
	Elem    *typeregistry.TypeMeta // element type: TS payload, TSS/TSW element
	KeyType *typeregistry.TypeMeta // TSD key type
	Fields  []typeregistry.NamedField
	Ops     TSOps
}

func genericMetaFor(kind TSKind, name string) *typeregistry.TypeMeta {
	return &typeregistry.TypeMeta{Kind: typeregistry.KindTS, Name: fmt.Sprintf("%s<%s>", kind, name)}
}
