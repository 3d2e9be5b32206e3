package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/typeregistry"
)

// dictValue is the runtime container for a TSD TSValue: a KeySet
// mapping keys to slots, a child TSValue per live slot, and the
// ObserverArray wired to the KeySet as a SlotObserver so per-key
// subscriber lists stay synchronized with add/remove/resize.
type dictValue struct {
	keys     *typeregistry.KeySet
	children []*TSValue // indexed by slot, parallel to keys' slots
	valueTS  func() *TSMeta
}

// MakeDictTSMeta builds a TSMeta for a TSD[keyType, valueTS] time
// series. The meta does not keep valueTS: each key's child time series
// is built by the valueTS given to NewDict.
func MakeDictTSMeta(name string, keyType *typeregistry.TypeMeta, valueTS func() *TSMeta) *TSMeta {
	m := &TSMeta{
		TypeMeta: genericMetaFor(TSD, name),
		TSKind:   TSD,
		KeyType:  keyType,
	}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid: func(tv *TSValue) bool {
			dv := tv.Value.(*dictValue)
			for _, c := range dv.children {
				if c != nil && !c.AllValid() {
					return false
				}
			}
			return true
		},
		Value: func(tv *TSValue) any {
			dv := tv.Value.(*dictValue)
			out := make(map[any]any, dv.keys.Size())
			for _, k := range dv.keys.Keys() {
				slot, _ := dv.keys.SlotOf(k)
				c := dv.children[slot]
				out[k] = c.Meta.Ops.Value(c)
			}
			return out
		},
		DeltaValue: func(tv *TSValue) any {
			return tv.Delta
		},
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			return fmt.Errorf("%w: TSD has no wholesale set_value, use AddKey/RemoveKey/SetKeyValue", herrors.ErrSchemaMismatch)
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			return fmt.Errorf("%w: TSD apply_delta must go through AddKey/RemoveKey", herrors.ErrSchemaMismatch)
		},
		Invalidate: func(tv *TSValue) {
			tv.Time = hgtime.MinDT
			for _, c := range tv.Value.(*dictValue).children {
				if c != nil {
					c.Meta.Ops.Invalidate(c)
				}
			}
		},
		ChildCount: func(tv *TSValue) int { return tv.Value.(*dictValue).keys.Size() },
		ChildAt: func(tv *TSValue, slot int, now hgtime.EngineTime) (*TSValue, error) {
			dv := tv.Value.(*dictValue)
			if slot < 0 || slot >= len(dv.children) || dv.children[slot] == nil {
				return nil, fmt.Errorf("dict slot %d is empty", slot)
			}
			return dv.children[slot], nil
		},
		ChildByName: func(tv *TSValue, name string, now hgtime.EngineTime) (*TSValue, error) {
			dv := tv.Value.(*dictValue)
			slot, ok := dv.keys.SlotOf(name)
			if !ok {
				return nil, fmt.Errorf("dict has no key %q", name)
			}
			return dv.children[slot], nil
		},
		ChildByKey: func(tv *TSValue, key any, now hgtime.EngineTime) (*TSValue, error) {
			dv := tv.Value.(*dictValue)
			slot, ok := dv.keys.SlotOf(key)
			if !ok {
				return nil, fmt.Errorf("dict has no key %v", key)
			}
			return dv.children[slot], nil
		},
	}
	tv := &dictValue{valueTS: valueTS}
	_ = tv
	return m
}

// NewDict allocates an empty TSD TSValue for meta, with valueTS
// building the child TSMeta for each newly added key.
func NewDict(meta *TSMeta, valueTS func() *TSMeta) *TSValue {
	tv := New(meta)
	tv.Value = &dictValue{
		keys:    typeregistry.NewKeySet(meta.KeyType),
		valueTS: valueTS,
	}
	dv := tv.Value.(*dictValue)
	tv.Slots.OnCapacity(dv.keys.Capacity())
	dv.keys.Attach(tv.Slots)
	return tv
}

func (dv *dictValue) ensureSlot(slot int) {
	if slot < len(dv.children) {
		return
	}
	grown := make([]*TSValue, slot+1)
	copy(grown, dv.children)
	dv.children = grown
}

// AddKey inserts key (a no-op, returning the existing child, if key is
// already present) and returns its child TSValue.
func (tv *TSValue) AddKey(key any, now hgtime.EngineTime) (*TSValue, bool, error) {
	dv, ok := tv.Value.(*dictValue)
	if !ok {
		return nil, false, fmt.Errorf("not a dict")
	}
	if slot, present := dv.keys.SlotOf(key); present {
		return dv.children[slot], false, nil
	}
	slot, _ := dv.keys.Insert(key)
	dv.ensureSlot(slot)
	dv.children[slot] = New(dv.valueTS())
	if tv.Delta == nil {
		tv.Delta = &Delta{}
	}
	if tv.Time != now {
		tv.Delta.Reset()
	}
	tv.Delta.Added = append(tv.Delta.Added, key)
	tv.Time = now
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
	return dv.children[slot], true, nil
}

// RemoveKey deletes key, firing notify_removed exactly once on its
// slot's observers (via the ObserverArray's OnErase -> NotifyAllRemoved).
func (tv *TSValue) RemoveKey(key any, now hgtime.EngineTime) (bool, error) {
	dv, ok := tv.Value.(*dictValue)
	if !ok {
		return false, fmt.Errorf("not a dict")
	}
	slot, present := dv.keys.SlotOf(key)
	if !present {
		return false, nil
	}
	dv.keys.Erase(key)
	dv.children[slot] = nil
	if tv.Delta == nil {
		tv.Delta = &Delta{}
	}
	if tv.Time != now {
		tv.Delta.Reset()
	}
	tv.Delta.Removed = append(tv.Delta.Removed, key)
	tv.Time = now
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
	return true, nil
}

// SetKeyValue sets the value of an existing (or newly added) key's
// child time series and notifies that slot's observers at now.
func (tv *TSValue) SetKeyValue(key any, v any, now hgtime.EngineTime) error {
	dv, ok := tv.Value.(*dictValue)
	if !ok {
		return fmt.Errorf("not a dict")
	}
	slot, present := dv.keys.SlotOf(key)
	if !present {
		child, _, err := tv.AddKey(key, now)
		if err != nil {
			return err
		}
		if err := child.Meta.Ops.SetValue(child, v, now); err != nil {
			return err
		}
	} else {
		if err := dv.children[slot].Meta.Ops.SetValue(dv.children[slot], v, now); err != nil {
			return err
		}
	}
	slot, _ = dv.keys.SlotOf(key)
	tv.Slots.Slot(slot).NotifyAll(now)
	if tv.Delta == nil {
		tv.Delta = &Delta{}
	}
	if tv.Time != now {
		tv.Delta.Reset()
	}
	tv.Delta.Modified = append(tv.Delta.Modified, key)
	tv.Time = now
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
	return nil
}

// Keys returns the live keys of a TSD TSValue.
func (tv *TSValue) Keys() []any {
	return tv.Value.(*dictValue).keys.Keys()
}

// Size returns the number of live keys of a TSD TSValue.
func (tv *TSValue) Size() int {
	return tv.Value.(*dictValue).keys.Size()
}
