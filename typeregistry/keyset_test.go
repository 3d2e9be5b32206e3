package typeregistry_test

import (
	"testing"

	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	capacity int
	inserted map[int]any
	erased   map[int]bool
	updated  []int
	cleared  int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{inserted: map[int]any{}, erased: map[int]bool{}}
}

func (r *recordingObserver) OnCapacity(c int)    { r.capacity = c }
func (r *recordingObserver) OnInsert(s int, k any) { r.inserted[s] = k }
func (r *recordingObserver) OnErase(s int)       { r.erased[s] = true }
func (r *recordingObserver) OnUpdate(s int)      { r.updated = append(r.updated, s) }
func (r *recordingObserver) OnClear()            { r.inserted = map[int]any{}; r.erased = map[int]bool{}; r.cleared++ }

// S3 Map add/remove, slot-synchronization half of the scenario: the
// scheduler/observer-notification half is covered in nested/map_test.go.
func TestKeySetAddRemoveKeepsObserverSlotSynchronized(t *testing.T) {
	ks := typeregistry.NewKeySet(typeregistry.String)
	obs := newRecordingObserver()
	ks.Attach(obs)

	require.Equal(t, ks.Capacity(), obs.capacity)

	slot, added := ks.Insert("x")
	require.True(t, added)
	require.Equal(t, "x", obs.inserted[slot])
	require.Equal(t, 1, ks.Size())
	require.Equal(t, ks.Capacity(), obs.capacity)

	require.True(t, ks.Erase("x"))
	require.True(t, obs.erased[slot])
	require.Equal(t, 0, ks.Size())
}

func TestKeySetGrowthNotifiesObserversOfNewCapacity(t *testing.T) {
	ks := typeregistry.NewKeySet(typeregistry.Int)
	obs := newRecordingObserver()
	ks.Attach(obs)

	for i := int64(0); i < 64; i++ {
		ks.Insert(i)
		require.Equal(t, ks.Capacity(), obs.capacity, "capacity(keyset) == capacity(obs) after every mutation")
	}
	require.Equal(t, int(64), ks.Size())
}

func TestTypeMetaIdentityIsPointerEquality(t *testing.T) {
	require.True(t, typeregistry.Int == typeregistry.Global.Intern("scalar:int", func() *typeregistry.TypeMeta {
		t.Fatal("should not rebuild an already-interned type")
		return nil
	}))
	require.False(t, typeregistry.Int == typeregistry.Float)
}
