package tsvalue_test

import (
	"testing"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

func intTS() *tsvalue.TSMeta { return tsvalue.MakeScalarTSMeta(typeregistry.Int) }

// S2 Bundle partial update: TSB{a: int, b: int}, initial (0,0). Write
// a=1 at t=1, b=2 at t=2. Expected deltas and values per spec §8.
func TestBundlePartialUpdateScenarioS2(t *testing.T) {
	fields := []typeregistry.NamedField{{Name: "a", Meta: typeregistry.Int}, {Name: "b", Meta: typeregistry.Int}}
	meta := tsvalue.MakeBundleTSMeta("ab", fields, []*tsvalue.TSMeta{intTS(), intTS()})
	tv := tsvalue.NewBundle(meta, []*tsvalue.TSMeta{intTS(), intTS()})

	require.False(t, tv.Valid())

	require.NoError(t, tv.SetFieldValue(0, int64(1), hgtime.EngineTime(1)))
	require.True(t, tv.Modified(1))
	val := meta.Ops.Value(tv).(map[string]any)
	require.Equal(t, int64(1), val["a"])
	require.Equal(t, int64(0), val["b"])
	delta := meta.Ops.DeltaValue(tv).(map[string]any)
	require.Equal(t, map[string]any{"a": int64(1)}, delta)

	require.NoError(t, tv.SetFieldValue(1, int64(2), hgtime.EngineTime(2)))
	val = meta.Ops.Value(tv).(map[string]any)
	require.Equal(t, int64(1), val["a"])
	require.Equal(t, int64(2), val["b"])
	delta = meta.Ops.DeltaValue(tv).(map[string]any)
	require.Equal(t, map[string]any{"b": int64(2)}, delta)

	require.False(t, tv.Modified(3))
}

func TestSetValueThenValueRoundTripsImmediately(t *testing.T) {
	meta := intTS()
	tv := tsvalue.NewScalar(meta)
	out := tsvalue.NewTSOutputView(tv.MakeViewData(nil))
	require.NoError(t, out.SetValue(int64(42), 5))
	v, err := out.Value()
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
	require.True(t, out.Modified(5))
	require.False(t, out.Modified(6))
}

func TestSetValueSchemaMismatchFails(t *testing.T) {
	meta := intTS()
	tv := tsvalue.NewScalar(meta)
	out := tsvalue.NewTSOutputView(tv.MakeViewData(nil))
	err := out.SetValue("not an int", 1)
	require.Error(t, err)
}

func TestDictAddRemoveKeyScenarioS3(t *testing.T) {
	meta := tsvalue.MakeDictTSMeta("strint", typeregistry.String, intTS)
	tv := tsvalue.NewDict(meta, intTS)

	child, added, err := tv.AddKey("x", 1)
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, tv.SetKeyValue("x", int64(1), 1))
	require.Equal(t, int64(1), intTS().Ops.Value(child))
	require.Equal(t, 1, tv.Size())

	removed, err := tv.RemoveKey("x", 2)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 0, tv.Size())
}
