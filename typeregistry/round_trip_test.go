package typeregistry_test

import (
	"testing"
	"time"

	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

// TestPythonRoundTripScalars exercises spec §9's to_python(from_python(x))
// == x invariant for every scalar TypeMeta.
func TestPythonRoundTripScalars(t *testing.T) {
	cases := []struct {
		name string
		meta *typeregistry.TypeMeta
		x    any
	}{
		{"int", typeregistry.Int, int64(42)},
		{"float", typeregistry.Float, 3.5},
		{"bool", typeregistry.Bool, true},
		{"string", typeregistry.String, "hello"},
		{"bytes", typeregistry.Bytes, []byte("payload")},
		{"time", typeregistry.Time, time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			internal, err := c.meta.Ops.FromPython(c.x)
			require.NoError(t, err)
			back, err := c.meta.Ops.ToPython(internal)
			require.NoError(t, err)
			require.Equal(t, c.x, back)
		})
	}
}

// TestPythonRoundTripList exercises the same invariant for a container
// kind, where from_python/to_python also cross the boxed-*List boundary.
func TestPythonRoundTripList(t *testing.T) {
	meta := typeregistry.MakeListMeta(typeregistry.Int)
	x := []any{int64(1), int64(2), int64(3)}

	internal, err := meta.Ops.FromPython(x)
	require.NoError(t, err)
	require.IsType(t, &typeregistry.List{}, internal)

	back, err := meta.Ops.ToPython(internal)
	require.NoError(t, err)
	require.Equal(t, x, back)
}
