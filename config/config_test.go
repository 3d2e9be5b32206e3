package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbl8/hgraph/config"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/schedule"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesExecAndTraits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exec:
  start: 0
  end: 100
  mode: real_time
traits:
  region: us-east
  retries: 3
`), 0o644))

	f, err := config.Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 0, f.Exec.Start)
	require.EqualValues(t, 100, f.Exec.End)
	require.Equal(t, schedule.RealTime, f.Exec.Mode)

	traits := node.NewTraits(nil)
	f.Traits.ApplyTraits(traits)
	v, ok := traits.Get("region")
	require.True(t, ok)
	require.Equal(t, "us-east", v)
}

func TestLoadDefaultsToSimulationMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exec:\n  start: 0\n  end: 1\n"), 0o644))

	f, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, schedule.Simulation, f.Exec.Mode)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exec:\n  mode: bogus\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
