// Package config loads the execution parameters and root Traits a
// graph run is configured with: engine-options style knobs, generalized
// from kernel-execution settings to graph-execution settings.
package config

import (
	"fmt"
	"os"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/schedule"
	"gopkg.in/yaml.v3"
)

// ExecParams are the spec §6 execution parameters: the simulated time
// window and run mode a graph is driven through.
type ExecParams struct {
	Start hgtime.EngineTime `yaml:"start"`
	End   hgtime.EngineTime `yaml:"end"`
	Mode  schedule.Mode     `yaml:"-"`
	// ModeName is the YAML-facing spelling of Mode ("simulation" or
	// "real_time"), resolved into Mode by Load.
	ModeName string `yaml:"mode"`
}

// TraitsConfig is the YAML-facing shape of a root graph's Traits: a
// flat string-to-opaque-value map, loaded once and installed on the
// root graph before Start.
type TraitsConfig map[string]any

// File is the on-disk shape of a run configuration: execution
// parameters plus root traits.
type File struct {
	Exec   ExecParams   `yaml:"exec"`
	Traits TraitsConfig `yaml:"traits"`
}

// Load reads and parses a YAML run configuration from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	switch f.Exec.ModeName {
	case "", "simulation":
		f.Exec.Mode = schedule.Simulation
	case "real_time":
		f.Exec.Mode = schedule.RealTime
	default:
		return nil, fmt.Errorf("config: unknown exec.mode %q", f.Exec.ModeName)
	}
	return &f, nil
}

// ApplyTraits installs every key in c onto t.
func (c TraitsConfig) ApplyTraits(t *node.Traits) {
	for k, v := range c {
		t.Set(k, v)
	}
}
