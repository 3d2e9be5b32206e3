// Command hgraphc validates a run configuration and the named demo
// graph it will drive, before a run ever sees it. hgraph consumes
// already-built NodeDescriptor/EdgeDescriptor slices rather than a
// textual source language (the construction front end is out of
// scope), so "compiling" here means: load the YAML config, build the
// named graph once to catch wiring errors early, and write back a
// normalized copy of the config.
package main

import (
	"fmt"
	"os"

	"github.com/sbl8/hgraph/builder"
	"github.com/sbl8/hgraph/config"
	"github.com/sbl8/hgraph/internal/demo"
	"github.com/sbl8/hgraph/node"
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"
)

func main() {
	var (
		graphName string
		width     int
		outPath   string
	)

	root := &cobra.Command{
		Use:     "hgraphc <config.yaml>",
		Short:   "Validate a run configuration and its graph wiring",
		Version: "1.0.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			descs, edges, err := demo.Build(graphName, width)
			if err != nil {
				return err
			}
			if _, _, err := builder.Build(descs, edges, node.GraphID{}, nil, nil); err != nil {
				return fmt.Errorf("hgraphc: graph %q failed to build: %w", graphName, err)
			}

			normalized, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("hgraphc: re-encoding config: %w", err)
			}

			if outPath == "" {
				cmd.Printf("%s: ok (%d nodes, %d edges)\n", args[0], len(descs), len(edges))
				return nil
			}
			if err := os.WriteFile(outPath, normalized, 0o644); err != nil {
				return fmt.Errorf("hgraphc: writing %s: %w", outPath, err)
			}
			cmd.Printf("%s: ok, normalized config written to %s\n", args[0], outPath)
			return nil
		},
	}

	root.Flags().StringVar(&graphName, "graph", "scale", "demo graph to validate against the config")
	root.Flags().IntVar(&width, "width", 4, "fan-out width for graphs that scale with it")
	root.Flags().StringVar(&outPath, "out", "", "path to write the normalized config (default: none, just validate)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
