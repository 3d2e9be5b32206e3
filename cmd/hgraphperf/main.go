// Command hgraphperf measures per-tick node evaluation throughput on
// the "scale" demo graph: a timing harness over repeated scheduler
// ticks, reporting throughput the way a benchmark over dispatch loops
// would. --size scales graph fan-out, the unit of work per tick.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sbl8/hgraph/builder"
	"github.com/sbl8/hgraph/engine"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/hlog"
	"github.com/sbl8/hgraph/internal/demo"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/pushsource"
	"github.com/sbl8/hgraph/schedule"

	"github.com/spf13/cobra"
)

func main() {
	var (
		size int
		iter int
	)

	root := &cobra.Command{
		Use:     "hgraphperf",
		Short:   "Measure node evaluation throughput on a scaled demo graph",
		Version: "1.0.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("hgraph Performance Analysis Tool\n")
			cmd.Printf("=================================\n")
			cmd.Printf("Go Version: %s\n", runtime.Version())
			cmd.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			cmd.Printf("CPUs: %d\n", runtime.NumCPU())
			cmd.Printf("Graph width: %d\n", size)
			cmd.Printf("Ticks: %d\n\n", iter)

			descs, edges, err := demo.Build("scale", size)
			if err != nil {
				return err
			}

			log := hlog.Nop()
			g, _, err := builder.Build(descs, edges, node.GraphID{}, nil, nil)
			if err != nil {
				return fmt.Errorf("hgraphperf: building graph: %w", err)
			}

			ex := engine.NewExecutor(g, nil, log)
			queue := pushsource.NewQueue(0, pushsource.DropOldest)
			ex.RegisterPushSource(schedule.PushNode{Node: g.Nodes[0], Queue: queue})
			sender := pushsource.NewSender(queue)

			for i := 0; i < iter; i++ {
				if err := sender.EnqueueAt(hgtime.EngineTime(i+1), int64(i)); err != nil {
					return fmt.Errorf("hgraphperf: enqueuing tick %d: %w", i, err)
				}
			}

			start := time.Now()
			if err := ex.Run(context.Background(), 0, hgtime.EngineTime(iter), schedule.Simulation); err != nil {
				return fmt.Errorf("hgraphperf: running: %w", err)
			}
			elapsed := time.Since(start)

			evals := float64(size) * float64(iter)
			cmd.Printf("Total node evals:    %.0f\n", evals)
			cmd.Printf("Elapsed:             %v\n", elapsed)
			cmd.Printf("Throughput:          %.2f Mevals/s\n", evals/elapsed.Seconds()/1e6)
			return nil
		},
	}

	root.Flags().IntVar(&size, "size", 64, "graph fan-out width")
	root.Flags().IntVar(&iter, "iter", 1000, "number of push-driven ticks")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
