package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/drawscan"
	"github.com/zeebo/drawscan/internal/timing"
	"golang.org/x/sys/cpu"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print build, cpu and configuration details",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "cpus:     %d\n", runtime.NumCPU())
		fmt.Fprintf(out, "popcnt:   %v\n", cpu.X86.HasPOPCNT)
		fmt.Fprintf(out, "avx2:     %v\n", cpu.X86.HasAVX2)
		fmt.Fprintf(out, "asimd:    %v\n", cpu.ARM64.HasASIMD)
		fmt.Fprintf(out, "data dir: %s\n", a.store.Dir())
		fmt.Fprintf(out, "rate:     %d draws/s\n", a.drawsPerSecond)
		fmt.Fprintf(out, "minconf:  %v\n", a.threshold)

		if infoBench > 0 {
			if err := bench(infoBench, a.drawsPerSecond); err != nil {
				return err
			}
		}
		printTimes(a)
		return nil
	},
}

var infoBench int64

// bench runs one core call over seconds of draws so the timers have data.
func bench(seconds, drawsPerSecond int64) error {
	p := drawscan.DefaultParams()
	p.Seed = uint64(time.Now().UnixNano())
	p.DurationSeconds = seconds
	p.DrawsPerSecond = drawsPerSecond
	for v := uint8(1); v <= drawscan.Target20Len; v++ {
		p.Target20 = append(p.Target20, v)
	}
	p.Target10 = p.Target20[:drawscan.Target10Len]

	_, err := drawscan.Run(p)
	return err
}

// printTimes writes every timer recorded so far in this process.
func printTimes(a *app) {
	timing.Times(func(name string, st *timing.State) bool {
		his := st.Histogram()
		fmt.Fprintf(a.out, "%s: n=%d avg=%v p50=%v p99=%v errors=%v\n",
			name, his.Total(),
			time.Duration(his.Average()),
			time.Duration(his.Quantile(0.5)),
			time.Duration(his.Quantile(0.99)),
			st.Errors())
		return true
	})
}

func init() {
	rootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.Int64Var(&infoBench, "bench", 10, "seconds of draws generated before printing timers, 0 to skip")
}
