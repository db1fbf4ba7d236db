package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeebo/drawscan/internal/affine"
	"github.com/zeebo/drawscan/seedsearch"
	"github.com/zeebo/errs"
)

// inferCmd represents the infer command
var inferCmd = &cobra.Command{
	Use:   "infer x0 x1 x2",
	Short: "Recover lcg parameters from three consecutive states",
	Long: `Recover the multiplier and increment of an lcg from three consecutive raw
64-bit states, and the state that preceded the first. For example:
  drawscan infer 1 7806831264735756412 9396908728118811419`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var xs [3]uint64
		for i, arg := range args {
			x, err := seedsearch.ParseSeed(arg)
			if err != nil {
				return err
			}
			xs[i] = uint64(x)
		}

		t, ok := affine.Infer(xs[0], xs[1], xs[2])
		if !ok {
			return errs.New("x1 - x0 is even, the multiplier is not unique")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "multiplier: %d\n", t.Mul)
		fmt.Fprintf(out, "increment:  %d\n", t.Add)
		if inv, ok := t.Inverse(); ok {
			fmt.Fprintf(out, "previous:   %v\n", seedsearch.Seed(inv.Apply(xs[0])))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inferCmd)
}
