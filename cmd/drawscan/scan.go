package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/pcg"
)

var (
	scanTrials   int
	scanDuration int64
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan random seeds against the last draw",
	Long: `Search random seeds against the last observed draw of a machine and save
the best scoring ones. For example:
  drawscan scan --machine m1 --trials 2000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		rng := pcg.New(uint64(time.Now().UnixNano()))
		return a.scan(cmd.Context(), machineID, scanTrials, scanDuration, &rng)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	flags := scanCmd.Flags()
	flags.StringVarP(&machineID, "machine", "m", "default", "machine id")
	flags.IntVarP(&scanTrials, "trials", "n", 2000, "random seeds to try")
	flags.Int64Var(&scanDuration, "duration", 30, "seconds of draws generated per seed")
}
