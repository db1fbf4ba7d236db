package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var machineID string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [numbers...]",
	Short: "Record an observed draw",
	Long: `Record an observed draw on a machine. Numbers are comma or space separated
values in 1..80. For example:
  drawscan ingest --machine m1 3 7 12 19 22 30 31 40 41 45 50 52 60 61 66 70 71 74 77 80`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.ingest(machineID, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	flags := ingestCmd.Flags()
	flags.StringVarP(&machineID, "machine", "m", "default", "machine id")
}
