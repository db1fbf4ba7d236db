package main

import "github.com/spf13/cobra"

// seedsCmd represents the seeds command
var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "List a machine's saved top seeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.listSeeds(machineID)
	},
}

func init() {
	rootCmd.AddCommand(seedsCmd)

	flags := seedsCmd.Flags()
	flags.StringVarP(&machineID, "machine", "m", "default", "machine id")
}
