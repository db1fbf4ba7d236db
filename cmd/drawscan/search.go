package main

import (
	"github.com/spf13/cobra"
	"github.com/zeebo/drawscan/seedsearch"
)

var searchDuration int64

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [seeds...]",
	Short: "Search seeds against the last draw",
	Long: `Search the given seeds, or the machine's saved top seeds, against its last
observed draw. Seeds are decimal or 0x prefixed hex. For example:
  drawscan search --machine m1 0x1f3a 99812`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seeds := make([]seedsearch.Seed, 0, len(args))
		for _, arg := range args {
			seed, err := seedsearch.ParseSeed(arg)
			if err != nil {
				return err
			}
			seeds = append(seeds, seed)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.search(cmd.Context(), machineID, seeds, searchDuration)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()
	flags.StringVarP(&machineID, "machine", "m", "default", "machine id")
	flags.Int64Var(&searchDuration, "duration", 300, "seconds of draws generated per seed")
}
