package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/drawscan"
	"github.com/zeebo/drawscan/internal/drawtext"
	"github.com/zeebo/drawscan/seedsearch"
)

var matchFlags struct {
	seed       string
	jump       uint64
	duration   int64
	perDraw    int32
	target20   string
	target10   string
	biased     bool
	multiplier uint64
	increment  uint64
}

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run one generate and match call",
	Long: `Run one generate and match call and print its matches and stats as json.
For example:
  drawscan match --seed 0x2a --jump 1000 --duration 10 \
    --target20 "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20" \
    --target10 "1 2 3 4 5 6 7 8 9 10"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := matchParams()
		if err != nil {
			return err
		}
		res, err := drawscan.Run(p)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func matchParams() (p drawscan.Params, err error) {
	seed, err := seedsearch.ParseSeed(matchFlags.seed)
	if err != nil {
		return p, err
	}

	p = drawscan.DefaultParams()
	p.Seed = uint64(seed)
	p.JumpCount = matchFlags.jump
	p.DurationSeconds = matchFlags.duration
	p.DrawsPerSecond = viper.GetInt64("draws_per_second")
	p.NumbersPerDraw = matchFlags.perDraw
	p.MatchThreshold = viper.GetFloat64("threshold")
	p.Unbiased = !matchFlags.biased
	p.Multiplier = matchFlags.multiplier
	p.Increment = matchFlags.increment

	if p.Target20, err = drawtext.Parse(matchFlags.target20); err != nil {
		return p, err
	}
	if p.Target10, err = drawtext.Parse(matchFlags.target10); err != nil {
		return p, err
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(matchCmd)

	flags := matchCmd.Flags()
	flags.StringVar(&matchFlags.seed, "seed", "0", "lcg seed")
	flags.Uint64Var(&matchFlags.jump, "jump", 0, "lcg steps skipped before generating")
	flags.Int64Var(&matchFlags.duration, "duration", 30, "seconds of draws generated")
	flags.Int32Var(&matchFlags.perDraw, "per-draw", drawscan.DefaultNumbersPerDraw, "numbers per draw")
	flags.StringVar(&matchFlags.target20, "target20", "", "20 increasing values in 1..80")
	flags.StringVar(&matchFlags.target10, "target10", "", "10 increasing values in 1..80")
	flags.BoolVar(&matchFlags.biased, "biased", false, "reduce raw states modulo 80 without rejection")
	flags.Uint64Var(&matchFlags.multiplier, "multiplier", drawscan.DefaultMultiplier, "lcg multiplier")
	flags.Uint64Var(&matchFlags.increment, "increment", drawscan.DefaultIncrement, "lcg increment")
}
