package drawscan

import (
	"math"
	"math/bits"

	"github.com/zeebo/drawscan/internal/bitmap"
	"github.com/zeebo/errs"
)

const (
	// DefaultMultiplier and DefaultIncrement are Knuth's MMIX lcg constants.
	DefaultMultiplier = 6364136223846793005
	DefaultIncrement  = 1442695040888963407

	// DefaultNumbersPerDraw is the usual keno draw size.
	DefaultNumbersPerDraw = 20

	// DefaultMatchThreshold is the default minimum confidence reported.
	DefaultMatchThreshold = 0.75

	// MaxTotalNumbers bounds how many numbers a single call may generate.
	MaxTotalNumbers = 1200 * 1000 * 1000

	// Target20Len and Target10Len are the required target set sizes.
	Target20Len = 20
	Target10Len = 10
)

// Params describes one generate and match call.
type Params struct {
	// Seed is the lcg state before jumping.
	Seed uint64
	// JumpCount is how many lcg steps to skip before generating.
	JumpCount uint64

	// DurationSeconds times DrawsPerSecond is the number of draws. Both must
	// be positive.
	DurationSeconds int64
	DrawsPerSecond  int64

	// Target20 and Target10 are strictly increasing values in [1, 80] of
	// length 20 and 10.
	Target20 []uint8
	Target10 []uint8

	// NumbersPerDraw is the size of a draw window, in [1, 80].
	NumbersPerDraw int32
	// MatchThreshold is the minimum confidence for a match to be reported.
	MatchThreshold float64
	// Unbiased enables rejection sampling.
	Unbiased bool

	// Multiplier and Increment define the lcg s' = Multiplier*s + Increment.
	Multiplier uint64
	Increment  uint64
}

// DefaultParams returns Params with every optional field at its default.
// The caller still has to fill in the seed, sizes and targets.
func DefaultParams() Params {
	return Params{
		NumbersPerDraw: DefaultNumbersPerDraw,
		MatchThreshold: DefaultMatchThreshold,
		Unbiased:       true,
		Multiplier:     DefaultMultiplier,
		Increment:      DefaultIncrement,
	}
}

// sizes holds the derived counts for a validated Params.
type sizes struct {
	draws   uint64
	perDraw int
	total   uint64
}

// validate checks the Params and computes the sizes of the call.
func (p Params) validate() (sizes, error) {
	if p.DurationSeconds <= 0 {
		return sizes{}, ErrInvalidArgument.New("duration seconds must be > 0: %d", p.DurationSeconds)
	}
	if p.DrawsPerSecond <= 0 {
		return sizes{}, ErrInvalidArgument.New("draws per second must be > 0: %d", p.DrawsPerSecond)
	}
	if p.NumbersPerDraw < 1 || p.NumbersPerDraw > bitmap.MaxValue {
		return sizes{}, ErrInvalidArgument.New("numbers per draw must be in [1, %d]: %d",
			bitmap.MaxValue, p.NumbersPerDraw)
	}
	if math.IsNaN(p.MatchThreshold) {
		return sizes{}, ErrInvalidArgument.New("match threshold is NaN")
	}
	if err := ValidateTarget(p.Target20, Target20Len); err != nil {
		return sizes{}, ErrInvalidArgument.New("target 20: %v", err)
	}
	if err := ValidateTarget(p.Target10, Target10Len); err != nil {
		return sizes{}, ErrInvalidArgument.New("target 10: %v", err)
	}

	hi, draws := bits.Mul64(uint64(p.DurationSeconds), uint64(p.DrawsPerSecond))
	if hi != 0 {
		return sizes{}, ErrRequestTooLarge.New("draw count overflows")
	}
	hi, total := bits.Mul64(draws, uint64(p.NumbersPerDraw))
	if hi != 0 {
		return sizes{}, ErrRequestTooLarge.New("total numbers overflows")
	}

	if total == 0 {
		return sizes{}, ErrComputedSizeZero.New("computed total numbers is zero")
	}
	if total > MaxTotalNumbers {
		return sizes{}, ErrRequestTooLarge.New("%d numbers requested, limit is %d; reduce duration or draws per second",
			total, MaxTotalNumbers)
	}

	return sizes{
		draws:   draws,
		perDraw: int(p.NumbersPerDraw),
		total:   total,
	}, nil
}

// ValidateTarget returns an error unless vals has length n and is strictly
// increasing with every value in [1, 80].
func ValidateTarget(vals []uint8, n int) error {
	if len(vals) != n {
		return errs.New("length is %d, want %d", len(vals), n)
	}
	var prev uint8
	for i, v := range vals {
		switch {
		case v < 1 || v > bitmap.MaxValue:
			return errs.New("value %d at index %d out of range", v, i)
		case v <= prev:
			return errs.New("value %d at index %d is not strictly increasing", v, i)
		}
		prev = v
	}
	return nil
}
