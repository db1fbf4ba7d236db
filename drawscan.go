// Package drawscan jumps a 64-bit lcg ahead, generates keno style draws of
// values in [1, 80] from it, and reports every draw that overlaps one of two
// target sets by at least a threshold.
//
// A call is single threaded and owns all of its memory. Concurrent calls
// share nothing and may run in parallel.
package drawscan

import (
	"time"

	"github.com/zeebo/drawscan/internal/affine"
	"github.com/zeebo/drawscan/internal/timing"
	"github.com/zeebo/xxh3"
)

// Stats describes the work done by one call.
type Stats struct {
	Draws        uint64 `json:"draws"`
	TotalNumbers uint64 `json:"total_numbers"`

	// StartState is the lcg state after the jump.
	StartState uint64 `json:"start_state"`
	// FinalState is the lcg state after the last accepted number.
	FinalState uint64 `json:"final_state"`
	// Transitions counts lcg steps including rejected ones.
	Transitions uint64 `json:"transitions"`
	// Fingerprint is the xxh3 hash of the generated numbers.
	Fingerprint uint64 `json:"fingerprint"`

	// Overlap20 and Overlap10 count draws by how many target values they
	// contain.
	Overlap20 [Target20Len + 1]uint64 `json:"overlap_20"`
	Overlap10 [Target10Len + 1]uint64 `json:"overlap_10"`

	GenerateTime time.Duration `json:"generate_time"`
	ScanTime     time.Duration `json:"scan_time"`
}

// Result is the outcome of Run.
type Result struct {
	Matches []Match `json:"matches"`
	Stats   Stats   `json:"stats"`
}

// GenerateAndMatch validates p, generates its draws and returns every match
// ordered by draw index, full set before partial set within a draw.
func GenerateAndMatch(p Params) ([]Match, error) {
	res, err := Run(p)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// Run is GenerateAndMatch that also reports Stats about the call.
func Run(p Params) (_ *Result, err error) {
	defer timing.Start().Stop(&err)

	sz, err := p.validate()
	if err != nil {
		return nil, err
	}

	res := new(Result)
	numbers, err := generatePhase(p, sz, &res.Stats)
	if err != nil {
		return nil, err
	}

	res.Matches, err = scanPhase(p, sz, numbers, &res.Stats)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Generate validates p and returns only the generated numbers. Draw d is
// numbers[d*p.NumbersPerDraw:(d+1)*p.NumbersPerDraw].
func Generate(p Params) ([]uint8, error) {
	sz, err := p.validate()
	if err != nil {
		return nil, err
	}
	var stats Stats
	return generatePhase(p, sz, &stats)
}

// generatePhase jumps the seed and fills the number buffer.
func generatePhase(p Params, sz sizes, st *Stats) (numbers []uint8, err error) {
	tm := timing.Start()
	defer func() { st.GenerateTime = tm.Stop(&err) }()

	numbers, err = allocNumbers(sz.total)
	if err != nil {
		return nil, err
	}

	start := affine.Jump(p.Seed, p.Multiplier, p.Increment, p.JumpCount)
	gen := NewGenerator(start, p.Multiplier, p.Increment)
	gen.Fill(numbers, p.Unbiased)

	st.Draws = sz.draws
	st.TotalNumbers = sz.total
	st.StartState = start
	st.FinalState = gen.State()
	st.Transitions = gen.Transitions()
	st.Fingerprint = xxh3.Hash(numbers)

	return numbers, nil
}

// scanPhase scores every draw in numbers.
func scanPhase(p Params, sz sizes, numbers []uint8, st *Stats) (matches []Match, err error) {
	tm := timing.Start()
	defer func() { st.ScanTime = tm.Stop(&err) }()

	defer func() {
		if rec := recover(); rec != nil {
			if !allocFailed(rec) {
				panic(rec)
			}
			matches, err = nil, ErrAllocationFailure.New("growing match results: %v", rec)
		}
	}()

	c := newCollector(p.Target20, p.Target10, p.MatchThreshold)
	c.scan(numbers, sz.perDraw)

	st.Overlap20 = c.overlap20
	st.Overlap10 = c.overlap10

	return c.matches, nil
}

// allocNumbers allocates the buffer for n numbers, reporting a runtime
// refusal to allocate as ErrAllocationFailure.
func allocNumbers(n uint64) (buf []uint8, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if !allocFailed(rec) {
				panic(rec)
			}
			buf, err = nil, ErrAllocationFailure.New("allocating %d numbers: %v", n, rec)
		}
	}()

	if uint64(int(n)) != n {
		return nil, ErrAllocationFailure.New("%d numbers do not fit in memory", n)
	}
	return make([]uint8, int(n)), nil
}
