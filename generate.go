package drawscan

import (
	"math"
)

// NumValues is how many distinct values the generator produces: 1 through 80.
const NumValues = 80

// RejectionLimit is the largest raw state accepted in unbiased mode. It is
// floor(2^64/80)*80 - 1, so every value owns the same number of raw states
// at or below it.
const RejectionLimit = (math.MaxUint64/NumValues)*NumValues - 1

// Generator produces values in [1, 80] from the lcg s' = a*s + c. The zero
// value generates from state 0 with a and c both 0.
type Generator struct {
	state       uint64
	a, c        uint64
	transitions uint64
}

// NewGenerator returns a Generator that steps from the given state.
func NewGenerator(state, a, c uint64) *Generator {
	return &Generator{state: state, a: a, c: c}
}

// State returns the current lcg state.
func (g *Generator) State() uint64 { return g.state }

// Transitions returns how many lcg steps have been consumed, including the
// ones rejected in unbiased mode.
func (g *Generator) Transitions() uint64 { return g.transitions }

// Raw advances the lcg one step and returns the new state.
func (g *Generator) Raw() uint64 {
	g.state = g.a*g.state + g.c
	g.transitions++
	return g.state
}

// Next returns the next value. In unbiased mode raw states above
// RejectionLimit are skipped, each skip consuming one more lcg step.
func (g *Generator) Next(unbiased bool) uint8 {
	r := g.Raw()
	if unbiased {
		for r > RejectionLimit {
			r = g.Raw()
		}
	}
	return uint8(r%NumValues) + 1
}

// Fill writes len(buf) values into buf. It produces the same values as
// calling Next len(buf) times.
func (g *Generator) Fill(buf []uint8, unbiased bool) {
	state, a, c := g.state, g.a, g.c
	steps := uint64(len(buf))

	if unbiased {
		for i := range buf {
			state = a*state + c
			for state > RejectionLimit {
				state = a*state + c
				steps++
			}
			buf[i] = uint8(state%NumValues) + 1
		}
	} else {
		for i := range buf {
			state = a*state + c
			buf[i] = uint8(state%NumValues) + 1
		}
	}

	g.state = state
	g.transitions += steps
}
