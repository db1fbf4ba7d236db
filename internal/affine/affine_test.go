package affine

import (
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/pcg"
)

const (
	mmixMul = 6364136223846793005
	mmixInc = 1442695040888963407
)

// slowJump steps the lcg one state at a time.
func slowJump(seed, a, c, k uint64) uint64 {
	for i := uint64(0); i < k; i++ {
		seed = a*seed + c
	}
	return seed
}

func TestJump(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		var rng pcg.T
		for i := 0; i < 100; i++ {
			seed := rng.Uint64()
			assert.Equal(t, Jump(seed, mmixMul, mmixInc, 0), seed)
		}
	})

	t.Run("Known", func(t *testing.T) {
		assert.Equal(t, Jump(1, mmixMul, mmixInc, 1), uint64(7806831264735756412))
		assert.Equal(t, Jump(1, mmixMul, mmixInc, 10), uint64(3660572683296592931))
		assert.Equal(t, Jump(0, mmixMul, mmixInc, 1000), uint64(902429759771004424))
	})

	t.Run("MatchesStepping", func(t *testing.T) {
		rng := pcg.New(7)
		for i := 0; i < 200; i++ {
			seed, a, c := rng.Uint64(), rng.Uint64(), rng.Uint64()
			k := uint64(rng.Uint32n(2000))
			assert.Equal(t, Jump(seed, a, c, k), slowJump(seed, a, c, k))
		}
	})

	t.Run("Composes", func(t *testing.T) {
		rng := pcg.New(11)
		for i := 0; i < 1000; i++ {
			seed := rng.Uint64()
			k1, k2 := rng.Uint64()>>2, rng.Uint64()>>2
			mid := Jump(seed, mmixMul, mmixInc, k1)
			assert.Equal(t, Jump(mid, mmixMul, mmixInc, k2), Jump(seed, mmixMul, mmixInc, k1+k2))
		}
	})

	t.Run("Wraps", func(t *testing.T) {
		max := ^uint64(0)
		assert.Equal(t, Jump(max, max, max, 1), max*max+max)
		assert.Equal(t, Jump(5, 1, 0, max), uint64(5))
		assert.Equal(t, Jump(5, 1, 1, max), uint64(4))
	})
}

func TestTransform(t *testing.T) {
	t.Run("Then", func(t *testing.T) {
		f, g := Step(3, 5), Step(7, 11)
		for _, s := range []uint64{0, 1, 99, ^uint64(0)} {
			assert.Equal(t, f.Then(g).Apply(s), g.Apply(f.Apply(s)))
		}
	})

	t.Run("Associative", func(t *testing.T) {
		var rng pcg.T
		for i := 0; i < 100; i++ {
			f := Transform{rng.Uint64(), rng.Uint64()}
			g := Transform{rng.Uint64(), rng.Uint64()}
			h := Transform{rng.Uint64(), rng.Uint64()}
			assert.Equal(t, f.Then(g).Then(h), f.Then(g.Then(h)))
		}
	})

	t.Run("PowZero", func(t *testing.T) {
		assert.Equal(t, Step(mmixMul, mmixInc).Pow(0), Identity)
	})

	t.Run("Inverse", func(t *testing.T) {
		step := Step(mmixMul, mmixInc)
		back, ok := step.Inverse()
		assert.That(t, ok)
		assert.Equal(t, step.Then(back), Identity)

		var rng pcg.T
		for i := 0; i < 100; i++ {
			s := rng.Uint64()
			assert.Equal(t, back.Apply(step.Apply(s)), s)
		}

		_, ok = Step(2, 1).Inverse()
		assert.That(t, !ok)
	})
}

func TestInfer(t *testing.T) {
	t.Run("Recovers", func(t *testing.T) {
		step := Step(mmixMul, mmixInc)
		rng := pcg.New(3)

		found := 0
		for i := 0; i < 100; i++ {
			x0 := rng.Uint64()
			x1 := step.Apply(x0)
			x2 := step.Apply(x1)

			got, ok := Infer(x0, x1, x2)
			if (x1-x0)&1 == 0 {
				assert.That(t, !ok)
				continue
			}
			assert.That(t, ok)
			assert.Equal(t, got, step)
			found++
		}
		assert.That(t, found > 0)
	})

	t.Run("EvenDifference", func(t *testing.T) {
		_, ok := Infer(2, 4, 8)
		assert.That(t, !ok)
	})
}

func BenchmarkJump(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		Jump(uint64(i), mmixMul, mmixInc, ^uint64(0))
	}
}
