package bitmap

import (
	"runtime"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/pcg"
)

func TestB80(t *testing.T) {
	t.Run("Next", func(t *testing.T) {
		var b B80

		for v := uint8(1); v <= MaxValue; v++ {
			b.Set(v)

			got, ok := b.Next()
			assert.That(t, ok)
			assert.Equal(t, got, v)
			assert.Equal(t, b, B80{})
		}

		_, ok := b.Next()
		assert.That(t, !ok)
	})

	t.Run("Words", func(t *testing.T) {
		var b B80
		b.Set(1)
		b.Set(64)
		b.Set(65)
		b.Set(80)
		assert.Equal(t, b[0], uint64(1|1<<63))
		assert.Equal(t, b[1], uint64(1|1<<15))
	})

	t.Run("Has", func(t *testing.T) {
		b := FromValues([]uint8{3, 64, 77})
		assert.That(t, b.Has(3))
		assert.That(t, b.Has(64))
		assert.That(t, b.Has(77))
		assert.That(t, !b.Has(4))
		assert.That(t, !b.Has(0))
		assert.That(t, !b.Has(81))
	})

	t.Run("RepeatsCollapse", func(t *testing.T) {
		b := FromValues([]uint8{13, 13, 13, 70, 70})
		assert.Equal(t, b.Len(), 2)
		assert.DeepEqual(t, b.Values(), []uint8{13, 70})
	})

	t.Run("Values", func(t *testing.T) {
		var rng pcg.T
		for i := 0; i < 100; i++ {
			var in [MaxValue + 1]bool
			var b B80
			for j := 0; j < 30; j++ {
				v := uint8(rng.Uint32n(MaxValue) + 1)
				in[v] = true
				b.Set(v)
			}

			vals := b.Values()
			assert.Equal(t, len(vals), b.Len())
			for j, v := range vals {
				assert.That(t, in[v])
				if j > 0 {
					assert.That(t, vals[j-1] < v)
				}
			}
		}
	})
}

func TestIntersect(t *testing.T) {
	t.Run("Self", func(t *testing.T) {
		var rng pcg.T
		for i := 0; i < 100; i++ {
			var b B80
			for j := 0; j < 20; j++ {
				b.Set(uint8(rng.Uint32n(MaxValue) + 1))
			}
			assert.Equal(t, Intersect(b, b), b.Len())
		}
	})

	t.Run("Disjoint", func(t *testing.T) {
		lo := FromValues([]uint8{1, 2, 3, 4})
		hi := FromValues([]uint8{77, 78, 79, 80})
		assert.Equal(t, Intersect(lo, hi), 0)
	})

	t.Run("Naive", func(t *testing.T) {
		rng := pcg.New(5)
		for i := 0; i < 1000; i++ {
			var a, b B80
			for j := 0; j < 20; j++ {
				a.Set(uint8(rng.Uint32n(MaxValue) + 1))
				b.Set(uint8(rng.Uint32n(MaxValue) + 1))
			}

			want := 0
			for v := uint8(1); v <= MaxValue; v++ {
				if a.Has(v) && b.Has(v) {
					want++
				}
			}
			assert.Equal(t, Intersect(a, b), want)
		}
	})
}

func BenchmarkB80(b *testing.B) {
	b.Run("Intersect", func(b *testing.B) {
		x := B80{0x5555555555555555, 0xffff}
		y := B80{0xffffffff00000000, 0xff}
		n := 0
		for i := 0; i < b.N; i++ {
			n += Intersect(x, y)
		}
		runtime.KeepAlive(n)
	})

	b.Run("NextAll", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			b := B80{^uint64(0), 1<<16 - 1}
			for {
				_, ok := b.Next()
				if !ok {
					break
				}
			}
		}
	})
}
