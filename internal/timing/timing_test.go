package timing

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/errs"
	"github.com/zeebo/pcg"
)

func TestHistogram(t *testing.T) {
	t.Run("Walk", func(t *testing.T) {
		for v := int64(0); v < 1<<16; v++ {
			bucket, entry := bucketEntry(v)
			assert.That(t, lowerValue(uint(bucket), int(entry)) <= v)
			assert.That(t, v < lowerValue(uint(bucket), int(entry))+1<<bucket)
		}
	})

	t.Run("Boundaries", func(t *testing.T) {
		h := new(Histogram)

		h.Observe(0)
		assert.Equal(t, h.Total(), 1)

		h.Observe(-1)
		assert.Equal(t, h.Total(), 1)

		h.Observe(1<<63 - 1)
		assert.Equal(t, h.Total(), 1)
	})

	t.Run("Average", func(t *testing.T) {
		h := new(Histogram)
		assert.Equal(t, h.Average(), 0.0)

		for i := int64(0); i < 1000; i++ {
			h.Observe(i)
		}
		assert.Equal(t, h.Sum(), 499500)
		assert.Equal(t, h.Average(), 499.5)
	})

	t.Run("Percentiles", func(t *testing.T) {
		h := new(Histogram)
		for i := int64(0); i < 1000; i++ {
			h.Observe(int64(pcg.Uint32n(1 << 20)))
		}

		calls, lastValue, lastCount := 0, int64(-1), int64(-1)
		h.Percentiles(func(value, count, total int64) {
			assert.That(t, value >= lastValue)
			assert.That(t, count > lastCount)
			assert.Equal(t, total, 1000)
			lastValue, lastCount = value, count
			calls++
		})
		assert.That(t, calls > 1)
		assert.Equal(t, lastCount, 1000)

		new(Histogram).Percentiles(func(value, count, total int64) {
			t.Fatal("called on empty histogram")
		})
	})

	t.Run("Quantile", func(t *testing.T) {
		h := new(Histogram)
		for i := int64(0); i < 1000; i++ {
			h.Observe(int64(pcg.Uint32n(1000)))
		}

		last := int64(-1)
		for q := 0.0; q <= 1; q += 0.125 {
			v := h.Quantile(q)
			assert.That(t, v >= last)
			last = v
		}
		assert.That(t, h.Quantile(1) < 1100)
	})
}

func TestTimer(t *testing.T) {
	t.Run("Named", func(t *testing.T) {
		tm := StartNamed("named")
		assert.Equal(t, LookupState("named").Current(), 1)
		tm.Stop(nil)

		st := LookupState("named")
		assert.NotNil(t, st)
		assert.Equal(t, st.Current(), 0)
		assert.Equal(t, st.Total(), 1)
		assert.Equal(t, len(st.Errors()), 0)
	})

	t.Run("Caller", func(t *testing.T) {
		func() { defer Start().Stop(nil) }()

		found := false
		Times(func(name string, st *State) bool {
			if strings.Contains(name, "TestTimer") {
				found = true
			}
			return true
		})
		assert.That(t, found)
	})

	t.Run("ErrorKinds", func(t *testing.T) {
		class := errs.Class("phase")

		for _, err := range []error{
			class.New("boom"),
			errors.New("short"),
			errors.New("some longer failure"),
			nil,
		} {
			err := err
			StartNamed("kinds").Stop(&err)
		}

		kinds := LookupState("kinds").Errors()
		assert.Equal(t, kinds["phase"], 1)
		assert.Equal(t, kinds["short"], 1)
		assert.Equal(t, kinds["error"], 1)
		assert.Equal(t, LookupState("kinds").Total(), 4)
	})

	t.Run("Concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					GetState("concurrent").Histogram().Observe(int64(j))
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, LookupState("concurrent").Total(), 800)
	})
}

func BenchmarkTimer(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		StartNamed("bench").Stop(nil)
	}
}
