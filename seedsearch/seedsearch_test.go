package seedsearch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/zeebo/assert"
	"github.com/zeebo/drawscan"
	"github.com/zeebo/pcg"
)

func seq(lo, hi uint8) (out []uint8) {
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func testParams() drawscan.Params {
	p := drawscan.DefaultParams()
	p.DurationSeconds = 5
	p.DrawsPerSecond = 40
	p.Target20 = seq(1, 20)
	p.Target10 = seq(1, 10)
	p.MatchThreshold = 0.3
	return p
}

func TestJumpCountSince(t *testing.T) {
	assert.Equal(t, JumpCountSince(Epoch, Epoch.Add(90*time.Second+time.Millisecond), 1200), 90*1200)
	assert.Equal(t, JumpCountSince(Epoch, Epoch, 1200), 0)
	assert.Equal(t, JumpCountSince(Epoch, Epoch.Add(-time.Hour), 1200), 0)
	assert.Equal(t, JumpCountSince(Epoch, Epoch.Add(time.Hour), 0), 0)
}

func TestSeed(t *testing.T) {
	assert.Equal(t, Seed(255).String(), "0xff")

	for _, in := range []string{"255", "0xff", "0o377", "0b11111111"} {
		s, err := ParseSeed(in)
		assert.NoError(t, err)
		assert.Equal(t, s, Seed(255))
	}

	_, err := ParseSeed("nope")
	assert.That(t, Error.Has(err))

	data, err := json.Marshal([]Seed{1, 0xdeadbeef})
	assert.NoError(t, err)
	assert.Equal(t, string(data), `["0x1","0xdeadbeef"]`)

	var seeds []Seed
	assert.NoError(t, json.Unmarshal(data, &seeds))
	assert.DeepEqual(t, seeds, []Seed{1, 0xdeadbeef})

	seeds = nil
	assert.NoError(t, json.Unmarshal([]byte(`[255, "255", "0xff", 18446744073709551615]`), &seeds))
	assert.DeepEqual(t, seeds, []Seed{255, 255, 255, 1<<64 - 1})

	assert.That(t, json.Unmarshal([]byte(`[-1]`), &seeds) != nil)
	assert.That(t, json.Unmarshal([]byte(`[1.5]`), &seeds) != nil)
	assert.That(t, json.Unmarshal([]byte(`["nope"]`), &seeds) != nil)
}

func TestRandomSeeds(t *testing.T) {
	a, b := pcg.New(4), pcg.New(4)
	assert.DeepEqual(t, RandomSeeds(16, &a), RandomSeeds(16, &b))
	assert.Equal(t, len(RandomSeeds(0, &a)), 0)
}

func TestSearch(t *testing.T) {
	t.Run("MatchesCore", func(t *testing.T) {
		seeds := []Seed{1, 2, 3, 4, 5, 6, 7}
		p := testParams()

		progress := 0
		sess, err := Search(context.Background(), Request{
			Seeds:    seeds,
			Params:   p,
			Workers:  3,
			Progress: func(Seed, []drawscan.Match, error) { progress++ },
		})
		assert.NoError(t, err)
		assert.Equal(t, progress, len(seeds))
		assert.Equal(t, len(sess.Failures), 0)
		assert.That(t, sess.ID != "")

		var want []Result
		for _, seed := range seeds {
			p.Seed = uint64(seed)
			matches, err := drawscan.GenerateAndMatch(p)
			assert.NoError(t, err)
			for _, m := range matches {
				want = append(want, newResult(seed, m, p.DrawsPerSecond))
			}
		}
		assert.DeepEqual(t, sess.Results, want)
	})

	t.Run("Failures", func(t *testing.T) {
		p := testParams()
		p.Target20 = seq(1, 19)

		sess, err := Search(context.Background(), Request{Seeds: []Seed{1, 2}, Params: p})
		assert.NoError(t, err)
		assert.Equal(t, len(sess.Results), 0)
		assert.Equal(t, len(sess.Failures), 2)
		assert.Equal(t, sess.Failures[0].Code, "invalid_argument")
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Search(ctx, Request{Seeds: []Seed{1}, Params: testParams()})
		assert.That(t, Error.Has(err))
	})
}

func TestNewResult(t *testing.T) {
	r := newResult(9, drawscan.Match{Type: drawscan.PartialSet, DrawIndex: 1200 * 185, Confidence: 0.8}, 1200)
	assert.Equal(t, r.TimeOffsetSeconds, 185)
	assert.Equal(t, r.TimeOffsetPretty, "3m 5s")

	r = newResult(9, drawscan.Match{DrawIndex: 1799}, 1200)
	assert.Equal(t, r.TimeOffsetSeconds, 1)

	// halves round to even
	assert.Equal(t, newResult(1, drawscan.Match{DrawIndex: 5}, 2).TimeOffsetSeconds, 2)
	assert.Equal(t, newResult(1, drawscan.Match{DrawIndex: 7}, 2).TimeOffsetSeconds, 4)
}

func TestTopSeeds(t *testing.T) {
	results := []Result{
		{Seed: 3, Confidence: 0.5},
		{Seed: 1, Confidence: 0.75},
		{Seed: 3, Confidence: 0.5},
		{Seed: 2, Confidence: 1},
		{Seed: 4, Confidence: 0.75},
	}

	assert.DeepEqual(t, TopSeeds(results, 3), []Scored{
		{Seed: 2, Score: 1},
		{Seed: 3, Score: 1},
		{Seed: 1, Score: 0.75},
	})
	assert.Equal(t, len(TopSeeds(results, 10)), 4)
	assert.Equal(t, len(TopSeeds(nil, 5)), 0)
}
