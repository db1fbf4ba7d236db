package drawscan

import (
	"encoding/json"
	"testing"

	"github.com/zeebo/assert"
)

func TestMatchType(t *testing.T) {
	assert.Equal(t, FullSet.String(), "full_20")
	assert.Equal(t, PartialSet.String(), "partial_10")
	assert.Equal(t, MatchType(7).String(), "unknown")

	data, err := json.Marshal(Match{Type: PartialSet, DrawIndex: 12, Confidence: 0.8})
	assert.NoError(t, err)
	assert.Equal(t, string(data), `{"match_type":"partial_10","draw_index":12,"confidence_score":0.8}`)

	var m Match
	assert.NoError(t, json.Unmarshal([]byte(`{"match_type":"full_20","draw_index":3,"confidence_score":1}`), &m))
	assert.Equal(t, m, Match{Type: FullSet, DrawIndex: 3, Confidence: 1})

	assert.That(t, json.Unmarshal([]byte(`{"match_type":"full_10"}`), &m) != nil)
	_, err = json.Marshal(Match{Type: MatchType(9)})
	assert.That(t, err != nil)
}

func TestCollector(t *testing.T) {
	t.Run("ExactMatch", func(t *testing.T) {
		c := newCollector(seq(1, 20), seq(1, 10), 1.0)
		c.observe(4, seq(1, 20))

		assert.DeepEqual(t, c.matches, []Match{
			{Type: FullSet, DrawIndex: 4, Confidence: 1.0},
			{Type: PartialSet, DrawIndex: 4, Confidence: 1.0},
		})
	})

	t.Run("Threshold", func(t *testing.T) {
		c := newCollector(seq(1, 20), seq(41, 50), 0.75)

		// 15 of 20 hits the threshold exactly, 14 does not.
		c.observe(0, append(seq(1, 15), seq(61, 65)...))
		c.observe(1, append(seq(1, 14), seq(61, 66)...))
		// 8 of 10 for the partial set only.
		c.observe(2, append(seq(41, 48), seq(61, 72)...))

		assert.DeepEqual(t, c.matches, []Match{
			{Type: FullSet, DrawIndex: 0, Confidence: 0.75},
			{Type: PartialSet, DrawIndex: 2, Confidence: 0.8},
		})
		assert.Equal(t, c.overlap20[15], 1)
		assert.Equal(t, c.overlap20[14], 1)
		assert.Equal(t, c.overlap20[0], 1)
		assert.Equal(t, c.overlap10[8], 1)
		assert.Equal(t, c.overlap10[0], 2)
	})

	t.Run("RepeatsCollapse", func(t *testing.T) {
		c := newCollector(seq(1, 20), seq(1, 10), 0)
		draw := []uint8{1, 1, 1, 1, 2}
		c.observe(0, draw)

		assert.Equal(t, len(c.matches), 2)
		assert.Equal(t, c.matches[0].Confidence, 2.0/20)
		assert.Equal(t, c.matches[1].Confidence, 2.0/10)
	})

	t.Run("ZeroThresholdReportsEverything", func(t *testing.T) {
		c := newCollector(seq(1, 20), seq(1, 10), 0)
		c.scan(make([]uint8, 0), 20)
		assert.Equal(t, len(c.matches), 0)

		numbers := append(seq(61, 80), seq(61, 80)...)
		c.scan(numbers, 20)
		assert.Equal(t, len(c.matches), 4)
		for i, m := range c.matches {
			assert.Equal(t, m.DrawIndex, uint64(i/2))
			assert.Equal(t, m.Confidence, 0.0)
		}
	})

	t.Run("Partitions", func(t *testing.T) {
		c := newCollector(seq(1, 20), seq(1, 10), 1.0)
		numbers := append(append(seq(30, 36), seq(1, 7)...), seq(1, 7)...)
		c.scan(numbers, 7)

		var draws uint64
		for _, n := range c.overlap20 {
			draws += n
		}
		assert.Equal(t, draws, 3)
		assert.Equal(t, c.overlap20[7], 2)
		assert.Equal(t, c.overlap10[7], 2)
	})
}
