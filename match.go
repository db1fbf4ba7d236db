package drawscan

import (
	"github.com/zeebo/drawscan/internal/bitmap"
	"github.com/zeebo/errs"
)

// MatchType says which target set a Match was scored against.
type MatchType uint8

const (
	// FullSet matches are scored against the 20 value target.
	FullSet MatchType = iota
	// PartialSet matches are scored against the 10 value target.
	PartialSet
)

// String returns "full_20" or "partial_10".
func (m MatchType) String() string {
	switch m {
	case FullSet:
		return "full_20"
	case PartialSet:
		return "partial_10"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchType) MarshalText() ([]byte, error) {
	if m > PartialSet {
		return nil, errs.New("unknown match type %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MatchType) UnmarshalText(data []byte) error {
	switch string(data) {
	case "full_20":
		*m = FullSet
	case "partial_10":
		*m = PartialSet
	default:
		return errs.New("unknown match type %q", data)
	}
	return nil
}

// Match is one draw whose overlap with a target met the threshold.
type Match struct {
	Type       MatchType `json:"match_type"`
	DrawIndex  uint64    `json:"draw_index"`
	Confidence float64   `json:"confidence_score"`
}

// collector scores draws against both targets and keeps the matches.
type collector struct {
	target20  bitmap.B80
	target10  bitmap.B80
	threshold float64

	matches   []Match
	overlap20 [Target20Len + 1]uint64
	overlap10 [Target10Len + 1]uint64
}

// newCollector returns a collector for validated targets.
func newCollector(target20, target10 []uint8, threshold float64) *collector {
	return &collector{
		target20:  bitmap.FromValues(target20),
		target10:  bitmap.FromValues(target10),
		threshold: threshold,
		matches:   []Match{},
	}
}

// observe scores the draw at index d. The full set check always happens
// before the partial set check so matches within a draw stay ordered.
func (c *collector) observe(d uint64, draw []uint8) {
	mask := bitmap.FromValues(draw)

	n20 := bitmap.Intersect(mask, c.target20)
	c.overlap20[n20]++
	if conf := float64(n20) / Target20Len; conf >= c.threshold {
		c.matches = append(c.matches, Match{Type: FullSet, DrawIndex: d, Confidence: conf})
	}

	n10 := bitmap.Intersect(mask, c.target10)
	c.overlap10[n10]++
	if conf := float64(n10) / Target10Len; conf >= c.threshold {
		c.matches = append(c.matches, Match{Type: PartialSet, DrawIndex: d, Confidence: conf})
	}
}

// scan observes every draw of perDraw consecutive numbers in order.
func (c *collector) scan(numbers []uint8, perDraw int) {
	var d uint64
	for len(numbers) >= perDraw {
		c.observe(d, numbers[:perDraw:perDraw])
		numbers = numbers[perDraw:]
		d++
	}
}
