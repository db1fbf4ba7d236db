package drawtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/drawscan/internal/bitmap"
	"github.com/zeebo/errs"
)

// Error is the class of errors returned by the package.
var Error = errs.Class("drawtext")

// Parse reads comma or space separated integers, each in [1, 80].
func Parse(line string) ([]uint8, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	out := make([]uint8, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, Error.New("invalid number %q", field)
		}
		if v < 1 || v > bitmap.MaxValue {
			return nil, Error.New("draw values must be 1..%d, got %d", bitmap.MaxValue, v)
		}
		out = append(out, uint8(v))
	}
	return out, nil
}

// SortedUnique returns the distinct values in ascending order.
func SortedUnique(vals []uint8) []uint8 {
	return bitmap.FromValues(vals).Values()
}

// Targets derives the 20 and 10 value target sets from an observed draw:
// the 20 smallest distinct values, and the 10 smallest of those.
func Targets(draw []uint8) (target20, target10 []uint8, err error) {
	vals := SortedUnique(draw)
	if len(vals) < 20 {
		return nil, nil, Error.New("draw has %d distinct values, need 20", len(vals))
	}
	return vals[:20:20], vals[:10:10], nil
}

// FormatOffset renders a number of seconds like "3m 5s" or "4d 2h 1m".
func FormatOffset(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	m, s := seconds/60, seconds%60
	if m < 60 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h, m := m/60, m%60
	if h < 24 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	d, h := h/24, h%24
	return fmt.Sprintf("%dd %dh %dm", d, h, m)
}

// Format renders values space separated.
func Format(vals []uint8) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}
