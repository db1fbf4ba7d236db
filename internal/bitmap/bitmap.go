package bitmap

import (
	"math/bits"
)

// MaxValue is the largest value a B80 can hold. Values are 1 based.
const MaxValue = 80

//
// 80 values in 128 bits
//

// B80 is a set of values in [1, 80]. Value v lives at bit v-1: word 0 holds
// 1 through 64 and word 1 holds 65 through 80. The zero value is empty.
type B80 [2]uint64

// FromValues returns the set of all the values. Repeats collapse.
func FromValues(vals []uint8) (b B80) {
	for _, v := range vals {
		b.Set(v)
	}
	return b
}

// Set adds v to the set. It must be in [1, 80].
func (b *B80) Set(v uint8) {
	idx := uint(v - 1)
	b[(idx>>6)&1] |= 1 << (idx & 63)
}

// Has reports if v is in the set.
func (b *B80) Has(v uint8) bool {
	if v == 0 || v > MaxValue {
		return false
	}
	idx := uint(v - 1)
	return b[(idx>>6)&1]&(1<<(idx&63)) > 0
}

// Len returns the number of values in the set.
func (b B80) Len() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1])
}

// Intersect returns the number of values in both a and b.
func Intersect(a, b B80) int {
	return bits.OnesCount64(a[0]&b[0]) + bits.OnesCount64(a[1]&b[1])
}

// Next removes and returns the smallest value in the set.
func (b *B80) Next() (v uint8, ok bool) {
	u := b[0]
	c := u & (u - 1)
	idx := uint(bits.Len64(u ^ c))
	b[0] = c

	if u > 0 {
		return uint8(idx), true
	}

	u = b[1]
	c = u & (u - 1)
	idx = 64 + uint(bits.Len64(u^c))
	b[1] = c

	return uint8(idx % 128), u > 0
}

// Values returns the values in the set in ascending order.
func (b B80) Values() []uint8 {
	out := make([]uint8, 0, b.Len())
	for {
		v, ok := b.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
