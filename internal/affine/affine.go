package affine

// Transform is the affine map s -> Mul*s + Add (mod 2^64). A single LCG step
// is a Transform, and so is any number of composed steps.
type Transform struct {
	Mul uint64
	Add uint64
}

// Identity leaves every state unchanged.
var Identity = Transform{Mul: 1, Add: 0}

// Step returns the transform for one step of the lcg s' = a*s + c.
func Step(a, c uint64) Transform { return Transform{Mul: a, Add: c} }

// Apply returns the state after applying the transform to s.
func (t Transform) Apply(s uint64) uint64 { return t.Mul*s + t.Add }

// Then returns the transform that applies t and then u.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		Mul: t.Mul * u.Mul,
		Add: u.Mul*t.Add + u.Add,
	}
}

// Pow returns the transform applied k times in a row. It costs O(log k)
// multiplications.
func (t Transform) Pow(k uint64) Transform {
	acc, base := Identity, t
	for k > 0 {
		if k&1 != 0 {
			acc = acc.Then(base)
		}
		base = base.Then(base)
		k >>= 1
	}
	return acc
}

// Jump returns the state reached from seed after exactly k steps of the lcg
// s' = a*s + c.
func Jump(seed, a, c, k uint64) uint64 {
	return Step(a, c).Pow(k).Apply(seed)
}

// Inverse returns the transform that undoes t. Only transforms with an odd
// multiplier are invertible mod 2^64.
func (t Transform) Inverse() (Transform, bool) {
	inv, ok := inverse(t.Mul)
	if !ok {
		return Transform{}, false
	}
	return Transform{Mul: inv, Add: -(inv * t.Add)}, true
}

// Infer recovers the step transform from three consecutive raw states. It
// fails when x1-x0 is even, because then the multiplier is not determined.
func Infer(x0, x1, x2 uint64) (Transform, bool) {
	inv, ok := inverse(x1 - x0)
	if !ok {
		return Transform{}, false
	}
	a := (x2 - x1) * inv
	return Transform{Mul: a, Add: x1 - a*x0}, true
}

// inverse computes the multiplicative inverse of an odd v mod 2^64 using
// newton iteration. every round doubles the number of correct low bits.
func inverse(v uint64) (uint64, bool) {
	if v&1 == 0 {
		return 0, false
	}
	inv := v // correct to 3 bits for any odd v
	for i := 0; i < 5; i++ {
		inv *= 2 - v*inv
	}
	return inv, true
}
