package dd

import "math"

// DefaultEps is the numerical tolerance used to decide when two edge
// weights are "the same" for hash-consing purposes, and when a computed
// amplitude should be treated as exactly zero. Relying on exact
// floating-point equality instead would defeat the whole point of a
// canonical decision diagram: two
// mathematically identical subgraphs computed via different gate orders
// routinely differ in the last few ULPs.
const DefaultEps = 1e-10

// roundTo canonicalizes a float64 onto a grid of resolution eps so that
// two weights within tolerance of each other hash and compare equal:
// instead of interning into a shared table of pointers, snap to a grid
// and let Go's native map equality do the hash-consing.
func roundTo(x, eps float64) float64 {
	if eps <= 0 {
		return x
	}
	return math.Round(x/eps) * eps
}

// canonicalWeight snaps both components of w onto the eps grid, and
// collapses anything within eps of zero to exactly zero so the "is this
// edge the zero edge" check (the base case of every DD algorithm) is a
// single comparison against complex(0, 0).
func canonicalWeight(w complex128, eps float64) complex128 {
	re, im := roundTo(real(w), eps), roundTo(imag(w), eps)
	if math.Abs(re) < eps {
		re = 0
	}
	if math.Abs(im) < eps {
		im = 0
	}
	return complex(re, im)
}

func approxEqual(a, b complex128, eps float64) bool {
	d := a - b
	return math.Hypot(real(d), imag(d)) < eps
}

func approxZero(a complex128, eps float64) bool {
	return math.Hypot(real(a), imag(a)) < eps
}

func magnitude(a complex128) float64 {
	return math.Hypot(real(a), imag(a))
}
