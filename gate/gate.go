// Package gate defines the quantum operations that flow through a Circuit.
//
// An Operation is polymorphic over the capability set the rest of the module
// needs: it knows its targets, its (possibly negative-polarity) controls, its
// parameters, whether it is unitary, and how to invert itself. Single-qubit
// unitaries (plus their controlled lifts, e.g. CNOT, Toffoli) expose a 2x2
// matrix; SWAP-family gates expose a dedicated two-target permutation kind
// instead, since they have no single-qubit base to lift.
package gate

import "strings"

// Kind classifies how an Operation's DD should be built.
type Kind int

const (
	// KindUnitary1 operations lift a 2x2 matrix onto Targets()[0], honoring Controls().
	KindUnitary1 Kind = iota
	// KindSwap operations permute Targets()[0] and Targets()[1], honoring Controls().
	KindSwap
	// KindMeasure operations are non-unitary and terminate a qubit's DD involvement.
	KindMeasure
)

// Control is a control qubit tagged with its required polarity.
type Control struct {
	Qubit    int
	Positive bool // true: control fires on |1>, false: control fires on |0>
}

// Operation is the capability set every gate in a Circuit must support.
type Operation interface {
	// Type is the canonical gate name, e.g. "H", "CNOT", "RZ".
	Type() string
	Kind() Kind
	// Targets are the qubit indices the base matrix/permutation acts on
	// (relative order matters: for KindSwap, {a,b}; for KindUnitary1, {target}).
	Targets() []int
	Controls() []Control
	Parameters() []float64
	// Matrix is the 2x2 base unitary for KindUnitary1 operations.
	Matrix() [2][2]complex128
	// Cbit is the classical bit index a KindMeasure operation writes to, or -1.
	Cbit() int
	IsUnitary() bool
	// Invert returns the adjoint operation (conjugate transpose of the matrix,
	// reversed SWAP is itself, undefined/error-worthy for KindMeasure callers
	// must not invert a circuit containing measurements mid-stream).
	Invert() Operation
	// Equals reports syntactic equality: same type, same parameters, same
	// targets and controls (including polarity) after any permutation mapping
	// has already been applied by the caller.
	Equals(Operation) bool
	DrawSymbol() string
}

// ErrUnknownGate is returned by Factory when the label isn't recognised.
type ErrUnknownGate struct{ Name string }

func (e ErrUnknownGate) Error() string { return "gate: unknown gate " + e.Name }

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func sameControls(a, b []Control) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameParams(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	const tol = 1e-12
	for i := range a {
		d := a[i] - b[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}
