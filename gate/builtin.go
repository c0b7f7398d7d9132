package gate

// unitary1 is a single-qubit base matrix, optionally lifted with controls.
// It backs H, X, Y, Z, S, Sdg, T, Tdg, RX, RY, RZ, and their controlled forms
// (CNOT, CZ, Toffoli are just X/Z lifted with one or two controls).
type unitary1 struct {
	name     string
	symbol   string
	target   int
	controls []Control
	params   []float64
	mat      [2][2]complex128
	// invert builds the adjoint's base matrix+name; kept as a closure so
	// parametric gates (RX/RY/RZ) can invert by negating their angle instead
	// of taking a literal conjugate-transpose (clearer provenance in JSON/logs).
	invert func(u unitary1) unitary1
}

func (g unitary1) Type() string             { return g.name }
func (g unitary1) Kind() Kind               { return KindUnitary1 }
func (g unitary1) Targets() []int           { return []int{g.target} }
func (g unitary1) Controls() []Control      { return g.controls }
func (g unitary1) Parameters() []float64    { return g.params }
func (g unitary1) Matrix() [2][2]complex128 { return g.mat }
func (g unitary1) Cbit() int                { return -1 }
func (g unitary1) IsUnitary() bool          { return true }
func (g unitary1) DrawSymbol() string       { return g.symbol }

func (g unitary1) Invert() Operation {
	if g.invert != nil {
		return g.invert(g)
	}
	inv := g
	inv.mat = conjTranspose2(g.mat)
	return inv
}

func (g unitary1) Equals(o Operation) bool {
	other, ok := o.(unitary1)
	if !ok {
		return false
	}
	return g.name == other.name &&
		sameInts(g.Targets(), other.Targets()) &&
		sameControls(g.controls, other.controls) &&
		sameParams(g.params, other.params)
}

// swapLike backs SWAP and Fredkin (controlled SWAP): a permutation of two
// target qubits, optionally guarded by controls.
type swapLike struct {
	name     string
	symbol   string
	targets  [2]int
	controls []Control
}

func (g swapLike) Type() string             { return g.name }
func (g swapLike) Kind() Kind               { return KindSwap }
func (g swapLike) Targets() []int           { return []int{g.targets[0], g.targets[1]} }
func (g swapLike) Controls() []Control      { return g.controls }
func (g swapLike) Parameters() []float64    { return nil }
func (g swapLike) Matrix() [2][2]complex128 { return identMat }
func (g swapLike) Cbit() int                { return -1 }
func (g swapLike) IsUnitary() bool          { return true }
func (g swapLike) DrawSymbol() string       { return g.symbol }
func (g swapLike) Invert() Operation        { return g } // SWAP/Fredkin are self-inverse

func (g swapLike) Equals(o Operation) bool {
	other, ok := o.(swapLike)
	if !ok {
		return false
	}
	return g.name == other.name &&
		g.targets == other.targets &&
		sameControls(g.controls, other.controls)
}

// measurement is a non-unitary primitive: collapse Targets()[0] and record
// the outcome into classical bit Cbit().
type measurement struct {
	target int
	cbit   int
}

func (g measurement) Type() string             { return "MEASURE" }
func (g measurement) Kind() Kind               { return KindMeasure }
func (g measurement) Targets() []int           { return []int{g.target} }
func (g measurement) Controls() []Control      { return nil }
func (g measurement) Parameters() []float64    { return nil }
func (g measurement) Matrix() [2][2]complex128 { return identMat }
func (g measurement) Cbit() int                { return g.cbit }
func (g measurement) IsUnitary() bool          { return false }
func (g measurement) DrawSymbol() string       { return "M" }
func (g measurement) Invert() Operation        { return g }

func (g measurement) Equals(o Operation) bool {
	other, ok := o.(measurement)
	return ok && g.target == other.target && g.cbit == other.cbit
}

// ---------------------------------------------------------------------
// Constructors. Each returns a fresh, immutable Operation value.
// ---------------------------------------------------------------------

func H(q int) Operation { return unitary1{name: "H", symbol: "H", target: q, mat: hMat} }
func X(q int) Operation { return unitary1{name: "X", symbol: "X", target: q, mat: xMat} }
func Y(q int) Operation { return unitary1{name: "Y", symbol: "Y", target: q, mat: yMat} }
func Z(q int) Operation { return unitary1{name: "Z", symbol: "Z", target: q, mat: zMat} }
func S(q int) Operation {
	return unitary1{name: "S", symbol: "S", target: q, mat: sMat, invert: invertTo("Sdg", sdgMat)}
}
func Sdg(q int) Operation {
	return unitary1{name: "Sdg", symbol: "S†", target: q, mat: sdgMat, invert: invertTo("S", sMat)}
}
func T(q int) Operation {
	return unitary1{name: "T", symbol: "T", target: q, mat: tMat, invert: invertTo("Tdg", tdgMat)}
}
func Tdg(q int) Operation {
	return unitary1{name: "Tdg", symbol: "T†", target: q, mat: tdgMat, invert: invertTo("T", tMat)}
}

func RX(q int, theta float64) Operation {
	return unitary1{name: "RX", symbol: "Rx", target: q, params: []float64{theta}, mat: rxMat(theta), invert: invertAngle("RX", rxMat)}
}
func RY(q int, theta float64) Operation {
	return unitary1{name: "RY", symbol: "Ry", target: q, params: []float64{theta}, mat: ryMat(theta), invert: invertAngle("RY", ryMat)}
}
func RZ(q int, theta float64) Operation {
	return unitary1{name: "RZ", symbol: "Rz", target: q, params: []float64{theta}, mat: rzMat(theta), invert: invertAngle("RZ", rzMat)}
}

func invertTo(name string, mat [2][2]complex128) func(unitary1) unitary1 {
	return func(g unitary1) unitary1 {
		inv := g
		inv.name, inv.mat = name, mat
		inv.invert = invertTo(g.name, g.mat)
		return inv
	}
}

func invertAngle(name string, build func(float64) [2][2]complex128) func(unitary1) unitary1 {
	return func(g unitary1) unitary1 {
		theta := -g.params[0]
		inv := g
		inv.name = name
		inv.params = []float64{theta}
		inv.mat = build(theta)
		inv.invert = invertAngle(name, build)
		return inv
	}
}

// Controlled lifts base onto its existing target with additional controls
// appended. It is how CNOT/CZ/Toffoli are expressed: a base 1-qubit gate
// plus one or more (possibly negative) controls.
func Controlled(base Operation, controls ...Control) Operation {
	switch b := base.(type) {
	case unitary1:
		b.controls = append(append([]Control(nil), b.controls...), controls...)
		return b
	case swapLike:
		b.controls = append(append([]Control(nil), b.controls...), controls...)
		return b
	default:
		return base
	}
}

func CNOT(ctrl, tgt int) Operation {
	return unitary1{name: "CNOT", symbol: "⊕", target: tgt, controls: []Control{{ctrl, true}}, mat: xMat}
}

func CZ(ctrl, tgt int) Operation {
	return unitary1{name: "CZ", symbol: "●", target: tgt, controls: []Control{{ctrl, true}}, mat: zMat}
}

func Toffoli(c1, c2, tgt int) Operation {
	return unitary1{name: "TOFFOLI", symbol: "T", target: tgt, controls: []Control{{c1, true}, {c2, true}}, mat: xMat}
}

func Swap(q1, q2 int) Operation {
	return swapLike{name: "SWAP", symbol: "×", targets: [2]int{q1, q2}}
}

func Fredkin(ctrl, t1, t2 int) Operation {
	return swapLike{name: "FREDKIN", symbol: "F", targets: [2]int{t1, t2}, controls: []Control{{ctrl, true}}}
}

func Measure(q, cbit int) Operation { return measurement{target: q, cbit: cbit} }

// Fused builds an uncontrolled single-qubit gate from an arbitrary 2x2
// unitary, labeled name. The manager's fuse_single_qubit_gates
// optimization uses this to collapse a run of adjacent single-qubit
// gates on the same line into one matrix rather than carrying the whole
// chain through the DD engine gate by gate.
func Fused(name string, target int, mat [2][2]complex128) Operation {
	return unitary1{name: name, symbol: name, target: target, mat: mat}
}

// Factory returns an immutable gate by many common aliases, for callers that
// parse gate identifiers from text (e.g. scheme.LoadProfile, §4.C).
func Factory(name string, targets []int, controls []Control, params []float64) (Operation, error) {
	t := func(i int) int {
		if i < len(targets) {
			return targets[i]
		}
		return 0
	}
	switch norm(name) {
	case "h":
		return Controlled(H(t(0)), controls...), nil
	case "x":
		return Controlled(X(t(0)), controls...), nil
	case "y":
		return Controlled(Y(t(0)), controls...), nil
	case "z":
		return Controlled(Z(t(0)), controls...), nil
	case "s":
		return Controlled(S(t(0)), controls...), nil
	case "sdg":
		return Controlled(Sdg(t(0)), controls...), nil
	case "t":
		return Controlled(T(t(0)), controls...), nil
	case "tdg":
		return Controlled(Tdg(t(0)), controls...), nil
	case "rx":
		return Controlled(RX(t(0), paramOr(params, 0)), controls...), nil
	case "ry":
		return Controlled(RY(t(0), paramOr(params, 0)), controls...), nil
	case "rz":
		return Controlled(RZ(t(0), paramOr(params, 0)), controls...), nil
	case "swap":
		return Controlled(Swap(t(0), t(1)), controls...), nil
	case "cx", "cnot":
		return CNOT(t(0), t(1)), nil
	case "cz":
		return CZ(t(0), t(1)), nil
	case "ccx", "toffoli":
		return Toffoli(t(0), t(1), t(2)), nil
	case "fredkin", "cswap":
		return Fredkin(t(0), t(1), t(2)), nil
	case "m", "measure", "meas":
		cbit := 0
		if len(targets) > 1 {
			cbit = targets[1]
		}
		return Measure(t(0), cbit), nil
	}
	return nil, ErrUnknownGate{name}
}

func paramOr(params []float64, i int) float64 {
	if i < len(params) {
		return params[i]
	}
	return 0
}

// Remap returns a copy of op with its target/control qubit indices
// replaced by mapQubit(q) for every q it touches, preserving its name,
// matrix, parameters, and control polarities. Callers (task.Manager, the
// manager's permutation-elision pass) use this to fold a layout
// permutation into an operation without needing to know its concrete
// type, since Operation itself exposes no mutator.
func Remap(op Operation, mapQubit func(int) int) Operation {
	switch g := op.(type) {
	case unitary1:
		g.target = mapQubit(g.target)
		g.controls = remapControls(g.controls, mapQubit)
		return g
	case swapLike:
		g.targets[0] = mapQubit(g.targets[0])
		g.targets[1] = mapQubit(g.targets[1])
		g.controls = remapControls(g.controls, mapQubit)
		return g
	case measurement:
		g.target = mapQubit(g.target)
		return g
	default:
		return op
	}
}

func remapControls(cs []Control, mapQubit func(int) int) []Control {
	if len(cs) == 0 {
		return cs
	}
	out := make([]Control, len(cs))
	for i, c := range cs {
		out[i] = Control{Qubit: mapQubit(c.Qubit), Positive: c.Positive}
	}
	return out
}
