package dd

import "math"

// Add returns the matrix DD for a+b, memoized per (a,b) pair. Both
// operands must come from the same Package and span the same number of
// levels (true for any two MEdges built or derived from the same
// Package.NQubits).
func (p *Package) Add(a, b MEdge) MEdge {
	if a.isZeroTerminal() {
		return b
	}
	if b.isZeroTerminal() {
		return a
	}
	if a.Node == nil && b.Node == nil {
		return MEdge{Weight: canonicalWeight(a.Weight+b.Weight, p.Eps), Node: nil}
	}
	key := addKey{a: a, b: b}
	if cached, ok := p.addCache[key]; ok {
		return cached
	}
	level := a.Node.Var
	var edges [4]MEdge
	for i := 0; i < 4; i++ {
		ae := MEdge{Weight: a.Node.Edges[i].Weight * a.Weight, Node: a.Node.Edges[i].Node}
		be := MEdge{Weight: b.Node.Edges[i].Weight * b.Weight, Node: b.Node.Edges[i].Node}
		edges[i] = p.Add(ae, be)
	}
	result := p.normalizeMatrix(level, edges)
	p.addCache[key] = result
	return result
}

// AddVec is the vector analogue of Add, used by the simulation checker to
// accumulate superposed basis states.
func (p *Package) AddVec(a, b VEdge) VEdge {
	if a.isZeroTerminal() {
		return b
	}
	if b.isZeroTerminal() {
		return a
	}
	if a.Node == nil && b.Node == nil {
		return VEdge{Weight: canonicalWeight(a.Weight+b.Weight, p.Eps), Node: nil}
	}
	level := a.Node.Var
	var edges [2]VEdge
	for i := 0; i < 2; i++ {
		ae := VEdge{Weight: a.Node.Edges[i].Weight * a.Weight, Node: a.Node.Edges[i].Node}
		be := VEdge{Weight: b.Node.Edges[i].Weight * b.Weight, Node: b.Node.Edges[i].Node}
		edges[i] = p.AddVec(ae, be)
	}
	return p.normalizeVector(level, edges)
}

// Multiply returns the matrix product a*b, which applies b first and then
// a (the task manager passes a gate as a to apply it after the running
// product): standard block 2x2 decision-diagram matrix multiplication,
// memoized on the (a,b) edge pair.
func (p *Package) Multiply(a, b MEdge) MEdge {
	if a.isZeroTerminal() || b.isZeroTerminal() {
		return ZeroM
	}
	if a.Node == nil && b.Node == nil {
		return MEdge{Weight: canonicalWeight(a.Weight*b.Weight, p.Eps), Node: nil}
	}
	key := mulKey{a: a, b: b}
	if cached, ok := p.mulCache[key]; ok {
		return cached
	}
	level := a.Node.Var
	var edges [4]MEdge
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			sum := ZeroM
			for k := 0; k < 2; k++ {
				ae := a.Node.Edges[i*2+k]
				be := b.Node.Edges[k*2+j]
				aeScaled := MEdge{Weight: ae.Weight * a.Weight, Node: ae.Node}
				beScaled := MEdge{Weight: be.Weight * b.Weight, Node: be.Node}
				sum = p.Add(sum, p.Multiply(aeScaled, beScaled))
			}
			edges[i*2+j] = sum
		}
	}
	result := p.normalizeMatrix(level, edges)
	p.mulCache[key] = result
	return result
}

// MultiplyVec applies matrix DD m to vector DD v.
func (p *Package) MultiplyVec(m MEdge, v VEdge) VEdge {
	if m.isZeroTerminal() || v.isZeroTerminal() {
		return ZeroV
	}
	if m.Node == nil && v.Node == nil {
		return VEdge{Weight: canonicalWeight(m.Weight*v.Weight, p.Eps), Node: nil}
	}
	key := vecKey{m: m, v: v}
	if cached, ok := p.mulVecCache[key]; ok {
		return cached
	}
	level := v.Node.Var
	var edges [2]VEdge
	for i := 0; i < 2; i++ {
		sum := ZeroV
		for k := 0; k < 2; k++ {
			me := m.Node.Edges[i*2+k]
			ve := v.Node.Edges[k]
			meScaled := MEdge{Weight: me.Weight * m.Weight, Node: me.Node}
			veScaled := VEdge{Weight: ve.Weight * v.Weight, Node: ve.Node}
			sum = p.AddVec(sum, p.MultiplyVec(meScaled, veScaled))
		}
		edges[i] = sum
	}
	result := p.normalizeVector(level, edges)
	p.mulVecCache[key] = result
	return result
}

// Kronecker composes two matrix DDs built over disjoint qubit ranges into
// one DD spanning both, with a's levels placed bQubits above b's. Nothing
// else in this module calls it; MakeGateDD builds gate DDs level by level
// instead.
func (p *Package) Kronecker(a, b MEdge, bQubits int) MEdge {
	if a.isZeroTerminal() || b.isZeroTerminal() {
		return ZeroM
	}
	if a.Node == nil {
		return MEdge{Weight: a.Weight * b.Weight, Node: b.Node}
	}
	key := mulKey{a: a, b: b}
	if cached, ok := p.kronCache[key]; ok {
		return cached
	}
	level := a.Node.Var + bQubits
	var edges [4]MEdge
	for i := 0; i < 4; i++ {
		child := a.Node.Edges[i]
		scaled := MEdge{Weight: child.Weight * a.Weight, Node: child.Node}
		edges[i] = p.Kronecker(scaled, b, bQubits)
	}
	result := p.normalizeMatrix(level, edges)
	p.kronCache[key] = result
	return result
}

// ConjugateTranspose returns the adjoint of a matrix DD: swap the
// off-diagonal children and conjugate every weight along the way.
func (p *Package) ConjugateTranspose(a MEdge) MEdge {
	if a.Node == nil {
		return MEdge{Weight: cConj(a.Weight), Node: nil}
	}
	e := a.Node.Edges
	children := [4]MEdge{
		p.ConjugateTranspose(e[0]), p.ConjugateTranspose(e[2]),
		p.ConjugateTranspose(e[1]), p.ConjugateTranspose(e[3]),
	}
	node := p.normalizeMatrix(a.Node.Var, children)
	return MEdge{Weight: cConj(a.Weight) * node.Weight, Node: node.Node}
}

func cConj(c complex128) complex128 { return complex(real(c), -imag(c)) }

// Trace returns tr(a), recursing level by level and summing the two
// diagonal blocks' traces.
func (p *Package) Trace(a MEdge) complex128 {
	if a.Node == nil {
		return a.Weight
	}
	t00 := p.Trace(MEdge{Weight: a.Node.Edges[0].Weight * a.Weight, Node: a.Node.Edges[0].Node})
	t11 := p.Trace(MEdge{Weight: a.Node.Edges[3].Weight * a.Weight, Node: a.Node.Edges[3].Node})
	return t00 + t11
}

// InnerProduct returns <a|b>, the standard recursive DD inner product.
func (p *Package) InnerProduct(a, b VEdge) complex128 {
	if a.isZeroTerminal() || b.isZeroTerminal() {
		return 0
	}
	if a.Node == nil && b.Node == nil {
		return cConj(a.Weight) * b.Weight
	}
	var sum complex128
	for i := 0; i < 2; i++ {
		ae := a.Node.Edges[i]
		be := b.Node.Edges[i]
		sum += p.InnerProduct(
			VEdge{Weight: ae.Weight * a.Weight, Node: ae.Node},
			VEdge{Weight: be.Weight * b.Weight, Node: be.Node},
		)
	}
	return sum
}

// Fidelity returns |<a|b>|^2, the simulation checker's equivalence metric.
func (p *Package) Fidelity(a, b VEdge) float64 {
	ip := p.InnerProduct(a, b)
	return real(ip)*real(ip) + imag(ip)*imag(ip)
}

// IsCloseToIdentity reports whether matrix DD a is within tol of the
// identity, checked level by level: off-diagonal edges must be (near)
// zero and the two diagonal children must each recursively satisfy the
// same property. The check can false-negative: a DD with a global phase
// applied unevenly across branches can fail it even though |tr(a)|/2^n
// is close to 1. Callers that care fall back to a trace comparison.
func (p *Package) IsCloseToIdentity(a MEdge, tol float64) bool {
	return p.isCloseToIdentityRec(a, tol)
}

func (p *Package) isCloseToIdentityRec(a MEdge, tol float64) bool {
	if a.Node == nil {
		return math.Hypot(real(a.Weight)-1, imag(a.Weight)) < tol
	}
	off01 := MEdge{Weight: a.Node.Edges[1].Weight * a.Weight, Node: a.Node.Edges[1].Node}
	off10 := MEdge{Weight: a.Node.Edges[2].Weight * a.Weight, Node: a.Node.Edges[2].Node}
	if !approxZero(off01.Weight, tol) || !approxZero(off10.Weight, tol) {
		return false
	}
	d00 := MEdge{Weight: a.Node.Edges[0].Weight * a.Weight, Node: a.Node.Edges[0].Node}
	d11 := MEdge{Weight: a.Node.Edges[3].Weight * a.Weight, Node: a.Node.Edges[3].Node}
	return p.isCloseToIdentityRec(d00, tol) && p.isCloseToIdentityRec(d11, tol)
}

// IsIdentity reports whether e is exactly the canonical identity edge for
// this package: because MakeIdent is hash-consed, any DD that has
// genuinely simplified back down to the identity shares its node pointer,
// so this is a cheap, exact pointer check rather than the numerically
// tolerant IsCloseToIdentity. The alternating checker's matched-pair
// shortcut uses this to decide when F "currently equals identity".
func (p *Package) IsIdentity(e MEdge) bool {
	ident := p.MakeIdent()
	return e.Node == ident.Node && e.Weight == ident.Weight
}

// Size reports the number of distinct MatrixNodes reachable from e,
// counting shared subgraphs once. The Lookahead application scheme uses
// this to greedily pick whichever of two provisional products stays
// smaller.
func (p *Package) Size(e MEdge) int {
	seen := make(map[*MatrixNode]struct{})
	var walk func(n *MatrixNode)
	walk = func(n *MatrixNode) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		for _, child := range n.Edges {
			walk(child.Node)
		}
	}
	walk(e.Node)
	return len(seen)
}

// GetVector expands a vector DD into a dense amplitude slice of length
// 2^NQubits. Intended for small circuits (tests, debugging, and the
// simulation checker's counterexample capture), never for the core
// equivalence-check hot path.
func (p *Package) GetVector(v VEdge) []complex128 {
	n := 1 << uint(p.NQubits)
	out := make([]complex128, n)
	p.expandVec(v, p.NQubits-1, 0, out)
	return out
}

func (p *Package) expandVec(v VEdge, level, prefix int, out []complex128) {
	if level < 0 {
		if prefix < len(out) {
			out[prefix] += v.Weight
		}
		return
	}
	if v.isZeroTerminal() {
		return
	}
	if v.Node == nil {
		// terminal reached before the expected level: treat as a uniform
		// scalar broadcast across all remaining basis states below it.
		span := 1 << uint(level+1)
		for i := 0; i < span; i++ {
			idx := prefix<<uint(level+1) | i
			if idx < len(out) {
				out[idx] += v.Weight
			}
		}
		return
	}
	for bit := 0; bit < 2; bit++ {
		child := v.Node.Edges[bit]
		p.expandVec(
			VEdge{Weight: child.Weight * v.Weight, Node: child.Node},
			level-1,
			prefix<<1|bit,
			out,
		)
	}
}
