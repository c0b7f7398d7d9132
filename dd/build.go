package dd

import "github.com/kegliz/qcec/gate"

// identRec returns the identity matrix edge over levels [0, top], built
// bottom-up so every level is resolved against the unique table and
// nested identities collapse to a single shared chain of nodes.
func (p *Package) identRec(top int) MEdge {
	if top < 0 {
		return OneM
	}
	below := p.identRec(top - 1)
	return p.normalizeMatrix(top, [4]MEdge{below, ZeroM, ZeroM, below})
}

// MakeIdent returns the nqubits-qubit identity matrix DD.
func (p *Package) MakeIdent() MEdge {
	return p.identRec(p.NQubits - 1)
}

// MakeDDNode normalizes and hash-conses a matrix node at the given level
// from its four successor edges, for callers assembling a diagram
// bottom-up rather than from a gate.
func (p *Package) MakeDDNode(level int, successors [4]MEdge) MEdge {
	return p.normalizeMatrix(level, successors)
}

// MakeVectorNode is the state-vector counterpart of MakeDDNode.
func (p *Package) MakeVectorNode(level int, successors [2]VEdge) VEdge {
	return p.normalizeVector(level, successors)
}

// MakeGateDD builds the matrix DD for a single gate.Operation applied
// within an nqubits-qubit circuit, honoring its controls (including
// negative-polarity controls) at whatever levels they sit on. Levels not
// touched by op are passed through as identity.
func (p *Package) MakeGateDD(op gate.Operation) MEdge {
	switch op.Kind() {
	case gate.KindMeasure:
		return p.MakeIdent()
	case gate.KindSwap:
		return p.makeSwapDD(op)
	default:
		return p.makeUnitary1DD(op)
	}
}

func controlMap(op gate.Operation) map[int]bool {
	m := make(map[int]bool, len(op.Controls()))
	for _, c := range op.Controls() {
		m[c.Qubit] = c.Positive
	}
	return m
}

func (p *Package) makeUnitary1DD(op gate.Operation) MEdge {
	return p.liftedDD(op.Matrix(), op.Targets()[0], controlMap(op))
}

// liftedDD lifts a 2x2 base matrix acting on target to the full package
// width, honoring (possibly negative-polarity) controls both above and
// below the target and passing every untouched level through as
// identity.
//
// Below the target the gate's 2x2 block structure is carried entry by
// entry: e[i][j] is block (i,j) lifted over the levels processed so far.
// A control at one of those levels gates every entry — the
// control-inactive branch behaves as identity on the diagonal entries
// and contributes nothing off the diagonal. Above the target the lifted
// gate is a single edge, and a control routes its inactive branch to a
// plain identity chain of the same span.
func (p *Package) liftedDD(mat [2][2]complex128, target int, ctrls map[int]bool) MEdge {
	var e [2][2]MEdge
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			e[i][j] = MEdge{Weight: canonicalWeight(mat[i][j], p.Eps), Node: nil}
		}
	}

	for level := 0; level < target; level++ {
		positive, isCtrl := ctrls[level]
		ident := p.identRec(level - 1)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				switch {
				case !isCtrl:
					e[i][j] = p.normalizeMatrix(level, [4]MEdge{e[i][j], ZeroM, ZeroM, e[i][j]})
				default:
					inactive := ZeroM
					if i == j {
						inactive = ident
					}
					if positive {
						e[i][j] = p.normalizeMatrix(level, [4]MEdge{inactive, ZeroM, ZeroM, e[i][j]})
					} else {
						e[i][j] = p.normalizeMatrix(level, [4]MEdge{e[i][j], ZeroM, ZeroM, inactive})
					}
				}
			}
		}
	}

	out := p.normalizeMatrix(target, [4]MEdge{e[0][0], e[0][1], e[1][0], e[1][1]})

	for level := target + 1; level < p.NQubits; level++ {
		if positive, isCtrl := ctrls[level]; isCtrl {
			ident := p.identRec(level - 1)
			if positive {
				out = p.normalizeMatrix(level, [4]MEdge{ident, ZeroM, ZeroM, out})
			} else {
				out = p.normalizeMatrix(level, [4]MEdge{out, ZeroM, ZeroM, ident})
			}
			continue
		}
		out = p.normalizeMatrix(level, [4]MEdge{out, ZeroM, ZeroM, out})
	}
	return out
}

// makeSwapDD builds SWAP(a,b) as its three-CNOT decomposition
// CX(a->b) * CX(b->a) * CX(a->b). A controlled SWAP distributes its
// controls onto every factor: diag(I, A)*diag(I, B)*diag(I, C) equals
// diag(I, ABC), so controlling each CNOT controls the whole product.
func (p *Package) makeSwapDD(op gate.Operation) MEdge {
	targets := op.Targets()
	a, b := targets[0], targets[1]

	xMat := [2][2]complex128{{0, 1}, {1, 0}}
	ctrlsOnA := controlMap(op)
	ctrlsOnB := controlMap(op)
	ctrlsOnA[a] = true // CX with control a, target b
	ctrlsOnB[b] = true // CX with control b, target a

	cxAB := p.liftedDD(xMat, b, ctrlsOnA)
	cxBA := p.liftedDD(xMat, a, ctrlsOnB)
	return p.Multiply(cxAB, p.Multiply(cxBA, cxAB))
}

// MakeZeroState returns the |00...0> state vector DD over nqubits qubits.
func (p *Package) MakeZeroState() VEdge {
	var rec func(level int) VEdge
	rec = func(level int) VEdge {
		if level < 0 {
			return OneV
		}
		below := rec(level - 1)
		return p.normalizeVector(level, [2]VEdge{below, ZeroV})
	}
	return rec(p.NQubits - 1)
}

// MakeBasisState returns the computational-basis state DD whose bit i
// (counting from qubit 0) is bits[i]. The simulation checker's
// ComputationalBasis state generator builds its samples with this.
func (p *Package) MakeBasisState(bits []bool) VEdge {
	bit := func(q int) bool {
		if q < len(bits) {
			return bits[q]
		}
		return false
	}
	var rec func(level int) VEdge
	rec = func(level int) VEdge {
		if level < 0 {
			return OneV
		}
		below := rec(level - 1)
		if bit(level) {
			return p.normalizeVector(level, [2]VEdge{ZeroV, below})
		}
		return p.normalizeVector(level, [2]VEdge{below, ZeroV})
	}
	return rec(p.NQubits - 1)
}

// MakeVectorDD builds a state-vector DD from a dense amplitude slice
// indexed the same way GetVector indexes its output (qubit 0 least
// significant); missing trailing amplitudes read as zero. It is the
// inverse of GetVector up to normalization.
func (p *Package) MakeVectorDD(amps []complex128) VEdge {
	var rec func(level, offset int) VEdge
	rec = func(level, offset int) VEdge {
		if level < 0 {
			if offset < len(amps) {
				return VEdge{Weight: canonicalWeight(amps[offset], p.Eps)}
			}
			return ZeroV
		}
		e0 := rec(level-1, offset)
		e1 := rec(level-1, offset|1<<uint(level))
		return p.normalizeVector(level, [2]VEdge{e0, e1})
	}
	return rec(p.NQubits-1, 0)
}

// MakeProductState builds a tensor-product state vector DD where qubit
// q's local amplitudes are bases[q] = [amp0, amp1] (amp0|0> + amp1|1> on
// that line), independent of every other qubit; qubits beyond len(bases)
// default to |0>. The Random1QBasis state generator uses this to seed a
// uniformly random choice of the six single-qubit basis states per
// qubit.
func (p *Package) MakeProductState(bases [][2]complex128) VEdge {
	amp := func(q int) [2]complex128 {
		if q < len(bases) {
			return bases[q]
		}
		return [2]complex128{1, 0}
	}
	var rec func(level int) VEdge
	rec = func(level int) VEdge {
		if level < 0 {
			return OneV
		}
		below := rec(level - 1)
		a := amp(level)
		return p.normalizeVector(level, [2]VEdge{
			{Weight: a[0] * below.Weight, Node: below.Node},
			{Weight: a[1] * below.Weight, Node: below.Node},
		})
	}
	return rec(p.NQubits - 1)
}
