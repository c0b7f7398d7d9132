package dd

import (
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/gate"
)

// Side states which factor side of a matrix a reduction or relabeling
// applies to: Left touches the rows (the side a forward-walking task
// manager's gates accumulate on), Right the columns (the side the
// alternating checker's backward manager multiplies from).
type Side int

const (
	Left Side = iota
	Right
)

// ReduceAncillae projects every level in ancillary onto |0> from the
// stated side: the matrix no longer needs to represent "what if this
// line had been |1>" there, which both shrinks the diagram and lets
// ReduceGarbage/IsCloseToIdentity comparisons ignore lines the circuit
// never actually used as data qubits.
func (p *Package) ReduceAncillae(a MEdge, ancillary []bool, side Side) MEdge {
	return p.reduceAncillaeRec(a, ancillary, side)
}

func (p *Package) reduceAncillaeRec(a MEdge, ancillary []bool, side Side) MEdge {
	if a.Node == nil {
		return a
	}
	level := a.Node.Var
	e := a.Node.Edges
	children := [4]MEdge{
		p.reduceAncillaeRec(scale4(e[0], a.Weight), ancillary, side),
		p.reduceAncillaeRec(scale4(e[1], a.Weight), ancillary, side),
		p.reduceAncillaeRec(scale4(e[2], a.Weight), ancillary, side),
		p.reduceAncillaeRec(scale4(e[3], a.Weight), ancillary, side),
	}
	if level < len(ancillary) && ancillary[level] {
		if side == Right {
			// columns: drop the |1>-input half
			children[1] = ZeroM
			children[3] = ZeroM
		} else {
			// rows: drop the |1>-output half
			children[2] = ZeroM
			children[3] = ZeroM
		}
	}
	return p.normalizeMatrix(level, children)
}

// ReduceGarbage collapses every level in garbage so the diagram no longer
// distinguishes the two values of that line on the stated side: the two
// halves are summed together and duplicated across the node, so that two
// circuits differing only in what they leave behind on a garbage qubit
// still compare equivalent. Partial-equivalence comparison applies it on
// both sides of a matrix.
func (p *Package) ReduceGarbage(a MEdge, garbage []bool, side Side) MEdge {
	return p.reduceGarbageRec(a, garbage, side)
}

func (p *Package) reduceGarbageRec(a MEdge, garbage []bool, side Side) MEdge {
	if a.Node == nil {
		return a
	}
	level := a.Node.Var
	e := a.Node.Edges
	children := [4]MEdge{
		p.reduceGarbageRec(scale4(e[0], a.Weight), garbage, side),
		p.reduceGarbageRec(scale4(e[1], a.Weight), garbage, side),
		p.reduceGarbageRec(scale4(e[2], a.Weight), garbage, side),
		p.reduceGarbageRec(scale4(e[3], a.Weight), garbage, side),
	}
	if level < len(garbage) && garbage[level] {
		if side == Right {
			// columns: sum the two input halves per row
			row0 := p.Add(children[0], children[1])
			row1 := p.Add(children[2], children[3])
			children = [4]MEdge{row0, row0, row1, row1}
		} else {
			// rows: sum the two output halves per column
			col0 := p.Add(children[0], children[2])
			col1 := p.Add(children[1], children[3])
			children = [4]MEdge{col0, col1, col0, col1}
		}
	}
	return p.normalizeMatrix(level, children)
}

func scale4(e MEdge, w complex128) MEdge {
	return MEdge{Weight: e.Weight * w, Node: e.Node}
}

// ChangePermutation relabels a's qubit lines from the `from` layout to the
// `to` layout by conjugating with the SWAP network that realizes the
// permutation difference: rather than rebuild the diagram structurally,
// each transposition S is folded in as S*a*S, renaming that pair of wires
// on the row and column side alike. Conjugation is what makes a circuit
// checked against a relabeled copy of itself (same permutation in the
// initial layout and the output permutation) compare Equivalent.
func (p *Package) ChangePermutation(a MEdge, from, to circuit.Permutation) MEdge {
	result := a
	cur := from.Clone()
	for logical, wantLine := range to {
		curLine := cur.Apply(logical)
		if curLine == wantLine {
			continue
		}
		// find whichever logical qubit currently sits on wantLine and swap it in
		other := -1
		for l, ln := range cur {
			if ln == wantLine {
				other = l
				break
			}
		}
		if other < 0 {
			continue
		}
		swapDD := p.MakeGateDD(gate.Swap(curLine, wantLine))
		result = p.Multiply(swapDD, p.Multiply(result, swapDD))
		cur.Swap(logical, other)
	}
	return result
}

// ChangePermutationVec is the state-vector analogue of ChangePermutation:
// the SWAP network is applied to the vector, so two simulated circuits
// with different output layouts compare amplitudes line for line.
func (p *Package) ChangePermutationVec(v VEdge, from, to circuit.Permutation) VEdge {
	result := v
	cur := from.Clone()
	for logical, wantLine := range to {
		curLine := cur.Apply(logical)
		if curLine == wantLine {
			continue
		}
		other := -1
		for l, ln := range cur {
			if ln == wantLine {
				other = l
				break
			}
		}
		if other < 0 {
			continue
		}
		swapDD := p.MakeGateDD(gate.Swap(curLine, wantLine))
		result = p.MultiplyVec(swapDD, result)
		cur.Swap(logical, other)
	}
	return result
}
