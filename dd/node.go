// Package dd implements the weighted decision-diagram representation that
// backs the construction, alternating, and simulation checkers: quantum
// states and unitaries are stored as compressed DAGs over per-qubit
// "levels" rather than as dense arrays, with structurally identical
// subgraphs shared (hash-consed) through a Package's unique tables.
//
// Two node flavors exist: VectorNode for 2^n-entry state vectors (2 children per node,
// ket-0/ket-1) and MatrixNode for 2^n x 2^n unitaries (4 children per
// node, the 2x2 block at that qubit level). Both bottom out at the same
// nil-Node terminal, which carries only the edge weight.
package dd

// MatrixNode is one level of a matrix (unitary) decision diagram. Var
// counts down from nqubits-1 (top, most significant qubit) to 0; the
// terminal is represented by a nil *MatrixNode, at which point the edge's
// Weight alone carries the amplitude of that root-to-leaf path.
type MatrixNode struct {
	Var      int
	Edges    [4]MEdge // row-major over the qubit's local 2x2 block: 00,01,10,11
	refCount uint32
}

// MEdge is a weighted pointer to a MatrixNode (or, if Node is nil, to the
// terminal with value Weight).
type MEdge struct {
	Weight complex128
	Node   *MatrixNode
}

// VectorNode is one level of a state-vector decision diagram.
type VectorNode struct {
	Var      int
	Edges    [2]VEdge // ket-0, ket-1 at this qubit level
	refCount uint32
}

// VEdge is a weighted pointer to a VectorNode.
type VEdge struct {
	Weight complex128
	Node   *VectorNode
}

func (e MEdge) isZeroTerminal() bool { return e.Node == nil && e.Weight == 0 }
func (e VEdge) isZeroTerminal() bool { return e.Node == nil && e.Weight == 0 }

// ZeroM is the identically-zero matrix edge: the additive identity for
// Add, and the absorbing base case for Multiply/Kronecker recursion.
var ZeroM = MEdge{Weight: 0, Node: nil}

// ZeroV is the identically-zero vector edge.
var ZeroV = VEdge{Weight: 0, Node: nil}

// OneM is the terminal matrix edge with weight 1 (a 1x1 "identity").
var OneM = MEdge{Weight: 1, Node: nil}

// OneV is the terminal vector edge with weight 1.
var OneV = VEdge{Weight: 1, Node: nil}
