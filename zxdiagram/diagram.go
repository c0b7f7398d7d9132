// Package zxdiagram implements the graph-like ZX-calculus representation
// the ZX checker (checker/zx) rewrites toward the identity. Spiders are
// vertices on a github.com/katalvlaran/lvlath/core Graph — Z-spiders and
// X-spiders carry a phase (as a multiple of pi),
// boundary vertices represent the diagram's external input/output wires.
// Edges carry a type (plain or Hadamard) encoded in the graph's integer
// edge weight, so the generic lvlath Graph (built for weighted multigraphs
// of arbitrary domains) doubles as the ZX miter's storage layer without
// ZX-specific changes to lvlath itself.
package zxdiagram

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
)

// VertexType distinguishes a ZX spider's color (or marks it a boundary,
// which carries no phase and has degree <= 1).
type VertexType int

const (
	BoundaryVertex VertexType = iota
	ZSpider
	XSpider
)

// EdgeType distinguishes a plain wire from a Hadamard-decorated one.
// Graph-like diagrams (post ToGraphLike) only ever contain Hadamard edges
// between two spiders; a plain edge survives only between a spider and a
// boundary, or (once reduced to a single wire) between two boundaries.
type EdgeType int64

const (
	Plain    EdgeType = 0
	Hadamard EdgeType = 1
)

// Diagram is a mutable ZX-diagram under construction or simplification.
type Diagram struct {
	g       *core.Graph
	kind    map[string]VertexType
	phase   map[string]float64 // multiple of pi, kept in [0,2)
	qubit   map[string]int     // the external wire this vertex currently sits on
	inputs  []string           // boundary ids, indexed by logical qubit
	outputs []string

	// ScalarPhase accumulates the overall phase factored out during
	// simplification (e.g. by removeDisconnected on a phase-carrying
	// isolated spider), used by the checker's zero-global-phase check.
	ScalarPhase float64

	seq int
}

// New returns an empty diagram with nQubits boundary input/output pairs,
// each initially wired straight across (a chain of plain edges through
// the identity), ready for gates to be spliced in.
func New(nQubits int) *Diagram {
	d := &Diagram{
		g:     core.NewGraph(core.WithWeighted(), core.WithMultiEdges()),
		kind:  make(map[string]VertexType),
		phase: make(map[string]float64),
		qubit: make(map[string]int),
	}
	d.inputs = make([]string, nQubits)
	d.outputs = make([]string, nQubits)
	for q := 0; q < nQubits; q++ {
		in := d.addVertex(BoundaryVertex, q, 0)
		out := d.addVertex(BoundaryVertex, q, 0)
		d.inputs[q] = in
		d.outputs[q] = out
		d.mustConnect(in, out, Plain)
	}
	return d
}

func (d *Diagram) addVertex(kind VertexType, qubit int, phase float64) string {
	d.seq++
	id := fmt.Sprintf("v%d", d.seq)
	_ = d.g.AddVertex(id)
	d.kind[id] = kind
	d.qubit[id] = qubit
	d.phase[id] = normalizePhase(phase)
	return id
}

// AddSpider inserts a fresh Z or X spider on the given qubit, not yet
// wired to anything.
func (d *Diagram) AddSpider(kind VertexType, qubit int, phase float64) string {
	return d.addVertex(kind, qubit, phase)
}

func (d *Diagram) mustConnect(a, b string, et EdgeType) {
	if err := d.Connect(a, b, et); err != nil {
		panic(fmt.Sprintf("zxdiagram: %v", err))
	}
}

// Connect adds an edge of the given type between a and b. Diagram
// construction never needs parallel edges between the same pair twice
// with the same type (XOR-equivalent to no edge at all), so Connect
// folds that case away automatically, matching the graph-like
// diagram's normal form.
func (d *Diagram) Connect(a, b string, et EdgeType) error {
	if d.g.HasEdge(a, b) {
		existing, err := d.existingEdgeType(a, b)
		if err != nil {
			return err
		}
		if existing == et {
			// two parallel edges of the same type cancel (H*H=I, plain+plain
			// is simply redundant): remove the existing one instead of adding
			// a second, keeping the graph a simple graph as ZX rewriting
			// expects.
			return d.removeEdgeBetween(a, b)
		}
		// differing types in parallel never arise from this package's own
		// callers; treat as replacing the edge.
		if err := d.removeEdgeBetween(a, b); err != nil {
			return err
		}
	}
	_, err := d.g.AddEdge(a, b, int64(et))
	return err
}

func (d *Diagram) existingEdgeType(a, b string) (EdgeType, error) {
	edges, err := d.g.Neighbors(a)
	if err != nil {
		return Plain, err
	}
	for _, e := range edges {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return EdgeType(e.Weight), nil
		}
	}
	return Plain, fmt.Errorf("zxdiagram: no edge between %s and %s", a, b)
}

func (d *Diagram) removeEdgeBetween(a, b string) error {
	edges, err := d.g.Neighbors(a)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return d.g.RemoveEdge(e.ID)
		}
	}
	return nil
}

// ToggleEdge complements the presence of an edge between a and b of the
// given type: adds it if absent, removes it if present. This is the
// primitive every graph-like complementation rule (local complementation,
// pivot) is built from.
func (d *Diagram) ToggleEdge(a, b string, et EdgeType) error {
	if a == b {
		return nil
	}
	if d.g.HasEdge(a, b) {
		return d.removeEdgeBetween(a, b)
	}
	_, err := d.g.AddEdge(a, b, int64(et))
	return err
}

// HasEdge reports whether a and b are directly connected.
func (d *Diagram) HasEdge(a, b string) bool { return d.g.HasEdge(a, b) }

// EdgeType reports the type of the edge between a and b. Only valid when
// HasEdge(a,b) is true.
func (d *Diagram) EdgeType(a, b string) (EdgeType, error) { return d.existingEdgeType(a, b) }

// Vertices returns every live vertex id.
func (d *Diagram) Vertices() []string { return d.g.Vertices() }

// Edges returns every live edge, each as its endpoint pair.
func (d *Diagram) Edges() [][2]string {
	out := make([][2]string, 0, d.g.EdgeCount())
	for _, e := range d.g.Edges() {
		out = append(out, [2]string{e.From, e.To})
	}
	return out
}

// Neighbors returns the ids directly connected to v.
func (d *Diagram) Neighbors(v string) ([]string, error) {
	edges, err := d.g.Neighbors(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.From == v {
			out = append(out, e.To)
		} else {
			out = append(out, e.From)
		}
	}
	return out, nil
}

// Degree reports how many edges touch v.
func (d *Diagram) Degree(v string) int {
	n, _ := d.Neighbors(v)
	return len(n)
}

func (d *Diagram) Kind(v string) VertexType { return d.kind[v] }
func (d *Diagram) Phase(v string) float64   { return d.phase[v] }
func (d *Diagram) SetPhase(v string, p float64) {
	d.phase[v] = normalizePhase(p)
}
func (d *Diagram) IsBoundary(v string) bool { return d.kind[v] == BoundaryVertex }

// RemoveVertex deletes v and every edge touching it.
func (d *Diagram) RemoveVertex(v string) error {
	if err := d.g.RemoveVertex(v); err != nil {
		return err
	}
	delete(d.kind, v)
	delete(d.phase, v)
	delete(d.qubit, v)
	return nil
}

// Inputs and Outputs return the boundary vertex ids in qubit order.
func (d *Diagram) Inputs() []string  { return append([]string(nil), d.inputs...) }
func (d *Diagram) Outputs() []string { return append([]string(nil), d.outputs...) }

// InsertOnWire splices a fresh spider between the current tail of qubit
// q's wire and that wire's output boundary, returning the new spider so
// the caller (checker/zx's gate lowering) can chain further gates.
// tail is the vertex currently adjacent to outputs[q]; InsertOnWire finds
// it automatically via the output boundary's unique neighbor.
func (d *Diagram) InsertOnWire(q int, kind VertexType, phase float64, et EdgeType) (string, error) {
	out := d.outputs[q]
	neighbors, err := d.Neighbors(out)
	if err != nil {
		return "", err
	}
	if len(neighbors) != 1 {
		return "", fmt.Errorf("zxdiagram: output boundary for qubit %d has %d neighbors, want 1", q, len(neighbors))
	}
	tail := neighbors[0]
	tailEdgeType, err := d.EdgeType(tail, out)
	if err != nil {
		return "", err
	}
	if err := d.removeEdgeBetween(tail, out); err != nil {
		return "", err
	}
	v := d.addVertex(kind, q, phase)
	if err := d.Connect(tail, v, tailEdgeType); err != nil {
		return "", err
	}
	if err := d.Connect(v, out, et); err != nil {
		return "", err
	}
	return v, nil
}

// WireTail returns the vertex currently adjacent to qubit q's output
// boundary — the point a new gate should attach to.
func (d *Diagram) WireTail(q int) (string, error) {
	out := d.outputs[q]
	neighbors, err := d.Neighbors(out)
	if err != nil {
		return "", err
	}
	if len(neighbors) != 1 {
		return "", fmt.Errorf("zxdiagram: output boundary for qubit %d has %d neighbors, want 1", q, len(neighbors))
	}
	return neighbors[0], nil
}

// normalizePhase reduces a phase (in units of pi) into [0, 2).
func normalizePhase(p float64) float64 {
	const two = 2.0
	p = math.Mod(p, two)
	if p < 0 {
		p += two
	}
	return p
}

// IsPauli reports whether phase p (multiple of pi) is 0 or 1.
func IsPauli(p float64) bool {
	const eps = 1e-9
	return math.Abs(p) < eps || math.Abs(p-1) < eps || math.Abs(p-2) < eps
}

// IsClifford reports whether phase p is a multiple of pi/2.
func IsClifford(p float64) bool {
	const eps = 1e-9
	half := math.Mod(p, 0.5)
	return half < eps || 0.5-half < eps
}
