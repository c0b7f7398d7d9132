package zxdiagram

import "math"

// ToGraphLike rewrites the diagram into graph-like normal form: every
// spider is recolored to Z, and every spider-to-spider edge is Hadamard
// typed. X-spiders are folded into Z-spiders by the standard color-change
// rule (an X-spider equals an H-sandwiched Z-spider), which flips the
// type of every edge touching it; a subsequent pass fuses any resulting
// plain edge between two internal Z-spiders, since a plain edge between
// same-color spiders composes them directly.
func (d *Diagram) ToGraphLike() {
	// Fuse same-color plain-connected runs first: recoloring flips edge
	// types, so an X-X plain pair (e.g. the target spiders of two
	// back-to-back CNOTs) must compose before its edge turns Hadamard.
	// Fusion also triggers the parallel-edge cancellation in Connect,
	// which is what collapses a gate meeting its own inverse.
	d.fuseAllPlainInternalEdges()
	for _, v := range d.Vertices() {
		if d.Kind(v) == XSpider {
			d.colorChange(v)
		}
	}
	d.fuseAllPlainInternalEdges()
}

func (d *Diagram) colorChange(v string) {
	d.kind[v] = ZSpider
	neighbors, _ := d.Neighbors(v)
	for _, n := range neighbors {
		et, err := d.EdgeType(v, n)
		if err != nil {
			continue
		}
		flipped := Hadamard
		if et == Hadamard {
			flipped = Plain
		}
		_ = d.removeEdgeBetween(v, n)
		_ = d.Connect(v, n, flipped)
	}
}

func (d *Diagram) fuseAllPlainInternalEdges() {
	for {
		fused := false
		for _, pair := range d.Edges() {
			a, b := pair[0], pair[1]
			if d.IsBoundary(a) || d.IsBoundary(b) {
				continue
			}
			et, err := d.EdgeType(a, b)
			if err != nil || et != Plain {
				continue
			}
			if d.Kind(a) != d.Kind(b) {
				continue
			}
			d.fuseSpiders(a, b)
			fused = true
			break
		}
		if !fused {
			return
		}
	}
}

// fuseSpiders merges b into a (same color, connected by a plain edge):
// a's phase absorbs b's, and every other neighbor of b is reattached to
// a with its edge type preserved (toggled if a already had an edge of
// the same type to that neighbor, matching the XOR convention Connect
// already implements).
func (d *Diagram) fuseSpiders(a, b string) {
	d.phase[a] = normalizePhase(d.phase[a] + d.phase[b])
	neighbors, _ := d.Neighbors(b)
	for _, n := range neighbors {
		if n == a {
			continue
		}
		et, err := d.EdgeType(b, n)
		if err != nil {
			continue
		}
		_ = d.Connect(a, n, et)
	}
	_ = d.RemoveVertex(b)
}

// simplifyVertices is the generic rewrite driver over vertices:
// repeatedly scan every vertex, apply rule wherever check holds, and
// repeat until a scan makes no further progress. check/rule may mutate
// the vertex set, so each scan re-reads Vertices() fresh.
func (d *Diagram) simplifyVertices(isDone func() bool, check func(*Diagram, string) bool, rule func(*Diagram, string)) bool {
	simplified := false
	for {
		if isDone != nil && isDone() {
			return simplified
		}
		progressed := false
		for _, v := range d.Vertices() {
			if isDone != nil && isDone() {
				return simplified
			}
			if !d.g.HasVertex(v) {
				continue // removed earlier this scan
			}
			if !check(d, v) {
				continue
			}
			rule(d, v)
			progressed = true
		}
		if !progressed {
			return simplified
		}
		simplified = true
	}
}

// simplifyEdges is simplifyVertices over edges.
func (d *Diagram) simplifyEdges(isDone func() bool, check func(*Diagram, string, string) bool, rule func(*Diagram, string, string)) bool {
	simplified := false
	for {
		if isDone != nil && isDone() {
			return simplified
		}
		progressed := false
		for _, e := range d.Edges() {
			if isDone != nil && isDone() {
				return simplified
			}
			a, b := e[0], e[1]
			if !d.g.HasVertex(a) || !d.g.HasVertex(b) || !d.HasEdge(a, b) {
				continue
			}
			if !check(d, a, b) {
				continue
			}
			rule(d, a, b)
			progressed = true
		}
		if !progressed {
			return simplified
		}
		simplified = true
	}
}

// IDSimp removes phase-0 Z-spiders of degree 2. If the vertex left behind
// a plain edge between two internal spiders, those spiders fuse (handled
// by the shared fuseSpiders helper); a plain edge touching a boundary
// survives as-is, since that is exactly the "this line behaves as a
// wire" signal the checker's verdict looks for.
func (d *Diagram) IDSimp(isDone func() bool) bool {
	return d.simplifyVertices(isDone, idCheck, idRule)
}

func idCheck(d *Diagram, v string) bool {
	if d.IsBoundary(v) || d.Kind(v) != ZSpider {
		return false
	}
	if d.Degree(v) != 2 {
		return false
	}
	return math.Abs(d.Phase(v)) < 1e-9
}

func idRule(d *Diagram, v string) {
	neighbors, _ := d.Neighbors(v)
	if len(neighbors) != 2 {
		return
	}
	a, b := neighbors[0], neighbors[1]
	etA, errA := d.EdgeType(v, a)
	etB, errB := d.EdgeType(v, b)
	if errA != nil || errB != nil {
		return
	}
	combined := Plain
	if etA != etB {
		combined = Hadamard
	}
	_ = d.RemoveVertex(v)
	if a == b {
		return
	}
	_ = d.Connect(a, b, combined)
	if combined == Plain && d.Kind(a) == ZSpider && d.Kind(b) == ZSpider && !d.IsBoundary(a) && !d.IsBoundary(b) {
		d.fuseSpiders(a, b)
	}
}

// SpiderSimp fuses same-color spiders connected by a plain edge —
// opportunistically re-applied during the main loop, since later rules
// can reintroduce a plain internal edge (IDSimp already calls it inline,
// but pivot/local-complementation do not, so the driver runs this rule
// too).
func (d *Diagram) SpiderSimp(isDone func() bool) bool {
	return d.simplifyEdges(isDone, spiderCheck, spiderRule)
}

func spiderCheck(d *Diagram, a, b string) bool {
	if d.IsBoundary(a) || d.IsBoundary(b) {
		return false
	}
	if d.Kind(a) != d.Kind(b) {
		return false
	}
	et, err := d.EdgeType(a, b)
	return err == nil && et == Plain
}

func spiderRule(d *Diagram, a, b string) { d.fuseSpiders(a, b) }

// LocalCompSimp applies local complementation at Clifford (phase = ±pi/2)
// Z-spiders whose entire neighborhood is internal (non-boundary): it
// toggles Hadamard-connectivity among every pair of v's neighbors and
// subtracts v's phase sign from each, then deletes v.
func (d *Diagram) LocalCompSimp(isDone func() bool) bool {
	return d.simplifyVertices(isDone, localCompCheck, localCompRule)
}

func localCompCheck(d *Diagram, v string) bool {
	if d.IsBoundary(v) || d.Kind(v) != ZSpider {
		return false
	}
	p := d.Phase(v)
	if math.Abs(p-0.5) > 1e-9 && math.Abs(p-1.5) > 1e-9 {
		return false
	}
	neighbors, err := d.Neighbors(v)
	if err != nil || len(neighbors) == 0 {
		return false
	}
	for _, n := range neighbors {
		if d.IsBoundary(n) {
			return false
		}
		if et, err := d.EdgeType(v, n); err != nil || et != Hadamard {
			return false
		}
	}
	return true
}

func localCompRule(d *Diagram, v string) {
	neighbors, _ := d.Neighbors(v)
	sign := 0.5
	if math.Abs(d.Phase(v)-1.5) < 1e-9 {
		sign = -0.5
	}
	for i := 0; i < len(neighbors); i++ {
		for j := i + 1; j < len(neighbors); j++ {
			_ = d.ToggleEdge(neighbors[i], neighbors[j], Hadamard)
		}
	}
	for _, n := range neighbors {
		d.SetPhase(n, d.Phase(n)-sign)
	}
	_ = d.RemoveVertex(v)
}

// PivotSimp applies the pivot rule on Hadamard edges between two
// interior Pauli (phase in {0, pi}) Z-spiders: complement connectivity
// across the union of their neighborhoods (excluding each other) and
// remove both, distributing phase contributions to the neighbors per the
// standard pivot identity. The plain and Pauli variants of the rule fold
// into one here, keyed on the Pauli-phase condition, since only
// eligibility differs between them, not the edge/vertex bookkeeping.
func (d *Diagram) PivotSimp(isDone func() bool) bool {
	return d.simplifyEdges(isDone, pivotCheck, pivotRule)
}

func pivotCheck(d *Diagram, a, b string) bool {
	if d.IsBoundary(a) || d.IsBoundary(b) {
		return false
	}
	if d.Kind(a) != ZSpider || d.Kind(b) != ZSpider {
		return false
	}
	et, err := d.EdgeType(a, b)
	if err != nil || et != Hadamard {
		return false
	}
	if !IsPauli(d.Phase(a)) || !IsPauli(d.Phase(b)) {
		return false
	}
	na, errA := d.Neighbors(a)
	nb, errB := d.Neighbors(b)
	if errA != nil || errB != nil {
		return false
	}
	for _, n := range na {
		if n != b && d.IsBoundary(n) {
			return false
		}
	}
	for _, n := range nb {
		if n != a && d.IsBoundary(n) {
			return false
		}
	}
	return true
}

func pivotRule(d *Diagram, a, b string) {
	na, _ := d.Neighbors(a)
	nb, _ := d.Neighbors(b)
	setA := make(map[string]bool, len(na))
	for _, n := range na {
		if n != b {
			setA[n] = true
		}
	}
	setB := make(map[string]bool, len(nb))
	for _, n := range nb {
		if n != a {
			setB[n] = true
		}
	}
	// complement edges between (N(a) \ {b}) and (N(b) \ {a}) via the
	// standard three-set pivot identity: toggle across A-only x B-only,
	// A-only x overlap and B-only x overlap, where the overlap is
	// N(a) cap N(b); pairs within the overlap are left as they are.
	all := make(map[string]bool, len(setA)+len(setB))
	for n := range setA {
		all[n] = true
	}
	for n := range setB {
		all[n] = true
	}
	nodes := make([]string, 0, len(all))
	for n := range all {
		nodes = append(nodes, n)
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			u, w := nodes[i], nodes[j]
			inA_u, inB_u := setA[u], setB[u]
			inA_w, inB_w := setA[w], setB[w]
			bothOverlap := inA_u && inB_u && inA_w && inB_w
			if !bothOverlap && ((inA_u && inB_w) || (inB_u && inA_w)) {
				_ = d.ToggleEdge(u, w, Hadamard)
			}
		}
	}
	pa, pb := d.Phase(a), d.Phase(b)
	for n := range setA {
		d.SetPhase(n, d.Phase(n)+pb)
	}
	for n := range setB {
		d.SetPhase(n, d.Phase(n)+pa)
	}
	for n := range setA {
		if setB[n] {
			// a common neighbour also picks up a phase of pi
			d.SetPhase(n, d.Phase(n)+1)
		}
	}
	if pa > 0.5 && pb > 0.5 {
		d.ScalarPhase = normalizePhase(d.ScalarPhase + 1)
	}
	_ = d.RemoveVertex(a)
	_ = d.RemoveVertex(b)
}

// RemoveDisconnected deletes isolated spiders (degree 0). A phase-0
// isolated spider is exactly scalar 1 and is dropped silently; a
// phase-carrying one contributes a nontrivial global scalar, folded into
// ScalarPhase so the checker can still distinguish Equivalent from
// EquivalentUpToGlobalPhase after the rest of the diagram collapses to
// wires.
func (d *Diagram) RemoveDisconnected(isDone func() bool) bool {
	return d.simplifyVertices(isDone, disconnectedCheck, disconnectedRule)
}

func disconnectedCheck(d *Diagram, v string) bool {
	return !d.IsBoundary(v) && d.Degree(v) == 0
}

func disconnectedRule(d *Diagram, v string) {
	if math.Abs(d.Phase(v)) > 1e-9 {
		d.ScalarPhase = normalizePhase(d.ScalarPhase + d.Phase(v))
	}
	_ = d.RemoveVertex(v)
}

// FullReduce repeatedly applies every rule to a fixed point: spider
// fusion and identity removal run to local exhaustion first (cheap,
// structural), then the
// Clifford-only rules (local complementation, pivot), then disconnected
// cleanup, looping the whole sequence until nothing changes.
func (d *Diagram) FullReduce(isDone func() bool) {
	for {
		if isDone != nil && isDone() {
			return
		}
		d.ToGraphLike()
		any := false
		any = d.SpiderSimp(isDone) || any
		any = d.IDSimp(isDone) || any
		any = d.LocalCompSimp(isDone) || any
		any = d.PivotSimp(isDone) || any
		any = d.RemoveDisconnected(isDone) || any
		if !any {
			return
		}
	}
}
