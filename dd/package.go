package dd

// Package owns one checker's complete decision-diagram state: its unique
// tables (for hash-consing nodes into a canonical, reduced form) and its
// compute caches (for memoizing Multiply/Add/Kronecker results). Every
// checker instantiates its own Package so two checkers never share nodes
// across goroutines.
type Package struct {
	NQubits int
	Eps     float64

	uniqueM map[int]map[matrixKey]*MatrixNode
	uniqueV map[int]map[vectorKey]*VectorNode

	mulCache    map[mulKey]MEdge
	kronCache   map[mulKey]MEdge
	addCache    map[addKey]MEdge
	mulVecCache map[vecKey]VEdge

	liveM map[*MatrixNode]struct{}
	liveV map[*VectorNode]struct{}
}

// NewPackage returns a fresh Package for a circuit with n qubits, using
// the given numerical tolerance (Configuration.Execution.NumericalTolerance;
// DefaultEps if the caller passes 0).
func NewPackage(nQubits int, eps float64) *Package {
	if eps <= 0 {
		eps = DefaultEps
	}
	return &Package{
		NQubits:     nQubits,
		Eps:         eps,
		uniqueM:     make(map[int]map[matrixKey]*MatrixNode),
		uniqueV:     make(map[int]map[vectorKey]*VectorNode),
		mulCache:    make(map[mulKey]MEdge),
		kronCache:   make(map[mulKey]MEdge),
		addCache:    make(map[addKey]MEdge),
		mulVecCache: make(map[vecKey]VEdge),
		liveM:       make(map[*MatrixNode]struct{}),
		liveV:       make(map[*VectorNode]struct{}),
	}
}

type matrixKey struct {
	var_ int
	w    [4]complex128
	succ [4]*MatrixNode
}

type vectorKey struct {
	var_ int
	w    [2]complex128
	succ [2]*VectorNode
}

type mulKey struct {
	a, b MEdge
}

type addKey struct {
	a, b MEdge
}

type vecKey struct {
	m MEdge
	v VEdge
}

// lookupMatrixNode hash-conses a candidate node: if an equal node (same
// level, same canonicalized edge weights, same child pointers) already
// exists, the existing pointer is returned and the candidate is
// discarded, guaranteeing structural sharing and O(1) equality checks
// between any two matrix DDs built from the same Package.
func (p *Package) lookupMatrixNode(level int, edges [4]MEdge) *MatrixNode {
	key := matrixKey{var_: level}
	for i, e := range edges {
		key.w[i] = canonicalWeight(e.Weight, p.Eps)
		key.succ[i] = e.Node
	}
	table, ok := p.uniqueM[level]
	if !ok {
		table = make(map[matrixKey]*MatrixNode)
		p.uniqueM[level] = table
	}
	if n, ok := table[key]; ok {
		return n
	}
	n := &MatrixNode{Var: level, Edges: edges}
	table[key] = n
	p.liveM[n] = struct{}{}
	return n
}

func (p *Package) lookupVectorNode(level int, edges [2]VEdge) *VectorNode {
	key := vectorKey{var_: level}
	for i, e := range edges {
		key.w[i] = canonicalWeight(e.Weight, p.Eps)
		key.succ[i] = e.Node
	}
	table, ok := p.uniqueV[level]
	if !ok {
		table = make(map[vectorKey]*VectorNode)
		p.uniqueV[level] = table
	}
	if n, ok := table[key]; ok {
		return n
	}
	n := &VectorNode{Var: level, Edges: edges}
	table[key] = n
	p.liveV[n] = struct{}{}
	return n
}

// normalizeMatrix factors the edge with the largest magnitude out of a
// freshly built node so that one of the four children always carries
// weight 1, then hash-conses the remainder. Returns the normalized edge
// (weight * lookup(node)). This is what keeps the diagram canonical:
// without normalization, the same unitary built two different ways could
// produce two nodes that are "equal" mathematically but distinct in
// memory, because the weight was distributed differently across levels.
func (p *Package) normalizeMatrix(level int, edges [4]MEdge) MEdge {
	allZero := true
	var maxMag float64
	maxIdx := -1
	for i, e := range edges {
		if e.isZeroTerminal() {
			continue
		}
		allZero = false
		m := magnitude(e.Weight)
		if m > maxMag {
			maxMag = m
			maxIdx = i
		}
	}
	if allZero {
		return ZeroM
	}
	factor := edges[maxIdx].Weight
	normalized := edges
	for i, e := range edges {
		if e.isZeroTerminal() {
			normalized[i] = ZeroM
			continue
		}
		normalized[i] = MEdge{Weight: e.Weight / factor, Node: e.Node}
	}
	node := p.lookupMatrixNode(level, normalized)
	return MEdge{Weight: canonicalWeight(factor, p.Eps), Node: node}
}

func (p *Package) normalizeVector(level int, edges [2]VEdge) VEdge {
	allZero := true
	var maxMag float64
	maxIdx := -1
	for i, e := range edges {
		if e.isZeroTerminal() {
			continue
		}
		allZero = false
		m := magnitude(e.Weight)
		if m > maxMag {
			maxMag = m
			maxIdx = i
		}
	}
	if allZero {
		return ZeroV
	}
	factor := edges[maxIdx].Weight
	normalized := edges
	for i, e := range edges {
		if e.isZeroTerminal() {
			normalized[i] = ZeroV
			continue
		}
		normalized[i] = VEdge{Weight: e.Weight / factor, Node: e.Node}
	}
	node := p.lookupVectorNode(level, normalized)
	return VEdge{Weight: canonicalWeight(factor, p.Eps), Node: node}
}

// IncRef and DecRef track external references,
// recursing down every child so a root's
// entire subgraph stays live until the root itself is dropped; this lets
// GarbageCollect reclaim unique-table entries no longer reachable from
// any live root (a TaskManager's current DD, typically). Terminal edges
// (Node == nil) are no-ops.
func (p *Package) IncRefM(e MEdge) {
	if e.Node == nil {
		return
	}
	e.Node.refCount++
	if e.Node.refCount > 1 {
		return // subgraph already counted by an earlier reference
	}
	for _, child := range e.Node.Edges {
		p.IncRefM(child)
	}
}

func (p *Package) DecRefM(e MEdge) {
	if e.Node == nil || e.Node.refCount == 0 {
		return
	}
	e.Node.refCount--
	if e.Node.refCount > 0 {
		return
	}
	for _, child := range e.Node.Edges {
		p.DecRefM(child)
	}
}

func (p *Package) IncRefV(e VEdge) {
	if e.Node == nil {
		return
	}
	e.Node.refCount++
	if e.Node.refCount > 1 {
		return
	}
	for _, child := range e.Node.Edges {
		p.IncRefV(child)
	}
}

func (p *Package) DecRefV(e VEdge) {
	if e.Node == nil || e.Node.refCount == 0 {
		return
	}
	e.Node.refCount--
	if e.Node.refCount > 0 {
		return
	}
	for _, child := range e.Node.Edges {
		p.DecRefV(child)
	}
}

// GarbageCollect drops every unique-table entry with a zero reference
// count and clears the compute caches, which may now hold stale pointers
// to collected nodes. Call between independent equivalence checks within
// the same Package, never mid-computation.
func (p *Package) GarbageCollect() {
	for level, table := range p.uniqueM {
		for k, n := range table {
			if n.refCount == 0 {
				delete(table, k)
				delete(p.liveM, n)
			}
		}
		if len(table) == 0 {
			delete(p.uniqueM, level)
		}
	}
	for level, table := range p.uniqueV {
		for k, n := range table {
			if n.refCount == 0 {
				delete(table, k)
				delete(p.liveV, n)
			}
		}
		if len(table) == 0 {
			delete(p.uniqueV, level)
		}
	}
	p.mulCache = make(map[mulKey]MEdge)
	p.kronCache = make(map[mulKey]MEdge)
	p.addCache = make(map[addKey]MEdge)
	p.mulVecCache = make(map[vecKey]VEdge)
}

// NodeCount reports the number of distinct live matrix + vector nodes,
// exposed for diagnostics and the HTTP /v1/verify response's resource
// accounting.
func (p *Package) NodeCount() int { return len(p.liveM) + len(p.liveV) }
