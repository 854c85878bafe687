// Package bp specializes the construction engine to generic binary
// programs: a set of 0/1 variables constrained by linear rows, propagated
// via bound tightening during each transition (spec component C7/C6).
package bp

// Domain is the three-way classification of a binary variable during
// construction.
type Domain int8

const (
	DomZeroOne Domain = iota - 1 // unset: either value still possible
	DomZero                      // fixed to 0
	DomOne                       // fixed to 1
	domProcessed                 // corresponds to an earlier layer; never iterated again
)

// nullNode marks the absence of a link in the intrusive lists below.
const nullNode = -1

// domainNode is one slot of the Domains arena: a variable's current
// Domain plus six prev/next links for the three doubly-linked lists it can
// belong to (set, unset, unprocessed). Indices rather than pointers are
// used deliberately: a Domains value is copied on every node transition
// during construction, and copying a slice of small structs is far
// cheaper than rewriting pointer graphs on each copy.
type domainNode struct {
	domain Domain
	var_   int

	prevSet, nextSet       int
	prevUnset, nextUnset   int
	prevUnproc, nextUnproc int
}

// Domains tracks, for nvars binary variables, which are fixed to 0, fixed
// to 1, still unset, and not yet processed by the construction engine
// (spec.md §9 "supplemented features": this mirrors the original's
// BPDomains structure, generalized from pointer to index links since Go
// slices already guarantee a stable backing index range per copy).
//
// Two sentinel slots trail the nvars variable slots: index nvars is the
// list head, index nvars+1 is the list tail. Both sentinels are threaded
// into all three lists so begin/end iteration never special-cases the
// empty-list case.
type Domains struct {
	nodes       []domainNode
	nvars       int
	setZeroCount int
	setOneCount  int
}

func startIndex(nvars int) int { return nvars }
func endIndex(nvars int) int   { return nvars + 1 }

// NewDomains allocates an all-unset domain set over nvars variables, with
// every variable initially in the unset and unprocessed lists in index
// order.
func NewDomains(nvars int) *Domains {
	d := &Domains{nvars: nvars, nodes: make([]domainNode, nvars+2)}
	start, end := startIndex(nvars), endIndex(nvars)
	d.nodes[start] = domainNode{var_: -1, prevSet: nullNode, nextSet: end, prevUnset: nullNode, nextUnset: 0, prevUnproc: nullNode, nextUnproc: 0}
	d.nodes[end] = domainNode{var_: -1, prevSet: start, nextSet: nullNode, prevUnset: nullNode, nextUnset: nullNode, prevUnproc: nullNode, nextUnproc: nullNode}
	// "unset" list tail points back from the last variable, not the
	// sentinel head, so fill it in after the loop below.
	for i := 0; i < nvars; i++ {
		d.nodes[i] = domainNode{
			domain: DomZeroOne,
			var_:   i,
			prevSet: nullNode, nextSet: nullNode,
			prevUnset: i - 1, nextUnset: i + 1,
			prevUnproc: i - 1, nextUnproc: i + 1,
		}
	}
	if nvars > 0 {
		d.nodes[0].prevUnset = start
		d.nodes[0].prevUnproc = start
		d.nodes[nvars-1].nextUnset = end
		d.nodes[nvars-1].nextUnproc = end
		d.nodes[end].prevUnset = nvars - 1
		d.nodes[end].prevUnproc = nvars - 1
	} else {
		d.nodes[start].nextUnset = end
		d.nodes[start].nextUnproc = end
		d.nodes[end].prevUnset = start
		d.nodes[end].prevUnproc = start
	}
	return d
}

// Clone returns a deep copy whose list links are independent of d's.
func (d *Domains) Clone() *Domains {
	nodes := make([]domainNode, len(d.nodes))
	copy(nodes, d.nodes)
	return &Domains{nodes: nodes, nvars: d.nvars, setZeroCount: d.setZeroCount, setOneCount: d.setOneCount}
}

// Get returns the current Domain of variable i.
func (d *Domains) Get(i int) Domain { return d.nodes[i].domain }

// NumVars returns the number of tracked variables.
func (d *Domains) NumVars() int { return d.nvars }

// SetDomain assigns dom to variable i, splicing it out of whichever set/
// unset list it currently belongs to and into the other (spec.md §9
// "set_domain O(1) mutator"). Setting DomZeroOne moves a fixed variable
// back to the unset list. Use MarkProcessed to retire a variable from the
// unprocessed list without touching its set/unset membership.
func (d *Domains) SetDomain(i int, dom Domain) {
	wasSet := d.nodes[i].domain == DomZero || d.nodes[i].domain == DomOne
	willSet := dom == DomZero || dom == DomOne
	if wasSet && !willSet {
		d.removeSet(i)
		d.addUnset(i)
	}
	if !wasSet && willSet {
		d.removeUnset(i)
		d.addSet(i)
	}
	if d.nodes[i].domain == DomOne {
		d.setOneCount--
	} else if d.nodes[i].domain == DomZero {
		d.setZeroCount--
	}
	d.nodes[i].domain = dom
	if dom == DomOne {
		d.setOneCount++
	} else if dom == DomZero {
		d.setZeroCount++
	}
}

// MarkProcessed removes i from the unprocessed list. The construction
// engine calls this once per layer for the variable just branched on,
// regardless of which value it took (spec.md §3 "processed once").
func (d *Domains) MarkProcessed(i int) {
	d.removeUnprocessed(i)
}

func (d *Domains) addSet(i int) {
	start := startIndex(d.nvars)
	head := d.nodes[start].nextSet
	d.nodes[i].nextSet = head
	d.nodes[i].prevSet = start
	if head != nullNode {
		d.nodes[head].prevSet = i
	}
	d.nodes[start].nextSet = i
}

func (d *Domains) removeSet(i int) {
	prev, next := d.nodes[i].prevSet, d.nodes[i].nextSet
	if prev != nullNode {
		d.nodes[prev].nextSet = next
	}
	if next != nullNode {
		d.nodes[next].prevSet = prev
	}
	d.nodes[i].prevSet, d.nodes[i].nextSet = nullNode, nullNode
}

func (d *Domains) addUnset(i int) {
	start := startIndex(d.nvars)
	head := d.nodes[start].nextUnset
	d.nodes[i].nextUnset = head
	d.nodes[i].prevUnset = start
	if head != nullNode {
		d.nodes[head].prevUnset = i
	}
	d.nodes[start].nextUnset = i
}

func (d *Domains) removeUnset(i int) {
	prev, next := d.nodes[i].prevUnset, d.nodes[i].nextUnset
	if prev != nullNode {
		d.nodes[prev].nextUnset = next
	}
	if next != nullNode {
		d.nodes[next].prevUnset = prev
	}
	d.nodes[i].prevUnset, d.nodes[i].nextUnset = nullNode, nullNode
}

// ForEachUnset iterates every variable whose domain is still DomZeroOne,
// in unspecified order.
func (d *Domains) ForEachUnset(f func(v int)) {
	start, end := startIndex(d.nvars), endIndex(d.nvars)
	for i := d.nodes[start].nextUnset; i != end && i != nullNode; i = d.nodes[i].nextUnset {
		f(i)
	}
}

func (d *Domains) removeUnprocessed(i int) {
	prev, next := d.nodes[i].prevUnproc, d.nodes[i].nextUnproc
	d.nodes[prev].nextUnproc = next
	d.nodes[next].prevUnproc = prev
	d.nodes[i].prevUnproc, d.nodes[i].nextUnproc = nullNode, nullNode
}

// ForEachSet iterates every variable currently fixed to 0 or 1, in
// unspecified order.
func (d *Domains) ForEachSet(f func(v int, dom Domain)) {
	start, end := startIndex(d.nvars), endIndex(d.nvars)
	for i := d.nodes[start].nextSet; i != end && i != nullNode; i = d.nodes[i].nextSet {
		f(i, d.nodes[i].domain)
	}
}

// ForEachUnprocessed iterates every variable not yet processed, in
// ascending index order (spec.md §9: this order must be preserved since
// state equivalence checks in merge-based dedup rely on it).
func (d *Domains) ForEachUnprocessed(f func(v int)) {
	start, end := startIndex(d.nvars), endIndex(d.nvars)
	for i := d.nodes[start].nextUnproc; i != end && i != nullNode; i = d.nodes[i].nextUnproc {
		f(i)
	}
}

// CountSetZero / CountSetOne report the running tallies maintained
// incrementally by SetDomain, avoiding an O(nvars) scan on every state
// comparison.
func (d *Domains) CountSetZero() int { return d.setZeroCount }
func (d *Domains) CountSetOne() int  { return d.setOneCount }
