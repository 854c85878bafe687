package bp

import (
	"fmt"
	"strings"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
)

// MaxPropagationPasses bounds the multipass propagator's rounds per
// transition (spec.md §9; the original exposes this as a solver option,
// here it is a package-level default overridable per Problem).
const MaxPropagationPasses = 10

// State wraps a Domains snapshot as a problem.State.
type State struct {
	Domains *Domains
}

var _ problem.State = State{}

// Transition fixes v to val, propagates, and reports infeasibility if any
// row can no longer be satisfied (spec.md §5 "Binary program").
func (s State) Transition(p problem.Problem, v int, val bdd.Val) (problem.State, bool) {
	inst := p.Instance().(*Instance)

	dom := DomZero
	if val == bdd.One {
		dom = DomOne
	}
	if existing := s.Domains.Get(v); existing != DomZeroOne && existing != dom {
		return nil, false // propagation already fixed v to the other value
	}

	next := s.Domains.Clone()
	next.SetDomain(v, dom)
	next.MarkProcessed(v)

	passes := MaxPropagationPasses
	if bp, ok := p.(*Problem); ok && bp.MaxPasses > 0 {
		passes = bp.MaxPasses
	}
	if ok := Propagate(inst, next, v, passes); !ok {
		return nil, false
	}
	for _, row := range inst.Rows {
		if row.Infeasible(next) {
			return nil, false
		}
	}
	return State{Domains: next}, true
}

// Merge takes, for each variable, DomZeroOne unless both states agree on
// the same fixed value (spec.md §4.3 node-level merge: union of what each
// branch could still become).
func (s State) Merge(p problem.Problem, other problem.State) problem.State {
	o := other.(State)
	merged := NewDomains(s.Domains.NumVars())
	for v := 0; v < merged.NumVars(); v++ {
		a, b := s.Domains.Get(v), o.Domains.Get(v)
		if a == b && (a == DomZero || a == DomOne) {
			merged.SetDomain(v, a)
		}
	}
	return State{Domains: merged}
}

func (s State) Equals(other problem.State) bool {
	o := other.(State)
	if s.Domains.NumVars() != o.Domains.NumVars() {
		return false
	}
	for v := 0; v < s.Domains.NumVars(); v++ {
		if s.Domains.Get(v) != o.Domains.Get(v) {
			return false
		}
	}
	return true
}

func (s State) Less(other problem.State) bool {
	o := other.(State)
	for v := 0; v < s.Domains.NumVars(); v++ {
		if s.Domains.Get(v) != o.Domains.Get(v) {
			return s.Domains.Get(v) < o.Domains.Get(v)
		}
	}
	return false
}

func (s State) String() string {
	var sb strings.Builder
	for v := 0; v < s.Domains.NumVars(); v++ {
		fmt.Fprintf(&sb, "%d", s.Domains.Get(v))
	}
	return sb.String()
}

// Problem bundles an Instance with an ordering/merger/objective.
type Problem struct {
	Inst       *Instance
	Weights    []float64
	DoMaximize bool
	Order      problem.Ordering
	MergeRule  problem.Merger
	SingleTerm bool
	MaxPasses  int
}

var _ problem.Problem = (*Problem)(nil)

func (p *Problem) Instance() any  { return p.Inst }
func (p *Problem) NumVars() int   { return p.Inst.NumVars }

func (p *Problem) CreateInitialState() problem.State {
	return State{Domains: NewDomains(p.Inst.NumVars)}
}

func (p *Problem) Ordering() problem.Ordering         { return p.Order }
func (p *Problem) Merger() problem.Merger             { return p.MergeRule }
func (p *Problem) Completion() problem.Completion     { return nil }
func (p *Problem) ExpectSingleTerminal() bool         { return p.SingleTerm }
func (p *Problem) SkipVarForLongArc(v int, s problem.State) bool {
	return s.(State).Domains.Get(v) != DomZeroOne
}
func (p *Problem) OnLayerEnd(v int)     {}
func (p *Problem) Weight(v int) float64 { return p.Weights[v] }
func (p *Problem) Maximize() bool       { return p.DoMaximize }
