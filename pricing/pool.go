// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pricing

import (
	"fmt"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Phase of the solver the pool is attached to.
type Phase int

const (
	// Uninitialized the pool was created but Init was never called.
	Uninitialized Phase = iota
	// Phase1 the solver seeks a feasible basis, artificial variables may exist.
	Phase1
	// Phase2 the solver optimizes, artificial variables are gone.
	Phase2
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Phase1:
		return "phase 1"
	case Phase2:
		return "phase 2"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Pos identifies a slot of the pool.
// It stays valid only until the next mutation of the pool.
type Pos int

// Range is the half-open interval [Lo, Hi) of pool positions.
type Range struct {
	Lo, Hi Pos
}

// Len returns the number of positions in the range.
func (r Range) Len() int { return int(r.Hi - r.Lo) }

// Contains reports whether p lies inside the range.
func (r Range) Contains(p Pos) bool { return r.Lo <= p && p < r.Hi }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Lo, r.Hi) }

// Pool holds the non-basic indices of a solver partitioned into an active
// set at positions [0, s) and an inactive set at positions [s, len).
type Pool struct {
	solver  Solver
	permute bool     // permute initial non-basis
	rand    Shuffler // random source, borrowed during Init

	n     []int          // non-basis
	s     int            // size of active set
	in    *bitset.BitSet // members of n
	phase Phase
}

// NewPool creates an empty pool attached to solver.
// When randomize is set the initial non-basis is permuted with rng.
func NewPool(solver Solver, randomize bool, rng Shuffler) *Pool {
	if solver == nil {
		violate("NewPool", Misconfigured, "nil solver")
	}
	if randomize && rng == nil {
		violate("NewPool", Misconfigured, "randomize requires a random source")
	}
	return &Pool{
		solver:  solver,
		permute: randomize,
		rand:    rng,
		in:      bitset.New(0),
	}
}

// ActiveSize returns the size of the active set for n variables, m
// constraints and size non-basic indices: round(m·√(n/2)) clamped to [0, size].
func ActiveSize(n, m, size int) int {
	if size <= 0 {
		return 0
	}
	v := math.Round(float64(m) * math.Sqrt(float64(n)/2))
	switch {
	case !(v > 0): // NaN, zero or negative
		return 0
	case v >= float64(size):
		return size
	}
	return int(v)
}

// Init fills the pool with every non-basic index in [0, w) and sizes the
// active set. Prior contents are discarded and the pool enters Phase1.
func (p *Pool) Init() {
	w := p.solver.NumWorkingVariables()
	b := p.solver.NumBasicVariables()
	if b < 0 || w < b {
		violate("Init", Degenerate, "w = %d working variables with b = %d basic", w, b)
	}

	if cap(p.n) < w-b {
		p.n = make([]int, 0, w-b)
	}
	p.n = p.n[:0]
	p.in.ClearAll()
	for i := 0; i < w; i++ {
		if !p.solver.IsBasic(i) {
			p.n = append(p.n, i)
			p.in.Set(uint(i))
		}
	}
	if len(p.n) != w-b {
		violate("Init", Degenerate, "found %d non-basic indices, want w-b = %d", len(p.n), w-b)
	}

	if p.permute {
		p.rand.Shuffle(len(p.n), func(i, j int) {
			p.n[i], p.n[j] = p.n[j], p.n[i]
		})
	}

	p.resize("Init")
	p.phase = Phase1
}

// resize recomputes the size of the active set from the solver dimensions.
func (p *Pool) resize(op string) {
	s := ActiveSize(p.solver.NumVariables(), p.solver.NumConstraints(), len(p.n))
	if s < 0 || s > len(p.n) {
		violate(op, Degenerate, "active size %d outside [0,%d]", s, len(p.n))
	}
	p.s = s
}

// Phase returns the current phase of the pool.
func (p *Pool) Phase() Phase { return p.phase }

// Len returns the number of non-basic indices in the pool.
func (p *Pool) Len() int { return len(p.n) }

// Boundary returns the size s of the active set.
func (p *Pool) Boundary() int { return p.s }

// ActiveRange returns the positions [0, s) of the active set.
func (p *Pool) ActiveRange() Range { return Range{0, Pos(p.s)} }

// InactiveRange returns the positions [s, len) of the inactive set.
func (p *Pool) InactiveRange() Range { return Range{Pos(p.s), Pos(len(p.n))} }

// Active returns the indices of the active set.
// The slice aliases the pool and must not be modified.
func (p *Pool) Active() []int { return p.n[:p.s:p.s] }

// Inactive returns the indices of the inactive set.
// The slice aliases the pool and must not be modified.
func (p *Pool) Inactive() []int { return p.n[p.s:len(p.n):len(p.n)] }

// At returns the index stored at position pos.
func (p *Pool) At(pos Pos) int {
	if pos < 0 || int(pos) >= len(p.n) {
		violate("At", RangeViolation, "position %d outside [0,%d)", pos, len(p.n))
	}
	return p.n[pos]
}

// Contains reports whether index i is in the pool.
func (p *Pool) Contains(i int) bool {
	return i >= 0 && p.in.Test(uint(i))
}

// Find returns the position of index i in O(len) time.
func (p *Pool) Find(i int) (Pos, bool) {
	if !p.Contains(i) {
		return -1, false
	}
	k := slices.Index(p.n, i)
	return Pos(k), k >= 0
}

func (p *Pool) checkInit(op string) {
	if p.phase == Uninitialized {
		violate(op, PhaseOrder, "pool used before Init")
	}
}

// EnteringBasis removes the active index at pos from the pool.
// Positions of the remaining indices may change.
func (p *Pool) EnteringBasis(pos Pos) {
	p.checkInit("EnteringBasis")
	if r := p.ActiveRange(); !r.Contains(pos) {
		violate("EnteringBasis", RangeViolation, "position %d outside active range %v", pos, r)
	}

	p.in.Clear(uint(p.n[pos]))

	// remove from active set
	p.s--
	last := len(p.n) - 1
	p.n[pos] = p.n[p.s]
	p.n[p.s] = p.n[last]
	p.n = p.n[:last]
}

// Activating moves the inactive index at pos into the active set and
// returns its new position.
func (p *Pool) Activating(pos Pos) Pos {
	p.checkInit("Activating")
	if r := p.InactiveRange(); !r.Contains(pos) {
		violate("Activating", RangeViolation, "position %d outside inactive range %v", pos, r)
	}

	// append to active set
	p.n[pos], p.n[p.s] = p.n[p.s], p.n[pos]
	pos = Pos(p.s)
	p.s++
	return pos
}

// LeavingBasis inserts index i, which just left the basis, as an active index.
func (p *Pool) LeavingBasis(i int) {
	p.checkInit("LeavingBasis")
	if i < 0 {
		violate("LeavingBasis", RangeViolation, "negative index %d", i)
	}
	if p.in.Test(uint(i)) {
		violate("LeavingBasis", DuplicateIndex, "index %d already non-basic", i)
	}

	if p.s == len(p.n) {
		// all non-basic variables active
		p.n = append(p.n, i)
	} else {
		// insert at the end of the active set
		p.n = append(p.n, p.n[p.s])
		p.n[p.s] = i
	}
	p.s++
	p.in.Set(uint(i))
}

// Transition drops the artificial indices, those not below the current
// number of working variables, and resizes the active set for phase 2.
// Surviving indices keep their relative order.
func (p *Pool) Transition() {
	if p.phase != Phase1 {
		violate("Transition", PhaseOrder, "called in %v", p.phase)
	}

	w := p.solver.NumWorkingVariables()
	p.n = slices.DeleteFunc(p.n, func(i int) bool {
		if i < w {
			return false
		}
		p.in.Clear(uint(i))
		return true
	})

	p.resize("Transition")
	p.phase = Phase2
}
