// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pricing

import "github.com/golang/glog"

// Strategy selects the entering variable of each simplex iteration.
type Strategy interface {
	// Init prepares the strategy once the initial basis is known.
	Init()
	// Price returns the entering variable, or -1 when no non-basic variable
	// improves the objective. The returned variable is considered basic.
	Price() int
	// EnteringBasis tells the strategy that j entered the basis without
	// being chosen by Price.
	EnteringBasis(j int)
	// LeavingBasis tells the strategy that i left the basis.
	LeavingBasis(i int)
	// Transition tells the strategy that the solver moved to phase 2.
	Transition()
}

// FullPricing is the Dantzig rule over every non-basic variable.
type FullPricing struct {
	solver Pricer
	tol    float64
}

// NewFullPricing creates a full pricing strategy.
// A variable improves when its reduced cost is below -tol.
func NewFullPricing(solver Pricer, tol float64) *FullPricing {
	if solver == nil {
		violate("NewFullPricing", Misconfigured, "nil solver")
	}
	return &FullPricing{solver: solver, tol: tol}
}

func (f *FullPricing) Init() {}

func (f *FullPricing) Price() int {
	w := f.solver.NumWorkingVariables()
	best, mu := -1, -f.tol
	for j := 0; j < w; j++ {
		if f.solver.IsBasic(j) {
			continue
		}
		if d := f.solver.ReducedCost(j); d < mu {
			best, mu = j, d
		}
	}
	return best
}

func (f *FullPricing) EnteringBasis(int) {}

func (f *FullPricing) LeavingBasis(int) {}

func (f *FullPricing) Transition() {}

// PartialPricing is the Dantzig rule restricted to the active set of a Pool.
// The inactive set is only scanned when the active set has no improving
// variable, every improving inactive variable found is then activated.
type PartialPricing struct {
	solver Pricer
	tol    float64
	pool   *Pool
}

// NewPartialPricing creates a partial pricing strategy.
// A variable improves when its reduced cost is below -tol. The initial
// non-basis is permuted with rng when randomize is set.
func NewPartialPricing(solver Pricer, tol float64, randomize bool, rng Shuffler) *PartialPricing {
	if solver == nil {
		violate("NewPartialPricing", Misconfigured, "nil solver")
	}
	return &PartialPricing{
		solver: solver,
		tol:    tol,
		pool:   NewPool(solver, randomize, rng),
	}
}

// Pool returns the index pool of the strategy.
func (pp *PartialPricing) Pool() *Pool { return pp.pool }

func (pp *PartialPricing) Init() { pp.pool.Init() }

func (pp *PartialPricing) Price() int {
	pp.pool.checkInit("Price")
	best, mu := Pos(-1), -pp.tol

	for k, j := range pp.pool.Active() {
		if d := pp.solver.ReducedCost(j); d < mu {
			best, mu = Pos(k), d
		}
	}

	// no entering variable in active set
	if best < 0 {
		grown := 0
		r := pp.pool.InactiveRange()
		for pos := r.Lo; pos < r.Hi; pos++ {
			d := pp.solver.ReducedCost(pp.pool.At(pos))
			if d >= -pp.tol {
				continue
			}
			at := pp.pool.Activating(pos)
			grown++
			if d < mu {
				best, mu = at, d
			}
		}
		if grown > 0 && glog.V(3) {
			glog.Infof("partial pricing: activated %d of %d inactive, active set now %d",
				grown, r.Len(), pp.pool.Boundary())
		}
	}

	if best < 0 {
		return -1
	}
	j := pp.pool.At(best)
	pp.pool.EnteringBasis(best)
	return j
}

func (pp *PartialPricing) EnteringBasis(j int) {
	pos, ok := pp.pool.Find(j)
	if !ok {
		violate("EnteringBasis", RangeViolation, "index %d not in pool", j)
	}
	if !pp.pool.ActiveRange().Contains(pos) {
		pos = pp.pool.Activating(pos)
	}
	pp.pool.EnteringBasis(pos)
}

func (pp *PartialPricing) LeavingBasis(i int) { pp.pool.LeavingBasis(i) }

func (pp *PartialPricing) Transition() { pp.pool.Transition() }
