// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lp

import (
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/simplex/pricing"
)

type lpCtx struct {
	// pivot counter of both phases.
	iter int
	// pivots spent in phase 1.
	phase1 int
	// dense tableau acting as the pricing adapter.
	tab *tableau
	// entering variable selection.
	strategy pricing.Strategy
}

func (c *lpCtx) reset() {
	c.iter, c.phase1 = 0, 0
	c.strategy = nil
}

// lpSolver drives both phases of the simplex method on a workspace.
type lpSolver struct {
	optimizer *Optimizer
	workspace *Workspace
}

// mainLoop solves the phase 1 problem, switches the strategy to phase 2 and
// solves the original problem.
func (ls *lpSolver) mainLoop() lpMode {
	o, w := ls.optimizer, ls.workspace
	tab, tol := w.tab, o.Stop.Tolerance

	w.strategy.Init()

	if mode := ls.iterate(); mode != Optimal {
		glog.V(1).Infof("lp: phase 1 stopped after %d pivots: %v", w.iter, mode)
		return mode
	}
	w.phase1 = w.iter

	infeas := tab.objective()
	if infeas > tol*(one+floats.Norm(o.B, 1)+floats.Norm(o.H, 1)) {
		glog.V(1).Infof("lp: infeasible, phase 1 optimum %g after %d pivots", infeas, w.iter)
		return Infeasible
	}

	removed := ls.expelArtificials()
	tab.phase = 2
	tab.price(o.C)
	w.strategy.Transition()
	glog.V(1).Infof("lp: phase 1 done after %d pivots, %d redundant rows removed", w.iter, removed)

	mode := ls.iterate()
	glog.V(1).Infof("lp: phase 2 finished after %d pivots: %v, objective %g",
		w.iter-w.phase1, mode, tab.objective())
	return mode
}

// iterate pivots until no entering variable is priced.
func (ls *lpSolver) iterate() lpMode {
	o, w := ls.optimizer, ls.workspace
	tab, tol := w.tab, o.Stop.Tolerance

	for {
		q := w.strategy.Price()
		if q < 0 {
			return Optimal
		}
		if w.iter >= o.Stop.MaxIterations {
			return ExceedMaxIter
		}
		r := tab.ratio(q, tol)
		if r < 0 {
			glog.V(2).Infof("lp: phase %d column %d unbounded", tab.phase, q)
			return Unbounded
		}
		leave := tab.pivot(r, q)
		w.strategy.LeavingBasis(leave)
		w.iter++
		if glog.V(2) {
			glog.Infof("lp: phase %d pivot %d: %d enters, %d leaves row %d, objective %g",
				tab.phase, w.iter, q, leave, r, tab.objective())
		}
	}
}

// expelArtificials pivots basic artificial variables out of a feasible
// phase 1 basis. A row whose artificial cannot leave is a linear combination
// of the others and is removed. It returns the number of removed rows.
func (ls *lpSolver) expelArtificials() (removed int) {
	o, w := ls.optimizer, ls.workspace
	tab, tol := w.tab, o.Stop.Tolerance
	structural := tab.n + tab.k

	for r := 0; r < tab.m; {
		if tab.basis[r] < structural {
			r++
			continue
		}

		q := -1
		for j := 0; j < structural; j++ {
			if !tab.IsBasic(j) && math.Abs(tab.t.At(r, j)) > tol {
				q = j
				break
			}
		}

		if q < 0 {
			glog.V(2).Infof("lp: row %d is redundant", r)
			tab.removeRow(r)
			removed++
			continue
		}

		// degenerate pivot, the artificial is at level zero
		tab.t.Set(r, tab.rhs, zero)
		w.strategy.EnteringBasis(q)
		leave := tab.pivot(r, q)
		w.strategy.LeavingBasis(leave)
		r++
	}
	return
}
