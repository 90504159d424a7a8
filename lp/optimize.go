// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lp solves linear programs with a dense two-phase simplex method
// whose entering variables are chosen by a pricing.Strategy.
package lp

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/simplex/pricing"
)

var (
	// ErrDimension problem data of inconsistent sizes.
	ErrDimension = errors.New("lp: dimension mismatch")
	// ErrOption unacceptable problem option.
	ErrOption = errors.New("lp: bad option")
)

// Rule selects the pricing strategy.
type Rule int

const (
	// PartialRule scans a dynamically sized subset of the non-basic variables.
	PartialRule Rule = iota
	// FullRule scans every non-basic variable.
	FullRule
)

// Termination specifies the stopping criteria for the simplex method.
type Termination struct {
	// The iteration stop when the number of pivots exceeds limit.
	MaxIterations int
	// Reduced costs above -Tolerance are considered non-improving and
	// pivots below Tolerance are considered zero. Defaults to 1e-9.
	Tolerance float64
}

// Problem specifies the linear program
//
//	minimize   cᵀx
//	s.t.       A x = b
//	           G x ≤ h
//	           x ≥ 0
//
// A and G are optional, but at least one constraint must exist.
type Problem struct {
	C       []float64
	A       mat.Matrix
	B       []float64
	G       mat.Matrix
	H       []float64
	Stop    Termination
	Pricing Rule
	// Randomize permutes the initial non-basis of partial pricing with Rand.
	// Rand is not safe for concurrent use by multiple workspaces.
	Randomize bool
	Rand      pricing.Shuffler
}

// New creates a new simplex optimizer for given problem.
func (p *Problem) New() (optimizer *Optimizer, err error) {

	n, stop := len(p.C), p.Stop

	var meq, k int
	if p.A != nil {
		r, c := p.A.Dims()
		if c != n {
			return nil, errors.Wrapf(ErrDimension, "A has %d columns, want %d", c, n)
		}
		meq = r
	}
	if p.G != nil {
		r, c := p.G.Dims()
		if c != n {
			return nil, errors.Wrapf(ErrDimension, "G has %d columns, want %d", c, n)
		}
		k = r
	}

	if stop.Tolerance == zero {
		stop.Tolerance = defaultTol
	}

	switch {
	case n == 0:
		err = errors.Wrap(ErrDimension, "objective must not be empty")
	case meq+k == 0:
		err = errors.Wrap(ErrDimension, "at least one constraint is required")
	case len(p.B) != meq:
		err = errors.Wrapf(ErrDimension, "b has %d entries, want %d", len(p.B), meq)
	case len(p.H) != k:
		err = errors.Wrapf(ErrDimension, "h has %d entries, want %d", len(p.H), k)
	case floats.HasNaN(p.C) || floats.HasNaN(p.B) || floats.HasNaN(p.H):
		err = errors.Wrap(ErrOption, "problem data contains NaN")
	case stop.MaxIterations <= 0:
		err = errors.Wrap(ErrOption, "max iteration must greater than 0")
	case stop.Tolerance < zero || math.IsNaN(stop.Tolerance):
		err = errors.Wrap(ErrOption, "tolerance must not less than 0")
	case p.Pricing != PartialRule && p.Pricing != FullRule:
		err = errors.Wrapf(ErrOption, "unknown pricing rule %d", p.Pricing)
	case p.Randomize && p.Rand == nil:
		err = errors.Wrap(ErrOption, "randomize requires a random source")
	}

	if err != nil {
		return
	}

	var a, g mat.Matrix
	if meq > 0 {
		a = mat.DenseCopyOf(p.A)
	}
	if k > 0 {
		g = mat.DenseCopyOf(p.G)
	}

	optimizer = &Optimizer{
		lpSpec{
			n: n, k: k, meq: meq, m: meq + k,
			Problem: Problem{
				C:         slices.Clone(p.C),
				A:         a,
				B:         slices.Clone(p.B),
				G:         g,
				H:         slices.Clone(p.H),
				Stop:      stop,
				Pricing:   p.Pricing,
				Randomize: p.Randomize,
				Rand:      p.Rand,
			},
		},
	}

	return
}

// Optimizer implemented using the two-phase simplex method.
type Optimizer struct {
	lpSpec
}

// Workspace contains the tableau and counters of the simplex method.
// Given n variables, k inequalities and m constraints the tableau
// occupies float64[(m+1)×(n+k+m+1)].
type Workspace struct {
	n, k, m int
	lpCtx
}

// Result contains the final result of the simplex method.
type Result struct {
	OK      bool      // Whether an optimal solution was found.
	F       float64   // Final objective value.
	X       []float64 // Final solution.
	Summary           // Optimization summary.
}

// Summary contains a summary of the simplex method.
type Summary struct {
	Status     lpMode // Final status.
	NumIter    int    // Number of pivots of both phases.
	Phase1Iter int    // Number of pivots spent in phase 1.
	Rows       int    // Constraints left after removing redundant ones.
}

// Init allocate the workspace for simplex optimizer.
// To avoid race conditions, separate workspaces need to be created for each goroutine.
// But multiple workspaces could share one optimizer.
func (o *Optimizer) Init() *Workspace {
	w := new(Workspace)
	w.n, w.k, w.m = o.n, o.k, o.m
	w.tab = newTableau(o.n, o.k, o.m)
	return w
}

// Solve runs the simplex method within workspace w.
// A Strategy misuse surfaces as a panic carrying a *pricing.ContractViolation.
func (o *Optimizer) Solve(w *Workspace) *Result {

	if w.n != o.n || w.k != o.k || w.m != o.m {
		panic("workspace dimension not match problem")
	}

	w.reset()
	w.tab.load(&o.lpSpec)

	tol := o.Stop.Tolerance
	switch o.Pricing {
	case FullRule:
		w.strategy = pricing.NewFullPricing(w.tab, tol)
	default:
		w.strategy = pricing.NewPartialPricing(w.tab, tol, o.Randomize, o.Rand)
	}

	solver := lpSolver{optimizer: o, workspace: w}
	res := solver.mainLoop()

	x := make([]float64, o.n)
	f := math.NaN()
	switch res {
	case Optimal:
		w.tab.solution(x)
		f = floats.Dot(o.C, x)
	case Unbounded:
		f = math.Inf(-1)
	}

	return &Result{
		OK: res == Optimal,
		F:  f,
		X:  x,
		Summary: Summary{
			Status:     res,
			NumIter:    w.iter,
			Phase1Iter: w.phase1,
			Rows:       w.tab.m,
		},
	}
}
