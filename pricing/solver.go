// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pricing implements the pricing step of a simplex-type solver.
//
// The entering variable of a simplex iteration is chosen among the
// non-basic variables. Full pricing inspects all of them, partial pricing
// keeps an active subset of the non-basic indices in a Pool and only grows
// it when the active subset carries no improving candidate.
package pricing

// Solver is the read-only view of a running solver queried by the Pool.
type Solver interface {
	// NumVariables returns the number n of decision variables.
	NumVariables() int
	// NumConstraints returns the number m of constraints.
	NumConstraints() int
	// NumBasicVariables returns the current basis size b.
	NumBasicVariables() int
	// NumWorkingVariables returns the number w of indices in play, w ≥ b.
	// During phase 1 it includes slack and artificial variables.
	NumWorkingVariables() int
	// IsBasic reports whether variable i in [0, w) is basic.
	IsBasic(i int) bool
}

// Pricer is a Solver which can evaluate the reduced cost of non-basic variables.
// A variable j improves the objective when ReducedCost(j) < 0.
type Pricer interface {
	Solver
	ReducedCost(j int) float64
}

// Shuffler is the randomization source of the Pool.
// Implementations must permute uniformly, *rand.Rand of math/rand or
// math/rand/v2 satisfy it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}
