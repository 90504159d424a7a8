// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lp

import "fmt"

const (
	zero = 0.0
	one  = 1.0

	defaultTol = 1e-9
)

type lpMode int

const (
	// Optimal problem solved successfully.
	Optimal lpMode = iota
	// Infeasible the phase 1 optimum leaves artificial variables positive.
	Infeasible
	// Unbounded the objective decreases without limit along an entering column.
	Unbounded
	// ExceedMaxIter more than max pivots in phase 1 and phase 2.
	ExceedMaxIter
)

func (m lpMode) String() string {
	switch m {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case ExceedMaxIter:
		return "iteration limit exceeded"
	}
	return fmt.Sprintf("lpMode(%d)", int(m))
}

type lpSpec struct {
	// the number of decision variables
	n int
	// the number of slack variables, one per inequality
	k int
	// the number of equality constraints
	meq int
	// the total number of constraints
	m int
	Problem
}
