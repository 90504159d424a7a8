// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tableau is a dense simplex tableau in canonical form.
//
// Columns are laid out as [ x (n) | slack (k) | artificial (art) | rhs ].
// Rows [0, m) hold the constraints and row m holds the reduced costs of the
// current phase objective, its rhs entry is the negated objective value.
type tableau struct {
	n, k  int
	art   int // artificial columns, one per initial row
	m     int // live rows, redundant rows are removed at phase transition
	rhs   int
	phase int

	full  *mat.Dense // backing storage
	t     *mat.Dense // view of the live rows of full
	basis []int      // basic variable of each row
	row   []int      // row of each basic variable, -1 when non-basic
}

func newTableau(n, k, m int) *tableau {
	cols := n + k + m
	return &tableau{
		n: n, k: k, art: m, m: m,
		rhs:   cols,
		full:  mat.NewDense(m+1, cols+1, nil),
		basis: make([]int, m),
		row:   make([]int, cols),
	}
}

// load fills the phase 1 tableau of p with an artificial basis.
func (tb *tableau) load(p *lpSpec) {
	n, k, meq := tb.n, tb.k, p.meq
	structural := n + k

	tb.m, tb.phase = tb.art, 1
	tb.basis = tb.basis[:tb.art]
	tb.full.Zero()
	tb.t = tb.full

	for i := 0; i < meq; i++ {
		r := tb.t.RawRowView(i)
		for j := 0; j < n; j++ {
			r[j] = p.A.At(i, j)
		}
		r[tb.rhs] = p.B[i]
	}
	for i := 0; i < k; i++ {
		r := tb.t.RawRowView(meq + i)
		for j := 0; j < n; j++ {
			r[j] = p.G.At(i, j)
		}
		r[n+i] = one
		r[tb.rhs] = p.H[i]
	}

	for j := range tb.row {
		tb.row[j] = -1
	}
	obj := tb.t.RawRowView(tb.m)
	for i := 0; i < tb.m; i++ {
		r := tb.t.RawRowView(i)
		if r[tb.rhs] < zero {
			floats.Scale(-one, r)
		}
		a := structural + i
		r[a] = one
		tb.basis[i], tb.row[a] = a, i
		floats.Sub(obj, r)
	}
	// reduced costs of the sum of artificials
	for i := 0; i < tb.m; i++ {
		obj[structural+i] = zero
	}
}

// price installs the phase 2 reduced costs of objective c.
func (tb *tableau) price(c []float64) {
	obj := tb.t.RawRowView(tb.m)
	clear(obj)
	copy(obj, c)
	for i, b := range tb.basis {
		if b < tb.n && c[b] != zero {
			floats.AddScaled(obj, -c[b], tb.t.RawRowView(i))
		}
	}
}

// objective returns the value of the current phase objective.
func (tb *tableau) objective() float64 {
	return -tb.t.At(tb.m, tb.rhs)
}

// ratio returns the row leaving the basis when q enters it, or -1 when the
// column q has no positive entry. Ties go to the smallest basic variable.
func (tb *tableau) ratio(q int, tol float64) int {
	best, theta := -1, math.Inf(1)
	for i := 0; i < tb.m; i++ {
		a := tb.t.At(i, q)
		if a <= tol {
			continue
		}
		v := math.Max(tb.t.At(i, tb.rhs), zero) / a
		switch {
		case best < 0 || v < theta-tol:
			best, theta = i, v
		case v <= theta+tol && tb.basis[i] < tb.basis[best]:
			best, theta = i, math.Min(v, theta)
		}
	}
	return best
}

// pivot makes q basic in row r and returns the variable which left the basis.
func (tb *tableau) pivot(r, q int) (leave int) {
	pr := tb.t.RawRowView(r)
	floats.Scale(one/pr[q], pr)
	pr[q] = one
	for i := 0; i <= tb.m; i++ {
		if i == r {
			continue
		}
		ri := tb.t.RawRowView(i)
		if f := ri[q]; f != zero {
			floats.AddScaled(ri, -f, pr)
			ri[q] = zero
		}
	}

	leave = tb.basis[r]
	tb.row[leave] = -1
	tb.basis[r], tb.row[q] = q, r
	return leave
}

// removeRow drops the redundant row r whose basic variable is artificial.
func (tb *tableau) removeRow(r int) {
	tb.row[tb.basis[r]] = -1
	for i := r; i < tb.m; i++ {
		copy(tb.t.RawRowView(i), tb.t.RawRowView(i+1))
	}
	tb.basis = append(tb.basis[:r], tb.basis[r+1:]...)
	for i := r; i < len(tb.basis); i++ {
		tb.row[tb.basis[i]] = i
	}
	tb.m--
	tb.t = tb.full.Slice(0, tb.m+1, 0, tb.rhs+1).(*mat.Dense)
}

// solution extracts the decision variables of the current basis.
func (tb *tableau) solution(x []float64) {
	clear(x)
	for i, b := range tb.basis {
		if b < tb.n {
			x[b] = math.Max(tb.t.At(i, tb.rhs), zero)
		}
	}
}

// pricing.Pricer

func (tb *tableau) NumVariables() int { return tb.n }

func (tb *tableau) NumConstraints() int { return tb.m }

func (tb *tableau) NumBasicVariables() int { return tb.m }

func (tb *tableau) NumWorkingVariables() int {
	if tb.phase == 1 {
		return tb.n + tb.k + tb.art
	}
	return tb.n + tb.k
}

func (tb *tableau) IsBasic(i int) bool {
	return i >= 0 && i < len(tb.row) && tb.row[i] >= 0
}

func (tb *tableau) ReducedCost(j int) float64 {
	return tb.t.At(tb.m, j)
}
