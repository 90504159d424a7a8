// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pricing

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	n, m, w int
	basic   map[int]bool
	cost    map[int]float64
}

func newFakeSolver(n, m, w int, basic ...int) *fakeSolver {
	f := &fakeSolver{n: n, m: m, w: w, basic: map[int]bool{}, cost: map[int]float64{}}
	for _, i := range basic {
		f.basic[i] = true
	}
	return f
}

func (f *fakeSolver) NumVariables() int         { return f.n }
func (f *fakeSolver) NumConstraints() int       { return f.m }
func (f *fakeSolver) NumBasicVariables() int    { return len(f.basic) }
func (f *fakeSolver) NumWorkingVariables() int  { return f.w }
func (f *fakeSolver) IsBasic(i int) bool        { return f.basic[i] }
func (f *fakeSolver) ReducedCost(j int) float64 { return f.cost[j] }

// poolOf builds an initialized pool holding exactly idx with boundary s.
func poolOf(s Solver, idx []int, active int) *Pool {
	p := NewPool(s, false, nil)
	p.n = slices.Clone(idx)
	for _, i := range idx {
		p.in.Set(uint(i))
	}
	p.s = active
	p.phase = Phase1
	return p
}

func checkInvariants(t *testing.T, p *Pool) {
	t.Helper()
	require.GreaterOrEqual(t, p.Boundary(), 0)
	require.LessOrEqual(t, p.Boundary(), p.Len())
	seen := make(map[int]bool, p.Len())
	for _, i := range p.n {
		require.Falsef(t, seen[i], "index %d appears twice in %v", i, p.n)
		require.Truef(t, p.Contains(i), "index %d missing from membership set", i)
		seen[i] = true
	}
	require.EqualValues(t, p.Len(), p.in.Count())
	require.Equal(t, p.ActiveRange().Len(), len(p.Active()))
	require.Equal(t, p.InactiveRange().Len(), len(p.Inactive()))
	joined := append(slices.Clone(p.Active()), p.Inactive()...)
	for k, i := range p.n {
		require.Equal(t, i, joined[k])
	}
}

func requireViolation(t *testing.T, kind ViolationKind, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected contract violation")
		cv, ok := AsContractViolation(r)
		require.Truef(t, ok, "recovered %v is not a contract violation", r)
		assert.Equal(t, kind, cv.Kind, cv.Error())
	}()
	f()
}

func TestActiveSize(t *testing.T) {
	cases := []struct {
		n, m, size int
		want       int
	}{
		{10, 3, 8, 7},
		{10, 3, 100, 7},
		{2, 1, 100, 1},
		{3, 1, 100, 1},
		{5, 1, 100, 2},
		{200, 10, 1000, 100},
		{200, 10, 50, 50},
		{0, 3, 8, 0},
		{10, 0, 8, 0},
		{10, 3, 0, 0},
		{-4, 3, 8, 0},
		{10, -3, 8, 0},
		{math.MaxInt, math.MaxInt, 5, 5},
	}
	for _, c := range cases {
		got := ActiveSize(c.n, c.m, c.size)
		assert.Equalf(t, c.want, got, "ActiveSize(%d, %d, %d)", c.n, c.m, c.size)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, max(c.size, 0))
	}
}

func TestInit(t *testing.T) {
	s := newFakeSolver(10, 3, 12, 1, 4, 6, 11)
	p := NewPool(s, false, nil)
	require.Equal(t, Uninitialized, p.Phase())

	p.Init()
	checkInvariants(t, p)
	assert.Equal(t, Phase1, p.Phase())
	assert.Equal(t, 8, p.Len())
	assert.Equal(t, 7, p.Boundary())
	assert.Equal(t, []int{0, 2, 3, 5, 7, 8, 9, 10}, p.n)
	assert.Equal(t, []int{0, 2, 3, 5, 7, 8, 9}, p.Active())
	assert.Equal(t, []int{10}, p.Inactive())
	for _, i := range []int{1, 4, 6, 11} {
		assert.False(t, p.Contains(i))
	}
}

func TestInitIdempotent(t *testing.T) {
	s := newFakeSolver(6, 2, 9, 0, 3, 7)
	p := NewPool(s, false, nil)
	p.Init()
	first, s1 := slices.Clone(p.n), p.Boundary()

	// mutate then re-init
	p.EnteringBasis(0)
	p.LeavingBasis(20)
	p.Init()

	checkInvariants(t, p)
	assert.Equal(t, first, p.n)
	assert.Equal(t, s1, p.Boundary())
	assert.False(t, p.Contains(20))
}

func TestInitRandomized(t *testing.T) {
	s := newFakeSolver(40, 7, 60, 3, 9, 17, 22, 41, 58)

	plain := NewPool(s, false, nil)
	plain.Init()

	shuffled := NewPool(s, true, rand.New(rand.NewPCG(7, 11)))
	shuffled.Init()
	checkInvariants(t, shuffled)

	assert.ElementsMatch(t, plain.n, shuffled.n)
	assert.NotEqual(t, plain.n, shuffled.n)
	assert.Equal(t, plain.Boundary(), shuffled.Boundary())

	again := NewPool(s, true, rand.New(rand.NewPCG(7, 11)))
	again.Init()
	assert.Equal(t, shuffled.n, again.n, "same seed must give the same permutation")
}

func TestInitEmpty(t *testing.T) {
	s := newFakeSolver(0, 0, 2, 0, 1)
	p := NewPool(s, true, rand.New(rand.NewPCG(1, 1)))
	p.Init()
	checkInvariants(t, p)
	assert.Zero(t, p.Len())
	assert.Zero(t, p.Boundary())
}

func TestEnteringBasis(t *testing.T) {
	idx := []int{8, 3, 5, 0, 6, 2, 9}
	for active := 1; active <= len(idx); active++ {
		for pos := 0; pos < active; pos++ {
			p := poolOf(newFakeSolver(0, 0, 10), idx, active)
			removed := p.At(Pos(pos))

			p.EnteringBasis(Pos(pos))
			checkInvariants(t, p)

			assert.Equal(t, len(idx)-1, p.Len())
			assert.Equal(t, active-1, p.Boundary())
			assert.False(t, p.Contains(removed))
			assert.NotContains(t, p.n, removed)
			// partition membership of survivors is preserved
			assert.ElementsMatch(t, without(idx[:active], removed), p.Active())
			assert.ElementsMatch(t, idx[active:], p.Inactive())
		}
	}
}

func TestActivating(t *testing.T) {
	idx := []int{4, 1, 7, 0, 3, 9}
	for active := 0; active < len(idx); active++ {
		for pos := active; pos < len(idx); pos++ {
			p := poolOf(newFakeSolver(0, 0, 10), idx, active)
			promoted := p.At(Pos(pos))

			at := p.Activating(Pos(pos))
			checkInvariants(t, p)

			assert.Equal(t, len(idx), p.Len())
			assert.Equal(t, active+1, p.Boundary())
			assert.True(t, p.ActiveRange().Contains(at))
			assert.Equal(t, promoted, p.At(at))
			assert.ElementsMatch(t, append(slices.Clone(idx[:active]), promoted), p.Active())
		}
	}
}

func TestLeavingBasis(t *testing.T) {
	t.Run("inactive empty", func(t *testing.T) {
		p := poolOf(newFakeSolver(0, 0, 10), []int{2, 5, 1}, 3)
		p.LeavingBasis(7)
		checkInvariants(t, p)
		assert.Equal(t, []int{2, 5, 1, 7}, p.n)
		assert.Equal(t, 4, p.Boundary())
	})
	t.Run("inactive non empty", func(t *testing.T) {
		p := poolOf(newFakeSolver(0, 0, 10), []int{2, 5, 1, 8, 4}, 2)
		p.LeavingBasis(7)
		checkInvariants(t, p)
		assert.Equal(t, []int{2, 5, 7, 8, 4, 1}, p.n)
		assert.Equal(t, 3, p.Boundary())
		assert.ElementsMatch(t, []int{1, 8, 4}, p.Inactive())
	})
	t.Run("empty pool", func(t *testing.T) {
		p := poolOf(newFakeSolver(0, 0, 10), nil, 0)
		p.LeavingBasis(0)
		checkInvariants(t, p)
		assert.Equal(t, []int{0}, p.Active())
	})
}

func TestTransition(t *testing.T) {
	s := newFakeSolver(4, 1, 10)
	p := poolOf(s, []int{5, 9, 2, 11, 7}, 3)

	p.Transition()
	checkInvariants(t, p)

	assert.Equal(t, Phase2, p.Phase())
	assert.Equal(t, []int{5, 9, 2, 7}, p.n)
	assert.False(t, p.Contains(11))
	assert.Equal(t, ActiveSize(4, 1, 4), p.Boundary())
	assert.Equal(t, 1, p.Boundary())
}

func TestTransitionStable(t *testing.T) {
	s := newFakeSolver(30, 9, 40, 0, 1, 2, 3, 4, 5, 6, 7, 8)
	p := NewPool(s, true, rand.New(rand.NewPCG(3, 5)))
	p.Init()

	// phase 2 drops the trailing artificial columns
	s.w, s.n, s.m = 30, 30, 8
	var want []int
	for _, i := range p.n {
		if i < s.w {
			want = append(want, i)
		}
	}

	p.Transition()
	checkInvariants(t, p)
	assert.Equal(t, want, p.n)
	assert.Equal(t, ActiveSize(30, 8, len(want)), p.Boundary())
	for _, i := range p.n {
		assert.Less(t, i, s.w)
	}
}

func TestContractViolations(t *testing.T) {
	fresh := func() *Pool {
		return poolOf(newFakeSolver(2, 1, 10), []int{0, 1, 2, 3}, 2)
	}
	cases := []struct {
		name string
		kind ViolationKind
		f    func()
	}{
		{"entering inactive", RangeViolation, func() { fresh().EnteringBasis(2) }},
		{"entering negative", RangeViolation, func() { fresh().EnteringBasis(-1) }},
		{"activating active", RangeViolation, func() { fresh().Activating(1) }},
		{"activating past end", RangeViolation, func() { fresh().Activating(4) }},
		{"at past end", RangeViolation, func() { fresh().At(4) }},
		{"leaving duplicate active", DuplicateIndex, func() { fresh().LeavingBasis(0) }},
		{"leaving duplicate inactive", DuplicateIndex, func() { fresh().LeavingBasis(3) }},
		{"leaving negative", RangeViolation, func() { fresh().LeavingBasis(-2) }},
		{"transition twice", PhaseOrder, func() {
			p := fresh()
			p.Transition()
			p.Transition()
		}},
		{"transition before init", PhaseOrder, func() {
			NewPool(newFakeSolver(2, 1, 10), false, nil).Transition()
		}},
		{"entering before init", PhaseOrder, func() {
			NewPool(newFakeSolver(2, 1, 10), false, nil).EnteringBasis(0)
		}},
		{"leaving before init", PhaseOrder, func() {
			NewPool(newFakeSolver(2, 1, 10), false, nil).LeavingBasis(0)
		}},
		{"too many basic", Degenerate, func() {
			NewPool(newFakeSolver(2, 1, 1, 0, 4), false, nil).Init()
		}},
		{"randomize without source", Misconfigured, func() {
			NewPool(newFakeSolver(2, 1, 10), true, nil)
		}},
		{"nil solver", Misconfigured, func() { NewPool(nil, false, nil) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			requireViolation(t, c.kind, c.f)
		})
	}
}

func TestRandomMutations(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rnd := rand.New(rand.NewPCG(seed, 2*seed+1))

		w := 30 + rnd.IntN(30)
		var basic []int
		for i := 0; i < w; i++ {
			if rnd.IntN(4) == 0 {
				basic = append(basic, i)
			}
		}
		s := newFakeSolver(w/2, len(basic), w, basic...)
		p := NewPool(s, seed%2 == 0, rnd)
		p.Init()
		checkInvariants(t, p)

		out := slices.Clone(basic)
		for step := 0; step < 300; step++ {
			if step == 150 {
				s.w = w - 5
				out = slices.DeleteFunc(out, func(i int) bool { return i >= s.w })
				p.Transition()
				checkInvariants(t, p)
				for _, i := range p.n {
					require.Less(t, i, s.w)
				}
				continue
			}

			size, bound := p.Len(), p.Boundary()
			switch op := rnd.IntN(3); {
			case op == 0 && bound > 0:
				pos := Pos(rnd.IntN(bound))
				i := p.At(pos)
				p.EnteringBasis(pos)
				out = append(out, i)
				require.Equal(t, size-1, p.Len())
				require.Equal(t, bound-1, p.Boundary())
				require.False(t, p.Contains(i))
			case op == 1 && bound < size:
				pos := Pos(bound + rnd.IntN(size-bound))
				i := p.At(pos)
				at := p.Activating(pos)
				require.Equal(t, size, p.Len())
				require.Equal(t, bound+1, p.Boundary())
				require.Equal(t, i, p.At(at))
				require.True(t, p.ActiveRange().Contains(at))
			case op == 2 && len(out) > 0:
				k := rnd.IntN(len(out))
				i := out[k]
				out = slices.Delete(out, k, k+1)
				p.LeavingBasis(i)
				require.Equal(t, size+1, p.Len())
				require.Equal(t, bound+1, p.Boundary())
				require.Contains(t, p.Active(), i)
			}
			checkInvariants(t, p)
		}
	}
}

func without(idx []int, i int) []int {
	return slices.DeleteFunc(slices.Clone(idx), func(j int) bool { return j == i })
}
