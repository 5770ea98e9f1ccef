package lp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_BinaryKnapsackLike(t *testing.T) {
	m := NewModel()
	x := m.AddBinary("x")
	y := m.AddBinary("y")
	m.AddConstraint("cap", []Term{{x, 1}, {y, 1}}, LessEq, 1.5)
	m.SetObjective([]Term{{x, -1}, {y, -1}})

	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -1, sol.Objective, 1e-9)
	assert.InDelta(t, 1, sol.Value(x)+sol.Value(y), 1e-9)
}

func TestSolve_Assignment(t *testing.T) {
	m := NewModel()
	cost := [2][2]float64{{1, 2}, {2, 1}}
	var v [2][2]int
	for i := range 2 {
		for j := range 2 {
			v[i][j] = m.AddBinary("x")
		}
	}
	var obj []Term
	for i := range 2 {
		m.AddConstraint("row", []Term{{v[i][0], 1}, {v[i][1], 1}}, Equal, 1)
		m.AddConstraint("col", []Term{{v[0][i], 1}, {v[1][i], 1}}, Equal, 1)
		for j := range 2 {
			obj = append(obj, Term{v[i][j], cost[i][j]})
		}
	}
	m.SetObjective(obj)

	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2, sol.Objective, 1e-9)
	assert.Equal(t, 1.0, sol.Value(v[0][0]))
	assert.Equal(t, 1.0, sol.Value(v[1][1]))
	assert.Equal(t, 0.0, sol.Value(v[0][1]))
}

func TestSolve_PicksCheapestOfExactlyOne(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")
	m.AddConstraint("one", []Term{{a, 1}, {b, 1}, {c, 1}}, Equal, 1)
	m.SetObjective([]Term{{a, 3}, {b, 1}, {c, 2}})

	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, sol.Values)
}

func TestSolve_RequiresBranching(t *testing.T) {
	// 线性松弛的最优解是 x = y = z = 0.5
	m := NewModel()
	x := m.AddBinary("x")
	y := m.AddBinary("y")
	z := m.AddBinary("z")
	m.AddConstraint("xy", []Term{{x, 1}, {y, 1}}, LessEq, 1)
	m.AddConstraint("yz", []Term{{y, 1}, {z, 1}}, LessEq, 1)
	m.AddConstraint("xz", []Term{{x, 1}, {z, 1}}, LessEq, 1)
	m.SetObjective([]Term{{x, -1}, {y, -1}, {z, -1}})

	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -1, sol.Objective, 1e-9)
	assert.Greater(t, sol.Nodes, 1)
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel()
	x := m.AddBinary("x")
	y := m.AddBinary("y")
	m.AddConstraint("need", []Term{{x, 1}, {y, 1}}, GreaterEq, 3)

	_, err := m.Solve(context.Background())
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolve_Continuous(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	m.AddConstraint("floor", []Term{{x, 1}}, GreaterEq, 2.5)
	m.SetObjective([]Term{{x, 1}})

	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2.5, sol.Value(x), 1e-9)
}

func TestSolve_Unbounded(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	m.SetObjective([]Term{{x, -1}})

	_, err := m.Solve(context.Background())
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSolve_CanceledContext(t *testing.T) {
	m := NewModel()
	m.AddBinary("x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClone_IsIndependent(t *testing.T) {
	m := NewModel()
	x := m.AddBinary("x")
	m.AddConstraint("c", []Term{{x, 1}}, LessEq, 1)

	c := m.Clone()
	c.AddConstraint("extra", []Term{{x, 1}}, GreaterEq, 1)

	assert.Equal(t, 1, m.NumConstraints())
	assert.Equal(t, 2, c.NumConstraints())
	assert.Equal(t, "x", c.VarName(x))
}

func TestEval(t *testing.T) {
	assert.Equal(t, 7.0, Eval([]Term{{0, 2}, {1, 3}}, []float64{2, 1}))
}

func TestSolve_NodeLimitKeepsIncumbent(t *testing.T) {
	build := func() (*Model, int, int) {
		m := NewModel()
		x := m.AddBinary("x")
		y := m.AddBinary("y")
		// 松弛最优解为 x = 1, y = 0.5，先分支 y = 1 得到整数解，y = 0 的分支留在栈里
		m.AddConstraint("cap", []Term{{x, 1}, {y, 2}}, LessEq, 2)
		m.SetObjective([]Term{{x, -1}, {y, -1}})
		return m, x, y
	}

	m, x, y := build()
	sol, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.True(t, sol.Optimal)
	assert.InDelta(t, -1, sol.Objective, 1e-9)

	m, x, y = build()
	m.MaxNodes = 2
	sol, err = m.Solve(context.Background())
	require.NoError(t, err)
	assert.False(t, sol.Optimal)
	assert.Equal(t, 2, sol.Nodes)
	assert.Equal(t, 0.0, sol.Value(x))
	assert.Equal(t, 1.0, sol.Value(y))

	m, _, _ = build()
	m.MaxNodes = 1
	_, err = m.Solve(context.Background())
	assert.ErrorIs(t, err, ErrNodeLimit)
}
