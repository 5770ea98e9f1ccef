package lp

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"gonum.org/v1/gonum/mat"
	convexlp "gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	simplexTol  = 1e-10
	integralTol = 1e-6
)

// Solve 求解模型，返回目标值最小的整数可行解。
// 节点数用尽时若已有整数解则返回该解并把 Optimal 置为 false，否则返回 ErrNodeLimit。
func (m *Model) Solve(ctx context.Context) (*Solution, error) {
	maxNodes := m.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	var best *Solution
	nodes := 0
	exhausted := true

	// 每个节点只记录被固定的二元变量
	stack := []map[int]float64{{}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if nodes >= maxNodes {
			if best == nil {
				return nil, ErrNodeLimit
			}
			exhausted = false
			break
		}

		fixed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		sol, err := m.relax(fixed)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		if err != nil {
			return nil, err
		}

		// 松弛解已经不优于当前最好的整数解，剪枝
		if best != nil && sol.Objective >= best.Objective-pruneTol(best.Objective) {
			continue
		}

		j := m.branchVar(sol.Values)
		if j < 0 {
			best = sol
			continue
		}

		zero := maps.Clone(fixed)
		zero[j] = 0
		one := maps.Clone(fixed)
		one[j] = 1
		// 后入栈的先处理：优先尝试取 1
		stack = append(stack, zero, one)
	}

	if best == nil {
		return nil, ErrInfeasible
	}

	for j, v := range m.vars {
		if v.binary {
			best.Values[j] = math.Round(best.Values[j])
		}
	}
	best.Objective = m.objectiveAt(best.Values)
	best.Nodes = nodes
	best.Optimal = exhausted
	return best, nil
}

func pruneTol(obj float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(obj))
}

func (m *Model) objectiveAt(values []float64) float64 {
	sum := 0.0
	for j, c := range m.objective {
		sum += c * values[j]
	}
	return sum
}

// branchVar 选取分数部分最接近 0.5 的二元变量，相同时取下标最小的
func (m *Model) branchVar(values []float64) int {
	pick := -1
	bestFrac := integralTol
	for j, v := range m.vars {
		if !v.binary {
			continue
		}
		frac := math.Abs(values[j] - math.Round(values[j]))
		if frac > bestFrac {
			bestFrac = frac
			pick = j
		}
	}
	return pick
}

type reducedRow struct {
	coefs map[int]float64 // 以原始变量下标为键
	sense Sense
	rhs   float64
}

// relax 在给定固定变量的情况下求解线性松弛
func (m *Model) relax(fixed map[int]float64) (*Solution, error) {
	n := len(m.vars)
	values := make([]float64, n)
	for j, v := range fixed {
		values[j] = v
	}

	// 代入固定变量
	rows := make([]reducedRow, 0, len(m.cons))
	for _, con := range m.cons {
		r := reducedRow{coefs: make(map[int]float64, len(con.Terms)), sense: con.Sense, rhs: con.RHS}
		for _, t := range con.Terms {
			if v, ok := fixed[t.Var]; ok {
				r.rhs -= t.Coef * v
				continue
			}
			r.coefs[t.Var] += t.Coef
		}
		for j, c := range r.coefs {
			if c == 0 {
				delete(r.coefs, j)
			}
		}

		if len(r.coefs) == 0 {
			if !satisfied(0, r.sense, r.rhs) {
				return nil, ErrInfeasible
			}
			continue
		}
		rows = append(rows, r)
	}

	rows, err := dropRedundant(rows)
	if err != nil {
		return nil, err
	}

	used := make([]bool, n)
	for _, r := range rows {
		for j := range r.coefs {
			used[j] = true
		}
	}

	// 没有出现在任何约束中的变量直接按目标系数取边界值
	for j, v := range m.vars {
		if _, ok := fixed[j]; ok || used[j] {
			continue
		}
		switch {
		case m.objective[j] >= 0:
			values[j] = 0
		case v.binary:
			values[j] = 1
		default:
			return nil, ErrUnbounded
		}
	}

	// 二元变量的上界：若某一行已经隐含 x <= 1 则不再单独加行
	for j, v := range m.vars {
		if !v.binary || !used[j] {
			continue
		}
		if _, ok := fixed[j]; ok {
			continue
		}
		if !impliedUpper(rows, j) {
			rows = append(rows, reducedRow{coefs: map[int]float64{j: 1}, sense: LessEq, rhs: 1})
		}
	}

	if len(rows) == 0 {
		return &Solution{Objective: m.objectiveAt(values), Values: values}, nil
	}

	col := make([]int, n)
	structural := 0
	for j := range m.vars {
		col[j] = -1
		if used[j] {
			col[j] = structural
			structural++
		}
	}

	slacks := 0
	for i := range rows {
		if rows[i].rhs < 0 {
			for j := range rows[i].coefs {
				rows[i].coefs[j] = -rows[i].coefs[j]
			}
			rows[i].rhs = -rows[i].rhs
			switch rows[i].sense {
			case LessEq:
				rows[i].sense = GreaterEq
			case GreaterEq:
				rows[i].sense = LessEq
			}
		}
		if rows[i].sense != Equal {
			slacks++
		}
	}

	cols := structural + slacks
	a := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	c := make([]float64, cols)

	for j := range m.vars {
		if col[j] >= 0 {
			c[col[j]] = m.objective[j]
		}
	}

	slack := structural
	for i, r := range rows {
		for j, coef := range r.coefs {
			a.Set(i, col[j], coef)
		}
		b[i] = r.rhs
		switch r.sense {
		case LessEq:
			a.Set(i, slack, 1)
			slack++
		case GreaterEq:
			a.Set(i, slack, -1)
			slack++
		}
	}

	x, err := simplex(c, a, b)
	if err != nil {
		switch {
		case errors.Is(err, convexlp.ErrInfeasible):
			return nil, ErrInfeasible
		case errors.Is(err, convexlp.ErrUnbounded):
			return nil, ErrUnbounded
		default:
			return nil, fmt.Errorf("单纯形法求解失败: %w", err)
		}
	}

	for j, v := range m.vars {
		if col[j] < 0 {
			continue
		}
		val := math.Max(0, x[col[j]])
		if v.binary {
			val = math.Min(1, val)
		}
		values[j] = val
	}

	return &Solution{Objective: m.objectiveAt(values), Values: values}, nil
}

// impliedUpper 判断是否存在一行（系数全部非负、且不是 >= 约束）使得 x_j <= 1 自动成立
func impliedUpper(rows []reducedRow, j int) bool {
	for _, r := range rows {
		if r.sense == GreaterEq {
			continue
		}
		coef, ok := r.coefs[j]
		if !ok || coef <= 0 {
			continue
		}
		nonNegative := true
		for _, c := range r.coefs {
			if c < 0 {
				nonNegative = false
				break
			}
		}
		if nonNegative && r.rhs/coef <= 1+1e-12 {
			return true
		}
	}
	return false
}

// dropRedundant 去掉线性相关的等式约束；单纯形法要求等式矩阵行满秩。
// 若相关行的右端项矛盾则说明问题不可行。
func dropRedundant(rows []reducedRow) ([]reducedRow, error) {
	type pivotRow struct {
		pivot int
		coefs map[int]float64
		rhs   float64
	}
	var basis []pivotRow

	kept := rows[:0]
	for _, r := range rows {
		if r.sense != Equal {
			kept = append(kept, r)
			continue
		}

		vec := maps.Clone(r.coefs)
		rhs := r.rhs
		for _, b := range basis {
			f, ok := vec[b.pivot]
			if !ok {
				continue
			}
			for j, c := range b.coefs {
				vec[j] -= f * c
				if math.Abs(vec[j]) < 1e-12 {
					delete(vec, j)
				}
			}
			rhs -= f * b.rhs
		}

		pivot, big := -1, 1e-9
		for j, c := range vec {
			if math.Abs(c) > big || (math.Abs(c) == big && j < pivot) {
				pivot, big = j, math.Abs(c)
			}
		}
		if pivot < 0 {
			if math.Abs(rhs) > 1e-7 {
				return nil, ErrInfeasible
			}
			continue
		}

		f := vec[pivot]
		for j := range vec {
			vec[j] /= f
		}
		basis = append(basis, pivotRow{pivot: pivot, coefs: vec, rhs: rhs / f})
		kept = append(kept, r)
	}
	return kept, nil
}

// simplex 在方阵的情况下可行域只有一个点，直接解线性方程组
func simplex(c []float64, a *mat.Dense, b []float64) ([]float64, error) {
	rows, cols := a.Dims()
	var x mat.VecDense
	if rows != cols || x.SolveVec(a, mat.NewVecDense(len(b), b)) != nil {
		_, sol, err := convexlp.Simplex(c, a, b, simplexTol, nil)
		return sol, err
	}

	out := make([]float64, cols)
	for i := range out {
		v := x.AtVec(i)
		if v < -simplexTol {
			return nil, convexlp.ErrInfeasible
		}
		out[i] = v
	}
	return out, nil
}
