// Package lp 提供一个小型的线性 / 0-1 整数规划建模层。
//
// 线性松弛使用 gonum 的单纯形法求解，整数变量通过深度优先的分支定界处理。
// 分支时不会向矩阵追加新行，而是把被固定的变量代入约束，这样标准形式中的
// 等式约束始终保持行满秩。
package lp

import (
	"errors"
	"math"
)

var (
	ErrInfeasible = errors.New("lp: problem is infeasible")
	ErrUnbounded  = errors.New("lp: problem is unbounded")
	ErrNodeLimit  = errors.New("lp: branch and bound node limit reached")
)

type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "="
	case GreaterEq:
		return ">="
	default:
		return "?"
	}
}

type Term struct {
	Var  int
	Coef float64
}

type variable struct {
	name   string
	binary bool
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model 中所有变量都满足 x >= 0，二元变量额外满足 x <= 1 且取整
type Model struct {
	vars      []variable
	cons      []Constraint
	objective []float64

	// MaxNodes 为 0 时使用 DefaultMaxNodes
	MaxNodes int
}

const DefaultMaxNodes = 20000

func NewModel() *Model {
	return &Model{}
}

func (m *Model) AddBinary(name string) int {
	m.vars = append(m.vars, variable{name: name, binary: true})
	m.objective = append(m.objective, 0)
	return len(m.vars) - 1
}

func (m *Model) AddContinuous(name string) int {
	m.vars = append(m.vars, variable{name: name})
	m.objective = append(m.objective, 0)
	return len(m.vars) - 1
}

func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	for _, t := range terms {
		if t.Var < 0 || t.Var >= len(m.vars) {
			panic("lp: constraint references unknown variable")
		}
	}
	m.cons = append(m.cons, Constraint{
		Name:  name,
		Terms: append([]Term(nil), terms...),
		Sense: sense,
		RHS:   rhs,
	})
}

// SetObjective 覆盖原有目标函数（最小化）
func (m *Model) SetObjective(terms []Term) {
	for i := range m.objective {
		m.objective[i] = 0
	}
	for _, t := range terms {
		m.objective[t.Var] += t.Coef
	}
}

func (m *Model) NumVars() int {
	return len(m.vars)
}

func (m *Model) NumConstraints() int {
	return len(m.cons)
}

func (m *Model) VarName(v int) string {
	return m.vars[v].name
}

func (m *Model) Constraints() []Constraint {
	return m.cons
}

func (m *Model) Clone() *Model {
	c := &Model{
		vars:      append([]variable(nil), m.vars...),
		cons:      make([]Constraint, len(m.cons)),
		objective: append([]float64(nil), m.objective...),
		MaxNodes:  m.MaxNodes,
	}
	for i, con := range m.cons {
		c.cons[i] = Constraint{
			Name:  con.Name,
			Terms: append([]Term(nil), con.Terms...),
			Sense: con.Sense,
			RHS:   con.RHS,
		}
	}
	return c
}

// Eval 计算线性表达式在 values 处的取值
func Eval(terms []Term, values []float64) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

type Solution struct {
	Objective float64
	Values    []float64
	Nodes     int
	// Optimal 为 false 表示搜索因节点数上限提前结束，解可行但不一定最优
	Optimal bool
}

func (s *Solution) Value(v int) float64 {
	return s.Values[v]
}

func satisfied(lhs float64, sense Sense, rhs float64) bool {
	const eps = 1e-9
	switch sense {
	case LessEq:
		return lhs <= rhs+eps
	case GreaterEq:
		return lhs >= rhs-eps
	default:
		return math.Abs(lhs-rhs) <= eps
	}
}
