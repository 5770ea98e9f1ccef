package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/lp"
)

// problem 是一次建模的结果，保存变量下标以便读回解
type problem struct {
	model *lp.Model
	x     [][]int // x[d][e]：第 d 个日期是否安排给第 e 个员工

	// 仅在诊断不可行时使用：uncovered[d] > 0 表示第 d 个日期没有人
	uncovered []int
}

func (p *problem) load(e int) []lp.Term {
	terms := make([]lp.Term, len(p.x))
	for d := range p.x {
		terms[d] = lp.Term{Var: p.x[d][e], Coef: 1}
	}
	return terms
}

func (p *problem) numEmployees() int {
	if len(p.x) == 0 {
		return 0
	}
	return len(p.x[0])
}

// chosen 读出每个日期被安排的员工下标
func (p *problem) chosen(sol *lp.Solution) []int {
	out := make([]int, len(p.x))
	for d, row := range p.x {
		out[d] = -1
		for e, v := range row {
			if sol.Value(v) > 0.5 {
				out[d] = e
				break
			}
		}
	}
	return out
}

func (s *Scheduler) buildProblem(elastic bool) *problem {
	m := lp.NewModel()
	m.MaxNodes = s.maxNodes

	p := &problem{model: m, x: make([][]int, len(s.dates))}
	for d, sd := range s.dates {
		p.x[d] = make([]int, len(s.employees))
		for e, employee := range s.employees {
			p.x[d][e] = m.AddBinary(fmt.Sprintf("x[%s][%s]", sd.Date, employee.Name))
		}
	}

	// 每个日期恰好安排一人
	for d, sd := range s.dates {
		terms := make([]lp.Term, 0, len(s.employees)+1)
		for e := range s.employees {
			terms = append(terms, lp.Term{Var: p.x[d][e], Coef: 1})
		}
		if elastic {
			u := m.AddContinuous("uncovered[" + sd.Date + "]")
			p.uncovered = append(p.uncovered, u)
			terms = append(terms, lp.Term{Var: u, Coef: 1})
		}
		m.AddConstraint("cover["+sd.Date+"]", terms, lp.Equal, 1)
	}

	s.addOptionConstraints(p)
	return p
}

func (s *Scheduler) costTerms(p *problem) []lp.Term {
	terms := make([]lp.Term, 0, len(s.dates)*len(s.employees))
	for d, sd := range s.dates {
		for e, employee := range s.employees {
			terms = append(terms, lp.Term{Var: p.x[d][e], Coef: employee.WeekdayCost[sd.Weekday]})
		}
	}
	return terms
}

// tieBreakTerms 让排在前面的员工在代价相同时优先
func (s *Scheduler) tieBreakTerms(p *problem) []lp.Term {
	terms := make([]lp.Term, 0, len(s.dates)*len(s.employees))
	for d := range s.dates {
		for e := range s.employees {
			if e == 0 {
				continue
			}
			terms = append(terms, lp.Term{Var: p.x[d][e], Coef: float64(e)})
		}
	}
	return terms
}

func addLoadCap(p *problem, limit int) {
	for e := 0; e < p.numEmployees(); e++ {
		p.model.AddConstraint(fmt.Sprintf("load_cap[%d]", e), p.load(e), lp.LessEq, float64(limit))
	}
}

/**
 * spreadTerms 为每个员工引入 limit 个连续的阶梯变量 step[e][k] ∈ [0, 1]，满足
 * 		Σ_k step[e][k] = load(e)
 * 第 k 级的系数为 k。系数递增，所以最小化时阶梯总是从低到高依次填满，
 * 目标值等于 Σ_e load(e)(load(e)+1)/2，总量固定时它与工作量的方差只差一个常数。
 */
func spreadTerms(p *problem, limit int) []lp.Term {
	m := p.model
	terms := make([]lp.Term, 0, p.numEmployees()*limit)

	for e := 0; e < p.numEmployees(); e++ {
		row := p.load(e)
		for i := range row {
			row[i].Coef = -1
		}
		for k := 1; k <= limit; k++ {
			step := m.AddContinuous(fmt.Sprintf("step[%d][%d]", e, k))
			m.AddConstraint(fmt.Sprintf("step_ub[%d][%d]", e, k), []lp.Term{{Var: step, Coef: 1}}, lp.LessEq, 1)
			row = append(row, lp.Term{Var: step, Coef: 1})
			terms = append(terms, lp.Term{Var: step, Coef: float64(k)})
		}
		m.AddConstraint(fmt.Sprintf("spread[%d]", e), row, lp.Equal, 0)
	}

	return terms
}
