package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/lp"
)

/**
 * 附加约束（全部可选）:
 * 		1. MaxShiftsPerEmployee: 每人排班天数不超过上限
 * 		2. BalanceLoad: 每人排班天数在 floor(D/E) 和 ceil(D/E) 之间
 * 		3. MaxConsecutiveDays: 任意 k+1 个连续的自然日中最多排 k 天
 * 		4. MinRestDays: 同一人的两次排班之间至少间隔 r 天
 * 		5. RequireFirstChoice: 首选星期出现在日期中的员工至少排到一次首选
 * 		6. RequireTopChoices: 前三志愿出现在日期中的员工至少排到一次前三志愿
 */
func (s *Scheduler) addOptionConstraints(p *problem) {
	o := s.options
	m := p.model
	numDates, numEmployees := len(s.dates), len(s.employees)

	if o.MaxShiftsPerEmployee > 0 {
		for e, employee := range s.employees {
			m.AddConstraint("max_shifts["+employee.Name+"]", p.load(e), lp.LessEq, float64(o.MaxShiftsPerEmployee))
		}
	}

	if o.BalanceLoad {
		lo, hi := numDates/numEmployees, (numDates+numEmployees-1)/numEmployees
		for e, employee := range s.employees {
			if lo > 0 {
				m.AddConstraint("balance_lo["+employee.Name+"]", p.load(e), lp.GreaterEq, float64(lo))
			}
			m.AddConstraint("balance_hi["+employee.Name+"]", p.load(e), lp.LessEq, float64(hi))
		}
	}

	if k := o.MaxConsecutiveDays; k > 0 {
		for _, window := range s.consecutiveWindows(k + 1) {
			for e, employee := range s.employees {
				terms := make([]lp.Term, len(window))
				for i, d := range window {
					terms[i] = lp.Term{Var: p.x[d][e], Coef: 1}
				}
				name := fmt.Sprintf("consecutive[%s][%s]", employee.Name, s.dates[window[0]].Date)
				m.AddConstraint(name, terms, lp.LessEq, float64(k))
			}
		}
	}

	if r := o.MinRestDays; r > 0 {
		for _, pair := range s.closePairs(r) {
			for e, employee := range s.employees {
				name := fmt.Sprintf("rest[%s][%s][%s]", employee.Name, s.dates[pair[0]].Date, s.dates[pair[1]].Date)
				m.AddConstraint(name, []lp.Term{{Var: p.x[pair[0]][e], Coef: 1}, {Var: p.x[pair[1]][e], Coef: 1}}, lp.LessEq, 1)
			}
		}
	}

	if o.RequireFirstChoice {
		for e, employee := range s.employees {
			s.requireOneOf(p, e, "first_choice["+employee.Name+"]", firstChoices(employee.WeekdayCost))
		}
	}

	if o.RequireTopChoices {
		for e, employee := range s.employees {
			s.requireOneOf(p, e, "top_choices["+employee.Name+"]", topChoices(employee.WeekdayCost, topChoiceLevels))
		}
	}
}

// requireOneOf 要求员工 e 至少排到一个星期在 days 中的日期；日期中没有这样的星期时不加约束
func (s *Scheduler) requireOneOf(p *problem, e int, name string, days domain.DaySet) {
	var terms []lp.Term
	for d, sd := range s.dates {
		if days.Contains(sd.Weekday) {
			terms = append(terms, lp.Term{Var: p.x[d][e], Coef: 1})
		}
	}
	if len(terms) > 0 {
		p.model.AddConstraint(name, terms, lp.GreaterEq, 1)
	}
}

// consecutiveWindows 返回所有由 n 个连续自然日组成、且每一天都在请求中的日期组
func (s *Scheduler) consecutiveWindows(n int) [][]int {
	var windows [][]int
	for _, start := range s.days {
		window := make([]int, 0, n)
		for offset := 0; offset < n; offset++ {
			idx, ok := s.byDay[start+offset]
			if !ok {
				break
			}
			window = append(window, idx)
		}
		if len(window) == n {
			windows = append(windows, window)
		}
	}
	return windows
}

// closePairs 返回间隔不超过 r 天的日期对
func (s *Scheduler) closePairs(r int) [][2]int {
	var pairs [][2]int
	for d, day := range s.days {
		for offset := 1; offset <= r; offset++ {
			if j, ok := s.byDay[day+offset]; ok {
				pairs = append(pairs, [2]int{d, j})
			}
		}
	}
	return pairs
}
