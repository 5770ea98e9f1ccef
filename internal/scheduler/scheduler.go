package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/lp"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/utils"
)

type Scheduler struct {
	req       *domain.SolveRequest
	employees []domain.EmployeeCost
	dates     []domain.ScheduleDate
	options   domain.SolveOptions

	days      []int       // 每个日期对应的天序号
	byDay     map[int]int // 天序号 -> 日期下标
	maxNodes  int
	truncated bool // 某个阶段因节点数上限提前结束
}

// Check 在建模之前拦下不可能求解的请求，远程求解时调用方也会先调用它
func Check(req *domain.SolveRequest) error {
	if req == nil {
		return domain.NewError(domain.KindInvalidInput, "求解请求为空")
	}
	if len(req.Employees) == 0 && len(req.Dates) > 0 {
		return domain.NewError(domain.KindNoEmployees, "没有可供排班的员工")
	}
	return utils.ValidateSolveRequest(req)
}

func New(req *domain.SolveRequest) (*Scheduler, error) {
	if err := Check(req); err != nil {
		return nil, err
	}

	s := &Scheduler{
		req:       req,
		employees: req.Employees,
		dates:     req.Dates,
		days:      make([]int, len(req.Dates)),
		byDay:     make(map[int]int, len(req.Dates)),
	}
	if req.Options != nil {
		s.options = *req.Options
	}

	for i, sd := range req.Dates {
		// 日期在 ValidateSolveRequest 中已经校验过
		t, _ := calendar.ParseDate(sd.Date)
		s.days[i] = calendar.DayNumber(t)
		s.byDay[s.days[i]] = i
	}

	return s, nil
}

// SetMaxNodes 限制分支定界的节点数，0 表示使用默认值
func (s *Scheduler) SetMaxNodes(n int) {
	s.maxNodes = n
}

// Schedule 返回按请求日期顺序排列的排班结果
func (s *Scheduler) Schedule(ctx context.Context) ([]domain.Assignment, error) {
	s.truncated = false
	chosen, err := s.Solve(ctx)
	if err != nil {
		return nil, err
	}

	assignments := protocol.Format(s.dates, chosen, s.employees)

	// 检查一下结果是否满足约束条件
	if err := utils.ValidateAssignments(s.req, assignments); err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, err.Error())
	}
	if err := utils.ValidateAssignmentsWithOptions(s.req, assignments); err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, err.Error())
	}

	return assignments, nil
}

/**
 * Solve 按字典序依次优化:
 * 		1. 总代价最小
 * 		2. 开启 Fairness 时，在总代价最小的前提下先让最大工作量最小，
 * 		   再让工作量的平方和最小，代价相同的日期因此会交给排班较少的员工
 * 		3. 在前面的目标都不变的前提下，让排在前面的员工优先（保证结果确定）
 */
func (s *Scheduler) Solve(ctx context.Context) ([]int, error) {
	if len(s.dates) == 0 {
		return []int{}, nil
	}

	p := s.buildProblem(false)
	costTerms := s.costTerms(p)

	p.model.SetObjective(costTerms)
	sol, err := s.solvePhase(ctx, p, "cost")
	if err != nil {
		return nil, s.solveError(ctx, err)
	}
	best := sol.Objective
	p.model.AddConstraint("cost_optimal", costTerms, lp.LessEq, best+costTol(best))

	if s.options.Fairness {
		limit, err := s.minimaxLoad(ctx, p, maxLoad(p.chosen(sol), len(s.employees)))
		if err != nil {
			return nil, s.solveError(ctx, err)
		}
		addLoadCap(p, limit)

		spread := spreadTerms(p, limit)
		p.model.SetObjective(spread)
		sol, err := s.solvePhase(ctx, p, "spread")
		if err != nil {
			return nil, s.solveError(ctx, err)
		}
		p.model.AddConstraint("spread_optimal", spread, lp.LessEq, sol.Objective+costTol(sol.Objective))
	}

	p.model.SetObjective(s.tieBreakTerms(p))
	sol, err = s.solvePhase(ctx, p, "tie_break")
	if err != nil {
		return nil, s.solveError(ctx, err)
	}

	return p.chosen(sol), nil
}

// Optimal 报告上一次求解的每个阶段是否都证明了最优性
func (s *Scheduler) Optimal() bool {
	return !s.truncated
}

// solvePhase 在节点数用尽时仍然接受已有的整数解，但会记录下来
func (s *Scheduler) solvePhase(ctx context.Context, p *problem, phase string) (*lp.Solution, error) {
	sol, err := p.model.Solve(ctx)
	if err != nil {
		return nil, err
	}
	if !sol.Optimal {
		s.truncated = true
		slog.Warn("分支定界的节点数达到上限，使用当前最好的解",
			slog.String("phase", phase),
			slog.Int("nodes", sol.Nodes),
			slog.Float64("objective", sol.Objective),
		)
	}
	return sol, nil
}

// minimaxLoad 二分查找在当前约束下可行的最小工作量上限，upper 一定可行
func (s *Scheduler) minimaxLoad(ctx context.Context, p *problem, upper int) (int, error) {
	numDates, numEmployees := len(s.dates), len(s.employees)
	lo, hi := (numDates+numEmployees-1)/numEmployees, upper

	for lo < hi {
		mid := (lo + hi) / 2

		trial := &problem{model: p.model.Clone(), x: p.x}
		trial.model.SetObjective(nil)
		addLoadCap(trial, mid)

		_, err := trial.model.Solve(ctx)
		switch {
		case err == nil:
			hi = mid
		case errors.Is(err, lp.ErrInfeasible):
			lo = mid + 1
		default:
			return 0, err
		}
	}

	return hi, nil
}

func (s *Scheduler) solveError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.NewError(domain.KindTimeout, "求解超时")
	case errors.Is(err, lp.ErrNodeLimit):
		return domain.NewError(domain.KindTimeout, "分支定界的节点数达到上限")
	case errors.Is(err, lp.ErrInfeasible):
		return s.diagnose(ctx)
	default:
		return domain.NewError(domain.KindProcessFailure, fmt.Sprintf("求解失败: %v", err))
	}
}

// diagnose 允许日期空缺后重新求解，找出无法安排的日期
func (s *Scheduler) diagnose(ctx context.Context) error {
	p := s.buildProblem(true)

	terms := make([]lp.Term, len(p.uncovered))
	for i, u := range p.uncovered {
		terms[i] = lp.Term{Var: u, Coef: 1}
	}
	p.model.SetObjective(terms)

	sol, err := p.model.Solve(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.NewError(domain.KindTimeout, "求解超时")
		}
		return domain.NewError(domain.KindInfeasible, "附加约束之间相互冲突，无法得到可行的排班")
	}

	e := domain.NewError(domain.KindInfeasible, "在当前约束下以下日期无人可排")
	for d, u := range p.uncovered {
		if sol.Value(u) > 0.5 {
			e.Dates = append(e.Dates, s.dates[d].Date)
		}
	}
	if len(e.Dates) == 0 {
		e.Reason = "附加约束之间相互冲突，无法得到可行的排班"
	}
	return e
}
