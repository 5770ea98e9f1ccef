// Package engine 把成本模型、日历展开和求解器串成完整的排班流程，
// 并负责以不同方式（本进程、子进程、消息队列）调用求解器。
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/scheduler"
)

type Result struct {
	Dates       []domain.ScheduleDate `json:"dates"`
	Costs       []domain.EmployeeCost `json:"costs"`
	Assignments []domain.Assignment   `json:"assignments"`
	Summary     *protocol.Summary     `json:"summary"`
	TotalCost   float64               `json:"total_cost"`
}

type Engine struct {
	logger    *slog.Logger
	costs     *costmodel.Builder
	calendar  *calendar.Expander
	invoker   Invoker
	transport string
	timeout   time.Duration
}

type Options struct {
	Logger    *slog.Logger
	Costs     *costmodel.Builder
	Calendar  *calendar.Expander
	Invoker   Invoker
	Transport string
	// Timeout 为 0 时不额外设置截止时间
	Timeout time.Duration
}

func New(opts Options) *Engine {
	e := &Engine{
		logger:    opts.Logger,
		costs:     opts.Costs,
		calendar:  opts.Calendar,
		invoker:   opts.Invoker,
		transport: opts.Transport,
		timeout:   opts.Timeout,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.costs == nil {
		e.costs, _ = costmodel.New(costmodel.DefaultConfig())
	}
	if e.calendar == nil {
		e.calendar = calendar.New(0)
	}
	if e.invoker == nil {
		e.invoker = &Local{}
	}
	if e.transport == "" {
		e.transport = "local"
	}
	return e
}

func (e *Engine) CostVectors(employees []domain.Employee) ([]domain.EmployeeCost, error) {
	return e.costs.BuildAll(employees)
}

// ExpandDates 优先使用显式的日期列表，否则展开日期区间
func (e *Engine) ExpandDates(plan *domain.SchedulePlan) ([]domain.ScheduleDate, error) {
	days, err := domain.ParseDaySet(plan.SchedulableDays)
	if err != nil {
		return nil, err
	}

	if len(plan.Dates) > 0 {
		return e.calendar.FromList(plan.Dates, days)
	}
	if plan.StartDate == "" || plan.EndDate == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "必须提供开始和结束日期，或者日期列表")
	}
	return e.calendar.Expand(plan.StartDate, plan.EndDate, days)
}

// Generate 依次完成：日期展开 -> 成本向量 -> 求解 -> 统计
func (e *Engine) Generate(ctx context.Context, plan *domain.SchedulePlan) (*Result, error) {
	dates, err := e.ExpandDates(plan)
	if err != nil {
		return nil, err
	}

	if len(plan.Employees) == 0 && len(dates) > 0 {
		return nil, domain.NewError(domain.KindNoEmployees, "没有可供排班的员工")
	}

	costs, err := e.CostVectors(plan.Employees)
	if err != nil {
		return nil, err
	}

	result := &Result{Dates: dates, Costs: costs, Assignments: []domain.Assignment{}}
	if len(dates) > 0 {
		result.Assignments, err = e.Solve(ctx, &domain.SolveRequest{
			Employees: costs,
			Dates:     dates,
			Options:   plan.Options,
		})
		if err != nil {
			return nil, err
		}
	}

	result.Summary = protocol.Summarize(plan.Employees, costs, result.Assignments)
	result.TotalCost = result.Summary.TotalCost
	return result, nil
}

// Solve 直接求解一个已经物化好的请求，不做重试。请求的形状在交给求解器之前检查
func (e *Engine) Solve(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	var assignments []domain.Assignment
	err := scheduler.Check(req)
	if err == nil {
		assignments, err = e.invoker.Invoke(ctx, req)
	}
	metrics.ObserveSolve(e.transport, req, started, len(assignments), err)

	if err != nil {
		derr := domain.AsError(err)
		e.logger.Error("排班求解失败",
			slog.String("transport", e.transport),
			slog.String("kind", string(derr.Kind)),
			slog.String("error", derr.Reason),
			slog.Any("dates", derr.Dates),
		)
		return nil, derr
	}

	e.logger.Info("排班求解完成",
		slog.String("transport", e.transport),
		slog.Int("employees", len(req.Employees)),
		slog.Int("dates", len(req.Dates)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return assignments, nil
}
