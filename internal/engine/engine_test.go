package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

var request = &domain.SolveRequest{
	Employees: []domain.EmployeeCost{
		{Name: "Kyle", WeekdayCost: domain.CostVector{1000, 0, 20, 1000, 1000, 1000, 1000}},
		{Name: "Ana", WeekdayCost: domain.CostVector{1000, 1000, 0, 1000, 1000, 1000, 1000}},
	},
	Dates: []domain.ScheduleDate{
		{Date: "2025-06-02", Weekday: domain.Monday},
		{Date: "2025-06-03", Weekday: domain.Tuesday},
	},
}

var want = []domain.Assignment{
	{Date: "2025-06-02", Employee: "Kyle", Weekday: domain.Monday},
	{Date: "2025-06-03", Employee: "Ana", Weekday: domain.Tuesday},
}

// slowInvoker 一直阻塞到 ctx 结束
type slowInvoker struct{}

func (slowInvoker) Invoke(ctx context.Context, _ *domain.SolveRequest) ([]domain.Assignment, error) {
	<-ctx.Done()
	return nil, timeoutError()
}

func TestLocal(t *testing.T) {
	assignments, err := (&Local{}).Invoke(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, want, assignments)

	_, err = (&Local{}).Invoke(context.Background(), &domain.SolveRequest{Dates: request.Dates})
	assert.ErrorIs(t, err, domain.ErrNoEmployees)
}

func TestLocal_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Local{}).Invoke(ctx, request)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestSolve_Timeout(t *testing.T) {
	e := New(Options{Invoker: slowInvoker{}, Transport: "test", Timeout: 50 * time.Millisecond})

	started := time.Now()
	_, err := e.Solve(context.Background(), request)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Less(t, time.Since(started), 5*time.Second)
}

// countingInvoker 记录被调用的次数，返回固定的失败
type countingInvoker struct {
	calls int
}

func (c *countingInvoker) Invoke(context.Context, *domain.SolveRequest) ([]domain.Assignment, error) {
	c.calls++
	return nil, domain.NewError(domain.KindProcessFailure, "不应该被调用")
}

func TestSolve_RejectsBeforeInvoking(t *testing.T) {
	tests := []struct {
		name string
		req  *domain.SolveRequest
		want error
	}{
		{"nil request", nil, domain.ErrInvalidInput},
		{"no employees", &domain.SolveRequest{Dates: request.Dates}, domain.ErrNoEmployees},
		{"weekday mismatch", &domain.SolveRequest{
			Employees: request.Employees,
			Dates:     []domain.ScheduleDate{{Date: "2025-06-02", Weekday: domain.Friday}},
		}, domain.ErrInvalidInput},
		{"duplicate employee", &domain.SolveRequest{
			Employees: []domain.EmployeeCost{request.Employees[0], request.Employees[0]},
			Dates:     request.Dates,
		}, domain.ErrInvalidInput},
		{"negative option", &domain.SolveRequest{
			Employees: request.Employees,
			Dates:     request.Dates,
			Options:   &domain.SolveOptions{MinRestDays: -1},
		}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &countingInvoker{}
			e := New(Options{Invoker: invoker, Transport: "test"})

			_, err := e.Solve(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, invoker.calls)
		})
	}

	invoker := &countingInvoker{}
	_, err := New(Options{Invoker: invoker, Transport: "test"}).Solve(context.Background(), request)
	assert.ErrorIs(t, err, domain.ErrProcessFailure)
	assert.Equal(t, 1, invoker.calls)
}

func TestExpandDates(t *testing.T) {
	e := New(Options{})

	// 2025-06-02 是星期一，两周内去掉周末后剩 10 天
	dates, err := e.ExpandDates(&domain.SchedulePlan{
		StartDate:       "2025-06-02",
		EndDate:         "2025-06-15",
		SchedulableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	})
	require.NoError(t, err)
	require.Len(t, dates, 10)
	for _, d := range dates {
		assert.NotEqual(t, domain.Saturday, d.Weekday)
		assert.NotEqual(t, domain.Sunday, d.Weekday)
	}

	dates, err = e.ExpandDates(&domain.SchedulePlan{
		Dates:     []string{"2025-06-07", "2025-06-02"},
		StartDate: "2030-01-01",
		EndDate:   "2030-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.ScheduleDate{
		{Date: "2025-06-07", Weekday: domain.Saturday},
		{Date: "2025-06-02", Weekday: domain.Monday},
	}, dates)
}

func TestExpandDates_Errors(t *testing.T) {
	e := New(Options{Calendar: calendar.New(30)})

	tests := []struct {
		name string
		plan domain.SchedulePlan
		want error
	}{
		{"missing range", domain.SchedulePlan{StartDate: "2025-06-02"}, domain.ErrInvalidInput},
		{"reversed range", domain.SchedulePlan{StartDate: "2025-06-10", EndDate: "2025-06-02"}, domain.ErrInvalidRange},
		{"range too long", domain.SchedulePlan{StartDate: "2025-01-01", EndDate: "2025-12-31"}, domain.ErrInvalidRange},
		{"bad date", domain.SchedulePlan{StartDate: "2025-02-30", EndDate: "2025-03-02"}, domain.ErrInvalidDate},
		{"bad weekday", domain.SchedulePlan{StartDate: "2025-06-02", EndDate: "2025-06-03", SchedulableDays: []string{"Funday"}}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExpandDates(&tt.plan)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate(t *testing.T) {
	e := New(Options{})

	result, err := e.Generate(context.Background(), &domain.SchedulePlan{
		Employees: []domain.Employee{
			{Name: "Kyle", Preferences: []string{"Monday", "Wednesday"}},
			{Name: "Ana", Preferences: []string{"Tuesday", "Thursday"}},
			{Name: "Mei", Preferences: []string{"Friday"}},
		},
		StartDate:       "2025-06-02",
		EndDate:         "2025-06-15",
		SchedulableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 10)
	for _, a := range result.Assignments {
		assert.NotEqual(t, domain.Saturday, a.Weekday)
		assert.NotEqual(t, domain.Sunday, a.Weekday)
	}
	assert.Equal(t, "Kyle", result.Assignments[0].Employee)
	assert.Equal(t, "Ana", result.Assignments[1].Employee)
	assert.Equal(t, "Mei", result.Assignments[4].Employee)

	// 每个人都拿到了自己的第一、第二志愿，总代价是两个周三和两个周四的第二志愿权重
	assert.Equal(t, 80.0, result.TotalCost)
	require.Len(t, result.Summary.Employees, 3)
	assert.Equal(t, 4, result.Summary.Employees[0].Total)
	assert.Equal(t, 2, result.Summary.Employees[0].RankCounts[0])
	assert.Equal(t, 2, result.Summary.Employees[0].RankCounts[1])
}

func TestGenerate_NoEmployees(t *testing.T) {
	e := New(Options{})

	_, err := e.Generate(context.Background(), &domain.SchedulePlan{
		StartDate: "2025-06-02",
		EndDate:   "2025-06-08",
	})
	assert.ErrorIs(t, err, domain.ErrNoEmployees)
}

func TestGenerate_NoDates(t *testing.T) {
	e := New(Options{Invoker: slowInvoker{}})

	result, err := e.Generate(context.Background(), &domain.SchedulePlan{
		StartDate:       "2025-06-07",
		EndDate:         "2025-06-08",
		SchedulableDays: []string{"Monday"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Dates)
	assert.Empty(t, result.Assignments)
	assert.NotNil(t, result.Assignments)
}
