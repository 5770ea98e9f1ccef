// Package metrics 定义排班引擎的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

// Registry 是本服务专用的 registry，不混入默认的 Go 运行时指标
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// SolveDurationSeconds 按调用方式统计一次求解的耗时
var SolveDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "shift_assigner",
	Name:      "solve_duration_seconds",
	Help:      "Time taken to solve one assignment request",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
}, []string{"transport"})

var SolveFailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shift_assigner",
	Name:      "solve_failures_total",
	Help:      "Failed solve requests by error kind",
}, []string{"transport", "kind"})

var AssignedDatesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "shift_assigner",
	Name:      "assigned_dates_total",
	Help:      "Total number of dates assigned to an employee",
})

var RequestEmployees = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shift_assigner",
	Name:      "request_employees",
	Help:      "Number of employees per solve request",
	Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
})

var RequestDates = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shift_assigner",
	Name:      "request_dates",
	Help:      "Number of dates per solve request",
	Buckets:   []float64{1, 7, 14, 31, 62, 93, 186, 366, 731},
})

var WorkerMessagesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shift_assigner",
	Name:      "worker_messages_total",
	Help:      "Messages handled by the solve worker by outcome",
}, []string{"transport", "outcome"})

// ObserveSolve 在每次求解结束时调用
func ObserveSolve(transport string, req *domain.SolveRequest, started time.Time, assigned int, err error) {
	SolveDurationSeconds.WithLabelValues(transport).Observe(time.Since(started).Seconds())
	if req != nil {
		RequestEmployees.Observe(float64(len(req.Employees)))
		RequestDates.Observe(float64(len(req.Dates)))
	}
	if err != nil {
		SolveFailuresTotal.WithLabelValues(transport, string(domain.KindOf(err))).Inc()
		return
	}
	AssignedDatesTotal.Add(float64(assigned))
}
