// Package worker 实现独立部署的 solve worker：从消息队列接收求解请求，求解后回复。
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/scheduler"
)

type Worker struct {
	logger   *slog.Logger
	area     exchange.Area
	timeout  time.Duration
	maxNodes int
}

// New 的 area 只在通过 RabbitMQ 接收请求时使用
func New(logger *slog.Logger, area exchange.Area, timeout time.Duration, maxNodes int) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{logger: logger, area: area, timeout: timeout, maxNodes: maxNodes}
}

// Handle 求解一个请求，失败也会返回一个带错误记录的响应
func (w *Worker) Handle(ctx context.Context, transport string, req *domain.SolveRequest) *protocol.Response {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	started := time.Now()
	var assignments []domain.Assignment

	s, err := scheduler.New(req)
	if err == nil {
		s.SetMaxNodes(w.maxNodes)
		assignments, err = s.Schedule(ctx)
	}
	metrics.ObserveSolve(transport, req, started, len(assignments), err)

	if err != nil {
		derr := domain.AsError(err)
		w.logger.Error("求解失败",
			slog.String("transport", transport),
			slog.String("kind", string(derr.Kind)),
			slog.String("error", derr.Reason),
		)
		return protocol.Failure(derr)
	}

	w.logger.Info("求解完成",
		slog.String("transport", transport),
		slog.Int("dates", len(assignments)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return protocol.Success(assignments)
}
