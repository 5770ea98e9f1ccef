package engine

import (
	"context"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/scheduler"
)

// Invoker 负责把求解请求交给求解器并取回结果，不同实现对应不同的隔离方式
type Invoker interface {
	Invoke(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error)
}

// Local 在本进程中求解
type Local struct {
	MaxNodes int
}

func (l *Local) Invoke(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error) {
	s, err := scheduler.New(req)
	if err != nil {
		return nil, err
	}
	s.SetMaxNodes(l.MaxNodes)

	type result struct {
		assignments []domain.Assignment
		err         error
	}
	done := make(chan result, 1)

	go func() {
		assignments, err := s.Schedule(ctx)
		done <- result{assignments, err}
	}()

	// 截止时间一到立即返回，不等待求解器退出
	select {
	case <-ctx.Done():
		return nil, timeoutError()
	case r := <-done:
		return r.assignments, r.err
	}
}

func timeoutError() error {
	return domain.NewError(domain.KindTimeout, "求解超时")
}
