package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

// NATS 通过 request/reply 调用订阅了 subject 的 solve worker，请求体直接放在消息中
type NATS struct {
	conn    *nats.Conn
	subject string
}

func NewNATS(conn *nats.Conn, subject string) *NATS {
	return &NATS{conn: conn, subject: subject}
}

func (n *NATS) Invoke(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error) {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("无法编码求解请求: %v", err))
	}

	msg, err := n.conn.RequestWithContext(ctx, n.subject, data)
	if err != nil {
		switch {
		case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
			return nil, timeoutError()
		case errors.Is(err, nats.ErrNoResponders):
			return nil, domain.NewError(domain.KindProcessFailure, "没有可用的 solve worker")
		default:
			return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("请求 solve worker 失败: %v", err))
		}
	}

	resp, err := protocol.DecodeResponse(msg.Data)
	if err != nil {
		return nil, err
	}
	return resp.Result()
}
