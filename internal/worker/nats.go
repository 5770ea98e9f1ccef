package worker

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

// SubscribeNATS 以队列组的方式订阅 subject，多个 worker 之间自动负载均衡
func (w *Worker) SubscribeNATS(ctx context.Context, nc *nats.Conn, subject, queue string) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var resp *protocol.Response

		req, err := protocol.DecodeRequest(msg.Data)
		if err != nil {
			metrics.WorkerMessagesTotal.WithLabelValues("nats", "malformed").Inc()
			resp = protocol.Failure(err)
		} else {
			resp = w.Handle(ctx, "nats", req)
			metrics.WorkerMessagesTotal.WithLabelValues("nats", string(resp.Status)).Inc()
		}

		data, err := protocol.EncodeResponse(resp)
		if err != nil {
			w.logger.Error("无法编码求解结果", slog.String("error", err.Error()))
			return
		}
		if err := msg.Respond(data); err != nil {
			w.logger.Error("无法回复调用方", slog.String("error", err.Error()))
		}
	})
}

// ServeNATS 阻塞直到 ctx 被取消，退出前把已经收到的消息处理完
func (w *Worker) ServeNATS(ctx context.Context, nc *nats.Conn, subject, queue string) error {
	sub, err := w.SubscribeNATS(ctx, nc, subject, queue)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return sub.Drain()
}
