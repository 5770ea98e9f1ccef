package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

const SolveQueue = "solve_queue"

// Publisher 是 *amqp.Channel 中用来回复的部分
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Channel interface {
	Publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// DeclareQueue 声明持久化的求解队列
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}

// ServeAMQP 阻塞地消费队列中的消息，直到 ctx 被取消
func (w *Worker) ServeAMQP(ctx context.Context, ch Channel, queue string) error {
	msgs, err := ch.Consume(
		queue, // 队列
		"",    // 消费者标识，由 RabbitMQ 自动分配
		false, // 手动确认
		false, // 是否独占队列
		false, // RabbitMQ 不支持 noLocal
		false, // 是否不等待
		nil,   // 额外参数
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("消息通道已关闭")
			}
			w.handleDelivery(ctx, ch, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, pub Publisher, d amqp.Delivery) {
	var ticket exchange.Ticket
	if err := json.Unmarshal(d.Body, &ticket); err != nil || ticket.Key == "" {
		w.logger.Error("消息格式错误", slog.String("body", string(d.Body)))
		metrics.WorkerMessagesTotal.WithLabelValues("amqp", "malformed").Inc()
		_ = d.Nack(false, false)
		return
	}

	slot, err := w.area.Attach(ctx, ticket.Key)
	if err != nil {
		// 请求已过期或已被调用方清理，没有必要重试
		w.logger.Error("无法读取交换区", slog.String("key", ticket.Key), slog.String("error", err.Error()))
		metrics.WorkerMessagesTotal.WithLabelValues("amqp", "expired").Inc()
		_ = d.Nack(false, false)
		return
	}
	defer slot.Close()

	var resp *protocol.Response
	req, err := slot.ReadRequest(ctx)
	if err != nil {
		resp = protocol.Failure(err)
	} else {
		resp = w.Handle(ctx, "amqp", req)
	}

	if err := slot.WriteResponse(ctx, resp); err != nil {
		w.logger.Error("无法写回求解结果", slog.String("key", ticket.Key), slog.String("error", err.Error()))
		metrics.WorkerMessagesTotal.WithLabelValues("amqp", "write_failed").Inc()
		_ = d.Nack(false, true) // 重新入队
		return
	}

	if d.ReplyTo != "" {
		err := pub.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          d.Body,
		})
		if err != nil {
			w.logger.Error("无法回复调用方", slog.String("reply_to", d.ReplyTo), slog.String("error", err.Error()))
		}
	}

	metrics.WorkerMessagesTotal.WithLabelValues("amqp", string(resp.Status)).Inc()
	_ = d.Ack(false)
}
