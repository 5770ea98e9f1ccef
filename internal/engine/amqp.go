package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
)

// DirectReplyTo 是 RabbitMQ 内置的伪队列，用于 RPC 的回复
const DirectReplyTo = "amq.rabbitmq.reply-to"

// Channel 是 *amqp.Channel 中用到的部分
type Channel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

/**
 * AMQP 通过 RabbitMQ 把请求交给远端的 solve worker:
 * 		1. 请求体写入交换区（redis），消息里只带 key
 * 		2. 消息的 ReplyTo 为 direct reply-to，CorrelationId 为随机 uuid
 * 		3. 收到 CorrelationId 匹配的回复后从交换区读取响应
 */
type AMQP struct {
	open  func() (Channel, error)
	queue string
	area  exchange.Area
}

func NewAMQP(conn *amqp.Connection, queue string, area exchange.Area) *AMQP {
	return NewAMQPWithOpener(func() (Channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}, queue, area)
}

func NewAMQPWithOpener(open func() (Channel, error), queue string, area exchange.Area) *AMQP {
	return &AMQP{open: open, queue: queue, area: area}
}

func (a *AMQP) Invoke(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error) {
	slot, err := a.area.Open(ctx)
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法创建交换区: %v", err))
	}
	defer slot.Close()

	if err := slot.WriteRequest(ctx, req); err != nil {
		return nil, a.failure(ctx, "无法写入求解请求", err)
	}

	ch, err := a.open()
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法创建通道: %v", err))
	}
	defer ch.Close()

	// direct reply-to 要求先以 autoAck 模式消费，再发布消息
	replies, err := ch.Consume(DirectReplyTo, "", true, false, false, false, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法订阅回复队列: %v", err))
	}

	correlationID := uuid.NewString()
	msg, err := newPublishing(ctx, slot.Key(), correlationID)
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, err.Error())
	}
	if err := ch.PublishWithContext(ctx, "", a.queue, false, false, msg); err != nil {
		return nil, a.failure(ctx, "无法发送求解请求", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, timeoutError()
		case d, ok := <-replies:
			if !ok {
				return nil, domain.NewError(domain.KindProcessFailure, "回复通道已关闭")
			}
			if d.CorrelationId != correlationID {
				continue
			}
			resp, err := slot.ReadResponse(ctx)
			if err != nil {
				return nil, a.failure(ctx, "无法读取求解结果", err)
			}
			return resp.Result()
		}
	}
}

func (a *AMQP) failure(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return timeoutError()
	}
	return domain.NewError(domain.KindProcessFailure, fmt.Sprintf("%s: %v", msg, err))
}

// newPublishing 在有截止时间时设置消息的过期时间，过期的请求不会再被 worker 处理
func newPublishing(ctx context.Context, key, correlationID string) (amqp.Publishing, error) {
	body, err := json.Marshal(exchange.Ticket{Key: key})
	if err != nil {
		return amqp.Publishing{}, err
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       DirectReplyTo,
		MessageId:     key,
		Timestamp:     time.Now(),
		Body:          body,
	}
	if deadline, ok := ctx.Deadline(); ok {
		ms := max(time.Until(deadline).Milliseconds(), 1)
		msg.Expiration = strconv.FormatInt(ms, 10)
	}
	return msg, nil
}
