package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

// RedisArea 把请求和响应存放在 redis 中，key 形如 <prefix>:<uuid>:request
type RedisArea struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisArea(client *redis.Client, prefix string, ttl time.Duration) *RedisArea {
	if prefix == "" {
		prefix = "schedule"
	}
	return &RedisArea{client: client, prefix: prefix, ttl: ttl}
}

func (a *RedisArea) Open(_ context.Context) (Slot, error) {
	key := fmt.Sprintf("%s:%s", a.prefix, uuid.NewString())
	return &RedisSlot{area: a, key: key, owner: true}, nil
}

func (a *RedisArea) Attach(ctx context.Context, key string) (Slot, error) {
	n, err := a.client.Exists(ctx, key+":request").Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return &RedisSlot{area: a, key: key}, nil
}

type RedisSlot struct {
	area  *RedisArea
	key   string
	owner bool
}

func (s *RedisSlot) Key() string {
	return s.key
}

func (s *RedisSlot) WriteRequest(ctx context.Context, req *domain.SolveRequest) error {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	return s.area.client.Set(ctx, s.key+":request", data, s.area.ttl).Err()
}

func (s *RedisSlot) ReadRequest(ctx context.Context) (*domain.SolveRequest, error) {
	data, err := s.get(ctx, s.key+":request")
	if err != nil {
		return nil, err
	}
	return protocol.DecodeRequest(data)
}

func (s *RedisSlot) WriteResponse(ctx context.Context, resp *protocol.Response) error {
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		return err
	}
	return s.area.client.Set(ctx, s.key+":response", data, s.area.ttl).Err()
}

func (s *RedisSlot) ReadResponse(ctx context.Context) (*protocol.Response, error) {
	data, err := s.get(ctx, s.key+":response")
	if err != nil {
		return nil, err
	}
	return protocol.DecodeResponse(data)
}

func (s *RedisSlot) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.area.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *RedisSlot) Close() error {
	if !s.owner {
		return nil
	}
	// 调用方的 ctx 可能已经超时，清理时使用独立的 ctx
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.area.client.Del(ctx, s.key+":request", s.key+":response").Err()
}
