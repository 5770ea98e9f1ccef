// Package exchange 提供一次求解调用专用的临时交换区：调用方写入请求、求解方写回响应，
// 调用结束后由打开者负责清理。
package exchange

import (
	"context"
	"errors"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

// ErrNotFound 表示交换区中没有对应的数据（不存在或已过期）
var ErrNotFound = errors.New("exchange: entry not found")

type Slot interface {
	Key() string
	WriteRequest(ctx context.Context, req *domain.SolveRequest) error
	ReadRequest(ctx context.Context) (*domain.SolveRequest, error)
	WriteResponse(ctx context.Context, resp *protocol.Response) error
	ReadResponse(ctx context.Context) (*protocol.Response, error)
	// Close 只有通过 Open 得到的 Slot 才会真正删除数据
	Close() error
}

type Area interface {
	// Open 为一次调用创建独占的 Slot，key 保证唯一
	Open(ctx context.Context) (Slot, error)
	// Attach 供求解方根据 key 访问调用方创建的 Slot
	Attach(ctx context.Context, key string) (Slot, error)
}

// Ticket 是通过消息队列传递的凭据，只包含 Slot 的 key
type Ticket struct {
	Key string `json:"key"`
}
