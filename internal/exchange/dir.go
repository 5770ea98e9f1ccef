package exchange

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

const (
	RequestFile  = "input.json"
	ResponseFile = "output.json"
)

// DirArea 每次调用创建一个临时目录
type DirArea struct {
	root string
}

// NewDirArea 的 root 为空时使用系统临时目录
func NewDirArea(root string) *DirArea {
	return &DirArea{root: root}
}

func (a *DirArea) Root() string {
	return a.root
}

func (a *DirArea) Open(ctx context.Context) (Slot, error) {
	return a.OpenDir(ctx)
}

// OpenDir 与 Open 相同，但返回具体类型，方便子进程调用方拿到文件路径
func (a *DirArea) OpenDir(_ context.Context) (*DirSlot, error) {
	if a.root != "" {
		if err := os.MkdirAll(a.root, 0o755); err != nil {
			return nil, fmt.Errorf("无法创建交换区根目录: %w", err)
		}
	}

	dir, err := os.MkdirTemp(a.root, "schedule-*")
	if err != nil {
		return nil, fmt.Errorf("无法创建临时目录: %w", err)
	}
	return &DirSlot{dir: dir, owner: true}, nil
}

func (a *DirArea) Attach(_ context.Context, key string) (Slot, error) {
	info, err := os.Stat(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s 不是目录", key)
	}
	return &DirSlot{dir: key}, nil
}

type DirSlot struct {
	dir   string
	owner bool
}

func (s *DirSlot) Key() string {
	return s.dir
}

func (s *DirSlot) RequestPath() string {
	return filepath.Join(s.dir, RequestFile)
}

func (s *DirSlot) ResponsePath() string {
	return filepath.Join(s.dir, ResponseFile)
}

func (s *DirSlot) WriteRequest(_ context.Context, req *domain.SolveRequest) error {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	return os.WriteFile(s.RequestPath(), data, 0o600)
}

func (s *DirSlot) ReadRequest(_ context.Context) (*domain.SolveRequest, error) {
	data, err := readFile(s.RequestPath())
	if err != nil {
		return nil, err
	}
	return protocol.DecodeRequest(data)
}

func (s *DirSlot) WriteResponse(_ context.Context, resp *protocol.Response) error {
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		return err
	}
	return os.WriteFile(s.ResponsePath(), data, 0o600)
}

func (s *DirSlot) ReadResponse(_ context.Context) (*protocol.Response, error) {
	data, err := readFile(s.ResponsePath())
	if err != nil {
		return nil, err
	}
	return protocol.DecodeResponse(data)
}

func (s *DirSlot) Close() error {
	if !s.owner {
		return nil
	}
	return os.RemoveAll(s.dir)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}
