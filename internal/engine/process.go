package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

/**
 * Process 在独立的子进程中求解:
 * 		1. 在临时目录中写入 input.json
 * 		2. 执行 `<Binary> <Args...> run input.json output.json --timeout <剩余时间> [--max-nodes N]`
 * 		3. 退出码为 0 时读取 output.json；否则从 stderr 的最后一行解析错误记录
 * 临时目录无论成功与否都会被删除
 */
type Process struct {
	Binary string
	Args   []string
	Env    []string
	Area   *exchange.DirArea
	// MaxNodes 为 0 时由子进程使用默认值
	MaxNodes int
}

func (p *Process) Invoke(ctx context.Context, req *domain.SolveRequest) ([]domain.Assignment, error) {
	slot, err := p.Area.OpenDir(ctx)
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, err.Error())
	}
	defer slot.Close()

	if err := slot.WriteRequest(ctx, req); err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法写入求解请求: %v", err))
	}

	args := append(slices.Clone(p.Args), "run", slot.RequestPath(), slot.ResponsePath())
	if deadline, ok := ctx.Deadline(); ok {
		args = append(args, "--timeout", time.Until(deadline).Round(time.Millisecond).String())
	}
	if p.MaxNodes > 0 {
		args = append(args, "--max-nodes", strconv.Itoa(p.MaxNodes))
	}

	cmd := exec.CommandContext(ctx, p.Binary, args...)
	cmd.Env = append(os.Environ(), p.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() != nil {
		return nil, timeoutError()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法启动求解进程: %v", err))
		}
		if record, perr := protocol.DecodeErrorRecord(lastLine(stderr.Bytes())); perr == nil {
			return nil, record.Err()
		}
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("求解进程异常退出 (exit code %d): %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
	}

	resp, err := slot.ReadResponse(ctx)
	if err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法读取求解结果: %v", err))
	}
	return resp.Result()
}

func lastLine(data []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	return lines[len(lines)-1]
}
