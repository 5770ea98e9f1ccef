// Package solvecmd 实现子进程形式的求解器命令行。
//
// 约定：成功时把响应写入 OUTPUT 并以 0 退出；失败时把一行 JSON 错误记录写到 stderr
// 并以非 0 退出。调用方只依赖退出码、OUTPUT 文件和 stderr 的最后一行。
package solvecmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/scheduler"
)

// Execute 运行命令并返回进程退出码
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		data, _ := json.Marshal(protocol.NewErrorRecord(err))
		fmt.Fprintln(stderr, string(data))
		return 1
	}
	return 0
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "solve",
		Short:         "Preference-weighted shift assignment solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newCostCmd(),
	)

	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return domain.NewError(domain.KindInvalidInput, fmt.Sprintf("需要 %d 个参数，实际为 %d 个", n, len(args)))
		}
		return nil
	}
}

func newRunCmd() *cobra.Command {
	var (
		timeout     time.Duration
		maxNodes    int
		pushGateway string
	)

	cmd := &cobra.Command{
		Use:   "run INPUT OUTPUT",
		Short: "Solve the request in INPUT and write the assignment to OUTPUT",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			started := time.Now()
			req, assignments, err := solveFile(ctx, args[0], maxNodes)
			metrics.ObserveSolve("process", req, started, len(assignments), err)
			if pushGateway != "" {
				// 推送失败不影响求解结果
				_ = push.New(pushGateway, "shift_solve").Gatherer(metrics.Registry).Push()
			}
			if err != nil {
				return err
			}

			data, err := protocol.EncodeResponse(protocol.Success(assignments))
			if err != nil {
				return domain.NewError(domain.KindProcessFailure, err.Error())
			}
			if err := os.WriteFile(args[1], data, 0o600); err != nil {
				return domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法写入结果文件: %v", err))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = no limit)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "branch and bound node limit (0 = default)")
	cmd.Flags().StringVar(&pushGateway, "push-gateway", "", "Prometheus Pushgateway URL for solve metrics")

	return cmd
}

func solveFile(ctx context.Context, path string, maxNodes int) (*domain.SolveRequest, []domain.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("无法读取请求文件: %v", err))
	}

	req, err := protocol.DecodeRequest(data)
	if err != nil {
		return nil, nil, err
	}

	s, err := scheduler.New(req)
	if err != nil {
		return req, nil, err
	}
	s.SetMaxNodes(maxNodes)

	assignments, err := s.Schedule(ctx)
	return req, assignments, err
}

func newCostCmd() *cobra.Command {
	cfg := costmodel.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "cost FILE",
		Short: "Print the weekday cost vectors for the employees in FILE (- for stdin)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return domain.NewError(domain.KindInvalidInput, fmt.Sprintf("无法读取文件: %v", err))
				}
				defer f.Close()
				in = f
			}

			var employees []domain.Employee
			if err := json.NewDecoder(in).Decode(&employees); err != nil {
				return domain.NewError(domain.KindInvalidInput, fmt.Sprintf("员工列表格式错误: %v", err))
			}

			b, err := costmodel.New(cfg)
			if err != nil {
				return domain.NewError(domain.KindInvalidInput, err.Error())
			}
			costs, err := b.BuildAll(employees)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(costs)
		},
	}

	cmd.Flags().Float64SliceVar(&cfg.Weights, "weights", cfg.Weights, "cost per preference rank, best first")
	cmd.Flags().Float64Var(&cfg.DefaultCost, "default-cost", cfg.DefaultCost, "cost of a weekday the employee did not rank")

	return cmd
}
