package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/engine"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var weeks int
	var file string
	var start, end, days string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 生成随机排班计划, 2: 从名单 CSV 生成排班计划, 3: 从名单 CSV 生成并直接求解)")
	flag.IntVar(&n, "n", 0, "随机生成的员工数量，为 0 时使用 SEED_EMPLOYEE_COUNT")
	flag.IntVar(&weeks, "weeks", 2, "随机排班计划持续的周数")
	flag.StringVar(&file, "file", "", "名单 CSV 文件路径")
	flag.StringVar(&start, "start", "", "开始日期 (YYYY-MM-DD)")
	flag.StringVar(&end, "end", "", "结束日期 (YYYY-MM-DD)")
	flag.StringVar(&days, "days", "", "可排班的星期，用逗号分隔，为空表示全部")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var schedulableDays []string
	if days != "" {
		schedulableDays = strings.Split(days, ",")
	}

	// 执行操作
	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			n = cfg.Seed.EmployeeCount
		}
		if n <= 0 || weeks <= 0 {
			logger.Error("请输入合法的员工数量和周数")
			return
		}

		plan := utils.GenerateRandomSchedulePlan(n, weeks)
		writeJSON(logger, plan)
		logger.Info("生成随机排班计划成功", slog.Int("employees", n), slog.String("start_date", plan.StartDate), slog.String("end_date", plan.EndDate))
	case 2, 3:
		if file == "" || start == "" || end == "" {
			logger.Error("请指定名单文件、开始日期和结束日期")
			return
		}

		plan, err := seed.PlanFromRoster(file, start, end, schedulableDays)
		if err != nil {
			logger.Error("无法读取名单", slog.String("error", err.Error()))
			return
		}
		logger.Info("读取名单成功", slog.Int("employees", len(plan.Employees)))

		if op == 2 {
			writeJSON(logger, plan)
			return
		}

		costs, err := costmodel.New(costmodel.Config{Weights: cfg.Cost.Weights, DefaultCost: cfg.Cost.DefaultCost})
		if err != nil {
			logger.Error("成本模型配置有误", slog.String("error", err.Error()))
			return
		}

		eng := engine.New(engine.Options{
			Logger:   logger,
			Costs:    costs,
			Calendar: calendar.New(cfg.Engine.MaxDateSpan),
			Invoker:  &engine.Local{MaxNodes: cfg.Engine.MaxNodes},
			Timeout:  time.Duration(cfg.Engine.SolveTimeout) * time.Second,
		})

		result, err := eng.Generate(context.Background(), plan)
		if err != nil {
			derr := domain.AsError(err)
			logger.Error("排班失败", slog.String("kind", string(derr.Kind)), slog.String("error", derr.Reason), slog.Any("dates", derr.Dates))
			os.Exit(1)
		}
		writeJSON(logger, result)
	default:
		logger.Error("指定的操作非法")
	}
}

func writeJSON(logger *slog.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("无法输出结果", slog.String("error", err.Error()))
	}
}
