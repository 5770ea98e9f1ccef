// Package costmodel 把员工对星期的排名偏好转换为七天的代价向量。
package costmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

// Config 中 Weights[i] 是第 i 名（从 0 开始）的代价，超出 Weights 长度的名次都使用最后一个权重；
// 没有出现在偏好中的星期统一使用 DefaultCost。
type Config struct {
	Weights     []float64
	DefaultCost float64
}

func DefaultConfig() Config {
	return Config{
		Weights:     []float64{0, 20, 40, 100},
		DefaultCost: 1000,
	}
}

func (c Config) Validate() error {
	if len(c.Weights) == 0 {
		return errors.New("权重表不能为空")
	}
	for i, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("第 %d 个权重不能为负数", i+1)
		}
		if i > 0 && w < c.Weights[i-1] {
			return fmt.Errorf("第 %d 个权重不能小于前一个权重", i+1)
		}
	}
	if c.DefaultCost <= c.Weights[len(c.Weights)-1] {
		return fmt.Errorf("默认代价 %v 必须大于最后一个权重 %v", c.DefaultCost, c.Weights[len(c.Weights)-1])
	}
	return nil
}

type Builder struct {
	cfg Config
}

func New(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	weights := make([]float64, len(cfg.Weights))
	copy(weights, cfg.Weights)
	cfg.Weights = weights

	return &Builder{cfg: cfg}, nil
}

func (b *Builder) Config() Config {
	return b.cfg
}

// weight 返回第 rank 名的代价
func (b *Builder) weight(rank int) float64 {
	if rank >= len(b.cfg.Weights) {
		return b.cfg.Weights[len(b.cfg.Weights)-1]
	}
	return b.cfg.Weights[rank]
}

// Build 计算单个员工的代价向量，空字符串占位但不参与计算
func (b *Builder) Build(preferences []string) (domain.CostVector, error) {
	var cost domain.CostVector
	for d := range cost {
		cost[d] = b.cfg.DefaultCost
	}

	if len(preferences) > domain.DaysPerWeek {
		return cost, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("偏好最多只能有 %d 项", domain.DaysPerWeek))
	}

	var seen domain.DaySet
	for rank, label := range preferences {
		if strings.TrimSpace(label) == "" {
			continue
		}

		day, err := domain.ParseWeekday(label)
		if err != nil {
			return cost, err
		}
		if seen.Contains(day) {
			return cost, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("偏好中 %s 重复出现", day))
		}
		seen |= domain.NewDaySet(day)

		cost[day] = b.weight(rank)
	}

	return cost, nil
}

// BuildAll 同时检查员工姓名是否为空或重复
func (b *Builder) BuildAll(employees []domain.Employee) ([]domain.EmployeeCost, error) {
	result := make([]domain.EmployeeCost, 0, len(employees))
	names := make(map[string]bool, len(employees))

	for i, e := range employees {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("第 %d 个员工的姓名为空", i+1))
		}
		if names[name] {
			return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("员工姓名 %s 重复", name))
		}
		names[name] = true

		cost, err := b.Build(e.Preferences)
		if err != nil {
			de := domain.AsError(err)
			return nil, domain.NewError(de.Kind, fmt.Sprintf("员工 %s: %s", name, de.Reason))
		}

		result = append(result, domain.EmployeeCost{
			Name:        name,
			WeekdayCost: cost,
		})
	}

	return result, nil
}

// Rank 返回 day 在偏好中的名次（从 0 开始），未排名时返回 -1
func Rank(preferences []string, day domain.Weekday) int {
	for rank, label := range preferences {
		if strings.TrimSpace(label) == "" {
			continue
		}
		d, err := domain.ParseWeekday(label)
		if err == nil && d == day {
			return rank
		}
	}
	return -1
}
