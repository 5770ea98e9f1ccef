package protocol

import (
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

// EmployeeSummary 统计一个员工排到的日期分别落在第几志愿
type EmployeeSummary struct {
	Name       string  `json:"name"`
	RankCounts []int   `json:"rank_counts"` // 下标 i 对应第 i+1 志愿
	Unranked   int     `json:"unranked"`
	Total      int     `json:"total"`
	Cost       float64 `json:"cost"`
}

type Summary struct {
	Employees []EmployeeSummary `json:"employees"`
	TotalCost float64           `json:"total_cost"`
}

// Summarize 的 employees 和 costs 按同一顺序排列
func Summarize(employees []domain.Employee, costs []domain.EmployeeCost, assignments []domain.Assignment) *Summary {
	summary := &Summary{Employees: make([]EmployeeSummary, len(employees))}
	index := make(map[string]int, len(employees))

	for i := range employees {
		summary.Employees[i] = EmployeeSummary{
			Name:       costs[i].Name,
			RankCounts: make([]int, domain.DaysPerWeek),
		}
		index[costs[i].Name] = i
	}

	for _, a := range assignments {
		i, ok := index[a.Employee]
		if !ok {
			continue
		}
		es := &summary.Employees[i]

		if rank := costmodel.Rank(employees[i].Preferences, a.Weekday); rank >= 0 {
			es.RankCounts[rank]++
		} else {
			es.Unranked++
		}
		es.Total++

		cost := costs[i].WeekdayCost[a.Weekday]
		es.Cost += cost
		summary.TotalCost += cost
	}

	return summary
}
