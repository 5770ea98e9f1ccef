package domain

// SchedulePlan 是一次排班的完整输入：员工的偏好 + 日期区间（或日期列表）+ 可排班的星期
type SchedulePlan struct {
	Employees []Employee `json:"employees" validate:"dive"`

	// StartDate/EndDate 与 Dates 二选一，同时给出时以 Dates 为准
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Dates     []string `json:"dates"`

	// SchedulableDays 为空表示一周七天都可以排班
	SchedulableDays []string      `json:"schedulable_days" validate:"max=7"`
	Options         *SolveOptions `json:"options,omitempty"`
}
