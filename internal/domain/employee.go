package domain

// Employee 的 Preferences 按偏好从高到低排列，空字符串表示该名次未填写
type Employee struct {
	Name        string   `json:"name" validate:"required"`
	Preferences []string `json:"preferences" validate:"max=7"`
}

// CostVector 按 Weekday 下标保存一周七天的代价
type CostVector [DaysPerWeek]float64

type EmployeeCost struct {
	Name        string     `json:"name"`
	WeekdayCost CostVector `json:"weekday_cost"`
}
