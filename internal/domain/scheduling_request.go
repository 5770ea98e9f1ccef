package domain

type ScheduleDate struct {
	Date    string  `json:"date"`
	Weekday Weekday `json:"weekday"`
}

// SolveOptions 中的约束默认全部关闭，零值表示不限制
type SolveOptions struct {
	MaxShiftsPerEmployee int  `json:"max_shifts_per_employee,omitempty"`
	MaxConsecutiveDays   int  `json:"max_consecutive_days,omitempty"`
	MinRestDays          int  `json:"min_rest_days,omitempty"`
	BalanceLoad          bool `json:"balance_load,omitempty"`
	RequireFirstChoice   bool `json:"require_first_choice,omitempty"`
	RequireTopChoices    bool `json:"require_top_choices,omitempty"`
	Fairness             bool `json:"fairness,omitempty"`
}

type SolveRequest struct {
	Employees []EmployeeCost `json:"employees"`
	Dates     []ScheduleDate `json:"dates"`
	Options   *SolveOptions  `json:"options,omitempty"`
}

type Assignment struct {
	Date     string  `json:"date"`
	Employee string  `json:"employee"`
	Weekday  Weekday `json:"weekday"`
}
