package utils

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

func invalid(format string, args ...any) error {
	return domain.NewError(domain.KindInvalidInput, fmt.Sprintf(format, args...))
}

func ValidateSolveOptions(opts *domain.SolveOptions) error {
	if opts == nil {
		return nil
	}
	if opts.MaxShiftsPerEmployee < 0 {
		return invalid("每人最多排班次数不能为负数")
	}
	if opts.MaxConsecutiveDays < 0 {
		return invalid("最多连续排班天数不能为负数")
	}
	if opts.MinRestDays < 0 {
		return invalid("两次排班之间的最少休息天数不能为负数")
	}
	return nil
}

// ValidateSolveRequest 检查求解请求的形状，不检查是否可行
func ValidateSolveRequest(req *domain.SolveRequest) error {
	seenNames := make(map[string]bool, len(req.Employees))
	for i, employee := range req.Employees {
		if strings.TrimSpace(employee.Name) == "" {
			return invalid("第 %d 个员工的名字为空", i+1)
		}
		if seenNames[employee.Name] {
			return invalid("员工 %s 重复", employee.Name)
		}
		seenNames[employee.Name] = true

		for day, cost := range employee.WeekdayCost {
			if math.IsNaN(cost) || math.IsInf(cost, 0) {
				return invalid("员工 %s 在 %s 的代价不是有限数值", employee.Name, domain.Weekday(day))
			}
		}
	}

	seenDates := make(map[string]bool, len(req.Dates))
	for _, sd := range req.Dates {
		if err := calendar.Validate(sd); err != nil {
			return err
		}
		if seenDates[sd.Date] {
			return invalid("日期 %s 重复", sd.Date)
		}
		seenDates[sd.Date] = true
	}

	return ValidateSolveOptions(req.Options)
}

// ValidateAssignments 检查结果是否与请求中的日期一一对应
func ValidateAssignments(req *domain.SolveRequest, assignments []domain.Assignment) error {
	if len(assignments) != len(req.Dates) {
		return fmt.Errorf("排班结果共有 %d 天，而请求中有 %d 天", len(assignments), len(req.Dates))
	}

	names := make([]string, 0, len(req.Employees))
	for _, employee := range req.Employees {
		names = append(names, employee.Name)
	}

	for i, a := range assignments {
		sd := req.Dates[i]
		if a.Date != sd.Date {
			return fmt.Errorf("排班结果的第 %d 项日期为 %s，应为 %s", i+1, a.Date, sd.Date)
		}
		if a.Weekday != sd.Weekday {
			return fmt.Errorf("日期 %s 的星期与请求不一致", a.Date)
		}
		if !slices.Contains(names, a.Employee) {
			return fmt.Errorf("日期 %s 安排的员工 %s 不在请求中", a.Date, a.Employee)
		}
	}

	return nil
}

// ValidateAssignmentsWithOptions 检查结果是否满足请求中开启的附加约束
func ValidateAssignmentsWithOptions(req *domain.SolveRequest, assignments []domain.Assignment) error {
	opts := req.Options
	if opts == nil || len(assignments) == 0 {
		return nil
	}

	days := make(map[string][]int) // 员工 -> 排班日期的天序号（升序）
	for _, a := range assignments {
		t, err := calendar.ParseDate(a.Date)
		if err != nil {
			return err
		}
		days[a.Employee] = append(days[a.Employee], calendar.DayNumber(t))
	}

	numDates, numEmployees := len(req.Dates), len(req.Employees)
	for _, employee := range req.Employees {
		worked := days[employee.Name]
		slices.Sort(worked)

		if opts.MaxShiftsPerEmployee > 0 && len(worked) > opts.MaxShiftsPerEmployee {
			return fmt.Errorf("员工 %s 被安排了 %d 天，超过上限 %d 天", employee.Name, len(worked), opts.MaxShiftsPerEmployee)
		}

		if opts.BalanceLoad {
			lo, hi := numDates/numEmployees, (numDates+numEmployees-1)/numEmployees
			if len(worked) < lo || len(worked) > hi {
				return fmt.Errorf("员工 %s 被安排了 %d 天，不在均衡范围 [%d, %d] 内", employee.Name, len(worked), lo, hi)
			}
		}

		run := 0
		for i, day := range worked {
			if i > 0 && day == worked[i-1]+1 {
				run++
			} else {
				run = 1
			}
			if opts.MaxConsecutiveDays > 0 && run > opts.MaxConsecutiveDays {
				return fmt.Errorf("员工 %s 连续排班超过 %d 天", employee.Name, opts.MaxConsecutiveDays)
			}
			if opts.MinRestDays > 0 && i > 0 && day-worked[i-1] <= opts.MinRestDays {
				return fmt.Errorf("员工 %s 两次排班之间的休息少于 %d 天", employee.Name, opts.MinRestDays)
			}
		}
	}

	return nil
}
