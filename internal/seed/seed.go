// Package seed 从值班名单 CSV 导入员工及其星期偏好。
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

// 表头中表示姓名的列
var nameHeaders = []string{"name", "姓名", "netid"}

// 名单中常见的中文星期写法
var weekdayAliases = map[string]domain.Weekday{
	"周日": domain.Sunday, "星期日": domain.Sunday, "星期天": domain.Sunday,
	"周一": domain.Monday, "星期一": domain.Monday,
	"周二": domain.Tuesday, "星期二": domain.Tuesday,
	"周三": domain.Wednesday, "星期三": domain.Wednesday,
	"周四": domain.Thursday, "星期四": domain.Thursday,
	"周五": domain.Friday, "星期五": domain.Friday,
	"周六": domain.Saturday, "星期六": domain.Saturday,
}

// normalizeWeekday 把中文星期转换成英文名称，其他写法原样交给成本模型校验
func normalizeWeekday(cell string) string {
	cell = strings.TrimSpace(cell)
	if d, ok := weekdayAliases[cell]; ok {
		return d.String()
	}
	return cell
}

/**
 * ParseRoster 读取名单:
 * 		1. 第一行是表头，姓名列可以是 name、姓名 或 NetID
 * 		2. 其余列按出现的顺序依次是第 1 到第 7 志愿，空单元格表示该名次没有填写
 * 		3. 姓名为空的行会被跳过
 */
func ParseRoster(r io.Reader) ([]domain.Employee, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("名单为空")
		}
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	nameColumn := -1
	prefColumns := []int{}
	for i, header := range headers {
		if slices.Contains(nameHeaders, strings.ToLower(strings.TrimSpace(header))) {
			nameColumn = i
		} else {
			prefColumns = append(prefColumns, i)
		}
	}

	if nameColumn < 0 {
		return nil, errors.New("没有找到姓名列")
	}
	if len(prefColumns) > domain.DaysPerWeek {
		return nil, fmt.Errorf("偏好列最多只能有 %d 列，实际有 %d 列", domain.DaysPerWeek, len(prefColumns))
	}

	var employees []domain.Employee
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		if nameColumn >= len(row) || strings.TrimSpace(row[nameColumn]) == "" {
			slog.Warn("跳过没有姓名的行", slog.Int("line", line))
			continue
		}

		employee := domain.Employee{
			Name:        strings.TrimSpace(row[nameColumn]),
			Preferences: make([]string, 0, len(prefColumns)),
		}
		for _, col := range prefColumns {
			cell := ""
			if col < len(row) {
				cell = normalizeWeekday(row[col])
			}
			employee.Preferences = append(employee.Preferences, cell)
		}

		// 末尾的空名次没有意义
		for len(employee.Preferences) > 0 && employee.Preferences[len(employee.Preferences)-1] == "" {
			employee.Preferences = employee.Preferences[:len(employee.Preferences)-1]
		}

		employees = append(employees, employee)
	}

	return employees, nil
}

func LoadRoster(path string) ([]domain.Employee, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	return ParseRoster(file)
}

// PlanFromRoster 用名单中的员工和给定的日期区间组成排班计划
func PlanFromRoster(path, start, end string, schedulableDays []string) (*domain.SchedulePlan, error) {
	employees, err := LoadRoster(path)
	if err != nil {
		return nil, err
	}

	return &domain.SchedulePlan{
		Employees:       employees,
		StartDate:       start,
		EndDate:         end,
		SchedulableDays: schedulableDays,
	}, nil
}
