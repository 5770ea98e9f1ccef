package domain

import (
	"fmt"
	"strings"
)

// Weekday 使用 0 = Sunday ... 6 = Saturday 的编号
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const DaysPerWeek = 7

var weekdayLabels = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayLabels[d]
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// ParseWeekday 只接受七个标准的英文名称（忽略大小写）
func ParseWeekday(label string) (Weekday, error) {
	label = strings.TrimSpace(label)
	for i, l := range weekdayLabels {
		if strings.EqualFold(l, label) {
			return Weekday(i), nil
		}
	}
	return 0, NewError(KindInvalidInput, fmt.Sprintf("无法识别的星期名称 %q", label))
}

// DaySet 是可排班的星期集合，第 i 位表示 Weekday(i)
type DaySet uint8

const AllDays DaySet = 1<<DaysPerWeek - 1

func NewDaySet(days ...Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		if d.Valid() {
			s |= 1 << d
		}
	}
	return s
}

// ParseDaySet 在 labels 为空时返回全部七天
func ParseDaySet(labels []string) (DaySet, error) {
	if len(labels) == 0 {
		return AllDays, nil
	}

	var s DaySet
	for _, label := range labels {
		d, err := ParseWeekday(label)
		if err != nil {
			return 0, err
		}
		if s.Contains(d) {
			return 0, NewError(KindInvalidInput, fmt.Sprintf("可排班日期中 %s 重复", d))
		}
		s |= 1 << d
	}
	return s, nil
}

func (s DaySet) Contains(d Weekday) bool {
	return d.Valid() && s&(1<<d) != 0
}

func (s DaySet) Len() int {
	n := 0
	for d := Sunday; d <= Saturday; d++ {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

func (s DaySet) Labels() []string {
	labels := make([]string, 0, DaysPerWeek)
	for d := Sunday; d <= Saturday; d++ {
		if s.Contains(d) {
			labels = append(labels, d.String())
		}
	}
	return labels
}
