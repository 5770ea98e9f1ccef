// Package calendar 负责把日期区间展开成可排班的日期序列。
//
// 所有日期都按照不带时区的公历日期处理：解析结果固定在 UTC 零点，且从不做时区换算，
// 因此计算出来的星期不会因为时区偏移而错位一天。
package calendar

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

const DateLayout = "2006-01-02"

// DefaultMaxSpan 限制一次展开的最大天数
const DefaultMaxSpan = 731

type Expander struct {
	maxSpan int
}

func New(maxSpan int) *Expander {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	return &Expander{maxSpan: maxSpan}
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewError(domain.KindInvalidDate, fmt.Sprintf("日期 %q 不是合法的 YYYY-MM-DD 日期", s))
	}
	return t, nil
}

func WeekdayOf(date string) (domain.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return domain.Weekday(t.Weekday()), nil
}

// DayNumber 返回自 1970-01-01 起的天数，用于判断两个日期是否相邻
func DayNumber(t time.Time) int {
	return int(t.Unix() / 86400)
}

// Validate 检查 ScheduleDate 中的星期是否与日期本身一致
func Validate(sd domain.ScheduleDate) error {
	weekday, err := WeekdayOf(sd.Date)
	if err != nil {
		return domain.NewError(domain.KindInvalidInput, domain.AsError(err).Reason)
	}
	if weekday != sd.Weekday {
		return domain.NewError(domain.KindInvalidInput, fmt.Sprintf("日期 %s 是 %s，而不是 %s", sd.Date, weekday, sd.Weekday))
	}
	return nil
}

// Expand 按升序返回 [start, end] 内所有星期属于 days 的日期
func (e *Expander) Expand(start, end string, days domain.DaySet) ([]domain.ScheduleDate, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}

	if to.Before(from) {
		return nil, domain.NewError(domain.KindInvalidRange, fmt.Sprintf("结束日期 %s 早于开始日期 %s", end, start))
	}

	// 两个日期都是 UTC 零点，相减得到的一定是整天数
	span := int(to.Sub(from).Hours()/24) + 1
	if span > e.maxSpan {
		return nil, domain.NewError(domain.KindInvalidRange, fmt.Sprintf("日期区间共 %d 天，超过上限 %d 天", span, e.maxSpan))
	}

	dates := make([]domain.ScheduleDate, 0, span)
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		weekday := domain.Weekday(cur.Weekday())
		if !days.Contains(weekday) {
			continue
		}
		dates = append(dates, domain.ScheduleDate{
			Date:    cur.Format(DateLayout),
			Weekday: weekday,
		})
	}

	return dates, nil
}

// FromList 保留调用方给出的顺序，只过滤掉不可排班的星期
func (e *Expander) FromList(list []string, days domain.DaySet) ([]domain.ScheduleDate, error) {
	if len(list) > e.maxSpan {
		return nil, domain.NewError(domain.KindInvalidRange, fmt.Sprintf("日期列表共 %d 天，超过上限 %d 天", len(list), e.maxSpan))
	}

	seen := make(map[string]bool, len(list))
	dates := make([]domain.ScheduleDate, 0, len(list))

	for _, s := range list {
		t, err := ParseDate(s)
		if err != nil {
			return nil, err
		}

		date := t.Format(DateLayout)
		if seen[date] {
			return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("日期 %s 重复", date))
		}
		seen[date] = true

		weekday := domain.Weekday(t.Weekday())
		if !days.Contains(weekday) {
			continue
		}
		dates = append(dates, domain.ScheduleDate{
			Date:    date,
			Weekday: weekday,
		})
	}

	return dates, nil
}
