package scheduler

import (
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

// firstChoices 返回代价最低的星期；所有星期代价相同说明没有首选
func firstChoices(cost domain.CostVector) domain.DaySet {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cost {
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	if lo == hi {
		return 0
	}

	var set domain.DaySet
	for day, c := range cost {
		if c == lo {
			set |= domain.NewDaySet(domain.Weekday(day))
		}
	}
	return set
}

const topChoiceLevels = 3

// topChoices 返回代价处于最低 n 档的星期，最高一档视为没有志愿，不计入。
// 所有星期代价相同说明没有志愿。
func topChoices(cost domain.CostVector, n int) domain.DaySet {
	levels := slices.Compact(slices.Sorted(slices.Values(cost[:])))
	if len(levels) < 2 {
		return 0
	}
	levels = levels[:len(levels)-1]
	if len(levels) > n {
		levels = levels[:n]
	}

	var set domain.DaySet
	for day, c := range cost {
		if slices.Contains(levels, c) {
			set |= domain.NewDaySet(domain.Weekday(day))
		}
	}
	return set
}

func costTol(obj float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(obj))
}

func maxLoad(chosen []int, numEmployees int) int {
	loads := make([]int, numEmployees)
	best := 0
	for _, e := range chosen {
		if e < 0 {
			continue
		}
		loads[e]++
		best = max(best, loads[e])
	}
	return best
}
