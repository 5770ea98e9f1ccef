package utils

import (
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateDisplayNameFromChineseName 用拼音缩写加数字生成员工在班表上显示的名字，例如 "WangXM42"
func GenerateDisplayNameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	name := ""

	for i, py := range pinyinArray {
		if py == "" {
			continue
		}
		if i == 0 {
			// 姓氏保留完整拼音
			name += strings.ToUpper(py[:1]) + py[1:]
			continue
		}
		name += strings.ToUpper(py[:1])
	}

	digitsLength := rand.Intn(2) + 1
	for i := 0; i < digitsLength; i++ {
		name += string(digits[rand.Intn(len(digits))])
	}

	return name
}

// 用 Fisher-Yates 洗牌算法来生成随机的偏好顺序，偶尔留出空位
func GenerateRandomPreferences() []string {
	days := make([]string, domain.DaysPerWeek)
	for i := range days {
		days[i] = domain.Weekday(i).String()
	}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1
	prefs := days[:n]

	// 大约五分之一的员工会跳过某一个名次
	if n > 1 && rand.Intn(5) == 0 {
		prefs[rand.Intn(n-1)+1] = ""
	}

	return prefs
}

// GenerateRandomEmployees 生成 n 个姓名互不相同的员工
func GenerateRandomEmployees(n int) []domain.Employee {
	employees := make([]domain.Employee, 0, n)
	used := make(map[string]bool, n)

	for len(employees) < n {
		name := GenerateDisplayNameFromChineseName(GenerateRandomChineseName())
		if used[name] {
			continue
		}
		used[name] = true

		employees = append(employees, domain.Employee{
			Name:        name,
			Preferences: GenerateRandomPreferences(),
		})
	}

	return employees
}

// 随机生成一个从下周一开始、持续 weeks 周的排班计划
func GenerateRandomSchedulePlan(employees int, weeks int) *domain.SchedulePlan {
	now := time.Now().UTC()
	offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	start := now.AddDate(0, 0, offset)
	end := start.AddDate(0, 0, weeks*7-1)

	plan := &domain.SchedulePlan{
		Employees: GenerateRandomEmployees(employees),
		StartDate: start.Format(calendar.DateLayout),
		EndDate:   end.Format(calendar.DateLayout),
	}

	// 一半的计划只排工作日
	if rand.Intn(2) == 0 {
		plan.SchedulableDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	}

	return plan
}
