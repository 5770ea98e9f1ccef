package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

func TestParseRoster(t *testing.T) {
	roster := `姓名,第一志愿,第二志愿,第三志愿
Kyle,Monday,,Friday
Ana,周二,星期四,
,Monday,,
Mei
`
	employees, err := ParseRoster(strings.NewReader(roster))
	require.NoError(t, err)

	assert.Equal(t, []domain.Employee{
		{Name: "Kyle", Preferences: []string{"Monday", "", "Friday"}},
		{Name: "Ana", Preferences: []string{"Tuesday", "Thursday"}},
		{Name: "Mei", Preferences: []string{}},
	}, employees)

	b, err := costmodel.New(costmodel.DefaultConfig())
	require.NoError(t, err)
	costs, err := b.BuildAll(employees)
	require.NoError(t, err)
	assert.Equal(t, 40.0, costs[0].WeekdayCost[domain.Friday])
}

func TestParseRoster_NameColumnAnywhere(t *testing.T) {
	employees, err := ParseRoster(strings.NewReader("pref1,pref2,name\nSunday,Saturday,Kyle\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Employee{{Name: "Kyle", Preferences: []string{"Sunday", "Saturday"}}}, employees)
}

func TestParseRoster_Errors(t *testing.T) {
	tests := []struct {
		name   string
		roster string
	}{
		{"empty", ""},
		{"no name column", "pref1,pref2\nMonday,Tuesday\n"},
		{"too many columns", "name,1,2,3,4,5,6,7,8\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoster(strings.NewReader(tt.roster))
			assert.Error(t, err)
		})
	}
}

func TestPlanFromRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,pref1\nKyle,Monday\n"), 0o600))

	plan, err := PlanFromRoster(path, "2025-06-02", "2025-06-08", []string{"Monday"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", plan.StartDate)
	assert.Equal(t, []string{"Monday"}, plan.SchedulableDays)
	require.Len(t, plan.Employees, 1)

	_, err = PlanFromRoster(filepath.Join(t.TempDir(), "missing.csv"), "", "", nil)
	assert.Error(t, err)
}
