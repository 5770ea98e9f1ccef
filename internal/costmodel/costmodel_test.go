package costmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New(DefaultConfig())
	require.NoError(t, err)
	return b
}

func TestBuild(t *testing.T) {
	b := newBuilder(t)

	tests := map[string]struct {
		prefs []string
		want  domain.CostVector
	}{
		"no preferences": {
			prefs: nil,
			want:  domain.CostVector{1000, 1000, 1000, 1000, 1000, 1000, 1000},
		},
		"top three": {
			prefs: []string{"Monday", "Wednesday", "Friday"},
			want:  domain.CostVector{1000, 0, 1000, 20, 1000, 40, 1000},
		},
		"ranks beyond the schedule share the last weight": {
			prefs: []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
			want:  domain.CostVector{0, 20, 40, 100, 100, 100, 100},
		},
		"blank slot keeps its rank": {
			prefs: []string{"Tuesday", "", "Thursday"},
			want:  domain.CostVector{1000, 1000, 0, 1000, 40, 1000, 1000},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := b.Build(tc.prefs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuild_RankedDaysAlwaysCheaperThanUnranked(t *testing.T) {
	b := newBuilder(t)

	prefs := []string{"Saturday", "Friday", "Thursday", "Wednesday", "Tuesday"}
	cost, err := b.Build(prefs)
	require.NoError(t, err)

	for i := 1; i < len(prefs); i++ {
		prev, _ := domain.ParseWeekday(prefs[i-1])
		cur, _ := domain.ParseWeekday(prefs[i])
		assert.LessOrEqual(t, cost[prev], cost[cur], "cost must not decrease as rank worsens")
	}
	for _, label := range prefs {
		d, _ := domain.ParseWeekday(label)
		assert.Less(t, cost[d], cost[domain.Sunday])
		assert.Less(t, cost[d], cost[domain.Monday])
	}
}

func TestBuild_Rejects(t *testing.T) {
	b := newBuilder(t)

	tests := map[string][]string{
		"duplicate":     {"Monday", "Tuesday", "monday"},
		"unknown label": {"Monday", "Someday"},
		"too many":      {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", ""},
	}

	for name, prefs := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build(prefs)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBuildAll(t *testing.T) {
	b := newBuilder(t)

	costs, err := b.BuildAll([]domain.Employee{
		{Name: "Kyle", Preferences: []string{"Monday"}},
		{Name: " Ana ", Preferences: []string{"Friday", "Saturday"}},
	})
	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.Equal(t, "Kyle", costs[0].Name)
	assert.Equal(t, "Ana", costs[1].Name)
	assert.Equal(t, 0.0, costs[1].WeekdayCost[domain.Friday])
	assert.Equal(t, 20.0, costs[1].WeekdayCost[domain.Saturday])

	_, err = b.BuildAll([]domain.Employee{{Name: "Kyle"}, {Name: "Kyle"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.BuildAll([]domain.Employee{{Name: ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.BuildAll([]domain.Employee{{Name: "Kyle", Preferences: []string{"Monday", "Monday"}}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Kyle")
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"default":             {cfg: DefaultConfig()},
		"original schedule":   {cfg: Config{Weights: []float64{0, 20, 40}, DefaultCost: 100}},
		"empty weights":       {cfg: Config{DefaultCost: 10}, wantErr: true},
		"decreasing":          {cfg: Config{Weights: []float64{0, 40, 20}, DefaultCost: 100}, wantErr: true},
		"negative":            {cfg: Config{Weights: []float64{-1, 0}, DefaultCost: 100}, wantErr: true},
		"default not greater": {cfg: Config{Weights: []float64{0, 20, 40}, DefaultCost: 40}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRank(t *testing.T) {
	prefs := []string{"Friday", "", "Monday"}
	assert.Equal(t, 0, Rank(prefs, domain.Friday))
	assert.Equal(t, 2, Rank(prefs, domain.Monday))
	assert.Equal(t, -1, Rank(prefs, domain.Sunday))
}
