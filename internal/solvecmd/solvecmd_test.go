package solvecmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

func writeRequest(t *testing.T, req *domain.SolveRequest) string {
	t.Helper()
	data, err := protocol.EncodeRequest(req)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func lastRecord(t *testing.T, stderr string) protocol.ErrorRecord {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	var rec protocol.ErrorRecord
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestRun_WritesOutput(t *testing.T) {
	input := writeRequest(t, &domain.SolveRequest{
		Employees: []domain.EmployeeCost{
			{Name: "Kyle", WeekdayCost: domain.CostVector{1000, 0, 1000, 1000, 1000, 1000, 1000}},
			{Name: "Ana", WeekdayCost: domain.CostVector{1000, 1000, 0, 1000, 1000, 1000, 1000}},
		},
		Dates: []domain.ScheduleDate{
			{Date: "2025-06-02", Weekday: domain.Monday},
			{Date: "2025-06-03", Weekday: domain.Tuesday},
		},
	})
	output := filepath.Join(filepath.Dir(input), "output.json")

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"run", input, output, "--timeout", "1m"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	resp, err := protocol.DecodeResponse(data)
	require.NoError(t, err)
	assignments, err := resp.Result()
	require.NoError(t, err)
	assert.Equal(t, []domain.Assignment{
		{Date: "2025-06-02", Employee: "Kyle", Weekday: domain.Monday},
		{Date: "2025-06-03", Employee: "Ana", Weekday: domain.Tuesday},
	}, assignments)
}

func TestRun_FailureGoesToStderr(t *testing.T) {
	input := writeRequest(t, &domain.SolveRequest{
		Employees: []domain.EmployeeCost{
			{Name: "Kyle", WeekdayCost: domain.CostVector{1000, 0, 1000, 1000, 1000, 1000, 1000}},
		},
		Dates: []domain.ScheduleDate{
			{Date: "2025-06-02", Weekday: domain.Monday},
			{Date: "2025-06-03", Weekday: domain.Tuesday},
		},
		Options: &domain.SolveOptions{MaxShiftsPerEmployee: 1},
	})
	output := filepath.Join(filepath.Dir(input), "output.json")

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"run", input, output}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, output)

	rec := lastRecord(t, stderr.String())
	assert.Equal(t, domain.KindInfeasible, rec.Kind)
	assert.Len(t, rec.Dates, 1)
}

func TestRun_BadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"run", "only-one.json"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, domain.KindInvalidInput, lastRecord(t, stderr.String()).Kind)

	stderr.Reset()
	code = Execute([]string{"run", filepath.Join(t.TempDir(), "missing.json"), "out.json"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, domain.KindInvalidInput, lastRecord(t, stderr.String()).Kind)
}

func TestRun_MalformedRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"employees": 3}`), 0o600))

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"run", path, path + ".out"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, domain.KindInvalidInput, lastRecord(t, stderr.String()).Kind)
}

func TestCost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Kyle","preferences":["Monday","Tuesday"]}]`), 0o600))

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"cost", path, "--weights", "0,5", "--default-cost", "50"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var costs []domain.EmployeeCost
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &costs))
	require.Len(t, costs, 1)
	assert.Equal(t, "Kyle", costs[0].Name)
	assert.Equal(t, domain.CostVector{50, 0, 5, 50, 50, 50, 50}, costs[0].WeekdayCost)
}

func TestCost_Stdin(t *testing.T) {
	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetIn(strings.NewReader(`[{"name":"Ana","preferences":["Sunday"]}]`))
	root.SetArgs([]string{"cost", "-"})
	require.NoError(t, root.Execute())

	var costs []domain.EmployeeCost
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &costs))
	assert.Equal(t, 0.0, costs[0].WeekdayCost[domain.Sunday])
	assert.Equal(t, 1000.0, costs[0].WeekdayCost[domain.Monday])
}
