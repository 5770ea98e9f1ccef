// Package protocol 定义求解器与调用方之间的数据格式。
//
// 请求就是 domain.SolveRequest；响应用 Response 包一层，失败时带上错误类型、原因
// 和无法安排的日期，这样无论求解器跑在本进程、子进程还是远端 worker，调用方拿到的
// 错误都是同一种形式。
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

type ErrorRecord struct {
	Kind   domain.Kind `json:"kind"`
	Reason string      `json:"reason"`
	Dates  []string    `json:"dates,omitempty"`
}

type Response struct {
	Status      Status              `json:"status"`
	Assignments []domain.Assignment `json:"assignments,omitempty"`
	Error       *ErrorRecord        `json:"error,omitempty"`
}

// Format 把每个日期选中的员工下标转换为对外的排班记录，顺序与 dates 一致
func Format(dates []domain.ScheduleDate, chosen []int, employees []domain.EmployeeCost) []domain.Assignment {
	assignments := make([]domain.Assignment, 0, len(dates))
	for i, sd := range dates {
		a := domain.Assignment{Date: sd.Date, Weekday: sd.Weekday}
		if i < len(chosen) && chosen[i] >= 0 && chosen[i] < len(employees) {
			a.Employee = employees[chosen[i]].Name
		}
		assignments = append(assignments, a)
	}
	return assignments
}

func Success(assignments []domain.Assignment) *Response {
	if assignments == nil {
		assignments = []domain.Assignment{}
	}
	return &Response{Status: StatusSuccess, Assignments: assignments}
}

func Failure(err error) *Response {
	return &Response{Status: StatusFailure, Error: NewErrorRecord(err)}
}

func NewErrorRecord(err error) *ErrorRecord {
	e := domain.AsError(err)
	return &ErrorRecord{Kind: e.Kind, Reason: e.Reason, Dates: e.Dates}
}

// Err 未知的错误类型一律当作 ProcessFailure
func (r *ErrorRecord) Err() *domain.Error {
	kind := r.Kind
	if !kind.Valid() {
		kind = domain.KindProcessFailure
	}
	return &domain.Error{Kind: kind, Reason: r.Reason, Dates: r.Dates}
}

// Result 把响应还原成调用结果
func (r *Response) Result() ([]domain.Assignment, error) {
	switch r.Status {
	case StatusSuccess:
		if r.Assignments == nil {
			return []domain.Assignment{}, nil
		}
		return r.Assignments, nil
	case StatusFailure:
		if r.Error == nil {
			return nil, domain.NewError(domain.KindProcessFailure, "求解器返回失败但没有给出原因")
		}
		return nil, r.Error.Err()
	default:
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("未知的响应状态 %q", r.Status))
	}
}

func EncodeRequest(req *domain.SolveRequest) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeRequest 拒绝未知字段，格式错误返回 InvalidInput
func DecodeRequest(data []byte) (*domain.SolveRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var req domain.SolveRequest
	if err := dec.Decode(&req); err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("请求格式错误: %v", err))
	}
	return &req, nil
}

func EncodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse 无法解析时返回 ProcessFailure
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, domain.NewError(domain.KindProcessFailure, fmt.Sprintf("无法解析求解器的响应: %v", err))
	}
	return &resp, nil
}

// DecodeErrorRecord 用于解析子进程写到 stderr 的诊断信息
func DecodeErrorRecord(data []byte) (*ErrorRecord, error) {
	var record ErrorRecord
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		return nil, err
	}
	if record.Kind == "" {
		return nil, fmt.Errorf("错误记录缺少 kind 字段")
	}
	return &record, nil
}
