package domain

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindInvalidInput   Kind = "InvalidInput"
	KindInvalidRange   Kind = "InvalidRange"
	KindInvalidDate    Kind = "InvalidDate"
	KindNoEmployees    Kind = "NoEmployees"
	KindInfeasible     Kind = "Infeasible"
	KindTimeout        Kind = "Timeout"
	KindProcessFailure Kind = "ProcessFailure"
)

// 每种错误类型对应一个哨兵错误，方便调用方使用 errors.Is 判断
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidRange   = errors.New("invalid range")
	ErrInvalidDate    = errors.New("invalid date")
	ErrNoEmployees    = errors.New("no employees")
	ErrInfeasible     = errors.New("infeasible")
	ErrTimeout        = errors.New("timeout")
	ErrProcessFailure = errors.New("process failure")
)

var sentinels = map[Kind]error{
	KindInvalidInput:   ErrInvalidInput,
	KindInvalidRange:   ErrInvalidRange,
	KindInvalidDate:    ErrInvalidDate,
	KindNoEmployees:    ErrNoEmployees,
	KindInfeasible:     ErrInfeasible,
	KindTimeout:        ErrTimeout,
	KindProcessFailure: ErrProcessFailure,
}

// Error 是引擎对外返回的所有失败的统一形式：类型 + 可读原因（+ 相关日期）
type Error struct {
	Kind   Kind
	Reason string
	Dates  []string
}

func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if len(e.Dates) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(e.Dates, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

func (k Kind) Valid() bool {
	_, ok := sentinels[k]
	return ok
}

// KindOf 对于不是 *Error 的错误一律视为 ProcessFailure
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindProcessFailure
}

// AsError 保证返回值一定是 *Error，必要时包装成 ProcessFailure
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindOf(err), Reason: err.Error()}
}
