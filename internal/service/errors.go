package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError 请求字段缺失或越界，不修改任何状态
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError 资源不存在或不属于当前用户
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ScoringOracleFailure 评分服务调用失败，只在反馈流水线内部使用，从不返回给调用方
type ScoringOracleFailure struct {
	Reason  string
	Wrapped error
}

func (e *ScoringOracleFailure) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("scoring oracle failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("scoring oracle failed: %s", e.Reason)
}

func (e *ScoringOracleFailure) Unwrap() error {
	return e.Wrapped
}

// AggregationFailure 统计重算过程中的意外错误，按服务端错误上报
type AggregationFailure struct {
	Op      string
	Wrapped error
}

func (e *AggregationFailure) Error() string {
	return fmt.Sprintf("aggregation %s failed: %v", e.Op, e.Wrapped)
}

func (e *AggregationFailure) Unwrap() error {
	return e.Wrapped
}

func aggregationErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AggregationFailure{Op: op, Wrapped: err}
}

// lookupErr 把 gorm 的记录不存在转换成 NotFoundError
func lookupErr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}
