package client

import (
	"errors"
	"fmt"
)

// 错误分层：哨兵错误做分类（errors.Is），类型错误带上下文（errors.As）。
// 传输失败与服务器拒绝是两类错误，调用方必须能区分。

var (
	// ErrNotFound 目标资源不存在（HTTP 404）
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized 未授权（HTTP 401）
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError 服务器明确拒绝的请求（收到了 HTTP 错误响应）
type APIError struct {
	StatusCode int
	Type       string // 服务器侧异常类型，可能为空
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// Unwrap 将状态码映射到哨兵错误，支持 errors.Is(err, ErrNotFound) 判定
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	}
	return nil
}

// ConnectionError 传输层失败（请求未到达服务器或响应未能读取）
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
