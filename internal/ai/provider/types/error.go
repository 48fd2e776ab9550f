package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorType API 错误类型（基于 Anthropic 文档）
type ErrorType string

const (
	// 4xx 客户端错误
	ErrorTypeInvalidRequest  ErrorType = "invalid_request_error" // 400 - 请求格式或内容错误
	ErrorTypeAuthentication  ErrorType = "authentication_error"  // 401 - API Key 问题
	ErrorTypePermission      ErrorType = "permission_error"      // 403 - API Key 权限不足
	ErrorTypeNotFound        ErrorType = "not_found_error"       // 404 - 资源未找到
	ErrorTypeRequestTooLarge ErrorType = "request_too_large"     // 413 - 请求过大
	ErrorTypeRateLimit       ErrorType = "rate_limit_error"      // 429 - 达到速率限制

	// 5xx 服务器错误
	ErrorTypeAPI        ErrorType = "api_error"        // 500 - 内部服务器错误
	ErrorTypeOverloaded ErrorType = "overloaded_error" // 529 - API 临时过载

	// 网络层错误（未拿到 HTTP 响应）
	ErrorTypeTransport ErrorType = "transport_error"
)

// StatusOverloaded Anthropic 过载状态码
const StatusOverloaded = 529

// ProviderError Provider 错误
type ProviderError struct {
	Type       ErrorType     // 错误类型
	Provider   string        // Provider 名称
	StatusCode int           // HTTP 状态码
	Message    string        // 错误消息
	RequestID  string        // 请求 ID（用于追踪）
	RetryAfter time.Duration // 服务端建议的重试等待时间
	Err        error         // 原始错误
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("[%s][%s] %s", e.Provider, e.Type, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("[%s][%s][%d] %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.RequestID != "" {
		msg += " (request_id: " + e.RequestID + ")"
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimitError 判断是否为速率限制错误
func (e *ProviderError) IsRateLimitError() bool {
	return e.Type == ErrorTypeRateLimit
}

// IsRetryable 判断错误是否可重试
func (e *ProviderError) IsRetryable() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeAPI, ErrorTypeOverloaded, ErrorTypeTransport:
		return true
	default:
		return false
	}
}

// NewProviderError 创建 Provider 错误
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeAPI,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// NewTransportError 创建网络层错误
func NewTransportError(provider string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeTransport,
		Provider: provider,
		Message:  "request failed",
		Err:      err,
	}
}

// NewStatusError 根据 HTTP 状态码创建错误
func NewStatusError(provider string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Type:       ErrorTypeFromStatus(statusCode),
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrorTypeFromStatus 状态码映射到错误类型
func ErrorTypeFromStatus(code int) ErrorType {
	switch code {
	case http.StatusBadRequest:
		return ErrorTypeInvalidRequest
	case http.StatusUnauthorized:
		return ErrorTypeAuthentication
	case http.StatusForbidden:
		return ErrorTypePermission
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrorTypeRequestTooLarge
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case StatusOverloaded, http.StatusServiceUnavailable:
		return ErrorTypeOverloaded
	}
	if code >= 500 {
		return ErrorTypeAPI
	}
	return ErrorTypeInvalidRequest
}

// ParseRetryAfter 解析 Retry-After 头（仅支持秒数）
func ParseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsRetryable 判断任意错误是否可重试
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.IsRetryable()
	}
	return false
}

// RetryAfterOf 提取服务端建议的等待时间
func RetryAfterOf(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}

// 预定义错误
var (
	ErrEmptyResponse = errors.New("empty completion response")
)
