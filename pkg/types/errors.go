// Package types 定义 sharedvar 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              基础错误
// ============================================================================

var (
	// ErrInvalidPeer 无效的节点地址
	ErrInvalidPeer = errors.New("invalid peer address")

	// ErrTimeout 请求在截止时间内没有收到响应
	ErrTimeout = errors.New("request timeout")

	// ErrUnknownRequestType 对端不认识的请求类型
	//
	// 只会回报给对端，不会在本地抛出。
	ErrUnknownRequestType = errors.New("Unknown request type")

	// ErrInvalidPayload 请求载荷无法解码
	ErrInvalidPayload = errors.New("Invalid payload")
)

// ============================================================================
//                              错误码
// ============================================================================

// 线路上的错误码（负数消息类型）
const (
	// CodeUnknownRequestType 未知请求类型
	CodeUnknownRequestType = -1

	// CodeInvalidPayload 载荷无效
	CodeInvalidPayload = -2
)

// ============================================================================
//                              PeerError
// ============================================================================

// PeerError 对端显式返回的错误响应
//
// Code 为负数的消息类型，Message 为对端附带的说明。
type PeerError struct {
	Code    int
	Message string
}

// NewPeerError 创建 PeerError，message 为空时使用默认文本
func NewPeerError(code int, message string) *PeerError {
	if message == "" {
		message = fmt.Sprintf("error code: %d", code)
	}
	return &PeerError{Code: code, Message: message}
}

// Error 实现 error 接口
func (e *PeerError) Error() string {
	return e.Message
}

// Is 支持 errors.Is 按错误码匹配预定义错误
func (e *PeerError) Is(target error) bool {
	switch e.Code {
	case CodeUnknownRequestType:
		return target == ErrUnknownRequestType
	case CodeInvalidPayload:
		return target == ErrInvalidPayload
	}
	return false
}
