package sharedvar

import "errors"

var (
	// ErrNilTransport 传输为空
	ErrNilTransport = errors.New("transport is nil")

	// ErrNilScheme 签名方案为空
	ErrNilScheme = errors.New("signature scheme is nil")

	// ErrNilVariable 变量为空
	ErrNilVariable = errors.New("signed variable is nil")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("service already started")

	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("service not started")

	// ErrStopped 服务已停止
	ErrStopped = errors.New("service stopped")
)
