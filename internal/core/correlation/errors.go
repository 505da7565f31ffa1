package correlation

import (
	"errors"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

var (
	// ErrTimeout 截止时间内没有终态响应
	ErrTimeout = types.ErrTimeout

	// ErrIdentifierSpaceExhausted 整个请求 ID 空间都被在途请求占用
	//
	// 说明在途请求数异常，调用方应视为致命错误，内部不重试。
	ErrIdentifierSpaceExhausted = errors.New("request identifier space exhausted")

	// ErrClosed 关联表已关闭
	ErrClosed = errors.New("correlation table closed")
)
