package dispatch

import "errors"

var (
	// ErrNotRequestType 只能为请求类型注册处理器
	ErrNotRequestType = errors.New("handler can only be registered for a request type")

	// ErrNilHandler 处理器为空
	ErrNilHandler = errors.New("nil handler")
)
