// Package memory 实现进程内数据报网络
package memory

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrAddressInUse 端点已被占用
	ErrAddressInUse = errors.New("address already in use")
)
