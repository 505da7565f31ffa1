package dispatch

import (
	"fmt"

	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// Handler 请求处理器
//
// 在事件循环上执行，不得发起网络往返。回复通过 Sender 发出。
type Handler func(msg *wire.Message, origin types.Peer)

// Registry 请求处理器表
//
// 以消息类型为下标的定长表，只接受 PING/GET/PUBLISH 三种请求类型。
type Registry struct {
	handlers [wire.TypePublish + 1]Handler
}

// NewRegistry 创建空的处理器表
func NewRegistry() *Registry {
	return &Registry{}
}

// Set 注册处理器，覆盖同类型已有的处理器
func (r *Registry) Set(typ wire.MessageType, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	switch typ {
	case wire.TypePing, wire.TypeGet, wire.TypePublish:
	default:
		return fmt.Errorf("%w: %s", ErrNotRequestType, typ)
	}
	r.handlers[typ] = h
	return nil
}

// Lookup 查找处理器
func (r *Registry) Lookup(typ wire.MessageType) (Handler, bool) {
	if typ <= wire.TypeResponse || int(typ) >= len(r.handlers) {
		return nil, false
	}
	h := r.handlers[typ]
	return h, h != nil
}

// Types 返回已注册的请求类型，按类型值升序
func (r *Registry) Types() []wire.MessageType {
	var out []wire.MessageType
	for i, h := range r.handlers {
		if h != nil {
			out = append(out, wire.MessageType(i))
		}
	}
	return out
}
