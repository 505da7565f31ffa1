package dispatch

import (
	"context"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("dispatch")

// Resolver 把响应交给请求关联表
//
// correlation.Table[[]msgpack.RawMessage] 满足该接口。
type Resolver interface {
	Resolve(id int, origin types.Peer, err error, payload []msgpack.RawMessage) bool
}

// ============================================================================
//                              Dispatcher 实现
// ============================================================================

// Dispatcher 入站消息分发器
type Dispatcher struct {
	codec    wire.Codec
	registry *Registry
	resolver Resolver
	sender   *Sender
	metrics  *metrics.Metrics
}

// New 创建分发器，m 可以为 nil
func New(codec wire.Codec, registry *Registry, resolver Resolver, sender *Sender, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		codec:    codec,
		registry: registry,
		resolver: resolver,
		sender:   sender,
		metrics:  m,
	}
}

// HandleDatagram 解码并分发一个入站数据报
func (d *Dispatcher) HandleDatagram(data []byte, origin types.Peer) {
	d.metrics.BytesIn(len(data))

	msg, err := d.codec.Decode(data)
	if err != nil {
		log.Debug("丢弃无法解码的数据报", "from", origin.String(), "size", len(data), "err", err)
		d.metrics.Dropped(metrics.DropDecode)
		return
	}
	d.Dispatch(msg, origin)
}

// Dispatch 按消息类型分发
func (d *Dispatcher) Dispatch(msg *wire.Message, origin types.Peer) {
	switch {
	case msg.Type == wire.TypeResponse:
		d.metrics.ResponseReceived()
		d.resolve(msg.RequestID, origin, nil, msg.Payload)

	case msg.Type.IsRequest():
		h, ok := d.registry.Lookup(msg.Type)
		if !ok {
			log.Debug("未知请求类型", "type", int(msg.Type), "rid", msg.RequestID, "from", origin.String())
			if err := d.sender.ReplyError(context.Background(), origin, msg.RequestID,
				wire.TypeUnknownRequest, types.ErrUnknownRequestType.Error()); err != nil {
				log.Debug("回复未知请求类型失败", "to", origin.String(), "err", err)
			}
			return
		}
		d.metrics.RequestHandled(msg.Type.String())
		h(msg, origin)

	default:
		d.metrics.PeerError(strconv.Itoa(int(msg.Type)))
		peerErr, rest := peerError(msg)
		d.resolve(msg.RequestID, origin, peerErr, rest)
	}
}

func (d *Dispatcher) resolve(id int, origin types.Peer, err error, payload []msgpack.RawMessage) {
	if !d.resolver.Resolve(id, origin, err, payload) {
		log.Debug("响应无匹配请求", "rid", id, "from", origin.String())
		d.metrics.Dropped(metrics.DropUnmatched)
	}
}

// peerError 从错误响应构造 PeerError
//
// 首个载荷元素若为字符串则作为错误描述，其余元素原样返回。
func peerError(msg *wire.Message) (*types.PeerError, []msgpack.RawMessage) {
	var text string
	rest := msg.Payload
	if msg.Len() > 0 {
		if err := msg.Arg(0, &text); err == nil {
			rest = msg.Payload[1:]
		} else {
			text = ""
		}
	}
	return types.NewPeerError(int(msg.Type), text), rest
}
