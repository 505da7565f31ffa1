package dispatch

import (
	"context"
	"fmt"

	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// Sender 编码并发送消息
type Sender struct {
	codec     wire.Codec
	transport interfaces.Transport
	metrics   *metrics.Metrics
}

// NewSender 创建 Sender，m 可以为 nil
func NewSender(codec wire.Codec, transport interfaces.Transport, m *metrics.Metrics) *Sender {
	return &Sender{codec: codec, transport: transport, metrics: m}
}

// Send 编码消息并交给传输层
func (s *Sender) Send(ctx context.Context, msg *wire.Message, to types.Peer) error {
	data, err := s.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg, err)
	}
	if err := s.transport.Send(ctx, data, to); err != nil {
		return fmt.Errorf("send %s to %s: %w", msg.Type, to, err)
	}
	s.metrics.BytesOut(len(data))
	if msg.Type.IsRequest() {
		s.metrics.RequestSent(msg.Type.String())
	}
	return nil
}

// Reply 回复 [0, requestId, ...args]
func (s *Sender) Reply(ctx context.Context, to types.Peer, requestID int, args ...any) error {
	msg, err := wire.NewMessage(wire.TypeResponse, requestID, args...)
	if err != nil {
		return err
	}
	return s.Send(ctx, msg, to)
}

// ReplyError 回复 [code, requestId, text]，code 必须为负数
func (s *Sender) ReplyError(ctx context.Context, to types.Peer, requestID int, code wire.MessageType, text string) error {
	if !code.IsError() {
		return fmt.Errorf("error code must be negative, got %d", int(code))
	}
	msg, err := wire.NewMessage(code, requestID, text)
	if err != nil {
		return err
	}
	return s.Send(ctx, msg, to)
}
