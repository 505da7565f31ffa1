package sharedvar

import (
	"context"

	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// registerHandlers 注册 PING/GET/PUBLISH 三个请求处理器
func (s *Service) registerHandlers() error {
	if err := s.registry.Set(wire.TypePing, s.handlePing); err != nil {
		return err
	}
	if err := s.registry.Set(wire.TypeGet, s.handleGet); err != nil {
		return err
	}
	return s.registry.Set(wire.TypePublish, s.handlePublish)
}

// handlePing 回复空响应
func (s *Service) handlePing(msg *wire.Message, origin types.Peer) {
	s.reply(origin, msg.RequestID)
}

// handleGet 回复本地存储的值，未命中时回复空响应
func (s *Service) handleGet(msg *wire.Message, origin types.Peer) {
	var publicKey []byte
	if err := msg.Arg(0, &publicKey); err != nil {
		s.replyInvalid(origin, msg.RequestID, err)
		return
	}

	v := s.store.Get(types.KeyOf(publicKey))
	if v == nil {
		s.reply(origin, msg.RequestID)
		return
	}
	s.reply(origin, msg.RequestID, v)
}

// handlePublish 验证并接受更新的值
//
// 无论是否接受都回复空响应。
func (s *Service) handlePublish(msg *wire.Message, origin types.Peer) {
	var v types.SignedVariable
	if err := msg.Arg(0, &v); err != nil {
		s.replyInvalid(origin, msg.RequestID, err)
		return
	}
	if len(v.PublicKey) == 0 {
		s.replyInvalid(origin, msg.RequestID, nil)
		return
	}

	key := v.Key()
	switch {
	case !s.scheme.Verify(&v, v.PublicKey):
		log.Debug("拒绝签名无效的发布", "key", key.String(), "from", origin.String())
	case s.store.Offer(&v):
		s.metrics.Accepted(metrics.SourceRemote)
		log.Debug("接受远端发布", "key", key.String(), "from", origin.String())
	}
	s.reply(origin, msg.RequestID)
}

func (s *Service) reply(to types.Peer, rid int, args ...any) {
	if err := s.sender.Reply(context.Background(), to, rid, args...); err != nil {
		log.Debug("发送响应失败", "to", to.String(), "rid", rid, "err", err)
	}
}

func (s *Service) replyInvalid(to types.Peer, rid int, cause error) {
	log.Debug("请求载荷无效", "from", to.String(), "rid", rid, "err", cause)
	if err := s.sender.ReplyError(context.Background(), to, rid,
		wire.TypeInvalidPayload, types.ErrInvalidPayload.Error()); err != nil {
		log.Debug("发送错误响应失败", "to", to.String(), "rid", rid, "err", err)
	}
}
