package sharedvar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sharedvar/internal/core/correlation"
	"github.com/dep2p/go-sharedvar/internal/core/dispatch"
	"github.com/dep2p/go-sharedvar/internal/core/eventloop"
	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/peerstore"
	"github.com/dep2p/go-sharedvar/internal/core/varstore"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("protocol/sharedvar")

// payload 响应载荷
type payload = []msgpack.RawMessage

// outcome 单个请求的终结结果
type outcome struct {
	payload payload
	err     error
}

// ============================================================================
//                              Service 实现
// ============================================================================

// Service 共享变量协议引擎
type Service struct {
	transport interfaces.Transport
	scheme    interfaces.SignatureScheme
	metrics   *metrics.Metrics
	config    *Config

	// 以下字段只在事件循环上访问
	loop       *eventloop.Loop
	table      *correlation.Table[payload]
	registry   *dispatch.Registry
	sender     *dispatch.Sender
	dispatcher *dispatch.Dispatcher
	peers      *peerstore.Registry
	store      *varstore.Store

	mu      sync.Mutex
	started bool
	stopped bool
}

// 确保 Service 实现了 interfaces.SharedVarService 接口
var _ interfaces.SharedVarService = (*Service)(nil)

// New 创建服务，m 可以为 nil
//
// 事件循环在创建时即开始运行，Start 之前本地操作（OnPublish、Value）
// 已经可用；网络操作需要先 Start。
func New(transport interfaces.Transport, scheme interfaces.SignatureScheme, m *metrics.Metrics, opts ...Option) (*Service, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if scheme == nil {
		return nil, ErrNilScheme
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	peers, err := peerstore.New(cfg.MaxTrackedKeys)
	if err != nil {
		return nil, fmt.Errorf("create peer registry: %w", err)
	}

	s := &Service{
		transport: transport,
		scheme:    scheme,
		metrics:   m,
		config:    cfg,
		loop:      eventloop.New(),
		registry:  dispatch.NewRegistry(),
		peers:     peers,
		store:     varstore.New(scheme),
	}

	tableOpts := []correlation.Option{
		correlation.WithTimeout(cfg.RequestTimeout),
		correlation.WithRIDMax(cfg.RIDMax),
		correlation.WithClock(cfg.Clock),
		correlation.WithExecutor(func(fn func()) {
			// 循环停止后关联表已关闭，丢弃到期通知即可
			_ = s.loop.Post(fn)
		}),
	}
	if cfg.StartOffset >= 0 {
		tableOpts = append(tableOpts, correlation.WithStartOffset(cfg.StartOffset))
	}
	s.table = correlation.New[payload](tableOpts...)
	s.sender = dispatch.NewSender(cfg.Codec, transport, m)
	s.dispatcher = dispatch.New(cfg.Codec, s.registry, s.table, s.sender, m)

	if err := s.registerHandlers(); err != nil {
		s.store.Close()
		return nil, err
	}

	s.loop.Start()
	return s, nil
}

// Start 接管传输的入站回调
func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	s.transport.SetHandler(s.onDatagram)
	log.Info("共享变量服务已启动", "addr", s.transport.LocalPeer().String())
	return nil
}

// Stop 停止服务
//
// 在途请求以 correlation.ErrClosed 终结，节点集合与本地存储被清空。
// 传输由创建者负责关闭。
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.transport.SetHandler(nil)

	var err error
	err = multierr.Append(err, s.loop.Run(context.Background(), func() {
		s.table.Close()
		s.peers.Clear()
		s.store.Clear()
		s.metrics.SetPending(0)
		s.metrics.SetPeers(0)
	}))
	s.loop.Stop()
	s.store.Close()

	log.Info("共享变量服务已停止")
	return err
}

// onDatagram 传输入站回调，把数据报投递到事件循环
func (s *Service) onDatagram(data []byte, from types.Peer) {
	if err := s.loop.Post(func() {
		s.dispatcher.HandleDatagram(data, from)
		s.metrics.SetPending(s.table.Len())
	}); err != nil {
		log.Debug("事件循环已停止，丢弃数据报", "from", from.String())
	}
}

func (s *Service) checkRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return ErrStopped
	case !s.started:
		return ErrNotStarted
	}
	return nil
}

// run 在事件循环上同步执行 fn
func (s *Service) run(ctx context.Context, fn func()) error {
	if err := s.loop.Run(ctx, fn); err != nil {
		if errors.Is(err, eventloop.ErrClosed) {
			return ErrStopped
		}
		return err
	}
	return nil
}

// ============================================================================
//                              单个请求
// ============================================================================

// request 发送一个请求并等待终结结果
//
// onDone 在事件循环上随终结结果执行（可为 nil），不受 ctx 影响；
// ctx 只限制调用方的等待时间，请求本身以响应、错误或截止时间结束。
func (s *Service) request(ctx context.Context, to types.Peer, typ wire.MessageType, onDone func(error), args ...any) (payload, error) {
	done := make(chan outcome, 1)

	finish := func(o outcome) {
		if errors.Is(o.err, correlation.ErrTimeout) {
			s.metrics.Timeout()
		}
		if onDone != nil {
			onDone(o.err)
		}
		done <- o
	}

	err := s.run(ctx, func() {
		id, err := s.table.Allocate(to, func(err error, p payload, _ types.Peer) correlation.Disposition {
			finish(outcome{payload: p, err: err})
			return correlation.Done
		})
		if err != nil {
			finish(outcome{err: err})
			return
		}
		s.metrics.SetPending(s.table.Len())

		msg, err := wire.NewMessage(typ, id, args...)
		if err == nil {
			err = s.sender.Send(context.Background(), msg, to)
		}
		if err != nil {
			// 发送失败立即终结，不等截止时间
			s.table.Resolve(id, to, err, nil)
			s.metrics.SetPending(s.table.Len())
		}
	})
	if err != nil {
		return nil, err
	}

	select {
	case o := <-done:
		return o.payload, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fatal 判断子请求错误是否应终止整个扇出
func fatal(err error) bool {
	return errors.Is(err, correlation.ErrIdentifierSpaceExhausted) ||
		errors.Is(err, correlation.ErrClosed) ||
		errors.Is(err, ErrStopped)
}

// ============================================================================
//                              节点管理
// ============================================================================

// resolve 由传输规范化 peer，传输不支持解析时原样返回
func (s *Service) resolve(ctx context.Context, peer types.Peer) (types.Peer, error) {
	r, ok := s.transport.(interfaces.PeerResolver)
	if !ok {
		return peer, nil
	}
	return r.ResolvePeer(ctx, peer)
}

// Connect 发送 PING，成功则加入节点集合，失败则移除
//
// peer 先经传输规范化（如主机名解析为 IP），加入集合的是规范化后的端点。
func (s *Service) Connect(ctx context.Context, peer types.Peer) error {
	if err := s.checkRunning(); err != nil {
		return err
	}
	resolved, err := s.resolve(ctx, peer)
	if err != nil {
		return fmt.Errorf("connect %s: %w", peer, err)
	}
	peer = resolved

	_, err = s.request(ctx, peer, wire.TypePing, func(err error) {
		if err == nil {
			s.peers.AddPeer(peer)
		} else {
			s.peers.RemovePeer(peer)
		}
		s.metrics.SetPeers(s.peers.Len())
	})
	if err != nil {
		log.Debug("连接节点失败", "peer", peer.String(), "err", err)
		return fmt.Errorf("connect %s: %w", peer, err)
	}

	log.Debug("已连接节点", "peer", peer.String())
	return nil
}

// Disconnect 从节点集合中移除，peer 的规范化方式与 Connect 相同
func (s *Service) Disconnect(peer types.Peer) {
	if resolved, err := s.resolve(context.Background(), peer); err == nil {
		peer = resolved
	}
	_ = s.run(context.Background(), func() {
		s.peers.RemovePeer(peer)
		s.metrics.SetPeers(s.peers.Len())
	})
}

// Peers 返回已知节点快照
func (s *Service) Peers() []types.Peer {
	var peers []types.Peer
	_ = s.run(context.Background(), func() {
		peers = s.peers.Peers()
	})
	return peers
}

// InterestedPeers 返回 key 当前的候选节点
func (s *Service) InterestedPeers(publicKey []byte) []types.Peer {
	var peers []types.Peer
	_ = s.run(context.Background(), func() {
		peers = s.peers.InterestedPeersFor(types.KeyOf(publicKey))
	})
	return peers
}

// ============================================================================
//                              查询与发布
// ============================================================================

// Lookup 向兴趣节点扇出 GET，返回比 current 更新的最新值
//
// 有效应答（可解码、非空、签名有效且属于 publicKey）的节点构成新的
// 收窄集合，在全部子请求结束后整体替换。没有比 current 更新的值时
// 返回 nil。ctx 结束时立即返回 ctx.Err()，本轮结果不记录。
func (s *Service) Lookup(ctx context.Context, publicKey []byte, current *types.SignedVariable) (*types.SignedVariable, error) {
	if err := s.checkRunning(); err != nil {
		return nil, err
	}
	key := types.KeyOf(publicKey)

	var targets []types.Peer
	if err := s.run(ctx, func() {
		targets = s.peers.InterestedPeersFor(key)
	}); err != nil {
		return nil, err
	}

	var (
		mu         sync.Mutex
		best       = current
		responders = make([]types.Peer, 0, len(targets))
	)

	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrency)
	for _, peer := range targets {
		g.Go(func() error {
			p, err := s.request(ctx, peer, wire.TypeGet, nil, publicKey)
			if err != nil {
				if ctx.Err() != nil || fatal(err) {
					return err
				}
				log.Debug("GET 失败", "key", key.String(), "peer", peer.String(), "err", err)
				return nil
			}

			v, ok := s.decodeVariable(p, publicKey)
			if !ok {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			responders = append(responders, peer)
			if best == nil || s.scheme.Fresher(v, best) {
				best = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.loop.Post(func() {
		// 本轮进行中被移除的节点不进入收窄集合
		kept := responders[:0]
		for _, p := range responders {
			if s.peers.HasPeer(p) {
				kept = append(kept, p)
			}
		}
		s.peers.RecordRoundResult(key, kept)
	}); err != nil {
		return nil, ErrStopped
	}

	log.Debug("查询完成", "key", key.String(), "candidates", len(targets), "valid", len(responders))
	if best == current {
		return nil, nil
	}
	return best, nil
}

// decodeVariable 校验 GET 响应：非空、可解码、属于 publicKey 且签名有效
func (s *Service) decodeVariable(p payload, publicKey []byte) (*types.SignedVariable, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var v types.SignedVariable
	if err := msgpack.Unmarshal(p[0], &v); err != nil {
		return nil, false
	}
	if types.KeyOf(v.PublicKey) != types.KeyOf(publicKey) {
		return nil, false
	}
	if !s.scheme.Verify(&v, publicKey) {
		return nil, false
	}
	return &v, true
}

// Publish 本地存储并推送给已记录的兴趣节点
//
// 本地存储不做签名验证，新鲜度规则照常适用。该键尚无记录的收窄集合时
// 不发生任何网络发送，返回 Propagated == false。
func (s *Service) Publish(ctx context.Context, v *types.SignedVariable) (types.PublishResult, error) {
	var res types.PublishResult
	if v == nil {
		return res, ErrNilVariable
	}
	if err := s.checkRunning(); err != nil {
		return res, err
	}
	key := v.Key()

	var (
		targets  []types.Peer
		recorded bool
	)
	if err := s.run(ctx, func() {
		if res.Accepted = s.store.Offer(v); res.Accepted {
			s.metrics.Accepted(metrics.SourceLocal)
		}
		targets, recorded = s.peers.Narrowed(key)
	}); err != nil {
		return res, err
	}

	if !recorded {
		log.Debug("无兴趣节点，仅本地存储", "key", key.String(), "accepted", res.Accepted)
		return res, nil
	}
	res.Propagated = true
	res.Sent = len(targets)

	var (
		mu    sync.Mutex
		acked int
	)
	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrency)
	for _, peer := range targets {
		g.Go(func() error {
			if _, err := s.request(ctx, peer, wire.TypePublish, nil, v); err != nil {
				if ctx.Err() != nil || fatal(err) {
					return err
				}
				log.Debug("PUBLISH 失败", "key", key.String(), "peer", peer.String(), "err", err)
				return nil
			}
			mu.Lock()
			acked++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Acked = acked
	log.Debug("发布完成", "key", key.String(), "sent", res.Sent, "acked", res.Acked)
	return res, nil
}

// ============================================================================
//                              本地存储与监听
// ============================================================================

// OnPublish 注册变量被接受时的监听器
//
// 监听器在存储的投递 goroutine 上按接受顺序调用，可以回调本服务的
// 方法。服务停止后返回零值句柄。
func (s *Service) OnPublish(publicKey []byte, listener types.PublishListener) types.ListenerHandle {
	var h types.ListenerHandle
	_ = s.run(context.Background(), func() {
		h = s.store.Subscribe(types.KeyOf(publicKey), listener)
	})
	return h
}

// Unsubscribe 按句柄移除监听器，返回后不再有新的调用开始
func (s *Service) Unsubscribe(handle types.ListenerHandle) {
	_ = s.run(context.Background(), func() {
		s.store.Unsubscribe(handle)
	})
}

// Value 返回本地存储的值（副本）
func (s *Service) Value(publicKey []byte) *types.SignedVariable {
	var v *types.SignedVariable
	_ = s.run(context.Background(), func() {
		v = s.store.Get(types.KeyOf(publicKey)).Clone()
	})
	return v
}

// LocalPeer 返回本地端点
func (s *Service) LocalPeer() types.Peer {
	return s.transport.LocalPeer()
}
