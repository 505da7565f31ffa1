package sharedvar

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	svproto "github.com/dep2p/go-sharedvar/internal/protocol/sharedvar"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("sharedvar")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已关闭，不可重启
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// startTimeout 启动超时（Fx App Start）
	startTimeout = 30 * time.Second

	// stopTimeout 关闭超时
	stopTimeout = 15 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node 共享变量节点，用户交互的主入口
//
// 本地操作（Value、OnPublish）在 New 之后即可使用，网络操作需要先 Start。
type Node struct {
	opts *options
	app  *fx.App

	// 由 Fx 注入
	svc       *svproto.Service
	transport interfaces.Transport
	metrics   *metrics.Metrics

	mu    sync.Mutex
	state NodeState
}

// New 创建节点（不启动）
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	node := &Node{opts: o}
	app, err := buildFxApp(o, node)
	if err != nil {
		return nil, err
	}
	node.app = app
	return node, nil
}

// Start 创建并启动节点
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		_ = node.Close()
		return nil, err
	}
	return node, nil
}

// Start 启动节点
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrNodeClosed
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := n.app.Start(startCtx); err != nil {
		return err
	}

	n.state = StateRunning
	log.Info("节点已启动", "addr", n.transport.LocalPeer().String(), "version", Version)
	return nil
}

// Close 关闭节点，重复调用无效
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev := n.state
	if prev == StateStopped {
		return nil
	}
	n.state = StateStopped

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	var err error
	if prev == StateRunning {
		err = n.app.Stop(ctx)
	} else {
		// 未启动的应用没有可执行的停止钩子
		err = multierr.Combine(n.svc.Stop(), n.transport.Close())
	}

	log.Info("节点已关闭", "addr", n.transport.LocalPeer().String())
	return err
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ════════════════════════════════════════════════════════════════════════════
//                              节点集合
// ════════════════════════════════════════════════════════════════════════════

// LocalPeer 返回本地绑定的端点
func (n *Node) LocalPeer() Peer {
	return n.transport.LocalPeer()
}

// Connect PING 对端，成功后加入节点集合
func (n *Node) Connect(ctx context.Context, peer Peer) error {
	return n.svc.Connect(ctx, peer)
}

// ConnectAddr 解析 "host:port" 后连接
func (n *Node) ConnectAddr(ctx context.Context, addr string) error {
	peer, err := types.ParsePeer(addr)
	if err != nil {
		return err
	}
	return n.svc.Connect(ctx, peer)
}

// Disconnect 从节点集合中移除
func (n *Node) Disconnect(peer Peer) {
	n.svc.Disconnect(peer)
}

// Peers 返回已知节点（按地址排序）
func (n *Node) Peers() []Peer {
	return n.svc.Peers()
}

// InterestedPeers 返回某个键当前的兴趣节点
func (n *Node) InterestedPeers(publicKey []byte) []Peer {
	return n.svc.InterestedPeers(publicKey)
}

// ════════════════════════════════════════════════════════════════════════════
//                              变量操作
// ════════════════════════════════════════════════════════════════════════════

// Lookup 向兴趣节点查询比 current 更新的值，没有时返回 nil
//
// 查询结果不写入本地存储。
func (n *Node) Lookup(ctx context.Context, publicKey []byte, current *SignedVariable) (*SignedVariable, error) {
	return n.svc.Lookup(ctx, publicKey, current)
}

// Publish 本地存储并推送给兴趣节点
func (n *Node) Publish(ctx context.Context, v *SignedVariable) (PublishResult, error) {
	return n.svc.Publish(ctx, v)
}

// OnPublish 注册变量被接受时的监听器
//
// 监听器在独立的投递 goroutine 上按接受顺序调用，可以回调 Node 与 Handle 的方法。
func (n *Node) OnPublish(publicKey []byte, listener PublishListener) ListenerHandle {
	return n.svc.OnPublish(publicKey, listener)
}

// Unsubscribe 移除监听器
func (n *Node) Unsubscribe(handle ListenerHandle) {
	n.svc.Unsubscribe(handle)
}

// Value 返回本地存储的值
func (n *Node) Value(publicKey []byte) *SignedVariable {
	return n.svc.Value(publicKey)
}

// ════════════════════════════════════════════════════════════════════════════
//                              其它
// ════════════════════════════════════════════════════════════════════════════

// Config 返回生效的配置
func (n *Node) Config() *config.Config {
	return n.opts.config
}

// Metrics 返回指标采集器，指标关闭时返回 nil
func (n *Node) Metrics() prometheus.Gatherer {
	if n.metrics == nil {
		return nil
	}
	return n.metrics.Registry()
}

// RegisterExtension 注册 MessagePack 扩展类型
//
// 进程级注册，所有节点共享。
func RegisterExtension(id int8, value msgpack.MarshalerUnmarshaler) {
	wire.RegisterExtension(id, value)
}
