package sharedvar

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/dep2p/go-sharedvar/pkg/lib/crypto"
)

// Handle 单个共享变量的句柄
//
// 由 Node.Get（只读）或 Node.Assign（可写）创建。句柄缓存最近一次
// Refresh 取回的值，Lookup 结果本身不会写入节点的本地存储。
type Handle struct {
	node      *Node
	publicKey []byte
	priv      ed25519.PrivateKey

	mu     sync.Mutex
	latest *SignedVariable
}

// Get 返回公钥对应的只读句柄
func (n *Node) Get(publicKey []byte) *Handle {
	return &Handle{node: n, publicKey: bytes.Clone(publicKey)}
}

// Assign 返回私钥对应的可写句柄
//
// 写句柄使用内置的 Ed25519 方案签名，节点配置了其它方案时返回 ErrSchemeMismatch。
func (n *Node) Assign(priv ed25519.PrivateKey) (*Handle, error) {
	if _, ok := n.opts.scheme.(crypto.Ed25519Scheme); !ok {
		return nil, ErrSchemeMismatch
	}
	pub, err := crypto.PublicKeyOf(priv)
	if err != nil {
		return nil, err
	}
	return &Handle{node: n, publicKey: pub, priv: priv}, nil
}

// PublicKey 返回变量公钥
func (h *Handle) PublicKey() []byte {
	return bytes.Clone(h.publicKey)
}

// Writable 是否可写
func (h *Handle) Writable() bool {
	return h.priv != nil
}

// Value 返回已知的最新值（句柄缓存与本地存储中较新者）
func (h *Handle) Value() *SignedVariable {
	stored := h.node.Value(h.publicKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fresher(h.latest, stored).Clone()
}

// Refresh 向兴趣节点查询更新的值
//
// 没有更新的值时返回当前已知值。
func (h *Handle) Refresh(ctx context.Context) (*SignedVariable, error) {
	current := h.Value()
	v, err := h.node.Lookup(ctx, h.publicKey, current)
	if err != nil {
		return current, err
	}
	if v != nil {
		h.remember(v)
		return v.Clone(), nil
	}
	return current, nil
}

// Set 以下一个序列号签名并发布 value
//
// 序列号接在已知的最新值之后，需要先 Refresh 才能感知远端写入。
func (h *Handle) Set(ctx context.Context, value []byte) (PublishResult, error) {
	if h.priv == nil {
		return PublishResult{}, ErrReadOnly
	}

	seq := crypto.Sequence(h.Value()) + 1
	v, err := crypto.Sign(h.priv, seq, value)
	if err != nil {
		return PublishResult{}, err
	}
	h.remember(v)
	return h.node.Publish(ctx, v)
}

// OnChange 注册本地存储接受新值时的监听器
//
// 监听器异步调用，可以在其中读取 h.Value 或取消订阅。
func (h *Handle) OnChange(listener PublishListener) ListenerHandle {
	return h.node.OnPublish(h.publicKey, listener)
}

func (h *Handle) remember(v *SignedVariable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = h.fresher(h.latest, v)
}

func (h *Handle) fresher(a, b *SignedVariable) *SignedVariable {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case h.node.opts.scheme.Fresher(b, a):
		return b
	default:
		return a
	}
}
