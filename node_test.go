package sharedvar

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/transport/memory"
	"github.com/dep2p/go-sharedvar/pkg/lib/crypto"
	"github.com/dep2p/go-sharedvar/tests/mocks"
)

// ════════════════════════════════════════════════════════════════════════════
//                              测试辅助
// ════════════════════════════════════════════════════════════════════════════

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newTestNode 在内存网络上创建节点（不启动）
func newTestNode(t *testing.T, network *memory.Network, opts ...Option) *Node {
	t.Helper()
	opts = append([]Option{WithTransport(network.NewTransport())}, opts...)
	n, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func startTestNode(t *testing.T, network *memory.Network, opts ...Option) *Node {
	t.Helper()
	n := newTestNode(t, network, opts...)
	require.NoError(t, n.Start(testCtx(t)))
	return n
}

func testKey(t *testing.T, seed byte) ed25519.PrivateKey {
	t.Helper()
	priv, err := crypto.KeyFromSeed(bytes.Repeat([]byte{seed}, crypto.SeedSize))
	require.NoError(t, err)
	return priv
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造与生命周期
// ════════════════════════════════════════════════════════════════════════════

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero timeout", WithRequestTimeout(0)},
		{"zero concurrency", WithMaxConcurrency(0)},
		{"bad peer", WithPeers("not-an-address")},
		{"nil transport", WithTransport(nil)},
		{"nil scheme", WithSignatureScheme(nil)},
		{"nil config", WithConfig(nil)},
		{"missing config file", WithConfigFile("/nonexistent/sharedvar.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestNew_InvalidListen(t *testing.T) {
	_, err := New(WithListen("no-port"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestNode_Lifecycle(t *testing.T) {
	network := memory.NewNetwork()
	n := newTestNode(t, network)
	assert.Equal(t, StateIdle, n.State())

	// 本地操作在启动前可用，网络操作不可用
	assert.Nil(t, n.Value([]byte("k")))
	assert.ErrorIs(t, n.Connect(testCtx(t), NewPeer("127.0.0.1", 1)), ErrNotStarted)

	require.NoError(t, n.Start(testCtx(t)))
	assert.Equal(t, StateRunning, n.State())
	assert.ErrorIs(t, n.Start(testCtx(t)), ErrAlreadyStarted)

	require.NoError(t, n.Close())
	assert.Equal(t, StateStopped, n.State())
	assert.NoError(t, n.Close())
	assert.ErrorIs(t, n.Start(testCtx(t)), ErrNodeClosed)
	assert.Error(t, n.Connect(testCtx(t), NewPeer("127.0.0.1", 1)))
}

func TestNode_CloseWithoutStart(t *testing.T) {
	network := memory.NewNetwork()
	n := newTestNode(t, network)
	addr := n.LocalPeer()

	require.NoError(t, n.Close())

	// 传输已注销，地址可以重新监听
	_, err := network.Listen(addr)
	assert.NoError(t, err)
}

func TestNode_UserFxOptions(t *testing.T) {
	network := memory.NewNetwork()
	var cfg *config.Config
	n := newTestNode(t, network,
		WithRequestTimeout(3*time.Second),
		WithFxOptions(fx.Populate(&cfg)),
	)
	require.NotNil(t, cfg)
	assert.Same(t, n.Config(), cfg)
	assert.Equal(t, 3*time.Second, cfg.Protocol.RequestTimeout.Duration())
}

func TestNode_Metrics(t *testing.T) {
	network := memory.NewNetwork()

	on := newTestNode(t, network)
	require.NotNil(t, on.Metrics())
	families, err := on.Metrics().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	off := newTestNode(t, network, WithMetrics(false))
	assert.Nil(t, off.Metrics())
}

// ════════════════════════════════════════════════════════════════════════════
//                              节点连接
// ════════════════════════════════════════════════════════════════════════════

func TestNode_Connect(t *testing.T) {
	network := memory.NewNetwork()
	a := startTestNode(t, network)
	b := startTestNode(t, network)

	require.NoError(t, a.ConnectAddr(testCtx(t), b.LocalPeer().String()))
	assert.Equal(t, []Peer{b.LocalPeer()}, a.Peers())
	assert.Empty(t, b.Peers(), "connect is one-sided")

	a.Disconnect(b.LocalPeer())
	assert.Empty(t, a.Peers())

	assert.Error(t, a.ConnectAddr(testCtx(t), "bogus"))
}

// UDP 节点按主机名连接，登记的是解析后的端点
func TestNode_ConnectByHostname(t *testing.T) {
	startUDP := func() *Node {
		n, err := Start(testCtx(t), WithListen("127.0.0.1:0"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = n.Close() })
		return n
	}
	a, b := startUDP(), startUDP()
	port := a.LocalPeer().Port

	require.NoError(t, b.ConnectAddr(testCtx(t), fmt.Sprintf("localhost:%d", port)))
	assert.Equal(t, []Peer{a.LocalPeer()}, b.Peers())

	b.Disconnect(NewPeer("localhost", port))
	assert.Empty(t, b.Peers())
}

func TestNode_KnownPeers(t *testing.T) {
	network := memory.NewNetwork()
	a := startTestNode(t, network)
	b := startTestNode(t, network, WithPeers(a.LocalPeer().String()))

	assert.Eventually(t, func() bool {
		peers := b.Peers()
		return len(peers) == 1 && peers[0] == a.LocalPeer()
	}, 2*time.Second, 10*time.Millisecond)
}

// ════════════════════════════════════════════════════════════════════════════
//                              句柄
// ════════════════════════════════════════════════════════════════════════════

func TestHandle_ReadOnly(t *testing.T) {
	network := memory.NewNetwork()
	n := newTestNode(t, network)

	priv := testKey(t, 1)
	pub, err := crypto.PublicKeyOf(priv)
	require.NoError(t, err)

	h := n.Get(pub)
	assert.False(t, h.Writable())
	assert.Equal(t, pub, h.PublicKey())
	assert.Nil(t, h.Value())

	_, err = h.Set(testCtx(t), []byte("x"))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestHandle_SchemeMismatch(t *testing.T) {
	network := memory.NewNetwork()
	n := newTestNode(t, network, WithSignatureScheme(mocks.NewMockSignatureScheme()))

	_, err := n.Assign(testKey(t, 1))
	assert.ErrorIs(t, err, ErrSchemeMismatch)
}

func TestHandle_SetIncrementsSequence(t *testing.T) {
	network := memory.NewNetwork()
	n := startTestNode(t, network)

	w, err := n.Assign(testKey(t, 2))
	require.NoError(t, err)
	assert.True(t, w.Writable())

	res, err := w.Set(testCtx(t), []byte("one"))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.Propagated, "no lookup round recorded yet")

	res, err = w.Set(testCtx(t), []byte("two"))
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	v := n.Value(w.PublicKey())
	require.NotNil(t, v)
	assert.Equal(t, []byte("two"), v.Value)
	assert.Equal(t, uint64(2), crypto.Sequence(v))
	assert.True(t, w.Value().Equal(v))
}

// 读端拉取写端的值，拉取结果只缓存在句柄中
func TestHandle_RefreshPullsRemoteValue(t *testing.T) {
	network := memory.NewNetwork()
	writer := startTestNode(t, network)
	reader := startTestNode(t, network)
	require.NoError(t, reader.Connect(testCtx(t), writer.LocalPeer()))

	w, err := writer.Assign(testKey(t, 3))
	require.NoError(t, err)
	_, err = w.Set(testCtx(t), []byte("v1"))
	require.NoError(t, err)

	r := reader.Get(w.PublicKey())
	v, err := r.Refresh(testCtx(t))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, []byte("v1"), v.Value)
	assert.Nil(t, reader.Value(w.PublicKey()))
	assert.Equal(t, []Peer{writer.LocalPeer()}, reader.InterestedPeers(w.PublicKey()))

	_, err = w.Set(testCtx(t), []byte("v2"))
	require.NoError(t, err)

	v, err = r.Refresh(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v.Value)
	assert.Equal(t, uint64(2), crypto.Sequence(r.Value()))

	// 没有更新的值时返回当前值
	again, err := r.Refresh(testCtx(t))
	require.NoError(t, err)
	assert.True(t, again.Equal(v))
}

// 写端查询后，回应过的节点收到后续发布
func TestHandle_SetPushesToInterestedPeers(t *testing.T) {
	network := memory.NewNetwork()
	writer := startTestNode(t, network)
	holder := startTestNode(t, network)
	require.NoError(t, writer.Connect(testCtx(t), holder.LocalPeer()))

	priv := testKey(t, 4)
	v1, err := crypto.Sign(priv, 1, []byte("v1"))
	require.NoError(t, err)
	res, err := holder.Publish(testCtx(t), v1)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	var fired atomic.Int32
	holder.OnPublish(v1.PublicKey, func(v *SignedVariable) {
		if bytes.Equal(v.Value, []byte("v2")) {
			fired.Add(1)
		}
	})

	w, err := writer.Assign(priv)
	require.NoError(t, err)
	got, err := w.Refresh(testCtx(t))
	require.NoError(t, err)
	require.True(t, got.Equal(v1))

	res, err = w.Set(testCtx(t), []byte("v2"))
	require.NoError(t, err)
	assert.True(t, res.Propagated)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Acked)

	stored := holder.Value(v1.PublicKey)
	require.NotNil(t, stored)
	assert.Equal(t, []byte("v2"), stored.Value)
	assert.Equal(t, uint64(2), crypto.Sequence(stored))
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestHandle_OnChange(t *testing.T) {
	network := memory.NewNetwork()
	n := startTestNode(t, network)

	w, err := n.Assign(testKey(t, 5))
	require.NoError(t, err)

	var calls atomic.Int32
	h := w.OnChange(func(*SignedVariable) { calls.Add(1) })

	_, err = w.Set(testCtx(t), []byte("a"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	n.Unsubscribe(h)
	_, err = w.Set(testCtx(t), []byte("b"))
	require.NoError(t, err)
	assert.Never(t, func() bool { return calls.Load() != 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

// 监听器里读取句柄、取消订阅都不会阻塞节点
func TestHandle_OnChangeMayUseHandle(t *testing.T) {
	network := memory.NewNetwork()
	n := startTestNode(t, network)

	w, err := n.Assign(testKey(t, 6))
	require.NoError(t, err)

	values := make(chan []byte, 4)
	var sub ListenerHandle
	sub = w.OnChange(func(*SignedVariable) {
		values <- w.Value().Value
		n.Unsubscribe(sub)
	})

	done := make(chan error, 1)
	go func() {
		_, err := w.Set(context.Background(), []byte("a"))
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Set blocked by listener")
	}

	select {
	case v := <-values:
		assert.Equal(t, []byte("a"), v)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not run")
	}

	_, err = w.Set(testCtx(t), []byte("b"))
	require.NoError(t, err)
	_, err = n.Lookup(testCtx(t), w.PublicKey(), nil)
	require.NoError(t, err)
	assert.Never(t, func() bool { return len(values) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
