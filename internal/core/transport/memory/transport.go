package memory

import (
	"context"
	"sync"

	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

type datagram struct {
	data []byte
	from types.Peer
}

// Transport 进程内数据报传输
type Transport struct {
	network *Network
	local   types.Peer

	mu      sync.RWMutex
	handler interfaces.DatagramHandler
	closed  bool

	inbox chan datagram
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// 确保实现 interfaces.Transport 接口
var _ interfaces.Transport = (*Transport)(nil)

func newTransport(n *Network, p types.Peer) *Transport {
	t := &Transport{
		network: n,
		local:   p,
		inbox:   make(chan datagram, inboxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go t.deliverLoop()
	return t
}

// Send 发送一个数据报
func (t *Transport) Send(ctx context.Context, data []byte, to types.Peer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTransportClosed
	}

	t.network.route(t.local, to, data)
	return nil
}

// SetHandler 设置入站回调
func (t *Transport) SetHandler(handler interfaces.DatagramHandler) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

// LocalPeer 返回本地端点
func (t *Transport) LocalPeer() types.Peer {
	return t.local
}

// Close 从网络注销并停止投递
func (t *Transport) Close() error {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		t.network.remove(t.local)
		close(t.quit)
		<-t.done
	})
	return nil
}

func (t *Transport) enqueue(d datagram) bool {
	select {
	case <-t.quit:
		return false
	default:
	}
	select {
	case t.inbox <- d:
		return true
	default:
		return false
	}
}

// deliverLoop 按到达顺序逐个调用入站回调
func (t *Transport) deliverLoop() {
	defer close(t.done)
	for {
		select {
		case <-t.quit:
			return
		case d := <-t.inbox:
			t.mu.RLock()
			h := t.handler
			t.mu.RUnlock()
			if h == nil {
				t.network.dropped.Add(1)
				continue
			}
			t.network.delivered.Add(1)
			h(d.data, d.from)
		}
	}
}
