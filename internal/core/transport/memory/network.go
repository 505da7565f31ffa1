// Package memory 提供进程内数据报网络
//
// Network 模拟一个不可靠的数据报网络：发往未注册端点的数据报被静默丢弃，
// 每条有向链路可以设置丢包率。每个端点有独立的投递 goroutine，入站回调
// 按到达顺序逐个执行。
//
//	net := memory.NewNetwork()
//	a := net.NewTransport()
//	b := net.NewTransport()
//	net.SetLoss(a.LocalPeer(), b.LocalPeer(), 1) // a -> b 全部丢弃
package memory

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

// DefaultHost 自动分配端点使用的地址
const DefaultHost = "127.0.0.1"

// inboxSize 每个端点的入站队列长度，队列满时丢弃
const inboxSize = 1024

type link struct {
	from, to types.Peer
}

// Stats 网络统计
type Stats struct {
	Sent      int64
	Delivered int64
	Dropped   int64
}

// ============================================================================
//                              Network 实现
// ============================================================================

// Network 进程内数据报网络
type Network struct {
	mu        sync.RWMutex
	endpoints map[types.Peer]*Transport
	loss      map[link]float64
	nextPort  int

	sent      atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewNetwork 创建空网络
func NewNetwork() *Network {
	return &Network{
		endpoints: make(map[types.Peer]*Transport),
		loss:      make(map[link]float64),
		nextPort:  10000,
	}
}

// Listen 在指定端点上创建传输
func (n *Network) Listen(p types.Peer) (*Transport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.endpoints[p]; ok {
		return nil, ErrAddressInUse
	}
	t := newTransport(n, p)
	n.endpoints[p] = t
	return t, nil
}

// NewTransport 在自动分配的端点上创建传输
func (n *Network) NewTransport() *Transport {
	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		p := types.NewPeer(DefaultHost, n.nextPort)
		n.nextPort++
		if _, ok := n.endpoints[p]; ok {
			continue
		}
		t := newTransport(n, p)
		n.endpoints[p] = t
		return t
	}
}

// SetLoss 设置 from -> to 链路的丢包率，取值 [0, 1]
func (n *Network) SetLoss(from, to types.Peer, rate float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	l := link{from: from, to: to}
	if rate <= 0 {
		delete(n.loss, l)
		return
	}
	n.loss[l] = min(rate, 1)
}

// Block 丢弃 from -> to 的全部数据报
func (n *Network) Block(from, to types.Peer) {
	n.SetLoss(from, to, 1)
}

// Unblock 恢复 from -> to 链路
func (n *Network) Unblock(from, to types.Peer) {
	n.SetLoss(from, to, 0)
}

// Stats 返回网络统计
func (n *Network) Stats() Stats {
	return Stats{
		Sent:      n.sent.Load(),
		Delivered: n.delivered.Load(),
		Dropped:   n.dropped.Load(),
	}
}

// route 把数据报交给目标端点的入站队列
func (n *Network) route(from, to types.Peer, data []byte) {
	n.sent.Add(1)

	n.mu.RLock()
	dst := n.endpoints[to]
	rate := n.loss[link{from: from, to: to}]
	n.mu.RUnlock()

	if dst == nil || (rate > 0 && rand.Float64() < rate) {
		n.dropped.Add(1)
		return
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	if !dst.enqueue(datagram{data: buf, from: from}) {
		n.dropped.Add(1)
	}
}

func (n *Network) remove(p types.Peer) {
	n.mu.Lock()
	delete(n.endpoints, p)
	n.mu.Unlock()
}
