// Package udp 提供基于 UDP 的数据报传输
//
// 每个 Transport 绑定一个 UDP socket，后台 goroutine 循环读取数据报并交给
// 入站回调。传输层不做重传、排序或分片，这些语义由上层协议承担。
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("transport/udp")

// DefaultReadBufferSize 默认读缓冲区大小
const DefaultReadBufferSize = 64 * 1024

// ============================================================================
//                              选项
// ============================================================================

// Option UDP 传输选项
type Option func(*options)

type options struct {
	readBufferSize int
	inboundRate    float64
	inboundBurst   int
	metrics        *metrics.Metrics
}

// WithReadBufferSize 设置读缓冲区大小，超出的数据报被截断后丢弃
func WithReadBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readBufferSize = n
		}
	}
}

// WithInboundRate 限制入站数据报速率，perSecond <= 0 表示不限制
func WithInboundRate(perSecond float64, burst int) Option {
	return func(o *options) {
		o.inboundRate = perSecond
		o.inboundBurst = burst
	}
}

// WithMetrics 记录字节数与限流丢弃
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport UDP 数据报传输
type Transport struct {
	conn    *net.UDPConn
	local   types.Peer
	opts    options
	limiter *rate.Limiter

	handlerMu sync.RWMutex
	handler   interfaces.DatagramHandler

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

var (
	_ interfaces.Transport    = (*Transport)(nil)
	_ interfaces.PeerResolver = (*Transport)(nil)
)

// Listen 绑定 "host:port" 并启动读循环
func Listen(addr string, opts ...Option) (*Transport, error) {
	o := options{readBufferSize: DefaultReadBufferSize}
	for _, opt := range opts {
		opt(&o)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", addr, err)
	}

	t := &Transport{
		conn:  conn,
		local: peerFromAddrPort(conn.LocalAddr().(*net.UDPAddr).AddrPort()),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.inboundRate > 0 {
		burst := o.inboundBurst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(o.inboundRate), burst)
	}

	go t.readLoop()

	log.Debug("UDP 传输已启动", "addr", t.local.String())
	return t, nil
}

// Send 发送一个数据报
func (t *Transport) Send(ctx context.Context, data []byte, to types.Peer) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) > t.opts.readBufferSize {
		return fmt.Errorf("%w: %d bytes", ErrDatagramTooLarge, len(data))
	}

	dst, err := net.ResolveUDPAddr("udp", to.String())
	if err != nil {
		return fmt.Errorf("resolve %s: %w", to, err)
	}
	if _, err := t.conn.WriteToUDP(data, dst); err != nil {
		if t.closed.Load() {
			return ErrTransportClosed
		}
		return fmt.Errorf("write to %s: %w", to, err)
	}
	return nil
}

// ResolvePeer 把 p 转成入站数据报报告来源时的形式
//
// 主机名解析为 IP，IPv4 映射地址还原为 IPv4。有多个地址时优先与本地
// socket 同族的地址。
func (t *Transport) ResolvePeer(ctx context.Context, p types.Peer) (types.Peer, error) {
	if p.Port < 0 || p.Port > 65535 {
		return types.Peer{}, fmt.Errorf("%w: bad port %d", types.ErrInvalidPeer, p.Port)
	}
	if ip, err := netip.ParseAddr(p.Address); err == nil {
		return peerFromAddrPort(netip.AddrPortFrom(ip, uint16(p.Port))), nil
	}

	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", p.Address)
	if err != nil {
		return types.Peer{}, fmt.Errorf("resolve %s: %w", p, err)
	}
	ip, ok := t.pickAddr(ips)
	if !ok {
		return types.Peer{}, fmt.Errorf("resolve %s: %w", p, ErrNoAddress)
	}
	resolved := peerFromAddrPort(netip.AddrPortFrom(ip, uint16(p.Port)))
	log.Debug("已解析节点地址", "peer", p.String(), "resolved", resolved.String())
	return resolved, nil
}

func (t *Transport) pickAddr(ips []netip.Addr) (netip.Addr, bool) {
	if len(ips) == 0 {
		return netip.Addr{}, false
	}
	// 绑定到具体 IPv6 地址时优先 IPv6，否则优先 IPv4
	want6 := false
	if local, err := netip.ParseAddr(t.local.Address); err == nil {
		want6 = local.Is6() && !local.IsUnspecified()
	}
	for _, ip := range ips {
		if ip.Unmap().Is6() == want6 {
			return ip, true
		}
	}
	return ips[0], true
}

// SetHandler 设置入站回调
func (t *Transport) SetHandler(handler interfaces.DatagramHandler) {
	t.handlerMu.Lock()
	t.handler = handler
	t.handlerMu.Unlock()
}

// LocalPeer 返回本地绑定的端点
func (t *Transport) LocalPeer() types.Peer {
	return t.local
}

// Close 关闭 socket 并等待读循环退出
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		err = t.conn.Close()
		<-t.done
		log.Debug("UDP 传输已关闭", "addr", t.local.String())
	})
	return err
}

// readLoop 读取数据报直到 socket 关闭
func (t *Transport) readLoop() {
	defer close(t.done)

	// 多留一个字节用于识别被截断的数据报
	buf := make([]byte, t.opts.readBufferSize+1)
	for {
		n, src, err := t.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Debug("读取数据报失败", "err", err)
			continue
		}
		if n > t.opts.readBufferSize {
			log.Debug("丢弃超长数据报", "from", src.String(), "size", n)
			continue
		}
		if t.limiter != nil && !t.limiter.Allow() {
			t.opts.metrics.Dropped(metrics.DropRateLimit)
			continue
		}

		t.handlerMu.RLock()
		h := t.handler
		t.handlerMu.RUnlock()
		if h == nil {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		h(data, peerFromAddrPort(src))
	}
}

func peerFromAddrPort(ap netip.AddrPort) types.Peer {
	return types.NewPeer(ap.Addr().Unmap().String(), int(ap.Port()))
}
