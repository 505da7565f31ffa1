// Package correlation 实现请求关联表
//
// 关联表为出站请求分配请求 ID，跟踪带截止时间的在途请求，
// 并把入站响应匹配回注册的回调。
//
// 关联表不是并发安全的：引擎只在事件循环上调用它，
// 定时器到期也通过 Executor 投递回事件循环。
package correlation

import (
	"math/rand/v2"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("correlation")

// ============================================================================
//                              回调契约
// ============================================================================

// Disposition 回调对请求去留的决定
type Disposition int

const (
	// Done 终态，移除在途请求
	Done Disposition = iota

	// Continue 保持在途请求（流式响应），截止定时器继续计时
	//
	// 仅在无错误时生效。
	Continue
)

// Callback 响应回调
//
// 超时时 err 为 ErrTimeout，payload 为零值。
type Callback[P any] func(err error, payload P, origin types.Peer) Disposition

// ============================================================================
//                              Table 实现
// ============================================================================

// pending 在途请求
type pending[P any] struct {
	id     int
	origin types.Peer
	cb     Callback[P]
	timer  *clock.Timer
}

// Table 请求关联表
type Table[P any] struct {
	cfg     config
	next    int
	entries map[int]*pending[P]
	closed  bool
}

// New 创建关联表
func New[P any](opts ...Option) *Table[P] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	size := cfg.ridMax + 1
	next := cfg.startOffset
	if next < 0 {
		// 随机起点，降低与快速重启的对端残留 ID 碰撞的概率
		next = rand.IntN(size)
	}

	return &Table[P]{
		cfg:     cfg,
		next:    next % size,
		entries: make(map[int]*pending[P]),
	}
}

// Allocate 分配请求 ID 并注册在途请求
//
// 扫描整个 ID 空间一遍仍找不到空闲 ID 时返回
// ErrIdentifierSpaceExhausted。
func (t *Table[P]) Allocate(origin types.Peer, cb Callback[P]) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}

	size := t.cfg.ridMax + 1
	for i := 0; i < size; i++ {
		id := t.next
		t.next = (t.next + 1) % size

		if _, busy := t.entries[id]; busy {
			continue
		}

		p := &pending[P]{id: id, origin: origin, cb: cb}
		p.timer = t.cfg.clock.AfterFunc(t.cfg.timeout, func() {
			t.cfg.executor(func() { t.expire(p) })
		})
		t.entries[id] = p
		return id, nil
	}

	log.Warn("请求 ID 空间耗尽", "inflight", len(t.entries))
	return 0, ErrIdentifierSpaceExhausted
}

// Resolve 把响应（或错误）交给对应的回调
//
// 找不到在途请求，或 origin 与分配时记录的节点不一致时静默忽略，
// 返回 false。
func (t *Table[P]) Resolve(id int, origin types.Peer, err error, payload P) bool {
	p, ok := t.entries[id]
	if !ok {
		log.Debug("未知请求的响应", "rid", id, "peer", origin)
		return false
	}
	if p.origin != origin {
		log.Debug("响应来源不匹配", "rid", id, "want", p.origin, "got", origin)
		return false
	}

	disp := p.cb(err, payload, origin)
	if err == nil && disp == Continue {
		return true
	}

	t.remove(p)
	return true
}

// expire 截止时间到期
func (t *Table[P]) expire(p *pending[P]) {
	if cur, ok := t.entries[p.id]; !ok || cur != p {
		// 已经终结，或 ID 已被重新分配
		return
	}
	delete(t.entries, p.id)

	log.Debug("请求超时", "rid", p.id, "peer", p.origin)
	var zero P
	p.cb(ErrTimeout, zero, p.origin)
}

func (t *Table[P]) remove(p *pending[P]) {
	if cur, ok := t.entries[p.id]; ok && cur == p {
		delete(t.entries, p.id)
		p.timer.Stop()
	}
}

// Len 返回在途请求数
func (t *Table[P]) Len() int {
	return len(t.entries)
}

// Has 检查 ID 是否在途
func (t *Table[P]) Has(id int) bool {
	_, ok := t.entries[id]
	return ok
}

// Close 关闭关联表
//
// 停止所有定时器，并以 ErrClosed 终结每个在途请求，
// 让等待中的调用方立即返回。
func (t *Table[P]) Close() {
	if t.closed {
		return
	}
	t.closed = true

	entries := t.entries
	t.entries = make(map[int]*pending[P])

	var zero P
	for _, p := range entries {
		p.timer.Stop()
		p.cb(ErrClosed, zero, p.origin)
	}
}
