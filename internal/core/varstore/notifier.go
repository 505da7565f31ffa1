package varstore

import (
	"sync"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

// event 一次接受对应的投递任务
type event struct {
	value *types.SignedVariable
	to    []*listener
}

// notifier 单 goroutine 投递队列
//
// 入队从不阻塞，队列无界。
type notifier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []event
	busy   bool
	closed bool
}

func newNotifier() *notifier {
	n := &notifier{}
	n.cond = sync.NewCond(&n.mu)
	go n.run()
	return n
}

func (n *notifier) enqueue(e event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.queue = append(n.queue, e)
	n.cond.Broadcast()
}

func (n *notifier) run() {
	for {
		n.mu.Lock()
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if n.closed {
			n.queue = nil
			n.mu.Unlock()
			n.cond.Broadcast()
			return
		}
		e := n.queue[0]
		n.queue[0] = event{}
		n.queue = n.queue[1:]
		n.busy = true
		n.mu.Unlock()

		e.deliver()

		n.mu.Lock()
		n.busy = false
		n.cond.Broadcast()
		n.mu.Unlock()
	}
}

func (n *notifier) flush() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for (len(n.queue) > 0 || n.busy) && !n.closed {
		n.cond.Wait()
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	n.cond.Broadcast()
}

func (e event) deliver() {
	for _, l := range e.to {
		if l.active.Load() {
			l.call(e.value)
		}
	}
}

func (l *listener) call(v *types.SignedVariable) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("发布监听器 panic", "key", v.Key(), "listener", l.id, "panic", r)
		}
	}()
	l.fn(v)
}
