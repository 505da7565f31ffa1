// Package eventloop 提供单线程事件循环
//
// 引擎的全部可变状态（关联表、节点注册表、本地存储）只在循环
// goroutine 上访问：入站数据报、定时器到期和 API 调用都以任务的
// 形式投递进来，按投递顺序逐个执行，彼此之间不会并发。
package eventloop

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/dep2p/go-sharedvar/internal/util/logger"
)

var log = logger.Logger("eventloop")

// ErrClosed 事件循环已停止
var ErrClosed = errors.New("event loop closed")

// ============================================================================
//                              Loop 实现
// ============================================================================

// Loop 单线程事件循环
//
// 任务队列无界，Post 永不阻塞，因此任务内部也可以安全地 Post。
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	started   bool
	closeOnce sync.Once
}

// New 创建事件循环（未启动）
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start 启动循环 goroutine，重复调用无效
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.closed {
		return
	}
	l.started = true
	go l.run()
}

// Post 投递任务，循环停止后返回 ErrClosed
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run 在循环上执行 fn 并等待其完成
//
// 不得在循环 goroutine 内部调用，否则死锁。
func (l *Loop) Run(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// 停止前可能刚好执行完
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop 停止循环并等待 goroutine 退出
//
// 队列中尚未执行的任务被丢弃。
func (l *Loop) Stop() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		started := l.started
		l.mu.Unlock()

		close(l.quit)
		if started {
			<-l.done
		} else {
			close(l.done)
		}
	})
}

// Done 返回循环退出时关闭的通道
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			batch := l.queue
			l.queue = nil
			l.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				select {
				case <-l.quit:
					return
				default:
				}
				l.exec(fn)
			}
		}
	}
}

// exec 执行单个任务，任务 panic 不会终止循环
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("任务 panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
