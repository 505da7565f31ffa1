// Package varstore 实现本地值存储与发布事件分发
//
// 每个键只保存最近一次被接受的签名变量。新值只有在严格比已存值
// 更新（按签名方案的新鲜度比较）时才会被接受；每次接受都会通知该键的
// 监听器，无论来源是本地 Publish 还是对端的 PUBLISH 请求。
//
// 监听器不在调用 Offer 的 goroutine 上执行：事件进入无界队列，由
// Store 自己的投递 goroutine 按接受顺序、再按注册顺序依次调用。监听器
// 因此可以回调引擎的阻塞方法。
//
// 除 Flush 与 Close 外，Store 不是并发安全的，由引擎的事件循环独占访问。
package varstore

import (
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("varstore")

// listener 监听器条目
type listener struct {
	id string
	fn types.PublishListener

	// 取消订阅后置为 false，已排队的事件不再投递
	active atomic.Bool
}

// ============================================================================
//                              Store 实现
// ============================================================================

// Store 本地值存储
type Store struct {
	scheme    interfaces.SignatureScheme
	values    map[types.Key]*types.SignedVariable
	listeners map[types.Key][]*listener
	notifier  *notifier
}

// New 创建存储并启动投递 goroutine，用完后调用 Close
func New(scheme interfaces.SignatureScheme) *Store {
	return &Store{
		scheme:    scheme,
		values:    make(map[types.Key]*types.SignedVariable),
		listeners: make(map[types.Key][]*listener),
		notifier:  newNotifier(),
	}
}

// Get 返回 key 的已存值，不存在时返回 nil
func (s *Store) Get(key types.Key) *types.SignedVariable {
	return s.values[key]
}

// Offer 提交一个值
//
// 尚无已存值或 v 严格更新时接受：保存并通知监听器，返回 true。
// 不做签名验证，调用方负责（PUBLISH 处理器先验证，本地 Publish 信任自己）。
func (s *Store) Offer(v *types.SignedVariable) bool {
	if v == nil {
		return false
	}
	key := v.Key()

	if cur, ok := s.values[key]; ok && !s.scheme.Fresher(v, cur) {
		log.Debug("值不比已存值新", "key", key)
		return false
	}

	accepted := v.Clone()
	s.values[key] = accepted
	log.Debug("已接受新值", "key", key)

	s.emit(key, accepted)
	return true
}

// Subscribe 注册 key 的监听器，返回取消订阅用的句柄
func (s *Store) Subscribe(key types.Key, fn types.PublishListener) types.ListenerHandle {
	l := &listener{id: uuid.NewString(), fn: fn}
	l.active.Store(true)
	s.listeners[key] = append(s.listeners[key], l)
	return types.ListenerHandle{Key: key, ID: l.id}
}

// Unsubscribe 按句柄移除监听器，返回是否找到
func (s *Store) Unsubscribe(h types.ListenerHandle) bool {
	ls := s.listeners[h.Key]
	idx := slices.IndexFunc(ls, func(l *listener) bool { return l.id == h.ID })
	if idx < 0 {
		return false
	}
	ls[idx].active.Store(false)

	// 新切片，分发中的快照不受影响
	rest := slices.Delete(slices.Clone(ls), idx, idx+1)
	if len(rest) == 0 {
		delete(s.listeners, h.Key)
	} else {
		s.listeners[h.Key] = rest
	}
	return true
}

// Listeners 返回 key 的监听器数量
func (s *Store) Listeners(key types.Key) int {
	return len(s.listeners[key])
}

// Len 返回已存值的键数
func (s *Store) Len() int {
	return len(s.values)
}

// Clear 清空值与监听器，尚未投递的事件被丢弃
func (s *Store) Clear() {
	for _, ls := range s.listeners {
		for _, l := range ls {
			l.active.Store(false)
		}
	}
	s.values = make(map[types.Key]*types.SignedVariable)
	s.listeners = make(map[types.Key][]*listener)
}

// Flush 等待已排队的事件全部投递完成
//
// 不得在监听器内调用。
func (s *Store) Flush() {
	s.notifier.flush()
}

// Close 停止投递 goroutine，不等待队列排空
func (s *Store) Close() {
	s.notifier.close()
}

// emit 把事件连同当前监听器快照放入投递队列
func (s *Store) emit(key types.Key, v *types.SignedVariable) {
	ls := s.listeners[key]
	if len(ls) == 0 {
		return
	}
	s.notifier.enqueue(event{value: v.Clone(), to: ls})
}
