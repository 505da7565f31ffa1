package peerstore

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("peerstore")

// DefaultMaxTrackedKeys 默认最多跟踪的变量键数
const DefaultMaxTrackedKeys = 65536

// keyState 单个键的收窄节点集合
type keyState struct {
	peers []types.Peer
}

// ============================================================================
//                              Registry 实现
// ============================================================================

// Registry 节点注册表
type Registry struct {
	peers map[types.Peer]struct{}
	keys  *lru.Cache[types.Key, *keyState]
}

// New 创建注册表，maxTrackedKeys 为每键状态的容量上限
func New(maxTrackedKeys int) (*Registry, error) {
	if maxTrackedKeys <= 0 {
		return nil, ErrInvalidCapacity
	}
	keys, err := lru.New[types.Key, *keyState](maxTrackedKeys)
	if err != nil {
		return nil, err
	}
	return &Registry{
		peers: make(map[types.Peer]struct{}),
		keys:  keys,
	}, nil
}

// AddPeer 加入节点（幂等）
func (r *Registry) AddPeer(p types.Peer) {
	if _, ok := r.peers[p]; ok {
		return
	}
	r.peers[p] = struct{}{}
	log.Debug("节点已加入", "peer", p, "total", len(r.peers))
}

// RemovePeer 移除节点（幂等），同时从所有收窄集合中剔除
func (r *Registry) RemovePeer(p types.Peer) {
	if _, ok := r.peers[p]; !ok {
		return
	}
	delete(r.peers, p)

	for _, key := range r.keys.Keys() {
		st, ok := r.keys.Peek(key)
		if !ok || !slices.Contains(st.peers, p) {
			continue
		}
		st.peers = slices.DeleteFunc(slices.Clone(st.peers), func(q types.Peer) bool { return q == p })
	}
	log.Debug("节点已移除", "peer", p, "total", len(r.peers))
}

// HasPeer 检查节点是否已知
func (r *Registry) HasPeer(p types.Peer) bool {
	_, ok := r.peers[p]
	return ok
}

// Peers 返回排序后的已知节点快照
func (r *Registry) Peers() []types.Peer {
	out := make([]types.Peer, 0, len(r.peers))
	for p := range r.peers {
		out = append(out, p)
	}
	sortPeers(out)
	return out
}

// Len 返回已知节点数
func (r *Registry) Len() int {
	return len(r.peers)
}

// InterestedPeersFor 返回 key 的候选节点
//
// 最近一轮记录了至少一个节点时返回该收窄集合，
// 否则（尚无轮次、被淘汰、或上一轮无人有效应答）返回全部已知节点。
func (r *Registry) InterestedPeersFor(key types.Key) []types.Peer {
	if st, ok := r.keys.Get(key); ok && len(st.peers) > 0 {
		return slices.Clone(st.peers)
	}
	return r.Peers()
}

// Narrowed 返回 key 已记录的收窄集合，ok 为 false 表示尚无轮次
func (r *Registry) Narrowed(key types.Key) ([]types.Peer, bool) {
	st, ok := r.keys.Get(key)
	if !ok {
		return nil, false
	}
	return slices.Clone(st.peers), true
}

// RecordRoundResult 用本轮有效应答的节点整体替换 key 的收窄集合
func (r *Registry) RecordRoundResult(key types.Key, responding []types.Peer) {
	peers := dedupe(responding)
	r.keys.Add(key, &keyState{peers: peers})
	log.Debug("已记录查询轮次", "key", key, "peers", len(peers))
}

// Forget 丢弃 key 的收窄集合
func (r *Registry) Forget(key types.Key) {
	r.keys.Remove(key)
}

// TrackedKeys 返回正在跟踪的键数
func (r *Registry) TrackedKeys() int {
	return r.keys.Len()
}

// Clear 清空全部状态（引擎关闭时调用）
func (r *Registry) Clear() {
	r.peers = make(map[types.Peer]struct{})
	r.keys.Purge()
}

func dedupe(peers []types.Peer) []types.Peer {
	out := slices.Clone(peers)
	sortPeers(out)
	return slices.Compact(out)
}

func sortPeers(peers []types.Peer) {
	slices.SortFunc(peers, func(a, b types.Peer) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
}
