// Package interfaces 定义 sharedvar 公共接口
//
// 本文件定义数据报传输接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

// DatagramHandler 入站数据报回调
//
// from 为传输层报告的来源 (地址, 端口)，即对端在线路上的身份。
type DatagramHandler func(data []byte, from types.Peer)

// Transport 不可靠数据报传输
//
// 不保证送达、不保证顺序。
type Transport interface {
	// Send 发送一个数据报
	Send(ctx context.Context, data []byte, to types.Peer) error

	// SetHandler 设置入站回调，nil 表示丢弃所有入站数据报
	SetHandler(handler DatagramHandler)

	// LocalPeer 返回本地绑定的端点
	LocalPeer() types.Peer

	// Close 关闭传输
	Close() error
}

// PeerResolver 传输的可选能力：把 Peer 规范化为该传输报告入站来源时
// 使用的形式（例如主机名解析为 IP）
//
// 协议层在发请求前先规范化目标，使响应的来源与请求的目标一致。
type PeerResolver interface {
	ResolvePeer(ctx context.Context, peer types.Peer) (types.Peer, error)
}
