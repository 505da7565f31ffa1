package sharedvar

import (
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// 类型别名，调用方无需导入 pkg/types
type (
	// Peer 远端节点端点 (Address, Port)
	Peer = types.Peer

	// SignedVariable 签名共享变量
	SignedVariable = types.SignedVariable

	// PublishResult 一次 Publish 的结果
	PublishResult = types.PublishResult

	// PublishListener 变量被接受时的回调
	PublishListener = types.PublishListener

	// ListenerHandle 监听器句柄
	ListenerHandle = types.ListenerHandle

	// PeerError 对端返回的错误响应
	PeerError = types.PeerError

	// Transport 数据报传输
	Transport = interfaces.Transport

	// SignatureScheme 签名方案
	SignatureScheme = interfaces.SignatureScheme
)

// NewPeer 创建 Peer
func NewPeer(address string, port int) Peer {
	return types.NewPeer(address, port)
}

// ParsePeer 解析 "host:port"
func ParsePeer(s string) (Peer, error) {
	return types.ParsePeer(s)
}
