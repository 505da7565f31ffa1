// Package interfaces 定义 sharedvar 公共接口
//
// 本文件定义共享变量服务接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

// SharedVarService 共享变量协议服务
type SharedVarService interface {
	// Start 启动事件循环并接管传输的入站回调
	Start(ctx context.Context) error

	// Stop 停止服务
	Stop() error

	// Connect 发送 PING，成功则加入节点集合，失败则移除
	Connect(ctx context.Context, peer types.Peer) error

	// Disconnect 从节点集合中移除
	Disconnect(peer types.Peer)

	// Peers 返回已知节点快照
	Peers() []types.Peer

	// Lookup 向兴趣节点扇出 GET，返回比 current 更新的最新值
	//
	// 没有更新的值时返回 nil。
	Lookup(ctx context.Context, publicKey []byte, current *types.SignedVariable) (*types.SignedVariable, error)

	// Publish 本地存储并推送给已记录的兴趣节点
	Publish(ctx context.Context, v *types.SignedVariable) (types.PublishResult, error)

	// OnPublish 注册变量被接受时的监听器
	OnPublish(publicKey []byte, listener types.PublishListener) types.ListenerHandle

	// Unsubscribe 按句柄移除监听器
	Unsubscribe(handle types.ListenerHandle)

	// Value 返回本地存储的值
	Value(publicKey []byte) *types.SignedVariable
}
