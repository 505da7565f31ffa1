// Package interfaces 定义 sharedvar 公共接口
//
// 本文件定义签名方案接口。
package interfaces

import "github.com/dep2p/go-sharedvar/pkg/types"

// SignatureScheme 签名方案
//
// 核心把验证与新鲜度比较当作不透明谓词，不假设具体格式
// （时间戳、版本号等）。
type SignatureScheme interface {
	// Verify 仅当 v 是 claimedKey 下的有效签名数据时返回 true
	Verify(v *types.SignedVariable, claimedKey []byte) bool

	// Fresher 当 a 严格新于 b 时返回 true
	//
	// 必须是全序：对同一键的任意两个不同签名，恰有一个更新。
	Fresher(a, b *types.SignedVariable) bool
}
