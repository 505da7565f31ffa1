// Package types 定义 sharedvar 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - peer.go     - Peer 远端端点（地址 + 端口）
//   - variable.go - SignedVariable 签名共享变量、KeyOf
//   - errors.go   - 公共错误定义、PeerError
//   - keytext.go  - 公钥的 Base58 文本形式
package types
