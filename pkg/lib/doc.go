// Package lib 包含基础设施工具库
//
// 本目录包含与协议核心无关的通用工具库：
//
//   - crypto: Ed25519 签名方案（签名、验证、新鲜度比较）
package lib
