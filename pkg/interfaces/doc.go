// Package interfaces 定义 sharedvar 的公共接口
//
// 核心只通过这里的接口与外部协作者交互：
//   - transport.go - 数据报传输（发送字节 / 接收字节与来源）
//   - signature.go - 签名方案（验证 + 新鲜度比较）
//   - sharedvar.go - 共享变量服务（Connect / Lookup / Publish / OnPublish）
package interfaces
