// Package sharedvar 实现共享变量的查询/发布协议
//
// Service 把请求关联表、消息分发、节点注册表和本地存储组装成一个引擎：
//
//   - Connect: PING 一个节点，成功则加入节点集合，失败则移除
//   - Lookup: 向兴趣节点扇出 GET，取最新的有效值，并用有效应答的节点
//     整体替换该键的收窄集合
//   - Publish: 本地存储，再把值推送给该键已记录的收窄集合
//   - OnPublish: 值被接受时（本地或远端）按注册顺序通知监听器
//
// 全部可变状态只在事件循环上访问。扇出在调用方 goroutine 上进行，
// 每个子请求把分配和发送投递到循环，然后等待自己的终结结果；
// 同时在途的请求数受 MaxConcurrency 限制。
//
// 监听器在存储的投递 goroutine 上执行，不占用事件循环，可以回调本包的方法。
package sharedvar
