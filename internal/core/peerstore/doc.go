// Package peerstore 实现节点注册表
//
// 注册表维护两类信息：
//
//   - 已知节点集合：Connect 成功时加入，存活检测失败时移除，
//     身份是字面量 (地址, 端口)。
//   - 每个变量键的收窄节点集合：最近一轮 Lookup 中有效应答的节点，
//     供后续 Publish 与再次 Lookup 定向使用。每轮结束时整体替换；
//     除了节点被移除时同步剔除，不做其它增量修改。
//
// 键状态保存在有界 LRU 中；被淘汰的键等价于"尚无轮次"，
// 会回退到完整节点集合，只是多一次全量探测。
//
// Registry 不是并发安全的，由引擎的事件循环独占访问。
package peerstore
