// Package dispatch 实现入站消息分发
//
// 每个入站数据报解码为 [type, requestId, ...payload] 后按类型分流：
//
//	type == 0  响应，交给请求关联表按 (requestId, 来源) 匹配
//	type  > 0  请求，查找处理器；未注册的类型回复 [-1, requestId, "Unknown request type"]
//	type  < 0  错误响应，以 PeerError 的形式交给关联表
//
// 解码失败的数据报静默丢弃，仅记录 debug 日志和丢弃计数。
//
// Dispatcher 不做同步，调用方需保证在引擎的事件循环上调用。
package dispatch
