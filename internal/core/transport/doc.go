// Package transport 装配数据报传输
//
// 根据配置选择实现：
//   - udp: 绑定真实的 UDP socket
//   - memory: 进程内网络，用于测试和仿真，需要额外提供 *memory.Network
package transport
