package types

import (
	"fmt"
	"net"
	"strconv"
)

// ============================================================================
//                              Peer 定义
// ============================================================================

// Peer 远端节点端点
//
// 身份即字面量 (Address, Port)，没有握手状态。
// Peer 是可比较的值类型，可直接作为 map 键使用。
type Peer struct {
	// Address 主机地址（IP 或主机名）
	Address string

	// Port 端口
	Port int
}

// NewPeer 创建 Peer
func NewPeer(address string, port int) Peer {
	return Peer{Address: address, Port: port}
}

// ParsePeer 解析 "host:port" 形式的地址
func ParsePeer(s string) (Peer, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Peer{}, fmt.Errorf("%w: %v", ErrInvalidPeer, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Peer{}, fmt.Errorf("%w: bad port %q", ErrInvalidPeer, portStr)
	}
	return Peer{Address: host, Port: port}, nil
}

// String 返回 host:port 形式
func (p Peer) String() string {
	return net.JoinHostPort(p.Address, strconv.Itoa(p.Port))
}

// IsZero 检查是否为空值
func (p Peer) IsZero() bool {
	return p.Address == "" && p.Port == 0
}

// Less 按 (Address, Port) 排序
func (p Peer) Less(other Peer) bool {
	if p.Address != other.Address {
		return p.Address < other.Address
	}
	return p.Port < other.Port
}
