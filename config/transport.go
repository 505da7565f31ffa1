package config

import (
	"errors"
	"fmt"
)

// 传输类型
const (
	TransportUDP    = "udp"
	TransportMemory = "memory"
)

// DefaultReadBufferSize 默认读缓冲区大小（单个数据报上限）
const DefaultReadBufferSize = 64 * 1024

// TransportConfig 传输层配置
//
// 引擎只依赖数据报语义：不可靠、无序、按报文边界投递。
type TransportConfig struct {
	// Kind 传输类型："udp" 或 "memory"
	Kind string `json:"kind"`

	// ReadBufferSize 读缓冲区大小
	ReadBufferSize int `json:"read_buffer_size,omitempty"`

	// InboundRate 入站数据报速率上限（每秒），0 表示不限制
	InboundRate float64 `json:"inbound_rate,omitempty"`

	// InboundBurst 入站突发量，InboundRate > 0 时生效
	InboundBurst int `json:"inbound_burst,omitempty"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Kind:           TransportUDP,
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	switch c.Kind {
	case TransportUDP, TransportMemory:
	default:
		return fmt.Errorf("unknown transport kind: %q", c.Kind)
	}
	if c.ReadBufferSize < 0 {
		return errors.New("read buffer size must not be negative")
	}
	if c.InboundRate < 0 {
		return errors.New("inbound rate must not be negative")
	}
	if c.InboundRate > 0 && c.InboundBurst <= 0 {
		return errors.New("inbound burst must be positive when rate limiting is enabled")
	}
	return nil
}

// WithInboundRate 设置入站速率限制
func (c TransportConfig) WithInboundRate(perSecond float64, burst int) TransportConfig {
	c.InboundRate = perSecond
	c.InboundBurst = burst
	return c
}
