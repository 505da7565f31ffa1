// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入各组件子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Listen = "127.0.0.1:7000"
//	cfg.Protocol.RequestTimeout = config.Duration(5 * time.Second)
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"errors"
	"fmt"
	"net"
)

// DefaultListen 默认监听地址（随机端口）
const DefaultListen = "0.0.0.0:0"

// Config 是共享变量节点的完整配置结构
//
// 配置按照功能模块组织：
//   - Protocol: 请求关联、超时与扇出并发
//   - Transport: 数据报传输参数
//   - Metrics: 指标收集
type Config struct {
	// Listen 本地监听地址，格式 "host:port"
	Listen string `json:"listen"`

	// Peers 启动时连接的节点列表，格式 "host:port"
	Peers []string `json:"peers,omitempty"`

	// Protocol 协议引擎配置
	Protocol ProtocolConfig `json:"protocol"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Listen:    DefaultListen,
		Protocol:  DefaultProtocolConfig(),
		Transport: DefaultTransportConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	for _, p := range c.Peers {
		if _, _, err := net.SplitHostPort(p); err != nil {
			return fmt.Errorf("invalid peer address %q: %w", p, err)
		}
	}
	if err := c.Protocol.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	return nil
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用 Prometheus 指标
	Enabled bool `json:"enabled"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true}
}

// errNilConfig 配置为空
var errNilConfig = errors.New("config is nil")
