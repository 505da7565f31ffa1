package config

import (
	"errors"
	"time"
)

// 协议默认值
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxConcurrency = 100
	DefaultRIDMax         = 65535
	DefaultMaxTrackedKeys = 65536
)

// ProtocolConfig 协议引擎配置
type ProtocolConfig struct {
	// RequestTimeout 单个请求的最长等待时间
	RequestTimeout Duration `json:"request_timeout"`

	// MaxConcurrency 查询/发布扇出的最大并发请求数
	MaxConcurrency int `json:"max_concurrency"`

	// RIDMax 请求标识符上界（含）
	RIDMax int `json:"rid_max"`

	// MaxTrackedKeys 记录收窄节点集合的最大 key 数量
	MaxTrackedKeys int `json:"max_tracked_keys"`
}

// DefaultProtocolConfig 返回默认协议配置
func DefaultProtocolConfig() ProtocolConfig {
	return ProtocolConfig{
		RequestTimeout: Duration(DefaultRequestTimeout),
		MaxConcurrency: DefaultMaxConcurrency,
		RIDMax:         DefaultRIDMax,
		MaxTrackedKeys: DefaultMaxTrackedKeys,
	}
}

// Validate 验证协议配置
func (c ProtocolConfig) Validate() error {
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.MaxConcurrency <= 0 {
		return errors.New("max concurrency must be positive")
	}
	if c.RIDMax <= 0 || c.RIDMax > DefaultRIDMax {
		return errors.New("rid max must be in [1, 65535]")
	}
	if c.MaxTrackedKeys <= 0 {
		return errors.New("max tracked keys must be positive")
	}
	return nil
}

// WithRequestTimeout 设置请求超时
func (c ProtocolConfig) WithRequestTimeout(d time.Duration) ProtocolConfig {
	c.RequestTimeout = Duration(d)
	return c
}

// WithMaxConcurrency 设置扇出并发上限
func (c ProtocolConfig) WithMaxConcurrency(n int) ProtocolConfig {
	c.MaxConcurrency = n
	return c
}
