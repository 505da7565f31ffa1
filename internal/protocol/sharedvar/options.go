package sharedvar

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/correlation"
	"github.com/dep2p/go-sharedvar/internal/core/peerstore"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
)

// Option 定义配置选项函数
type Option func(*Config)

// Config 服务配置
type Config struct {
	// RequestTimeout 单个请求的截止时间
	RequestTimeout time.Duration

	// MaxConcurrency 扇出时同时在途的最大请求数
	MaxConcurrency int

	// RIDMax 请求 ID 上界（含）
	RIDMax int

	// MaxTrackedKeys 记录收窄集合的最大键数
	MaxTrackedKeys int

	// Codec 线路编解码器
	Codec wire.Codec

	// Clock 截止时间使用的时钟
	Clock clock.Clock

	// StartOffset 请求 ID 起点，<0 表示随机
	StartOffset int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: correlation.DefaultTimeout,
		MaxConcurrency: config.DefaultMaxConcurrency,
		RIDMax:         correlation.RIDMax,
		MaxTrackedKeys: peerstore.DefaultMaxTrackedKeys,
		Codec:          wire.MsgpackCodec{},
		Clock:          clock.New(),
		StartOffset:    -1,
	}
}

// ConfigFromUnified 从统一配置创建服务配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.RequestTimeout = cfg.Protocol.RequestTimeout.Duration()
	c.MaxConcurrency = cfg.Protocol.MaxConcurrency
	c.RIDMax = cfg.Protocol.RIDMax
	c.MaxTrackedKeys = cfg.Protocol.MaxTrackedKeys
	return c
}

// WithRequestTimeout 设置请求截止时间
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.RequestTimeout = d
		}
	}
}

// WithMaxConcurrency 设置扇出并发上限
func WithMaxConcurrency(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxConcurrency = n
		}
	}
}

// WithRIDMax 设置请求 ID 上界，取值 1..65535，越界时忽略
func WithRIDMax(max int) Option {
	return func(c *Config) {
		if max > 0 && max <= correlation.RIDMax {
			c.RIDMax = max
		}
	}
}

// WithMaxTrackedKeys 设置收窄集合的最大键数，非正值忽略
func WithMaxTrackedKeys(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTrackedKeys = n
		}
	}
}

// WithCodec 设置编解码器
func WithCodec(codec wire.Codec) Option {
	return func(c *Config) {
		if codec != nil {
			c.Codec = codec
		}
	}
}

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		if clk != nil {
			c.Clock = clk
		}
	}
}

// WithStartOffset 固定请求 ID 起点
func WithStartOffset(offset int) Option {
	return func(c *Config) {
		c.StartOffset = offset
	}
}
