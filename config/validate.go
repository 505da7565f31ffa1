package config

import (
	"fmt"
)

// ValidateAndFix 填充缺省字段后验证
//
// 空监听地址、空传输类型和非正的数值字段回落到默认值；只给了速率
// 没给突发量时，突发量取速率加一。nil 返回默认配置。
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Listen == "" {
		c.Listen = DefaultListen
	}

	def := DefaultProtocolConfig()
	if c.Protocol.RequestTimeout <= 0 {
		c.Protocol.RequestTimeout = def.RequestTimeout
	}
	if c.Protocol.MaxConcurrency <= 0 {
		c.Protocol.MaxConcurrency = def.MaxConcurrency
	}
	if c.Protocol.RIDMax <= 0 || c.Protocol.RIDMax > DefaultRIDMax {
		c.Protocol.RIDMax = def.RIDMax
	}
	if c.Protocol.MaxTrackedKeys <= 0 {
		c.Protocol.MaxTrackedKeys = def.MaxTrackedKeys
	}

	if c.Transport.Kind == "" {
		c.Transport.Kind = TransportUDP
	}
	if c.Transport.InboundRate > 0 && c.Transport.InboundBurst <= 0 {
		c.Transport.InboundBurst = int(c.Transport.InboundRate) + 1
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config still invalid after defaults: %w", err)
	}
	return c, nil
}
