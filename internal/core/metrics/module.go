package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-sharedvar/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
//
// 配置关闭指标时提供 nil，各记录方法对 nil 安全。
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Metrics
func NewFromParams(p Params) *Metrics {
	if p.Config != nil && !p.Config.Metrics.Enabled {
		return nil
	}
	return New()
}
