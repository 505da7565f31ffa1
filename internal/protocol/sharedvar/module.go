package sharedvar

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
)

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	Transport interfaces.Transport
	Scheme    interfaces.SignatureScheme
	Config    *config.Config   `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
	Options   []Option         `group:"sharedvar_options"`
}

// ModuleOutput 服务输出
type ModuleOutput struct {
	fx.Out

	Service   *Service
	SharedVar interfaces.SharedVarService
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("sharedvar",
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideService 从统一配置创建服务，分组选项覆盖配置值
func ProvideService(in ModuleInput) (ModuleOutput, error) {
	base := ConfigFromUnified(in.Config)
	opts := append([]Option{func(c *Config) { *c = *base }}, in.Options...)

	svc, err := New(in.Transport, in.Scheme, in.Metrics, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Service: svc, SharedVar: svc}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return svc.Stop()
		},
	})
}
