package transport

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/transport/memory"
	"github.com/dep2p/go-sharedvar/internal/core/transport/udp"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
)

var log = logger.Logger("transport")

// ErrNoNetwork memory 传输缺少 *memory.Network
var ErrNoNetwork = errors.New("memory transport requires a network")

// Params 传输依赖参数
type Params struct {
	fx.In

	Config  *config.Config
	Network *memory.Network  `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideTransport),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideTransport 按配置创建传输
func ProvideTransport(p Params) (interfaces.Transport, error) {
	return New(p.Config, p.Network, p.Metrics)
}

// New 按配置创建传输，network 仅在 memory 模式下使用
func New(cfg *config.Config, network *memory.Network, m *metrics.Metrics) (interfaces.Transport, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	switch cfg.Transport.Kind {
	case config.TransportUDP, "":
		t, err := udp.Listen(cfg.Listen,
			udp.WithReadBufferSize(cfg.Transport.ReadBufferSize),
			udp.WithInboundRate(cfg.Transport.InboundRate, cfg.Transport.InboundBurst),
			udp.WithMetrics(m),
		)
		if err != nil {
			return nil, err
		}
		log.Info("UDP 传输已创建", "addr", t.LocalPeer().String())
		return t, nil

	case config.TransportMemory:
		if network == nil {
			return nil, ErrNoNetwork
		}
		t := network.NewTransport()
		log.Debug("内存传输已创建", "addr", t.LocalPeer().String())
		return t, nil

	default:
		return nil, fmt.Errorf("unknown transport kind: %q", cfg.Transport.Kind)
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, t interfaces.Transport) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return t.Close()
		},
	})
}
