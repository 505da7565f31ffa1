package sharedvar

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sharedvar/config"
	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/transport"
	svproto "github.com/dep2p/go-sharedvar/internal/protocol/sharedvar"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 应用构建
// ════════════════════════════════════════════════════════════════════════════

// buildFxApp 根据选项组装 Fx 应用
//
// 模块顺序决定生命周期钩子顺序：传输先启动后停止，协议服务反之。
func buildFxApp(o *options, node *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	cfg, err := config.ValidateAndFix(o.config)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	o.config = cfg

	scheme := o.scheme
	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(func() interfaces.SignatureScheme { return scheme }),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 指标（配置关闭时提供 nil）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, metrics.Module)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 传输层
	// ════════════════════════════════════════════════════════════════════════
	if o.transport != nil {
		t := o.transport
		modules = append(modules, fx.Module("transport",
			fx.Provide(func() interfaces.Transport { return t }),
			fx.Invoke(registerTransportClose),
		))
	} else {
		modules = append(modules, transport.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 协议服务
	// ════════════════════════════════════════════════════════════════════════
	for _, opt := range o.protocolOptions {
		modules = append(modules, fx.Provide(fx.Annotate(
			func() svproto.Option { return opt },
			fx.ResultTags(`group:"sharedvar_options"`),
		)))
	}
	modules = append(modules, svproto.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户自定义选项
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// ════════════════════════════════════════════════════════════════════════
	// 7. 已知节点连接（可选）
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.Peers) > 0 {
		modules = append(modules, fx.Invoke(wireKnownPeersConnection(cfg.Peers)))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 8. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// Fx 自身的事件日志静默
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              注入与连接
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams 回填到 Node 的组件
type nodeInjectParams struct {
	fx.In

	Service   *svproto.Service
	Transport interfaces.Transport
	Metrics   *metrics.Metrics `optional:"true"`
}

// injectNodeComponents 返回把容器中的组件回填到 node 的 Invoke 函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.svc = params.Service
		node.transport = params.Transport
		node.metrics = params.Metrics
	}
}

// registerTransportClose 外部传输随应用停止关闭
func registerTransportClose(lc fx.Lifecycle, t interfaces.Transport) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return t.Close()
		},
	})
}

// wireKnownPeersConnection 启动后在后台连接配置中的已知节点
//
// 连接失败只记录日志，不影响启动。
func wireKnownPeersConnection(addrs []string) interface{} {
	return func(lc fx.Lifecycle, svc *svproto.Service) {
		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup

		lc.Append(fx.Hook{
			OnStart: func(_ context.Context) error {
				wg.Add(1)
				go func() {
					defer wg.Done()
					connectKnownPeers(ctx, svc, addrs)
				}()
				return nil
			},
			OnStop: func(_ context.Context) error {
				cancel()
				wg.Wait()
				return nil
			},
		})
	}
}

func connectKnownPeers(ctx context.Context, svc *svproto.Service, addrs []string) {
	var g errgroup.Group
	g.SetLimit(svproto.DefaultConfig().MaxConcurrency)

	for _, addr := range addrs {
		peer, err := types.ParsePeer(addr)
		if err != nil {
			log.Warn("忽略无效的已知节点", "addr", addr, "err", err)
			continue
		}
		g.Go(func() error {
			if err := svc.Connect(ctx, peer); err != nil {
				log.Warn("连接已知节点失败", "peer", peer.String(), "err", err)
				return nil
			}
			log.Info("已连接已知节点", "peer", peer.String())
			return nil
		})
	}
	_ = g.Wait()
}
