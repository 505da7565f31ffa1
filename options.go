package sharedvar

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-sharedvar/config"
	svproto "github.com/dep2p/go-sharedvar/internal/protocol/sharedvar"
	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/lib/crypto"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 统一配置
	config *config.Config

	// 签名方案，默认 Ed25519
	scheme interfaces.SignatureScheme

	// 外部提供的传输（节点接管其关闭）
	transport interfaces.Transport

	// 协议层覆盖选项
	protocolOptions []svproto.Option

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{
		config: config.NewConfig(),
		scheme: crypto.Ed25519Scheme{},
	}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置替换当前配置
//
// 选项按顺序应用，应放在其它配置类选项之前。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		o.config = cfg
		return nil
	}
}

// WithListen 设置 UDP 监听地址（host:port）
func WithListen(addr string) Option {
	return func(o *options) error {
		o.config.Listen = addr
		return nil
	}
}

// WithPeers 设置启动后自动连接的节点
func WithPeers(peers ...string) Option {
	return func(o *options) error {
		for _, p := range peers {
			if _, err := types.ParsePeer(p); err != nil {
				return err
			}
		}
		o.config.Peers = append(o.config.Peers, peers...)
		return nil
	}
}

// WithRequestTimeout 设置请求超时
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("invalid request timeout: %s", d)
		}
		o.config.Protocol = o.config.Protocol.WithRequestTimeout(d)
		return nil
	}
}

// WithMaxConcurrency 设置扇出并发上限
func WithMaxConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("invalid max concurrency: %d", n)
		}
		o.config.Protocol = o.config.Protocol.WithMaxConcurrency(n)
		return nil
	}
}

// WithMetrics 启用或禁用 Prometheus 指标
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enabled
		return nil
	}
}

// WithInboundRate 设置入站限速（每秒数据报数）
func WithInboundRate(perSecond float64, burst int) Option {
	return func(o *options) error {
		o.config.Transport = o.config.Transport.WithInboundRate(perSecond, burst)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件替换
// ════════════════════════════════════════════════════════════════════════════

// WithSignatureScheme 替换签名方案
//
// 非 Ed25519 方案下写句柄（Assign）不可用。
func WithSignatureScheme(scheme interfaces.SignatureScheme) Option {
	return func(o *options) error {
		if scheme == nil {
			return svproto.ErrNilScheme
		}
		o.scheme = scheme
		return nil
	}
}

// WithTransport 使用外部传输，忽略监听地址配置
//
// 节点关闭时一并关闭该传输。
func WithTransport(t interfaces.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return svproto.ErrNilTransport
		}
		o.transport = t
		return nil
	}
}

// WithClock 替换时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.protocolOptions = append(o.protocolOptions, svproto.WithClock(clk))
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
