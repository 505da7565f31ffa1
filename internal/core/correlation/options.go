package correlation

import (
	"time"

	"github.com/benbjohnson/clock"
)

// 默认值
const (
	// RIDMax 请求 ID 上界（含）
	RIDMax = 65535

	// DefaultTimeout 单个请求的截止时间
	DefaultTimeout = 10 * time.Second
)

// Executor 定时器回调的执行器
//
// 定时器在独立 goroutine 上触发，引擎通过执行器把到期处理
// 投递回事件循环。
type Executor func(fn func())

// Option 配置选项
type Option func(*config)

type config struct {
	timeout     time.Duration
	ridMax      int
	clock       clock.Clock
	executor    Executor
	startOffset int // <0 表示随机
}

func defaultConfig() config {
	return config{
		timeout:     DefaultTimeout,
		ridMax:      RIDMax,
		clock:       clock.New(),
		executor:    func(fn func()) { fn() },
		startOffset: -1,
	}
}

// WithTimeout 设置请求截止时间
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRIDMax 设置请求 ID 上界（含）
func WithRIDMax(max int) Option {
	return func(c *config) {
		if max >= 0 {
			c.ridMax = max
		}
	}
}

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithExecutor 设置定时器回调执行器
func WithExecutor(exec Executor) Option {
	return func(c *config) {
		if exec != nil {
			c.executor = exec
		}
	}
}

// WithStartOffset 固定起始 ID（默认随机）
func WithStartOffset(offset int) Option {
	return func(c *config) {
		c.startOffset = offset
	}
}
