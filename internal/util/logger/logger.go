// Package logger 提供 sharedvar 的统一日志系统
//
// 基于标准库 log/slog，每个子系统一个 Logger，级别可按子系统配置并在
// 运行时调整。
//
//	var log = logger.Logger("correlation")
//
//	log.Debug("请求超时", "rid", id, "peer", origin)
//
// 环境变量示例:
//
//	SHAREDVAR_LOG_LEVEL=correlation=debug,info
//	SHAREDVAR_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

// subsystems 名称到 *subsystem
var subsystems sync.Map

func lookup(name string) *subsystem {
	if s, ok := subsystems.Load(name); ok {
		return s.(*subsystem)
	}
	s, _ := subsystems.LoadOrStore(name, newSubsystem(name, ConfigFromEnv()))
	return s.(*subsystem)
}

// Logger 返回子系统的 Logger，同名多次调用返回同一实例
func Logger(name string) *slog.Logger {
	return lookup(name).log
}

// SetLevel 调整单个子系统的级别
//
// 子系统尚未创建时一并创建，之后 Logger(name) 沿用该级别。
func SetLevel(name string, level slog.Level) {
	lookup(name).level.Set(level)
}

// SetGlobalLevel 调整所有已创建子系统的级别
func SetGlobalLevel(level slog.Level) {
	subsystems.Range(func(_, v any) bool {
		v.(*subsystem).level.Set(level)
		return true
	})
}

// ApplySpec 按规则调整级别：已创建的子系统改为 spec.For(name)，
// 覆盖中列出但尚未创建的子系统提前创建
func ApplySpec(spec LevelSpec) {
	for name := range spec.Overrides {
		lookup(name)
	}
	subsystems.Range(func(k, v any) bool {
		v.(*subsystem).level.Set(spec.For(k.(string)))
		return true
	})
}

// Discard 返回丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// SetOutput 切换输出目标，已创建的 Logger 同样生效
func SetOutput(w io.Writer) {
	output.Store(&w)
}
