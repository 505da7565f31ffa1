// Package logger 提供统一的日志接口
//
// 环境变量：
//   - SHAREDVAR_LOG_LEVEL: 级别规则，逗号分隔，"子系统=级别" 或单独的默认级别
//     示例: correlation=debug,transport=warn,info
//   - SHAREDVAR_LOG_FORMAT: text 或 json
//   - SHAREDVAR_LOG_ADD_SOURCE: 非空且不为 false/0 时输出源码位置
package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLogLevel     = "SHAREDVAR_LOG_LEVEL"
	EnvLogFormat    = "SHAREDVAR_LOG_FORMAT"
	EnvLogAddSource = "SHAREDVAR_LOG_ADD_SOURCE"
)

// LogFormat 输出格式
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// ════════════════════════════════════════════════════════════════════════════
//                              级别规则
// ════════════════════════════════════════════════════════════════════════════

// LevelSpec 默认级别加上按子系统的覆盖
type LevelSpec struct {
	Default   slog.Level
	Overrides map[string]slog.Level
}

// For 返回子系统生效的级别
func (s LevelSpec) For(subsystem string) slog.Level {
	if lvl, ok := s.Overrides[subsystem]; ok {
		return lvl
	}
	return s.Default
}

// ParseLevelSpec 解析 "correlation=debug,transport=warn,info" 形式的规则
//
// 无法识别的条目被跳过并汇总到返回的错误中，已识别的部分仍然生效。
func ParseLevelSpec(s string) (LevelSpec, error) {
	spec := LevelSpec{Default: slog.LevelInfo, Overrides: map[string]slog.Level{}}

	var errs []error
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, scoped := strings.Cut(entry, "=")
		if !scoped {
			value = name
		}
		lvl, err := ParseLevel(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if scoped {
			spec.Overrides[strings.TrimSpace(name)] = lvl
		} else {
			spec.Default = lvl
		}
	}
	return spec, errors.Join(errs...)
}

// ParseLevel 解析级别名称，大小写不敏感
//
// 除 debug/info/warn/error 外也接受 slog 的偏移写法（如 "info+2"）。
func ParseLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              环境配置
// ════════════════════════════════════════════════════════════════════════════

// Config 日志配置
type Config struct {
	Levels    LevelSpec
	Format    LogFormat
	AddSource bool
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 读取环境变量配置，进程内只解析一次
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		envConfig = configFrom(os.Getenv)
	})
	return envConfig
}

// ResetConfig 丢弃缓存的环境配置（测试用）
func ResetConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}

func configFrom(getenv func(string) string) *Config {
	// 坏条目只影响自身，这里不向上报告
	levels, _ := ParseLevelSpec(getenv(EnvLogLevel))

	cfg := &Config{Levels: levels, Format: FormatText}
	if LogFormat(strings.ToLower(getenv(EnvLogFormat))) == FormatJSON {
		cfg.Format = FormatJSON
	}
	switch v := getenv(EnvLogAddSource); v {
	case "", "false", "0":
	default:
		cfg.AddSource = true
	}
	return cfg
}
