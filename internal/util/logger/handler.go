package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// output 当前输出目标，所有 handler 在写入时读取
var output atomic.Pointer[io.Writer]

func init() {
	var w io.Writer = os.Stderr
	output.Store(&w)
}

type swappableWriter struct{}

func (swappableWriter) Write(p []byte) (int, error) {
	return (*output.Load()).Write(p)
}

// ════════════════════════════════════════════════════════════════════════════
//                              子系统 Handler
// ════════════════════════════════════════════════════════════════════════════

// subsystem 单个子系统的日志状态
//
// 级别是 slog.LevelVar，由 HandlerOptions 直接引用，派生出的 Logger
// （With/WithGroup）随之生效。
type subsystem struct {
	name  string
	level *slog.LevelVar
	log   *slog.Logger
}

func newSubsystem(name string, cfg *Config) *subsystem {
	level := new(slog.LevelVar)
	level.Set(cfg.Levels.For(name))

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: shortLevel,
	}

	var h slog.Handler
	switch cfg.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(swappableWriter{}, opts)
	default:
		h = slog.NewTextHandler(swappableWriter{}, opts)
	}

	return &subsystem{
		name:  name,
		level: level,
		log:   slog.New(h).With(slog.String("subsystem", name)),
	}
}

// shortLevel 把级别输出为小写短名
func shortLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	name := "error"
	switch {
	case lvl < slog.LevelInfo:
		name = "debug"
	case lvl < slog.LevelWarn:
		name = "info"
	case lvl < slog.LevelError:
		name = "warn"
	}
	return slog.String(a.Key, name)
}

// discard 不输出任何内容
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

// DiscardHandler 返回丢弃所有记录的 Handler
func DiscardHandler() slog.Handler {
	return discard{}
}
