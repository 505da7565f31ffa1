package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return buf
}

func TestSetOutput(t *testing.T) {
	buf := captureOutput(t)

	Logger("output").Info("请求已发送", "rid", 7)

	out := buf.String()
	assert.Contains(t, out, "请求已发送")
	assert.Contains(t, out, "rid=7")
	assert.Contains(t, out, "subsystem=output")
	assert.Contains(t, out, "level=info")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("output2")

	buf := captureOutput(t)
	log.Info("after switch")

	assert.Contains(t, buf.String(), "after switch")
}

func TestSetLevel_AppliesToDerivedLoggers(t *testing.T) {
	buf := captureOutput(t)

	log := Logger("leveltest").With("peer", "127.0.0.1:1")
	SetLevel("leveltest", slog.LevelWarn)

	log.Info("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("leveltest", slog.LevelDebug)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "peer=127.0.0.1:1")
}

func TestApplySpec(t *testing.T) {
	buf := captureOutput(t)
	a := Logger("spec-a")

	ApplySpec(LevelSpec{
		Default:   slog.LevelError,
		Overrides: map[string]slog.Level{"spec-b": slog.LevelDebug},
	})

	a.Warn("dropped")
	Logger("spec-b").Debug("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	SetGlobalLevel(slog.LevelInfo)
}

func TestParseLevelSpec(t *testing.T) {
	spec, err := ParseLevelSpec("correlation=debug, transport=warning ,error,bogus=nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	assert.Equal(t, slog.LevelError, spec.Default)
	assert.Equal(t, slog.LevelDebug, spec.For("correlation"))
	assert.Equal(t, slog.LevelWarn, spec.For("transport"))
	assert.Equal(t, slog.LevelError, spec.For("dispatch"))
	assert.NotContains(t, spec.Overrides, "bogus")

	spec, err = ParseLevelSpec("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, spec.Default)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("INFO+2")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo+2, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "wire=debug",
		EnvLogFormat:    "JSON",
		EnvLogAddSource: "1",
	}
	cfg := configFrom(func(k string) string { return env[k] })

	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
	assert.Equal(t, slog.LevelDebug, cfg.Levels.For("wire"))
	assert.Equal(t, slog.LevelInfo, cfg.Levels.For("peerstore"))

	cfg = configFrom(func(string) string { return "" })
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
