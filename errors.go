package sharedvar

import (
	"errors"

	"github.com/dep2p/go-sharedvar/internal/core/correlation"
	svproto "github.com/dep2p/go-sharedvar/internal/protocol/sharedvar"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              错误定义
// ════════════════════════════════════════════════════════════════════════════

var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrNotStarted 节点未启动
	ErrNotStarted = svproto.ErrNotStarted

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ────────────────────────────────────────────────────────────────────────
	// 请求错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrTimeout 请求超时
	ErrTimeout = types.ErrTimeout

	// ErrIdentifierSpaceExhausted 请求 ID 空间耗尽
	ErrIdentifierSpaceExhausted = correlation.ErrIdentifierSpaceExhausted

	// ErrUnknownRequestType 对端不认识的请求类型（errors.Is 匹配 *PeerError）
	ErrUnknownRequestType = types.ErrUnknownRequestType

	// ErrInvalidPayload 对端无法解码请求载荷（errors.Is 匹配 *PeerError）
	ErrInvalidPayload = types.ErrInvalidPayload

	// ────────────────────────────────────────────────────────────────────────
	// 句柄错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrReadOnly 只读句柄不能写入
	ErrReadOnly = errors.New("handle is read-only")

	// ErrSchemeMismatch 写句柄只支持内置的 Ed25519 方案
	ErrSchemeMismatch = errors.New("writable handles require the ed25519 scheme")
)
