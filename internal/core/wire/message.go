// Package wire 定义线路消息与编解码
//
// 线路上的消息是一个有序序列 [type, requestId, ...payload]：
//   - type == 0  响应
//   - type > 0   请求
//   - type < 0   错误响应，type 即错误码
package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ============================================================================
//                              消息类型
// ============================================================================

// MessageType 消息类型
type MessageType int

const (
	// TypeResponse 响应
	TypeResponse MessageType = 0

	// TypePing 存活检测请求，无载荷
	TypePing MessageType = 1

	// TypeGet 获取请求，载荷 [publicKey]
	TypeGet MessageType = 2

	// TypePublish 发布请求，载荷 [signedVariable]
	TypePublish MessageType = 3

	// TypeUnknownRequest 未知请求类型错误，载荷 [message]
	TypeUnknownRequest MessageType = -1

	// TypeInvalidPayload 载荷无效错误，载荷 [message]
	TypeInvalidPayload MessageType = -2
)

// String 返回类型名
func (t MessageType) String() string {
	switch t {
	case TypeResponse:
		return "RESPONSE"
	case TypePing:
		return "PING"
	case TypeGet:
		return "GET"
	case TypePublish:
		return "PUBLISH"
	}
	if t < 0 {
		return fmt.Sprintf("ERROR(%d)", int(t))
	}
	return fmt.Sprintf("TYPE(%d)", int(t))
}

// IsRequest 是否为请求
func (t MessageType) IsRequest() bool { return t > 0 }

// IsError 是否为错误响应
func (t MessageType) IsError() bool { return t < 0 }

// ============================================================================
//                              Message
// ============================================================================

// Message 线路消息
//
// Payload 的每个元素保持编码后的原始形式，由处理器按需解码。
type Message struct {
	Type      MessageType
	RequestID int
	Payload   []msgpack.RawMessage
}

// NewMessage 构造消息，args 逐个编码为载荷元素
func NewMessage(typ MessageType, requestID int, args ...any) (*Message, error) {
	payload := make([]msgpack.RawMessage, 0, len(args))
	for i, arg := range args {
		raw, err := msgpack.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode payload[%d]: %w", i, err)
		}
		payload = append(payload, raw)
	}
	return &Message{Type: typ, RequestID: requestID, Payload: payload}, nil
}

// Len 返回载荷元素个数
func (m *Message) Len() int {
	return len(m.Payload)
}

// Arg 把第 i 个载荷元素解码到 v
func (m *Message) Arg(i int, v any) error {
	if i < 0 || i >= len(m.Payload) {
		return fmt.Errorf("%w: payload[%d] of %d", ErrMissingArgument, i, len(m.Payload))
	}
	if err := msgpack.Unmarshal(m.Payload[i], v); err != nil {
		return fmt.Errorf("decode payload[%d]: %w", i, err)
	}
	return nil
}

// String 用于日志
func (m *Message) String() string {
	return fmt.Sprintf("%s rid=%d args=%d", m.Type, m.RequestID, len(m.Payload))
}
