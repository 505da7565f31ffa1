package wire

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Codec 消息编解码器
type Codec interface {
	Encode(m *Message) ([]byte, error)
	Decode(data []byte) (*Message, error)
}

// MsgpackCodec 基于 MessagePack 的编解码器
type MsgpackCodec struct{}

var _ Codec = MsgpackCodec{}

// RegisterExtension 注册 MessagePack 扩展类型
//
// 直接透传给 msgpack，注册后该类型的值可以出现在载荷中。
func RegisterExtension(id int8, value msgpack.MarshalerUnmarshaler) {
	msgpack.RegisterExt(id, value)
}

// Encode 编码为 [type, requestId, ...payload]
func (MsgpackCodec) Encode(m *Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.EncodeArrayLen(2 + len(m.Payload)); err != nil {
		return nil, err
	}
	if err := enc.EncodeInt(int64(m.Type)); err != nil {
		return nil, err
	}
	if err := enc.EncodeInt(int64(m.RequestID)); err != nil {
		return nil, err
	}
	for i, raw := range m.Payload {
		if len(raw) == 0 {
			return nil, fmt.Errorf("encode payload[%d]: empty element", i)
		}
		if err := enc.Encode(raw); err != nil {
			return nil, fmt.Errorf("encode payload[%d]: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Decode 解码并校验消息头
//
// 非序列、少于两个元素、前两个元素不是数字，或序列之后还有多余字节时
// 返回错误。
func (MsgpackCodec) Decode(data []byte) (*Message, error) {
	// bytes.Reader 实现了 io.ByteScanner，解码器直接读取不另加缓冲，
	// 解码结束后 r.Len() 即未消费的字节数
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)

	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	if !msgpcode.IsFixedArray(code) && code != msgpcode.Array16 && code != msgpcode.Array32 {
		return nil, ErrNotSequence
	}

	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, ErrTooShort
	}

	typ, err := decodeNumber(dec)
	if err != nil {
		return nil, err
	}
	rid, err := decodeNumber(dec)
	if err != nil {
		return nil, err
	}

	m := &Message{
		Type:      MessageType(typ),
		RequestID: int(rid),
		Payload:   make([]msgpack.RawMessage, 0, n-2),
	}
	for i := 2; i < n; i++ {
		raw, err := dec.DecodeRaw()
		if err != nil {
			return nil, fmt.Errorf("decode element %d: %w", i, err)
		}
		m.Payload = append(m.Payload, raw)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return m, nil
}

// decodeNumber 解码任意整数或整值浮点数
func decodeNumber(dec *msgpack.Decoder) (int64, error) {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, ErrNotNumeric
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, ErrNotNumeric
		}
		return int64(n), nil
	default:
		return 0, ErrNotNumeric
	}
}
