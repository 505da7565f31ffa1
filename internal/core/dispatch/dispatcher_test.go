package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/mock/gomock"

	"github.com/dep2p/go-sharedvar/internal/core/metrics"
	"github.com/dep2p/go-sharedvar/internal/core/wire"
	"github.com/dep2p/go-sharedvar/pkg/types"
	"github.com/dep2p/go-sharedvar/tests/mocks"
)

var (
	local  = types.NewPeer("127.0.0.1", 7000)
	remote = types.NewPeer("127.0.0.1", 7001)
)

type resolved struct {
	id      int
	origin  types.Peer
	err     error
	payload []msgpack.RawMessage
}

type fakeResolver struct {
	calls []resolved
	match bool
}

func (f *fakeResolver) Resolve(id int, origin types.Peer, err error, payload []msgpack.RawMessage) bool {
	f.calls = append(f.calls, resolved{id: id, origin: origin, err: err, payload: payload})
	return f.match
}

type fixture struct {
	transport *mocks.MockTransport
	resolver  *fakeResolver
	registry  *Registry
	metrics   *metrics.Metrics
	d         *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		transport: mocks.NewMockTransport(ctrl),
		resolver:  &fakeResolver{match: true},
		registry:  NewRegistry(),
		metrics:   metrics.New(),
	}
	codec := wire.MsgpackCodec{}
	sender := NewSender(codec, f.transport, f.metrics)
	f.d = New(codec, f.registry, f.resolver, sender, f.metrics)
	return f
}

func encode(t *testing.T, typ wire.MessageType, rid int, args ...any) []byte {
	t.Helper()
	msg, err := wire.NewMessage(typ, rid, args...)
	require.NoError(t, err)
	data, err := wire.MsgpackCodec{}.Encode(msg)
	require.NoError(t, err)
	return data
}

func counter(t *testing.T, m *metrics.Metrics, name string, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if label == "" {
				return metric.GetCounter().GetValue()
			}
			for _, lp := range metric.GetLabel() {
				if lp.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// ============================================================================
//                              分发测试
// ============================================================================

func TestDispatcher_DropsUndecodable(t *testing.T) {
	f := newFixture(t)

	garbage, err := msgpack.Marshal("not a sequence")
	require.NoError(t, err)
	short, err := msgpack.Marshal([]int{1})
	require.NoError(t, err)
	nonNumeric, err := msgpack.Marshal([]any{"x", 1})
	require.NoError(t, err)

	trailing := append(encode(t, wire.TypeResponse, 3), 0xc1)

	for _, data := range [][]byte{garbage, short, nonNumeric, trailing, {0xc1}, nil} {
		f.d.HandleDatagram(data, remote)
	}

	// 没有回复、没有关联表调用
	assert.Empty(t, f.resolver.calls)
	assert.Equal(t, 6.0, counter(t, f.metrics, "sharedvar_datagrams_dropped_total", metrics.DropDecode))
}

func TestDispatcher_Response(t *testing.T) {
	f := newFixture(t)

	f.d.HandleDatagram(encode(t, wire.TypeResponse, 42, "hello", 7), remote)

	require.Len(t, f.resolver.calls, 1)
	call := f.resolver.calls[0]
	assert.Equal(t, 42, call.id)
	assert.Equal(t, remote, call.origin)
	assert.NoError(t, call.err)
	require.Len(t, call.payload, 2)

	var s string
	require.NoError(t, msgpack.Unmarshal(call.payload[0], &s))
	assert.Equal(t, "hello", s)
}

func TestDispatcher_UnmatchedResponse(t *testing.T) {
	f := newFixture(t)
	f.resolver.match = false

	f.d.HandleDatagram(encode(t, wire.TypeResponse, 9), remote)

	assert.Len(t, f.resolver.calls, 1)
	assert.Equal(t, 1.0, counter(t, f.metrics, "sharedvar_datagrams_dropped_total", metrics.DropUnmatched))
}

func TestDispatcher_Request(t *testing.T) {
	f := newFixture(t)

	var got *wire.Message
	var from types.Peer
	require.NoError(t, f.registry.Set(wire.TypeGet, func(msg *wire.Message, origin types.Peer) {
		got, from = msg, origin
	}))

	f.d.HandleDatagram(encode(t, wire.TypeGet, 5, []byte("key")), remote)

	require.NotNil(t, got)
	assert.Equal(t, wire.TypeGet, got.Type)
	assert.Equal(t, 5, got.RequestID)
	assert.Equal(t, remote, from)

	var key []byte
	require.NoError(t, got.Arg(0, &key))
	assert.Equal(t, []byte("key"), key)
	assert.Empty(t, f.resolver.calls)
}

func TestDispatcher_UnknownRequestType(t *testing.T) {
	f := newFixture(t)

	var sent []byte
	f.transport.EXPECT().
		Send(gomock.Any(), gomock.Any(), remote).
		DoAndReturn(func(_ context.Context, data []byte, _ types.Peer) error {
			sent = data
			return nil
		})

	f.d.HandleDatagram(encode(t, wire.MessageType(7), 1234), remote)

	require.NotNil(t, sent)
	reply, err := wire.MsgpackCodec{}.Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeUnknownRequest, reply.Type)
	assert.Equal(t, 1234, reply.RequestID)

	var text string
	require.NoError(t, reply.Arg(0, &text))
	assert.Equal(t, "Unknown request type", text)
	assert.Empty(t, f.resolver.calls)
}

func TestDispatcher_UnknownRequestType_SendFailure(t *testing.T) {
	f := newFixture(t)

	f.transport.EXPECT().
		Send(gomock.Any(), gomock.Any(), remote).
		Return(errors.New("network down"))

	assert.NotPanics(t, func() {
		f.d.HandleDatagram(encode(t, wire.MessageType(99), 1), remote)
	})
}

func TestDispatcher_ErrorResponse(t *testing.T) {
	t.Run("WithMessage", func(t *testing.T) {
		f := newFixture(t)

		f.d.HandleDatagram(encode(t, wire.TypeInvalidPayload, 3, "Invalid payload", 1), remote)

		require.Len(t, f.resolver.calls, 1)
		call := f.resolver.calls[0]
		assert.Equal(t, 3, call.id)
		assert.ErrorIs(t, call.err, types.ErrInvalidPayload)

		var pe *types.PeerError
		require.ErrorAs(t, call.err, &pe)
		assert.Equal(t, -2, pe.Code)
		assert.Equal(t, "Invalid payload", pe.Message)
		assert.Len(t, call.payload, 1)
	})

	t.Run("DefaultMessage", func(t *testing.T) {
		f := newFixture(t)

		f.d.HandleDatagram(encode(t, wire.MessageType(-5), 8, 12), remote)

		require.Len(t, f.resolver.calls, 1)
		var pe *types.PeerError
		require.ErrorAs(t, f.resolver.calls[0].err, &pe)
		assert.Equal(t, -5, pe.Code)
		assert.Equal(t, "error code: -5", pe.Message)
		assert.Len(t, f.resolver.calls[0].payload, 1)
	})

	t.Run("NoPayload", func(t *testing.T) {
		f := newFixture(t)

		f.d.HandleDatagram(encode(t, wire.TypeUnknownRequest, 8), remote)

		require.Len(t, f.resolver.calls, 1)
		assert.ErrorIs(t, f.resolver.calls[0].err, types.ErrUnknownRequestType)
		assert.Empty(t, f.resolver.calls[0].payload)
	})
}

// ============================================================================
//                              Registry / Sender 测试
// ============================================================================

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	noop := func(*wire.Message, types.Peer) {}

	t.Run("RequestTypesOnly", func(t *testing.T) {
		assert.ErrorIs(t, r.Set(wire.TypeResponse, noop), ErrNotRequestType)
		assert.ErrorIs(t, r.Set(wire.TypeUnknownRequest, noop), ErrNotRequestType)
		assert.ErrorIs(t, r.Set(wire.MessageType(4), noop), ErrNotRequestType)
		assert.ErrorIs(t, r.Set(wire.TypePing, nil), ErrNilHandler)
	})

	t.Run("Lookup", func(t *testing.T) {
		require.NoError(t, r.Set(wire.TypePing, noop))
		require.NoError(t, r.Set(wire.TypePublish, noop))

		_, ok := r.Lookup(wire.TypePing)
		assert.True(t, ok)
		_, ok = r.Lookup(wire.TypeGet)
		assert.False(t, ok)
		_, ok = r.Lookup(wire.MessageType(1000))
		assert.False(t, ok)
		_, ok = r.Lookup(wire.TypeInvalidPayload)
		assert.False(t, ok)

		assert.Equal(t, []wire.MessageType{wire.TypePing, wire.TypePublish}, r.Types())
	})
}

func TestSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	m := metrics.New()
	s := NewSender(wire.MsgpackCodec{}, tr, m)

	t.Run("Reply", func(t *testing.T) {
		tr.EXPECT().Send(gomock.Any(), gomock.Any(), remote).
			DoAndReturn(func(_ context.Context, data []byte, _ types.Peer) error {
				msg, err := wire.MsgpackCodec{}.Decode(data)
				require.NoError(t, err)
				assert.Equal(t, wire.TypeResponse, msg.Type)
				assert.Equal(t, 11, msg.RequestID)
				assert.Equal(t, 0, msg.Len())
				return nil
			})
		require.NoError(t, s.Reply(context.Background(), remote, 11))
	})

	t.Run("RequestCounted", func(t *testing.T) {
		tr.EXPECT().Send(gomock.Any(), gomock.Any(), local).Return(nil)
		msg, err := wire.NewMessage(wire.TypePing, 1)
		require.NoError(t, err)
		require.NoError(t, s.Send(context.Background(), msg, local))
		assert.Equal(t, 1.0, counter(t, m, "sharedvar_requests_sent_total", "PING"))
	})

	t.Run("TransportError", func(t *testing.T) {
		tr.EXPECT().Send(gomock.Any(), gomock.Any(), remote).Return(errors.New("boom"))
		assert.Error(t, s.Reply(context.Background(), remote, 1))
	})

	t.Run("ReplyErrorNeedsNegativeCode", func(t *testing.T) {
		assert.Error(t, s.ReplyError(context.Background(), remote, 1, wire.TypePing, "x"))
	})
}
