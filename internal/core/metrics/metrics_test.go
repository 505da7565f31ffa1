package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.RequestSent("GET")
	m.RequestSent("GET")
	m.RequestSent("PING")
	m.RequestHandled("PUBLISH")
	m.ResponseReceived()
	m.PeerError("-1")
	m.Timeout()
	m.Dropped(DropDecode)
	m.Accepted(SourceRemote)
	m.BytesIn(100)
	m.BytesOut(40)
	m.SetPending(3)
	m.SetPeers(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsSent.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsSent.WithLabelValues("PING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsHandled.WithLabelValues("PUBLISH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.peerErrors.WithLabelValues("-1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues(DropDecode)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accepted.WithLabelValues(SourceRemote)))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.bytesIn))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.bytesOut))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.peers))
}

func TestMetrics_Registry(t *testing.T) {
	m := New()
	m.Timeout()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sharedvar_request_timeouts_total")

	// 两个实例互不冲突
	assert.NotPanics(t, func() { New() })
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RequestSent("GET")
		m.RequestHandled("GET")
		m.ResponseReceived()
		m.PeerError("-2")
		m.Timeout()
		m.Dropped(DropUnmatched)
		m.Accepted(SourceLocal)
		m.BytesIn(1)
		m.BytesOut(1)
		m.SetPending(1)
		m.SetPeers(1)
	})
	assert.Nil(t, m.Registry())
}
