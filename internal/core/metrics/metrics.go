package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace 指标命名空间
const Namespace = "sharedvar"

// 丢弃原因
const (
	DropDecode    = "decode"
	DropUnmatched = "unmatched"
	DropRateLimit = "rate_limit"
)

// 值来源
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// ============================================================================
//                              Metrics 实现
// ============================================================================

// Metrics 协议引擎指标
type Metrics struct {
	registry *prometheus.Registry

	requestsSent    *prometheus.CounterVec
	requestsHandled *prometheus.CounterVec
	responses       prometheus.Counter
	peerErrors      *prometheus.CounterVec
	timeouts        prometheus.Counter
	dropped         *prometheus.CounterVec
	accepted        *prometheus.CounterVec
	bytesIn         prometheus.Counter
	bytesOut        prometheus.Counter
	pending         prometheus.Gauge
	peers           prometheus.Gauge
}

// New 创建指标并注册到独立的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_sent_total",
			Help:      "Outbound requests by message type.",
		}, []string{"type"}),
		requestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_handled_total",
			Help:      "Inbound requests dispatched to a handler, by message type.",
		}, []string{"type"}),
		responses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "responses_received_total",
			Help:      "Inbound non-error responses.",
		}),
		peerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "peer_errors_total",
			Help:      "Inbound error responses by code.",
		}, []string{"code"}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "request_timeouts_total",
			Help:      "Requests that reached their deadline without a terminal response.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "datagrams_dropped_total",
			Help:      "Inbound datagrams dropped, by reason.",
		}, []string{"reason"}),
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "values_accepted_total",
			Help:      "Shared variable values accepted into the local store, by source.",
		}, []string{"source"}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_received_total",
			Help:      "Datagram bytes received.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_sent_total",
			Help:      "Datagram bytes sent.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "pending_requests",
			Help:      "Requests currently in flight.",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "known_peers",
			Help:      "Peers currently in the registry.",
		}),
	}

	m.registry.MustRegister(
		m.requestsSent, m.requestsHandled, m.responses, m.peerErrors, m.timeouts,
		m.dropped, m.accepted, m.bytesIn, m.bytesOut, m.pending, m.peers,
	)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RequestSent 记录出站请求
func (m *Metrics) RequestSent(typ string) {
	if m == nil {
		return
	}
	m.requestsSent.WithLabelValues(typ).Inc()
}

// RequestHandled 记录入站请求
func (m *Metrics) RequestHandled(typ string) {
	if m == nil {
		return
	}
	m.requestsHandled.WithLabelValues(typ).Inc()
}

// ResponseReceived 记录入站响应
func (m *Metrics) ResponseReceived() {
	if m == nil {
		return
	}
	m.responses.Inc()
}

// PeerError 记录入站错误响应
func (m *Metrics) PeerError(code string) {
	if m == nil {
		return
	}
	m.peerErrors.WithLabelValues(code).Inc()
}

// Timeout 记录请求超时
func (m *Metrics) Timeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

// Dropped 记录丢弃的数据报
func (m *Metrics) Dropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

// Accepted 记录被接受的值
func (m *Metrics) Accepted(source string) {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues(source).Inc()
}

// BytesIn 记录接收字节
func (m *Metrics) BytesIn(n int) {
	if m == nil {
		return
	}
	m.bytesIn.Add(float64(n))
}

// BytesOut 记录发送字节
func (m *Metrics) BytesOut(n int) {
	if m == nil {
		return
	}
	m.bytesOut.Add(float64(n))
}

// SetPending 设置在途请求数
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// SetPeers 设置已知节点数
func (m *Metrics) SetPeers(n int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(n))
}
