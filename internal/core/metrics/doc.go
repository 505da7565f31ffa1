// Package metrics 提供监控指标收集
//
// 基于 prometheus/client_golang，每个引擎实例持有独立的
// prometheus.Registry，不污染全局默认注册表：
//
//	m := metrics.New()
//	m.RequestSent("GET")
//	http.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
//
// 所有记录方法都允许 nil 接收者，未启用指标时直接传 nil 即可。
package metrics
