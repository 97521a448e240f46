package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 用户指标
	UsersRegistered prometheus.Counter
	LoginsTotal     *prometheus.CounterVec

	// 消息指标
	MessagesSent       prometheus.Counter
	MessagesDeleted    prometheus.Counter
	AttachmentsCreated prometheus.Counter

	// 授权指标
	AuthDenials *prometheus.CounterVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks prometheus.Counter
}

// NewMetrics 创建监控指标
//
// 指标注册在独立的 Registry 上，避免测试中重复创建
// 时与默认注册表冲突。
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgapi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgapi_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgapi_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		UsersRegistered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_users_registered_total",
				Help: "Total number of registered users",
			},
		),

		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgapi_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),

		MessagesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_messages_sent_total",
				Help: "Total number of messages sent",
			},
		),

		MessagesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_messages_deleted_total",
				Help: "Total number of messages deleted",
			},
		),

		AttachmentsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_attachments_created_total",
				Help: "Total number of attachments created",
			},
		),

		AuthDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgapi_auth_denials_total",
				Help: "Total number of denied requests",
			},
			[]string{"reason"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgapi_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_panics_total",
				Help: "Total number of recovered panics",
			},
		),

		RateLimitBlocks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "msgapi_rate_limit_blocks_total",
				Help: "Total number of rate limited requests",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordError 记录错误指标
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic 指标
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordAuthDenial 记录授权拒绝指标
func (m *Metrics) RecordAuthDenial(reason string) {
	m.AuthDenials.WithLabelValues(reason).Inc()
}

// Handler 返回 Prometheus 指标的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
