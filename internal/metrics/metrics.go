// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordIssueCreated()
	RecordIssueUpdated()
	RecordIssueDeleted()
	RecordHTTPStatus(statusCode int)
	RecordListLatency(duration time.Duration)
	RecordStoreFailure(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	issuesCreated prometheus.Counter
	issuesUpdated prometheus.Counter
	issuesDeleted prometheus.Counter
	httpStatus    *prometheus.CounterVec
	listLatency   prometheus.Histogram
	storeFailures *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		issuesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "errortracker_issues_created_total",
			Help: "作成された課題の合計数",
		}),
		issuesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "errortracker_issues_updated_total",
			Help: "更新された課題の合計数",
		}),
		issuesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "errortracker_issues_deleted_total",
			Help: "削除された課題の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "errortracker_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		listLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "errortracker_list_latency_seconds",
			Help:    "課題一覧クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "errortracker_store_failures_total",
			Help: "操作別のストア障害の合計数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.issuesCreated,
		c.issuesUpdated,
		c.issuesDeleted,
		c.httpStatus,
		c.listLatency,
		c.storeFailures,
	)

	return c
}

// RecordIssueCreated は課題の作成を記録する。
func (c *Collector) RecordIssueCreated() {
	c.issuesCreated.Inc()
}

// RecordIssueUpdated は課題の更新を記録する。
func (c *Collector) RecordIssueUpdated() {
	c.issuesUpdated.Inc()
}

// RecordIssueDeleted は課題の削除を記録する。
func (c *Collector) RecordIssueDeleted() {
	c.issuesDeleted.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordListLatency は一覧クエリのレイテンシを記録する。
func (c *Collector) RecordListLatency(duration time.Duration) {
	c.listLatency.Observe(duration.Seconds())
}

// RecordStoreFailure はストア障害を操作名付きで記録する。
func (c *Collector) RecordStoreFailure(operation string) {
	c.storeFailures.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
