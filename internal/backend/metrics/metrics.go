// Package metrics collects and exposes Prometheus metrics for the backend.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the transport layers report to.
type Recorder interface {
	RecordRPC(method string, code string)
	RecordUpload(status int, bytes int64)
}

type Collector struct {
	rpcTotal    *prometheus.CounterVec
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialclone_grpc_requests_total",
			Help: "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialclone_http_uploads_total",
			Help: "Multipart uploads by HTTP status.",
		}, []string{"status_code"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialclone_upload_bytes_total",
			Help: "Bytes stored through the multipart upload endpoint.",
		}),
	}

	reg.MustRegister(c.rpcTotal, c.uploads, c.uploadBytes)

	return c
}

func (c *Collector) RecordRPC(method string, code string) {
	c.rpcTotal.WithLabelValues(method, code).Inc()
}

// RecordUpload counts an upload attempt; bytes are only added for 2xx results.
func (c *Collector) RecordUpload(status int, bytes int64) {
	c.uploads.WithLabelValues(strconv.Itoa(status)).Inc()
	if status >= 200 && status < 300 && bytes > 0 {
		c.uploadBytes.Add(float64(bytes))
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRPC(string, string) {}
func (Nop) RecordUpload(int, int64)  {}
