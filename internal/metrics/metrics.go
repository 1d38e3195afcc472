// Package metrics exposes Prometheus collectors for the HTTP API and the record store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roster"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Collectors owns a private registry so handlers built in tests never collide.
type Collectors struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
}

// NewCollectors registers the roster collectors together with the Go and process collectors.
func NewCollectors() *Collectors {
	registry := prometheus.NewRegistry()
	c := &Collectors{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		storeOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Record store operations by operation and result.",
		}, []string{"operation", "result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Record store latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Notifications published by kind.",
		}, []string{"kind"}),
	}
	registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.storeOperations,
		c.storeDuration,
		c.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the exposition format for the private registry.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveStore records one store operation.
func (c *Collectors) ObserveStore(operation string, success bool, duration time.Duration) {
	if c == nil || operation == "" {
		return
	}
	result := resultSuccess
	if !success {
		result = resultError
	}
	c.storeOperations.WithLabelValues(operation, result).Inc()
	c.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveNotification counts a published notification.
func (c *Collectors) ObserveNotification(kind string) {
	if c == nil || kind == "" {
		return
	}
	c.notifications.WithLabelValues(kind).Inc()
}

// Middleware counts requests by matched route. Unmatched paths share one label.
func (c *Collectors) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.requests.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.requestDuration.WithLabelValues(route, method).Observe(time.Since(started).Seconds())
	}
}
