// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package metrics exposes the Prometheus collectors of the API server.

Collectors live in a private [Registry] so tests and the /metrics endpoint see
exactly the series this service defines plus the Go runtime and process collectors.

Series:

  - HTTP: in-flight gauge, request counter and latency histogram by route pattern.
  - Wallet: chapter purchase outcomes, top-up outcomes and credited coins.
  - Uploads: rejected files by kind.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gallemanga"

// # Outcome Labels

const (
	ResultPurchased    = "purchased"
	ResultAlreadyOwned = "already_owned"
	ResultInsufficient = "insufficient_funds"
	ResultCredited     = "credited"
	ResultReplayed     = "replayed"
	ResultUnpaid       = "unpaid"
	ResultCancelled    = "cancelled"
	ResultExpired      = "expired"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)

	chapterPurchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "chapter_purchases_total",
			Help:      "Chapter checkout attempts by outcome.",
		},
		[]string{"result"},
	)

	topUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "topups_total",
			Help:      "Coin top-up confirmations by outcome.",
		},
		[]string{"result"},
	)

	coinsCredited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "coins_credited_total",
			Help:      "GalleCoins credited through confirmed top-ups.",
		},
	)

	uploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "rejected_total",
			Help:      "Uploaded files rejected during validation.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		chapterPurchases,
		topUps,
		coinsCredited,
		uploadsRejected,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Routes are labelled by their chi pattern to keep label cardinality bounded.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/metrics" {
			next.ServeHTTP(writer, request)
			return
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequests.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
		httpDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}

// # Domain Counters

// RecordChapterPurchase counts one chapter checkout outcome.
func RecordChapterPurchase(result string) {
	chapterPurchases.WithLabelValues(result).Inc()
}

// RecordTopUp counts one top-up outcome and the coins it credited.
func RecordTopUp(result string, coins int64) {
	topUps.WithLabelValues(result).Inc()
	if coins > 0 {
		coinsCredited.Add(float64(coins))
	}
}

// RecordUploadRejected counts a rejected cover or chapter file.
func RecordUploadRejected(kind string) {
	uploadsRejected.WithLabelValues(kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}
