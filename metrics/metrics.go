package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/musicbox/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RendersTotal      *prometheus.CounterVec
	RenderDuration    prometheus.Histogram
	DiagnosticsTotal  *prometheus.CounterVec
	MeasuresRendered  prometheus.Counter
	RecognitionsTotal *prometheus.CounterVec
	RecognitionTime   prometheus.Histogram
	StorageOpsTotal   *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "musicbox_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "musicbox_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 30},
				},
				[]string{"method", "path"},
			),
			RendersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "musicbox_renders_total",
					Help: "Scores rendered, by output format and result",
				},
				[]string{"format", "result"},
			),
			RenderDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "musicbox_render_duration_seconds",
					Help:    "Time to build and emit one score",
					Buckets: prometheus.DefBuckets,
				},
			),
			DiagnosticsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "musicbox_diagnostics_total",
					Help: "Non-fatal render diagnostics by code",
				},
				[]string{"code"},
			),
			MeasuresRendered: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "musicbox_measures_rendered_total",
					Help: "Measures laid out",
				},
			),
			RecognitionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "musicbox_recognitions_total",
					Help: "Image recognition runs by recognizer and result",
				},
				[]string{"recognizer", "result"},
			),
			RecognitionTime: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "musicbox_recognition_duration_seconds",
					Help:    "Time spent recognizing one upload",
					Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
				},
			),
			StorageOpsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "musicbox_storage_operations_total",
					Help: "Storage operations by driver, operation and result",
				},
				[]string{"driver", "op", "result"},
			),
		}
	})
	return instance
}

// Get returns the metrics, registering them on first use.
func Get() *Metrics {
	return Initialize()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveRender(format string, start time.Time, r *model.Render, err error) {
	m.RendersTotal.WithLabelValues(format, result(err)).Inc()
	m.RenderDuration.Observe(time.Since(start).Seconds())
	if r == nil {
		return
	}
	for _, d := range r.Diagnostics {
		m.DiagnosticsTotal.WithLabelValues(string(d.Code)).Inc()
	}
	for _, c := range r.Commands {
		if c.Kind == model.CmdSeparator {
			m.MeasuresRendered.Inc()
		}
	}
}

func (m *Metrics) ObserveRecognition(recognizer string, start time.Time, err error) {
	m.RecognitionsTotal.WithLabelValues(recognizer, result(err)).Inc()
	m.RecognitionTime.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveStorage(driver, op string, err error) {
	m.StorageOpsTotal.WithLabelValues(driver, op, result(err)).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by route template.
func Middleware(next http.Handler) http.Handler {
	m := Get()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
