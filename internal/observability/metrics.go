package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APICollector bundles Prometheus metrics for the HTTP API and the transform
// backends. It implements query.MetricsRecorder so backends can report
// kernel and transform events without importing this package.
type APICollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	KernelFetches     *prometheus.CounterVec
	KernelsResident   prometheus.Gauge
	TransformFailures *prometheus.CounterVec
}

// NewAPICollector registers the API metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewAPICollector(reg prometheus.Registerer) (*APICollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kernel_fetches_total",
		Help: "Kernel archive fetch attempts, labeled by kernel key and outcome.",
	}, []string{"kernel", "outcome"})
	fetches, err = registerCounterVec(reg, fetches, "kernel_fetches_total")
	if err != nil {
		return nil, err
	}

	resident, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kernels_resident",
		Help: "Number of kernel files currently loaded by the transform backend.",
	}), "kernels_resident")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transform_failures_total",
		Help: "Transform operations that returned an error, labeled by backend.",
	}, []string{"backend"})
	failures, err = registerCounterVec(reg, failures, "transform_failures_total")
	if err != nil {
		return nil, err
	}

	return &APICollector{
		gatherer:          gatherer,
		HTTPRequests:      requests,
		HTTPDurations:     durations,
		KernelFetches:     fetches,
		KernelsResident:   resident,
		TransformFailures: failures,
	}, nil
}

// Middleware records request counts and durations per chi route pattern.
func (c *APICollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if c == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		code := strconv.Itoa(ww.Status())
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, code).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *APICollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// KernelFetched satisfies query.MetricsRecorder.
func (c *APICollector) KernelFetched(kernel string, err error) {
	if c == nil || c.KernelFetches == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.KernelFetches.WithLabelValues(kernel, outcome).Inc()
}

// KernelsLoaded satisfies query.MetricsRecorder.
func (c *APICollector) KernelsLoaded(n int) {
	if c == nil || c.KernelsResident == nil {
		return
	}
	c.KernelsResident.Set(float64(n))
}

// TransformFailed satisfies query.MetricsRecorder.
func (c *APICollector) TransformFailed(backend string) {
	if c == nil || c.TransformFailures == nil {
		return
	}
	c.TransformFailures.WithLabelValues(backend).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
