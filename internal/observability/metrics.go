package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TrackerCollector bundles Prometheus metrics for the tracking daemon and
// provides helpers to wire them into its HTTP surface.
type TrackerCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	ComputeIterations *prometheus.CounterVec
	TrackedSatellites prometheus.Gauge
	ObservationAge    *prometheus.GaugeVec
}

// NewTrackerCollector registers tracker Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewTrackerCollector(reg prometheus.Registerer) (*TrackerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sattrack_requests_total",
		Help: "Total number of handled status/control requests, labeled by operation and outcome code.",
	}, []string{"op", "code"})
	requests, err := registerCounterVec(reg, requests, "sattrack_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sattrack_request_duration_seconds",
		Help:    "Status/control request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"op"})
	durations, err = registerHistogramVec(reg, durations, "sattrack_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	iterations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sattrack_compute_iterations_total",
		Help: "Total number of propagation iterations, labeled by satellite.",
	}, []string{"satellite"})
	iterations, err = registerCounterVec(reg, iterations, "sattrack_compute_iterations_total")
	if err != nil {
		return nil, err
	}

	tracked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sattrack_tracked_satellites",
		Help: "Current number of satellites in the catalog.",
	}), "sattrack_tracked_satellites")
	if err != nil {
		return nil, err
	}

	age := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sattrack_observation_age_seconds",
		Help: "Age of the most recent observation per satellite at scrape time.",
	}, []string{"satellite"})
	age, err = registerGaugeVec(reg, age, "sattrack_observation_age_seconds")
	if err != nil {
		return nil, err
	}

	return &TrackerCollector{
		gatherer:          gatherer,
		HTTPRequests:      requests,
		HTTPDurations:     durations,
		ComputeIterations: iterations,
		TrackedSatellites: tracked,
		ObservationAge:    age,
	}, nil
}

// ObserveRequest records one handled HTTP operation.
func (c *TrackerCollector) ObserveRequest(op string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(op, fmt.Sprintf("%d", status)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}

// RecordObservation bumps per-satellite compute counters and freshness.
func (c *TrackerCollector) RecordObservation(satelliteID string, observedAt, now time.Time) {
	if c == nil {
		return
	}
	if c.ComputeIterations != nil {
		c.ComputeIterations.WithLabelValues(satelliteID).Inc()
	}
	if c.ObservationAge != nil {
		c.ObservationAge.WithLabelValues(satelliteID).Set(now.Sub(observedAt).Seconds())
	}
}

// SetTrackedSatellites drives the catalog-size gauge.
func (c *TrackerCollector) SetTrackedSatellites(n int) {
	if c == nil || c.TrackedSatellites == nil {
		return
	}
	c.TrackedSatellites.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TrackerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
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

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
