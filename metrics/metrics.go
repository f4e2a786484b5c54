// Package metrics exposes the simulation's per-frame FPS and frame-duration
// observability as Prometheus collectors, complementing engine/profiler's
// stdout log lines with scrapeable gauges (spec.md §4.5 step 8, SPEC_FULL.md
// §4.5 ADDED).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the gauges/histograms the orchestrator updates once per
// frame. A fresh Collectors should be registered against its own registry per
// engine instance so multiple engines in one process don't collide.
type Collectors struct {
	registry *prometheus.Registry

	FPS            prometheus.Gauge
	FrameDuration  prometheus.Histogram
	LiveParticles  prometheus.Gauge
	LiveBeams      prometheus.Gauge
	DroppedFrames  prometheus.Counter
}

// NewCollectors creates and registers the simulation's metrics against a
// fresh registry.
func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		FPS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "softbody",
			Name:      "fps",
			Help:      "Current simulation frame rate, averaged over a 1-second sliding window.",
		}),
		FrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "softbody",
			Name:      "frame_duration_seconds",
			Help:      "Wall-clock duration of a submitted frame (input write through present).",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		LiveParticles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "softbody",
			Name:      "live_particles",
			Help:      "Number of live particles after the most recent delete pass.",
		}),
		LiveBeams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "softbody",
			Name:      "live_beams",
			Help:      "Number of live beams after the most recent delete pass.",
		}),
		DroppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "softbody",
			Name:      "dropped_frames_total",
			Help:      "Frames dropped after a device submission failure.",
		}),
	}
}

// ObserveFrame records one frame's wall-clock duration and the live entity
// counts left by the delete pass.
func (c *Collectors) ObserveFrame(duration time.Duration, liveParticles, liveBeams int) {
	c.FrameDuration.Observe(duration.Seconds())
	c.LiveParticles.Set(float64(liveParticles))
	c.LiveBeams.Set(float64(liveBeams))
}

// Handler returns an http.Handler serving this Collectors' registry in the
// Prometheus exposition format, for mounting at "/metrics".
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
