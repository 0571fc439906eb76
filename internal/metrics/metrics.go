// Package metrics exposes Prometheus collectors for the counting pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ayusman/repcoach/internal/session"
)

// SetupPrometheus returns a registry with the Go runtime and process collectors.
func SetupPrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Manager holds the pipeline collectors. It implements session.Observer.
type Manager struct {
	// counters
	CounterFrames   prometheus.Counter
	CounterDropped  prometheus.Counter
	CounterRejected *prometheus.CounterVec
	CounterMissing  *prometheus.CounterVec
	CounterReps     *prometheus.CounterVec
	CounterNoPose   prometheus.Counter

	// gauges
	GaugeCount prometheus.Gauge

	// histograms
	HistProcessing prometheus.Histogram
}

// NewTestManager returns a Manager bound to a throwaway registry.
func NewTestManager() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("repcoach", "engine", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_processed_total",
			Help:      "Frames run through the counting engine",
		}),
		CounterDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_dropped_total",
			Help:      "Frames superseded before analysis started",
		}),
		CounterRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "samples_rejected_total",
			Help:      "Samples excluded by the velocity gate",
		}, []string{"side"}),
		CounterMissing: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "side_missing_total",
			Help:      "Frames in which a side's landmarks were absent or not confident",
		}, []string{"side"}),
		CounterReps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reps_total",
			Help:      "Counted repetitions",
		}, []string{"exercise"}),
		CounterNoPose: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "no_pose_total",
			Help:      "Frames without any detected body",
		}),
		GaugeCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_count",
			Help:      "Repetition count of the active session",
		}),
		HistProcessing: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frame_processing_seconds",
			Help:      "Time spent in the counting engine per frame",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
	}
}

// FrameProcessed records one engine result.
func (m *Manager) FrameProcessed(out session.Output, elapsed time.Duration) {
	m.CounterFrames.Inc()
	m.HistProcessing.Observe(elapsed.Seconds())

	if !out.Detected {
		m.CounterNoPose.Inc()
	}
	if out.Exercise == "" {
		return
	}

	for side, so := range map[string]session.SideOutput{"left": out.Left, "right": out.Right} {
		if out.Detected && !so.Visible {
			m.CounterMissing.WithLabelValues(side).Inc()
		}
		if so.Rejected {
			m.CounterRejected.WithLabelValues(side).Inc()
		}
	}
	if out.Counted {
		m.CounterReps.WithLabelValues(out.Exercise).Inc()
	}
	m.GaugeCount.Set(float64(out.Count))
}

// FrameDropped records a superseded frame.
func (m *Manager) FrameDropped() {
	m.CounterDropped.Inc()
}
