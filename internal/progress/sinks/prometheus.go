package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unlockegypt/heritage-researcher/internal/progress"
)

// PrometheusSink exports research progress metrics. It owns the
// collectors for site outcomes and per-step completions.
type PrometheusSink struct {
	sitesResearched prometheus.Counter
	sitesSkipped    prometheus.Counter
	stepsCompleted  *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	runDuration     prometheus.Histogram
}

// NewPrometheusSink registers the collectors against the provided
// registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		sitesResearched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "researcher_sites_researched_total",
			Help: "Sites that produced a complete record.",
		}),
		sitesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "researcher_sites_skipped_total",
			Help: "Sites skipped after a fatal primary-source failure.",
		}),
		stepsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "researcher_steps_completed_total",
			Help: "Pipeline step completions partitioned by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "researcher_step_duration_seconds",
			Help:    "Wall time per pipeline step.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"step"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "researcher_run_duration_seconds",
			Help:    "Wall time for complete research runs.",
			Buckets: []float64{10, 30, 60, 300, 600, 1800, 3600, 7200},
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.sitesResearched,
		s.sitesSkipped,
		s.stepsCompleted,
		s.stepDuration,
		s.runDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent
// use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageSiteDone:
		s.sitesResearched.Inc()
	case progress.StageSiteSkipped:
		s.sitesSkipped.Inc()
	case progress.StageStepDone:
		status := string(evt.Status)
		if status == "" {
			status = string(progress.StatusOK)
		}
		s.stepsCompleted.WithLabelValues(evt.Step, status).Inc()
		if evt.Dur > 0 {
			s.stepDuration.WithLabelValues(evt.Step).Observe(evt.Dur.Seconds())
		}
	case progress.StageRunDone:
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
