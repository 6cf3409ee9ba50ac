// Package metrics exports strgrp engine activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bastiangx/strgrp/pkg/strgrp"
)

// Metrics implements strgrp.Observer on top of Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	adds         *prometheus.CounterVec
	groups       prometheus.Gauge
	passes       prometheus.Counter
	skipped      prometheus.Counter
	scored       prometheus.Counter
	passDuration prometheus.Histogram
}

var _ strgrp.Observer = (*Metrics)(nil)

// Option customizes metric construction.
type Option func(*config)

type config struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64
}

// WithRegisterer overrides the default Prometheus registerer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = r
	}
}

// WithNamespace overrides the metric name prefix.
func WithNamespace(ns string) Option {
	return func(cfg *config) {
		cfg.namespace = ns
	}
}

// WithPassBuckets overrides the scoring pass histogram buckets (in seconds).
func WithPassBuckets(buckets []float64) Option {
	return func(cfg *config) {
		cfg.buckets = buckets
	}
}

// New constructs Metrics and registers its collectors.
func New(opts ...Option) *Metrics {
	cfg := config{
		registerer: prometheus.DefaultRegisterer,
		namespace:  "strgrp",
		buckets:    prometheus.ExponentialBuckets(1e-6, 4, 10),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		adds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "adds_total",
			Help:      "Strings added, by outcome.",
		}, []string{"outcome"}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "groups",
			Help:      "Number of groups in the engine.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "scoring_passes_total",
			Help:      "Scoring passes over all groups.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "prefilter_skips_total",
			Help:      "Groups the length pre-filter ruled out without running the metric.",
		}),
		scored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "groups_scored_total",
			Help:      "Groups the similarity metric ran against.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "scoring_pass_seconds",
			Help:      "Duration of one scoring pass.",
			Buckets:   cfg.buckets,
		}),
	}

	m.adds = registerCounterVec(cfg.registerer, m.adds)
	m.groups = register(cfg.registerer, m.groups)
	m.passes = register(cfg.registerer, m.passes)
	m.skipped = register(cfg.registerer, m.skipped)
	m.scored = register(cfg.registerer, m.scored)
	m.passDuration = register(cfg.registerer, m.passDuration)

	return m
}

// ObserveAdd records the outcome of one insert.
func (m *Metrics) ObserveAdd(outcome strgrp.Outcome, groups int) {
	if m == nil {
		return
	}
	m.adds.WithLabelValues(outcome.String()).Inc()
	m.groups.Set(float64(groups))
}

// ObservePass records one scoring pass.
func (m *Metrics) ObservePass(groups, skipped int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.passes.Inc()
	m.skipped.Add(float64(skipped))
	m.scored.Add(float64(groups - skipped))
	m.passDuration.Observe(elapsed.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, collector *prometheus.CounterVec) *prometheus.CounterVec {
	if registerer == nil {
		return collector
	}
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
			return collector
		}
		panic(err)
	}
	return collector
}

// register handles the scalar collectors, reusing an already registered one
// of the same type.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if registerer == nil {
		return collector
	}
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
			return collector
		}
		panic(err)
	}
	return collector
}
