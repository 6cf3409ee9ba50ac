package strgrp

import (
	"runtime"
	"time"
)

// Strategy selects how the per-group scoring step is executed.
type Strategy int

const (
	// Sequential scores groups one after another on the calling goroutine.
	Sequential Strategy = iota
	// Parallel fans scoring out over a bounded pool of goroutines.
	Parallel
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Outcome classifies what an insert did.
type Outcome int

const (
	OutcomeCacheHit Outcome = iota
	OutcomeJoined
	OutcomeCreated
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCacheHit:
		return "cache_hit"
	case OutcomeJoined:
		return "joined"
	case OutcomeCreated:
		return "created"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Observer receives engine events. Implementations must be safe for
// concurrent use and must not call back into the engine.
type Observer interface {
	// ObserveAdd is called once per insert with the resulting group count.
	ObserveAdd(outcome Outcome, groups int)
	// ObservePass is called after each scoring pass.
	ObservePass(groups, skipped int, elapsed time.Duration)
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	strategy  Strategy
	workers   int
	maxGroups int
	maxItems  int
	maxKeyLen int
	observer  Observer
}

func defaultOptions() options {
	return options{
		strategy: Sequential,
		workers:  runtime.GOMAXPROCS(0),
	}
}

// WithStrategy selects sequential or parallel scoring.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithWorkers bounds the goroutines used by the Parallel strategy.
// Values below 1 keep the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaxGroups caps the number of groups. Zero means unlimited.
func WithMaxGroups(n int) Option {
	return func(o *options) {
		o.maxGroups = max(n, 0)
	}
}

// WithMaxItems caps the total number of items across all groups. Zero means unlimited.
func WithMaxItems(n int) Option {
	return func(o *options) {
		o.maxItems = max(n, 0)
	}
}

// WithMaxKeyLen rejects keys longer than n runes. Zero means unlimited.
func WithMaxKeyLen(n int) Option {
	return func(o *options) {
		o.maxKeyLen = max(n, 0)
	}
}

// WithObserver attaches an event observer, e.g. a metrics collector.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
