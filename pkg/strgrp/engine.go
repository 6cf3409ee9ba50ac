package strgrp

import (
	"fmt"
	"io"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Engine owns a set of groups, their items and the exact-match cache.
// T is the caller's payload type; the engine never inspects it.
type Engine[T any] struct {
	mu sync.RWMutex

	threshold   float64
	dynamicSize int
	opts        options

	cache  *exactCache
	groups []*Group[T]
	nItems int

	passes  int
	skipped int
}

// New creates an engine with a fixed acceptance threshold in [0, 1].
func New[T any](threshold float64, opts ...Option) (*Engine[T], error) {
	return NewDynamic[T](threshold, 0, opts...)
}

// NewDynamic creates an engine whose groups tighten their own threshold once
// they hold at least dynamicSize items. dynamicSize <= 0 disables this.
func NewDynamic[T any](threshold float64, dynamicSize int, opts ...Option) (*Engine[T], error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[T]{
		threshold:   threshold,
		dynamicSize: max(dynamicSize, 0),
		opts:        o,
		cache:       newExactCache(),
	}, nil
}

// Threshold returns the engine-wide acceptance threshold.
func (e *Engine[T]) Threshold() float64 {
	return e.threshold
}

// DynamicSize returns the adaptive threshold watermark, 0 when disabled.
func (e *Engine[T]) DynamicSize() int {
	return e.dynamicSize
}

// Len returns the number of groups.
func (e *Engine[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.groups)
}

// Group returns the group at index i in creation order.
func (e *Engine[T]) Group(i int) (*Group[T], bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i < 0 || i >= len(e.groups) {
		return nil, false
	}
	return e.groups[i], true
}

// Add routes key into the best matching group, or creates a new group when
// none qualifies, and records the assignment in the exact-match cache.
func (e *Engine[T]) Add(key string, payload T) (*Group[T], error) {
	if err := e.checkKey(key); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.maxItems > 0 && e.nItems >= e.opts.maxItems {
		e.observeAdd(OutcomeRejected)
		return nil, fmt.Errorf("%w: %d items", ErrCapacity, e.nItems)
	}

	g, cached := e.findBest(key)
	outcome := OutcomeJoined
	switch {
	case g != nil:
		if cached {
			outcome = OutcomeCacheHit
		}
		e.appendItem(g, key, payload)
	default:
		var err error
		if g, err = e.createGroup(key, payload); err != nil {
			e.observeAdd(OutcomeRejected)
			return nil, err
		}
		outcome = OutcomeCreated
	}
	e.cache.insert(key, g.index)
	e.observeAdd(outcome)
	return g, nil
}

// NewGroup creates a group for key without consulting existing groups, and
// caches key against it unless key is already cached.
func (e *Engine[T]) NewGroup(key string, payload T) (*Group[T], error) {
	if err := e.checkKey(key); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.maxItems > 0 && e.nItems >= e.opts.maxItems {
		e.observeAdd(OutcomeRejected)
		return nil, fmt.Errorf("%w: %d items", ErrCapacity, e.nItems)
	}
	g, err := e.createGroup(key, payload)
	if err != nil {
		e.observeAdd(OutcomeRejected)
		return nil, err
	}
	e.cache.insert(key, g.index)
	e.observeAdd(OutcomeCreated)
	return g, nil
}

// AddTo appends key to a group chosen by the caller, bypassing scoring.
func (e *Engine[T]) AddTo(g *Group[T], key string, payload T) error {
	if err := e.checkKey(key); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.owns(g) {
		return ErrForeignGroup
	}
	if e.opts.maxItems > 0 && e.nItems >= e.opts.maxItems {
		e.observeAdd(OutcomeRejected)
		return fmt.Errorf("%w: %d items", ErrCapacity, e.nItems)
	}
	e.appendItem(g, key, payload)
	e.cache.insert(key, g.index)
	e.observeAdd(OutcomeJoined)
	return nil
}

// ExactMatch returns the group key was previously assigned to, without scoring.
func (e *Engine[T]) ExactMatch(key string) (*Group[T], bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookup(key)
}

// IsAcceptable reports whether g's most recent score cleared its bound,
// refreshing a stale adaptive threshold first.
func (e *Engine[T]) IsAcceptable(g *Group[T]) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.owns(g) {
		return false
	}
	if e.dynamicSize > 0 && g.dirty {
		e.updateThreshold(g)
	}
	return g.score >= 0
}

// Destroy drops every group, item and cache entry. The engine stays usable.
func (e *Engine[T]) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// DestroyWithCallback hands every payload to release, group by group in
// insertion order, then destroys the engine contents. release must not call
// back into the engine.
func (e *Engine[T]) DestroyWithCallback(release func(T)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if release != nil {
		for _, g := range e.groups {
			for _, it := range g.items {
				release(it.payload)
			}
		}
	}
	e.reset()
}

// Stats returns engine counters.
func (e *Engine[T]) Stats() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return map[string]int{
		"groups":         len(e.groups),
		"items":          e.nItems,
		"cachedKeys":     e.cache.size,
		"cacheHits":      e.cache.hits,
		"scoringPasses":  e.passes,
		"prefilterSkips": e.skipped,
		"dynamicSize":    e.dynamicSize,
	}
}

// Fprint writes every group key followed by its tab-indented items.
func (e *Engine[T]) Fprint(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, g := range e.groups {
		if _, err := fmt.Fprintf(w, "%s:\n", g.key); err != nil {
			return err
		}
		for _, it := range g.items {
			if _, err := fmt.Fprintf(w, "\t%s\n", it.key); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine[T]) checkKey(key string) error {
	if e.opts.maxKeyLen > 0 {
		if n := utf8.RuneCountInString(key); n > e.opts.maxKeyLen {
			return fmt.Errorf("%w: %d runes, limit %d", ErrKeyTooLong, n, e.opts.maxKeyLen)
		}
	}
	return nil
}

func (e *Engine[T]) owns(g *Group[T]) bool {
	return g != nil && g.owner == e && g.index < len(e.groups) && e.groups[g.index] == g
}

func (e *Engine[T]) lookup(key string) (*Group[T], bool) {
	idx, ok := e.cache.lookup(key)
	if !ok {
		return nil, false
	}
	return e.groups[idx], true
}

// createGroup builds the group completely before publishing it.
func (e *Engine[T]) createGroup(key string, payload T) (*Group[T], error) {
	if e.opts.maxGroups > 0 && len(e.groups) >= e.opts.maxGroups {
		return nil, fmt.Errorf("%w: %d groups", ErrCapacity, len(e.groups))
	}
	g := newGroup(e, len(e.groups), key, payload)
	e.groups = append(e.groups, g)
	e.nItems++
	log.Debugf("Created group %d for %q", g.index, g.key)
	return g, nil
}

func (e *Engine[T]) appendItem(g *Group[T], key string, payload T) {
	g.appendItem(key, payload)
	e.nItems++
}

func (e *Engine[T]) reset() {
	e.groups = nil
	e.nItems = 0
	e.passes = 0
	e.skipped = 0
	e.cache.reset()
}

func (e *Engine[T]) observeAdd(outcome Outcome) {
	if e.opts.observer != nil {
		e.opts.observer.ObserveAdd(outcome, len(e.groups))
	}
}
