package strgrp

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	// rejectedScore marks a group the pre-filter ruled out.
	rejectedScore = -1.0
	// dynamicRejectedScore is the same mark under adaptive thresholds.
	dynamicRejectedScore = -2.0

	// thresholdSlack loosens a recomputed threshold below the weakest
	// observed pair to admit natural variation.
	thresholdSlack = 0.03

	// parallelMinGroups is the group count below which Parallel scores inline.
	parallelMinGroups = 64
)

// findBest resolves key through the cache, or scores every group and returns
// the first one with the maximum non-negative score. cached reports a cache
// hit. Callers hold the write lock.
func (e *Engine[T]) findBest(key string) (g *Group[T], cached bool) {
	if hit, ok := e.lookup(key); ok {
		e.cache.hits++
		return hit, true
	}
	if len(e.groups) == 0 {
		return nil, false
	}

	e.scoreAll([]rune(key))

	best := e.groups[0]
	for _, cur := range e.groups[1:] {
		if cur.score > best.score {
			best = cur
		}
	}
	if best.score < 0 {
		return nil, false
	}
	return best, false
}

// FindBest returns the group key would join, if any. The group comes from
// the exact-match cache when key was added before, otherwise from a full
// scoring pass.
func (e *Engine[T]) FindBest(key string) (*Group[T], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, _ := e.findBest(key)
	return g, g != nil
}

// scoreAll sets every group's score against key. Each group is touched by
// exactly one worker, so no two goroutines write the same fields.
func (e *Engine[T]) scoreAll(key []rune) {
	start := time.Now()
	var skipped atomic.Int64

	scoreOne := func(g *Group[T]) {
		if !e.scoreGroup(g, key) {
			skipped.Add(1)
		}
	}

	if e.opts.strategy == Parallel && e.opts.workers > 1 && len(e.groups) >= parallelMinGroups {
		e.scoreParallel(scoreOne)
	} else {
		for _, g := range e.groups {
			scoreOne(g)
		}
	}

	n := int(skipped.Load())
	e.passes++
	e.skipped += n
	if e.opts.observer != nil {
		e.opts.observer.ObservePass(len(e.groups), n, time.Since(start))
	}
}

// scoreParallel splits the groups into more chunks than workers so uneven
// key lengths still balance out.
func (e *Engine[T]) scoreParallel(fn func(*Group[T])) {
	workers := e.opts.workers
	n := len(e.groups)
	chunk := max(1, n/(workers*4))

	var eg errgroup.Group
	eg.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		part := e.groups[lo:min(lo+chunk, n)]
		eg.Go(func() error {
			for _, g := range part {
				fn(g)
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// scoreGroup computes g.score relative to the acceptance bound and reports
// whether the metric ran.
func (e *Engine[T]) scoreGroup(g *Group[T], key []rune) bool {
	if e.dynamicSize <= 0 {
		g.score = rejectedScore
		if !ShouldScore(e.threshold, len(g.keyRunes), len(key)) {
			return false
		}
		g.score = score(g.keyRunes, key) - e.threshold
		return true
	}

	g.score = dynamicRejectedScore
	if g.dirty {
		e.updateThreshold(g)
	}
	if !ShouldScore(g.threshold, len(g.keyRunes), len(key)) {
		return false
	}
	s := score(g.keyRunes, key)
	// Accepted strings are measured against the global floor so groups can be
	// compared fairly; rejected ones keep their own tighter bound.
	bound := g.threshold
	if s >= g.threshold {
		bound = e.threshold
	}
	g.score = s - bound
	return true
}

// updateThreshold tightens g.threshold towards the least similar pair of its
// items. The result never drops below the engine threshold or the group's
// previous threshold.
func (e *Engine[T]) updateThreshold(g *Group[T]) {
	keys := make([][]rune, len(g.items))
	for i, it := range g.items {
		keys[i] = []rune(it.key)
	}

	low := 1.0
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			low = min(low, score(keys[i], keys[j]))
		}
	}
	low -= thresholdSlack

	prev := g.threshold
	g.threshold = max(low, e.threshold, prev)
	g.dirty = false
	if g.threshold != prev {
		log.Debugf("Group %d threshold %.3f -> %.3f (%d items)", g.index, prev, g.threshold, len(g.items))
	}
}
