package strgrp

import (
	"container/heap"
	"iter"
)

type ranked[T any] struct {
	group *Group[T]
	score float64
}

// rankHeap is a max-heap on score; equal scores pop in creation order.
type rankHeap[T any] []ranked[T]

func (h rankHeap[T]) Len() int { return len(h) }

func (h rankHeap[T]) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].group.index < h[j].group.index
}

func (h rankHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap[T]) Push(x any) { *h = append(*h, x.(ranked[T])) }

func (h *rankHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = ranked[T]{}
	*h = old[:n-1]
	return x
}

// Ranking yields groups in descending score order. Scores are captured when
// the ranking is built, so later passes do not reorder it. A Ranking is
// single-pass and not safe for concurrent use.
type Ranking[T any] struct {
	h rankHeap[T]
}

// FindRanked scores every group against key and returns them best first.
// The ranking is empty when the engine has no groups.
//
// The exact-match cache is not consulted, so for a key that was added before
// the head of the ranking may differ from the group FindBest returns.
func (e *Engine[T]) FindRanked(key string) *Ranking[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.groups) == 0 {
		return &Ranking[T]{}
	}
	e.scoreAll([]rune(key))

	h := make(rankHeap[T], len(e.groups))
	for i, g := range e.groups {
		h[i] = ranked[T]{group: g, score: g.score}
	}
	heap.Init(&h)
	return &Ranking[T]{h: h}
}

// Len returns the number of groups not yet consumed.
func (r *Ranking[T]) Len() int {
	return r.h.Len()
}

// Next pops the best remaining group and its score. It returns false once
// the ranking is exhausted, and keeps doing so.
func (r *Ranking[T]) Next() (*Group[T], float64, bool) {
	if r.h.Len() == 0 {
		return nil, 0, false
	}
	x := heap.Pop(&r.h).(ranked[T])
	return x.group, x.score, true
}

// All consumes the remaining groups in order.
func (r *Ranking[T]) All() iter.Seq2[*Group[T], float64] {
	return func(yield func(*Group[T], float64) bool) {
		for {
			g, s, ok := r.Next()
			if !ok || !yield(g, s) {
				return
			}
		}
	}
}

// Top consumes up to n groups and returns them. n <= 0 takes everything.
func (r *Ranking[T]) Top(n int) []*Group[T] {
	if n <= 0 || n > r.Len() {
		n = r.Len()
	}
	out := make([]*Group[T], 0, n)
	for range n {
		g, _, _ := r.Next()
		out = append(out, g)
	}
	return out
}
