package strgrp

import "iter"

// GroupIterator is a forward-only cursor over the groups that existed when it
// was created.
type GroupIterator[T any] struct {
	groups []*Group[T]
	i      int
}

// Groups returns a cursor over the engine's current groups in creation order.
func (e *Engine[T]) Groups() *GroupIterator[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := len(e.groups)
	return &GroupIterator[T]{groups: e.groups[:n:n]}
}

// Next returns the next group, or false when exhausted.
func (it *GroupIterator[T]) Next() (*Group[T], bool) {
	if it.i >= len(it.groups) {
		return nil, false
	}
	g := it.groups[it.i]
	it.i++
	return g, true
}

// All consumes the remaining groups.
func (it *GroupIterator[T]) All() iter.Seq[*Group[T]] {
	return func(yield func(*Group[T]) bool) {
		for {
			g, ok := it.Next()
			if !ok || !yield(g) {
				return
			}
		}
	}
}

// ItemIterator is a forward-only cursor over a snapshot of a group's items.
type ItemIterator[T any] struct {
	items []Item[T]
	i     int
}

// Next returns the next item, or false when exhausted.
func (it *ItemIterator[T]) Next() (Item[T], bool) {
	if it.i >= len(it.items) {
		return Item[T]{}, false
	}
	item := it.items[it.i]
	it.i++
	return item, true
}

// All consumes the remaining items.
func (it *ItemIterator[T]) All() iter.Seq[Item[T]] {
	return func(yield func(Item[T]) bool) {
		for {
			item, ok := it.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}
