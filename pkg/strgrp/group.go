package strgrp

import "strings"

// Item is one accepted occurrence of a string.
type Item[T any] struct {
	key     string
	payload T
}

// Key returns the literal string that was added.
func (it Item[T]) Key() string {
	return it.key
}

// Payload returns the caller's value stored with the item.
func (it Item[T]) Payload() T {
	return it.payload
}

// Group is a cluster of mutually similar strings. Groups are owned by the
// engine that created them and live until it is destroyed.
type Group[T any] struct {
	owner    *Engine[T]
	index    int
	key      string
	keyRunes []rune
	items    []Item[T]

	// score is scratch from the most recent scoring pass.
	score float64

	threshold float64
	dirty     bool
}

func newGroup[T any](owner *Engine[T], index int, key string, payload T) *Group[T] {
	key = strings.Clone(key)
	return &Group[T]{
		owner:     owner,
		index:     index,
		key:       key,
		keyRunes:  []rune(key),
		items:     []Item[T]{{key: key, payload: payload}},
		threshold: owner.threshold,
		dirty:     owner.dynamicSize > 0 && owner.dynamicSize <= 1,
	}
}

// Key returns the string that created the group.
func (g *Group[T]) Key() string {
	return g.key
}

// Index returns the group's position in creation order.
func (g *Group[T]) Index() int {
	return g.index
}

// Size returns the number of items in the group.
func (g *Group[T]) Size() int {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()
	return len(g.items)
}

// Threshold returns the group's current acceptance bound.
func (g *Group[T]) Threshold() float64 {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()
	return g.threshold
}

// Score returns the group's score from the last scoring pass, relative to the
// acceptance bound: non-negative values were acceptable matches.
func (g *Group[T]) Score() float64 {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()
	return g.score
}

// ItemIter returns a cursor over the items present in the group now.
func (g *Group[T]) ItemIter() *ItemIterator[T] {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()
	n := len(g.items)
	return &ItemIterator[T]{items: g.items[:n:n]}
}

// Items returns a copy of the group's items in insertion order.
func (g *Group[T]) Items() []Item[T] {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()
	out := make([]Item[T], len(g.items))
	copy(out, g.items)
	return out
}

// appendItem adds an occurrence and marks the threshold stale once the group
// reaches the dynamic watermark. Callers hold the engine write lock.
func (g *Group[T]) appendItem(key string, payload T) {
	g.items = append(g.items, Item[T]{key: strings.Clone(key), payload: payload})
	if g.owner.dynamicSize > 0 {
		g.dirty = len(g.items) >= g.owner.dynamicSize
	}
}
