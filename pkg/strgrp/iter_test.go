package strgrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupIteratorEmpty(t *testing.T) {
	e := newEngine(t)
	it := e.Groups()

	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok, "exhausted iterators stay exhausted")
}

func TestGroupIteratorOrder(t *testing.T) {
	e := newEngine(t)
	for i, key := range []string{"alpha", "bravo", "charlie", "alpha"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	var keys []string
	for g := range e.Groups().All() {
		keys = append(keys, g.Key())
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, keys)
}

func TestGroupIteratorSnapshot(t *testing.T) {
	e := newEngine(t)
	_, err := e.Add("alpha", 0)
	require.NoError(t, err)

	it := e.Groups()
	_, err = e.Add("bravo", 1)
	require.NoError(t, err)

	g, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "alpha", g.Key())
	_, ok = it.Next()
	assert.False(t, ok, "groups created after the iterator are not visited")
	assert.Equal(t, 2, e.Len())
}

func TestGroupIteratorAllResumes(t *testing.T) {
	e := newEngine(t)
	for i, key := range []string{"alpha", "bravo", "charlie"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	it := e.Groups()
	_, ok := it.Next()
	require.True(t, ok)

	var rest []int
	for g := range it.All() {
		rest = append(rest, g.Index())
		break
	}
	for g := range it.All() {
		rest = append(rest, g.Index())
	}
	assert.Equal(t, []int{1, 2}, rest)
}

func TestItemIterator(t *testing.T) {
	e := newEngine(t)
	g, err := e.Add("alpha", 10)
	require.NoError(t, err)
	require.NoError(t, e.AddTo(g, "alpha 2", 20))

	it := g.ItemIter()
	require.NoError(t, e.AddTo(g, "alpha 3", 30))

	var got []Item[int]
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, item)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Key())
	assert.Equal(t, 20, got[1].Payload())

	_, ok := it.Next()
	assert.False(t, ok)

	assert.Equal(t, 3, g.Size())
	var all []int
	for item := range g.ItemIter().All() {
		all = append(all, item.Payload())
	}
	assert.Equal(t, []int{10, 20, 30}, all)
}

func TestItemsIsACopy(t *testing.T) {
	e := newEngine(t)
	g, err := e.Add("alpha", 1)
	require.NoError(t, err)

	items := g.Items()
	items[0] = Item[int]{key: "mutated", payload: 99}
	assert.Equal(t, "alpha", g.Items()[0].Key())
	assert.Equal(t, 1, g.Items()[0].Payload())
}

func TestGroupByIndex(t *testing.T) {
	e := newEngine(t)
	_, ok := e.Group(0)
	assert.False(t, ok)

	for i, key := range []string{"alpha", "bravo"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}
	g, ok := e.Group(1)
	require.True(t, ok)
	assert.Equal(t, "bravo", g.Key())
	_, ok = e.Group(-1)
	assert.False(t, ok)
	_, ok = e.Group(2)
	assert.False(t, ok)
}
