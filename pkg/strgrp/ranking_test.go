package strgrp

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRankedEmpty(t *testing.T) {
	e := newEngine(t)

	r := e.FindRanked("anything")
	assert.Equal(t, 0, r.Len())
	_, _, ok := r.Next()
	assert.False(t, ok)
}

func TestFindRankedOrder(t *testing.T) {
	e := newEngine(t)

	var groups []*Group[int]
	for i, key := range []string{"aaaaaaaaaa", "zzzzzzzzzz", "aaaaazzzzz"} {
		g, err := e.Add(key, i)
		require.NoError(t, err)
		groups = append(groups, g)
	}
	require.Equal(t, 3, e.Len())

	r := e.FindRanked("aaaaaaaaab")
	require.Equal(t, 3, r.Len())

	g, s, ok := r.Next()
	require.True(t, ok)
	assert.Same(t, groups[0], g)
	assert.InDelta(t, 0.9-defaultSimilarity, s, 1e-9)

	g, s, ok = r.Next()
	require.True(t, ok)
	assert.Same(t, groups[2], g)
	assert.InDelta(t, 0.5-defaultSimilarity, s, 1e-9)

	g, s, ok = r.Next()
	require.True(t, ok)
	assert.Same(t, groups[1], g)
	assert.InDelta(t, -defaultSimilarity, s, 1e-9)

	for range 3 {
		_, _, ok = r.Next()
		assert.False(t, ok)
	}
}

func TestFindRankedHeadIsFindBest(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	e := newEngine(t)
	var added []string
	for i := range 150 {
		key := randomWord(rng, 6, 18)
		if i%3 == 0 && len(added) > 0 {
			key = mutate(rng, added[rng.IntN(len(added))])
		}
		_, err := e.Add(key, i)
		require.NoError(t, err)
		added = append(added, key)
	}

	for range 50 {
		query := mutate(rng, added[rng.IntN(len(added))])
		if _, cached := e.ExactMatch(query); cached {
			continue
		}

		best, found := e.FindBest(query)
		r := e.FindRanked(query)
		assert.Equal(t, e.Len(), r.Len())

		prev := 2.0
		first := true
		for g, s := range r.All() {
			if first && found {
				assert.Same(t, best, g)
			}
			if first && !found {
				assert.Less(t, s, 0.0)
			}
			first = false
			assert.LessOrEqual(t, s, prev)
			prev = s
		}
	}
}

func TestFindRankedTiesKeepCreationOrder(t *testing.T) {
	e := newEngine(t)
	for i, key := range []string{"aaaa", "bbbb", "cccc"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	r := e.FindRanked("dddd")
	var order []int
	for g, s := range r.All() {
		assert.InDelta(t, -defaultSimilarity, s, 1e-9)
		order = append(order, g.Index())
	}
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRankingTop(t *testing.T) {
	e := newEngine(t)
	for i, key := range []string{"aaaaaaaaaa", "zzzzzzzzzz", "aaaaazzzzz"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	r := e.FindRanked("aaaaaaaaab")
	top := r.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, 0, top[0].Index())
	assert.Equal(t, 2, top[1].Index())
	assert.Equal(t, 1, r.Len())

	rest := r.Top(0)
	require.Len(t, rest, 1)
	assert.Equal(t, 1, rest[0].Index())
	assert.Empty(t, r.Top(5))
}

func TestRankingSnapshotSurvivesLaterPasses(t *testing.T) {
	e := newEngine(t)
	for i, key := range []string{"aaaaaaaaaa", "zzzzzzzzzz"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	r := e.FindRanked("aaaaaaaaaz")
	_, _ = e.FindBest("zzzzzzzzza")

	g, _, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 0, g.Index())
}

func TestFindRankedIgnoresCache(t *testing.T) {
	e, err := New[int](0.5)
	require.NoError(t, err)
	for i, key := range []string{"aaaa", "aaaabbbbbb", "bbbbbb"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}
	require.Equal(t, 2, e.Len())

	best, ok := e.FindBest("aaaabbbbbb")
	require.True(t, ok)
	assert.Equal(t, 0, best.Index())

	head, s, ok := e.FindRanked("aaaabbbbbb").Next()
	require.True(t, ok)
	assert.Equal(t, 1, head.Index())
	assert.InDelta(t, math.Sqrt(72.0/136.0)-0.5, s, 1e-9)
}
