package strgrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	atm10 = "ANZ ATM WILLUNGA 10 HIGH ST"
	atm12 = "ANZ ATM WILLUNGA 12 HIGH ST"
	atm14 = "ANZ ATM WILLUNGA 14 HIGH ST"
	// three substitutions away from atm10: scores 24/27
	atmFar = "ANZ ATM WILLUNGX 10 HIGX SX"
)

func newDynamic(t *testing.T, size int) *Engine[int] {
	t.Helper()
	e, err := NewDynamic[int](defaultSimilarity, size)
	require.NoError(t, err)
	return e
}

func TestDynamicThresholdTightens(t *testing.T) {
	e := newDynamic(t, 2)

	g, err := e.Add(atm10, 1)
	require.NoError(t, err)
	assert.InDelta(t, defaultSimilarity, g.Threshold(), 1e-12)

	_, err = e.Add(atm12, 2)
	require.NoError(t, err)
	assert.InDelta(t, defaultSimilarity, g.Threshold(), 1e-12, "recompute is lazy")

	found, ok := e.FindBest(atm14)
	require.True(t, ok)
	assert.Same(t, g, found)
	assert.InDelta(t, 26.0/27.0-thresholdSlack, g.Threshold(), 1e-9)
	assert.InDelta(t, 26.0/27.0-defaultSimilarity, g.Score(), 1e-9)
}

func TestDynamicThresholdRejectsLooseMatch(t *testing.T) {
	require.InDelta(t, 24.0/27.0, Score(atm10, atmFar), 1e-9)

	static := newEngine(t)
	dynamic := newDynamic(t, 2)

	for _, e := range []*Engine[int]{static, dynamic} {
		for i, key := range []string{atm10, atm12, atmFar} {
			_, err := e.Add(key, i)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, 1, static.Len())
	assert.Equal(t, 2, dynamic.Len())

	g, ok := dynamic.ExactMatch(atm10)
	require.True(t, ok)
	assert.InDelta(t, 24.0/27.0-g.Threshold(), g.Score(), 1e-9,
		"rejected groups are measured against their own bound")
}

func TestDynamicThresholdMonotonic(t *testing.T) {
	e := newDynamic(t, 2)

	g, err := e.Add("abcdefghij", 0)
	require.NoError(t, err)

	members := []string{"abcdefghij", "abcdefghiz", "abcdefgxyz", "zbcdefghij", "abcdefghij"}
	prev := g.Threshold()
	for i, key := range members {
		require.NoError(t, e.AddTo(g, key, i+1))
		e.IsAcceptable(g)

		th := g.Threshold()
		assert.GreaterOrEqual(t, th, prev, "after %q", key)
		assert.GreaterOrEqual(t, th, e.Threshold())
		prev = th
	}
	assert.InDelta(t, 1.0-thresholdSlack, prev, 1e-9)
}

func TestDynamicSizeOneRecomputesImmediately(t *testing.T) {
	e := newDynamic(t, 1)

	g, err := e.Add("abcdefghij", 0)
	require.NoError(t, err)

	_, ok := e.FindBest("abcdefghiz")
	assert.False(t, ok, "0.9 is below the 0.97 bound of a single-item group")
	assert.InDelta(t, 1.0-thresholdSlack, g.Threshold(), 1e-9)
}

func TestDynamicDisabled(t *testing.T) {
	e := newDynamic(t, 0)
	assert.Equal(t, 0, e.DynamicSize())

	g, err := e.Add("abcdefghij", 0)
	require.NoError(t, err)
	for i := range 5 {
		_, err := e.Add("abcdefghij", i+1)
		require.NoError(t, err)
	}
	_, ok := e.FindBest("abcdefghiz")
	assert.True(t, ok)
	assert.InDelta(t, defaultSimilarity, g.Threshold(), 1e-12)
}

func TestIsAcceptable(t *testing.T) {
	e := newDynamic(t, 2)

	g, err := e.Add(atm10, 1)
	require.NoError(t, err)
	_, err = e.Add(atm12, 2)
	require.NoError(t, err)

	_, ok := e.FindBest(atm14)
	require.True(t, ok)
	assert.True(t, e.IsAcceptable(g))

	_, ok = e.FindBest("CARD ENTRY AT MAWSON LAKES BRANCH")
	require.False(t, ok)
	assert.False(t, e.IsAcceptable(g))

	other := newDynamic(t, 2)
	assert.False(t, other.IsAcceptable(g))
}

func TestIsAcceptableRefreshesDirtyThreshold(t *testing.T) {
	e := newDynamic(t, 2)

	g, err := e.Add(atm10, 1)
	require.NoError(t, err)
	require.NoError(t, e.AddTo(g, atm12, 2))
	assert.InDelta(t, defaultSimilarity, g.Threshold(), 1e-12)

	e.IsAcceptable(g)
	assert.InDelta(t, 26.0/27.0-thresholdSlack, g.Threshold(), 1e-9)
}
