package strgrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExactCache(t *testing.T) {
	c := newExactCache()

	_, ok := c.lookup("abc")
	assert.False(t, ok)

	assert.True(t, c.insert("abc", 1))
	assert.True(t, c.insert("ab", 2))
	assert.True(t, c.insert("abcd", 3))
	assert.False(t, c.insert("abc", 9), "entries are never replaced")

	for key, want := range map[string]int{"abc": 1, "ab": 2, "abcd": 3} {
		got, ok := c.lookup(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok = c.lookup("a")
	assert.False(t, ok, "prefixes of cached keys are not hits")
	assert.Equal(t, 3, c.size)
}

func TestExactCacheEmptyKey(t *testing.T) {
	c := newExactCache()

	_, ok := c.lookup("")
	assert.False(t, ok)
	assert.True(t, c.insert("", 0))
	assert.False(t, c.insert("", 4))

	got, ok := c.lookup("")
	assert.True(t, ok)
	assert.Equal(t, 0, got)

	c.reset()
	_, ok = c.lookup("")
	assert.False(t, ok)
	assert.Equal(t, 0, c.size)
}
