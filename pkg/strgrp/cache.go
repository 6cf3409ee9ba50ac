package strgrp

import (
	"github.com/tchap/go-patricia/v2/patricia"
)

// exactCache maps every literal string the engine has accepted to the index of
// its group. Entries are never replaced.
type exactCache struct {
	trie  *patricia.Trie
	empty int // group of "", or -1
	size  int
	hits  int
}

func newExactCache() *exactCache {
	return &exactCache{
		trie:  patricia.NewTrie(),
		empty: -1,
	}
}

func (c *exactCache) lookup(key string) (int, bool) {
	if key == "" {
		return c.empty, c.empty >= 0
	}
	item := c.trie.Get(patricia.Prefix(key))
	if item == nil {
		return 0, false
	}
	return item.(int), true
}

// insert records key -> index unless key is already present. It reports
// whether a new entry was made.
func (c *exactCache) insert(key string, index int) bool {
	if key == "" {
		if c.empty >= 0 {
			return false
		}
		c.empty = index
		c.size++
		return true
	}
	if !c.trie.Insert(patricia.Prefix(key), index) {
		return false
	}
	c.size++
	return true
}

func (c *exactCache) reset() {
	c.trie = patricia.NewTrie()
	c.empty = -1
	c.size = 0
	c.hits = 0
}
