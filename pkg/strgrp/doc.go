/*
Package strgrp clusters free-text strings into groups of near-duplicates.

There is no predefined taxonomy. The first occurrence of a novel string creates
a group, and every later string is routed into the best scoring existing group,
or spawns a new one when no group clears the acceptance threshold.

# Similarity

Strings are compared with a length-normalized longest common subsequence
score:

	score(a, b) = sqrt(2 * lcs(a, b)^2 / (len(a)^2 + len(b)^2))

The score lies in [0, 1] and is 1 only for identical, non-empty strings.
Lengths are counted in runes. Because lcs never exceeds the shorter length, a
cheap O(1) upper bound rejects most (group, string) pairs before the O(n*m)
dynamic program runs:

	ShouldScore(threshold, len(key), len(str))

# Engine

	e, err := strgrp.New[int](0.85)
	g, err := e.Add("ANZ ATM WILLUNGA 10 HIGH ST", 1)
	g, ok := e.FindBest("ANZ ATM WILLUNGA 12 HIGH ST")

Every literal string ever added is remembered in an exact-match cache, so
repeated inputs resolve to their group in O(1) without scoring. Cache entries
are never reassigned.

FindRanked returns every group ordered by descending score as a lazy heap,
which suits callers that present candidates to a human and only read a prefix.

# Adaptive thresholds

NewDynamic enables per-group thresholds. Once a group holds at least
dynamicSize items and receives a new member, its threshold is recomputed on
next use from the least similar pair of members, minus a small slack, and never
falls below the engine threshold or its previous value. Large groups therefore
stop absorbing loosely related strings.

# Concurrency

All Engine methods are safe for concurrent use; mutations and scoring passes
are serialized by the engine. The per-group scoring step may be fanned out over
a worker pool with WithStrategy(Parallel).
*/
package strgrp
