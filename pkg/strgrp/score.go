package strgrp

import (
	"math"
	"sync"
)

// rowPool recycles the two rolling DP rows used by lcs.
var rowPool = sync.Pool{
	New: func() any {
		buf := make([]int32, 0, 256)
		return &buf
	},
}

// LCS returns the length, in runes, of the longest common subsequence of a and b.
func LCS(a, b string) int {
	return lcs([]rune(a), []rune(b))
}

// Score returns the normalized LCS similarity of a and b in [0, 1].
func Score(a, b string) float64 {
	return score([]rune(a), []rune(b))
}

// ShouldScore reports whether strings of lengths keyLen and strLen could
// possibly reach threshold. It bounds the score using lcs <= min(keyLen, strLen)
// and never rejects a pair that Score would accept.
func ShouldScore(threshold float64, keyLen, strLen int) bool {
	return threshold <= normalize(min(keyLen, strLen), keyLen, strLen)
}

func score(a, b []rune) float64 {
	return normalize(lcs(a, b), len(a), len(b))
}

// normalize maps an lcs length onto [0, 1]. Two empty strings score 0.
func normalize(common, la, lb int) float64 {
	fa, fb := float64(la), float64(lb)
	denom := fa*fa + fb*fb
	if denom == 0 {
		return 0
	}
	c := float64(common)
	return math.Sqrt(2 * c * c / denom)
}

// lcs walks a from the back, keeping only row ia and row ia+1 of the table.
func lcs(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	width := len(b) + 1
	bufp := rowPool.Get().(*[]int32)
	buf := *bufp
	if cap(buf) < 2*width {
		buf = make([]int32, 2*width)
	} else {
		buf = buf[:2*width]
		clear(buf)
	}

	// The trailing column of both rows stays zero.
	cur, next := buf[:width], buf[width:]
	for ia := len(a) - 1; ia >= 0; ia-- {
		av := a[ia]
		for ib := len(b) - 1; ib >= 0; ib-- {
			switch {
			case av == b[ib]:
				cur[ib] = next[ib+1] + 1
			case next[ib] > cur[ib+1]:
				cur[ib] = next[ib]
			default:
				cur[ib] = cur[ib+1]
			}
		}
		cur, next = next, cur
	}
	result := int(next[0])

	*bufp = buf
	rowPool.Put(bufp)
	return result
}
