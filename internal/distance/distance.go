// Package distance provides the sequence and feature-vector metrics used by
// the ranking, filtering and clustering packages.
//
// Identity is measured position by position over the overlap of two strings,
// without realignment. Edit distance uses the classic dynamic programming
// recurrence in linear space.
package distance

import (
	"gonum.org/v1/gonum/floats"
)

// IdentityCount counts positions where query and seq hold the same
// character, over the length of the shorter string.
func IdentityCount(query, seq string) int {
	n := min(len(query), len(seq))
	matches := 0
	for i := 0; i < n; i++ {
		if query[i] == seq[i] {
			matches++
		}
	}
	return matches
}

// IdentityFraction is IdentityCount divided by the length of seq.
// An empty seq has identity 0.
func IdentityFraction(query, seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	return float64(IdentityCount(query, seq)) / float64(len(seq))
}

// Levenshtein returns the edit distance between a and b with unit costs
// for substitutions, insertions and deletions.
func Levenshtein(a, b string) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	for j := range prevRow {
		prevRow[j] = j
	}

	for i := 1; i <= m; i++ {
		currRow[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			diag := prevRow[j-1] + cost
			up := prevRow[j] + 1
			left := currRow[j-1] + 1

			currRow[j] = min(diag, min(up, left))
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[n]
}

// Euclidean returns the L2 distance between two feature vectors of equal length.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}
