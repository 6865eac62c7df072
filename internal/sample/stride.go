// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sample selects evenly spaced subsets of year-ordered papers.
package sample

import (
	"cmp"
	"slices"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// Stride returns k elements of items spread evenly across its index
// range: the element at floor(i*N/k) for i in 0..k-1. When len(items) <= k
// it returns items unchanged. A non-positive k selects nothing.
//
// On a year-sorted input the selection approximates even coverage of the
// publication timeline rather than a uniform random sample.
func Stride[T any](items []T, k int) []T {
	n := len(items)
	if k <= 0 {
		return nil
	}
	if n <= k {
		return items
	}

	step := float64(n) / float64(k)
	out := make([]T, k)
	for i := range k {
		out[i] = items[int(float64(i)*step)]
	}
	return out
}

// SortByYear orders papers by ascending year, keeping the read order of
// papers that share a year.
func SortByYear(papers []types.ScoredPaper) {
	slices.SortStableFunc(papers, func(a, b types.ScoredPaper) int {
		return cmp.Compare(a.Year, b.Year)
	})
}
