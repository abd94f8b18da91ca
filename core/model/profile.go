package model

import (
	"fmt"
	"sort"
	"strings"
)

// Profile maps a vehicle category to the number of units still required.
// A category absent from the map is fully satisfied. Entries with a count of
// zero or less must never be stored; Set and Raise collapse them to absent.
type Profile map[Category]int

// NewProfile returns an empty requirement profile.
func NewProfile() Profile { return Profile{} }

// Empty reports whether nothing is required.
func (p Profile) Empty() bool { return len(p) == 0 }

// Set stores the required count for a category. Counts below one remove the
// entry so the absent-means-satisfied invariant holds.
func (p Profile) Set(c Category, n int) {
	if n < 1 {
		delete(p, c)
		return
	}
	p[c] = n
}

// Add increases the required count for a category.
func (p Profile) Add(c Category, n int) {
	if n < 1 {
		return
	}
	p[c] += n
}

// Raise lifts the count for a category to n if the current value is lower.
// It never lowers an existing entry.
func (p Profile) Raise(c Category, n int) {
	if n < 1 {
		return
	}
	if p[c] < n {
		p[c] = n
	}
}

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for c, n := range p {
		out[c] = n
	}
	return out
}

// String renders the profile in a stable order for logs.
func (p Profile) String() string {
	if len(p) == 0 {
		return "{}"
	}
	cats := make([]string, 0, len(p))
	for c := range p {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%dx %s", p[Category(c)], c))
	}
	return strings.Join(parts, ", ")
}
