package catalog

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the cached catalog for operator reporting.
type Stats struct {
	MissionTypes   int
	WithFixedReqs  int
	WithChances    int
	Unresolvable   int // empty at all three resolution stages
	MeanCredits    float64
	MedianCredits  float64
	Credits90thPct float64
}

// ComputeStats walks the cached entries and reports requirement coverage and
// the average-credit distribution.
func (c *Cache) ComputeStats() Stats {
	entries := c.Entries()
	s := Stats{MissionTypes: len(entries)}
	credits := make([]float64, 0, len(entries))
	for _, e := range entries {
		credits = append(credits, e.AverageCredits)
		fixed := false
		for _, n := range e.Requirements {
			if n > 0 {
				fixed = true
				break
			}
		}
		if fixed {
			s.WithFixedReqs++
		}
		if len(e.Chances) > 0 {
			s.WithChances++
		}
		if c.Requirements(e.ID).Empty() {
			s.Unresolvable++
		}
	}
	if len(credits) == 0 {
		return s
	}
	sort.Float64s(credits)
	s.MeanCredits = stat.Mean(credits, nil)
	s.MedianCredits = stat.Quantile(0.5, stat.Empirical, credits, nil)
	s.Credits90thPct = stat.Quantile(0.9, stat.Empirical, credits, nil)
	return s
}
