package model

// CatalogEntry is one mission type from the bulk reference feed. Requirements
// holds fixed unit counts keyed by the feed's own names, Chances holds
// percentage probabilities for optional units.
type CatalogEntry struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Requirements   map[string]int     `json:"requirements"`
	Chances        map[string]float64 `json:"chances"`
	AverageCredits float64            `json:"average_credits"`
}
