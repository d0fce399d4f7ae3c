// ABOUTME: PlaceProfile is the per-place keyword-chip tag count artifact
// ABOUTME: Mirrors the <place_id>_tags.json documents produced by the review collectors
package models

import (
	"errors"
	"sort"
	"strings"
)

// PlaceProfile aggregates how often each review keyword chip was chosen for a place
type PlaceProfile struct {
	PlaceID   string         `json:"place_id"`
	Cuisine   []string       `json:"cuisine"`
	StoreName string         `json:"store_name"`
	TagCounts map[string]int `json:"tag_counts"`
}

// Validate checks the fields required to import a profile into the graph
func (p *PlaceProfile) Validate() error {
	if strings.TrimSpace(p.PlaceID) == "" {
		return errors.New("place_id is required")
	}
	if strings.TrimSpace(p.StoreName) == "" {
		return errors.New("store_name is required")
	}
	return nil
}

// TagNames returns the profile's tags sorted by count desc, then name asc
func (p *PlaceProfile) TagNames() []string {
	names := make([]string, 0, len(p.TagCounts))
	for name := range p.TagCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := p.TagCounts[names[i]], p.TagCounts[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

// PlaceListEntry is one row of the batch place list
type PlaceListEntry struct {
	PlaceID    string   `json:"place_id"`
	StoreName  string   `json:"store_name"`
	CuisineRaw string   `json:"cuisine_raw"`
	Cuisine    []string `json:"cuisine"`
}
