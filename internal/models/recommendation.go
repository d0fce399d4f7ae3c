// ABOUTME: PlaceRecommendation and the tag-overlap scoring contract
// ABOUTME: score = |moodTags ∩ placeTags|, ordered by score desc then place name asc
package models

import "sort"

// DefaultRecommendLimit is the number of places shown after confirmation
const DefaultRecommendLimit = 3

// PlaceRecommendation is one row of a recommendation query
type PlaceRecommendation struct {
	PlaceID        string   `json:"place_id"`
	PlaceName      string   `json:"place_name"`
	MatchedMenuIDs []string `json:"matched_menu_ids"`
	MatchedTags    []string `json:"matched_tags"`
	Score          int      `json:"score"`
}

// RecommendRequest carries the inputs of a recommendation query.
// MenuName == "" selects the cuisine+tag path.
type RecommendRequest struct {
	Cuisine  string   `json:"cuisine"`
	MenuName string   `json:"menu_name,omitempty"`
	MoodTags []string `json:"mood_tags"`
	Limit    int      `json:"limit"`
}

// MatchTags returns the mood tags present in placeTags, in mood-tag order.
// Duplicate mood tags are counted once.
func MatchTags(moodTags, placeTags []string) []string {
	have := make(map[string]bool, len(placeTags))
	for _, t := range placeTags {
		have[t] = true
	}
	seen := make(map[string]bool, len(moodTags))
	matched := []string{}
	for _, t := range moodTags {
		if have[t] && !seen[t] {
			seen[t] = true
			matched = append(matched, t)
		}
	}
	return matched
}

// ScorePlace fills MatchedTags and Score for one place
func ScorePlace(rec *PlaceRecommendation, moodTags, placeTags []string) {
	rec.MatchedTags = MatchTags(moodTags, placeTags)
	rec.Score = len(rec.MatchedTags)
}

// SortRecommendations orders by score descending, then place name ascending
func SortRecommendations(recs []PlaceRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].PlaceName < recs[j].PlaceName
	})
}

// RepresentativeMenuID is the first matched menu id, or "" when none matched
func (r PlaceRecommendation) RepresentativeMenuID() string {
	if len(r.MatchedMenuIDs) == 0 {
		return ""
	}
	return r.MatchedMenuIDs[0]
}
