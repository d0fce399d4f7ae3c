// ABOUTME: Menu lookup result types and name normalization helpers
// ABOUTME: Normalization (lowercase, spaces stripped) is shared by Cypher and in-memory matching
package models

import (
	"strconv"
	"strings"
	"unicode"
)

// MenuCandidate is a menu item offered to the user or resolved by exact match
type MenuCandidate struct {
	MenuID   string `json:"menu_id"`
	MenuName string `json:"menu_name"`
}

// MenuMatch is a similarity-search hit against the menu vector index
type MenuMatch struct {
	MenuID   string  `json:"menu_id"`
	MenuName string  `json:"menu_name"`
	Score    float64 `json:"score"`
}

// TagMatch is a similarity-search hit against the tag vector index
type TagMatch struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

// NormalizeName lowercases s and removes all whitespace
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NamesOverlap reports whether either normalized name contains the other
func NamesOverlap(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// DedupeMenus keeps the first candidate for each distinct menu name
func DedupeMenus(matches []MenuMatch) []MenuCandidate {
	seen := make(map[string]bool, len(matches))
	out := make([]MenuCandidate, 0, len(matches))
	for _, m := range matches {
		if seen[m.MenuName] {
			continue
		}
		seen[m.MenuName] = true
		out = append(out, MenuCandidate{MenuID: m.MenuID, MenuName: m.MenuName})
	}
	return out
}

// DedupeMenusNormalized is DedupeMenus keyed by NormalizeName, so
// "김치찌개" and "김치 찌개" collapse into the first one seen
func DedupeMenusNormalized(matches []MenuMatch) []MenuCandidate {
	seen := make(map[string]bool, len(matches))
	out := make([]MenuCandidate, 0, len(matches))
	for _, m := range matches {
		key := NormalizeName(m.MenuName)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, MenuCandidate{MenuID: m.MenuID, MenuName: m.MenuName})
	}
	return out
}

// SelectCandidate resolves user input against a candidate list.
// Purely numeric input is a 1-based index; anything else is a
// case-insensitive substring of a candidate name. Returns false on no match.
func SelectCandidate(input string, candidates []MenuCandidate) (MenuCandidate, bool) {
	txt := strings.TrimSpace(input)
	if txt == "" {
		return MenuCandidate{}, false
	}

	if isDigits(txt) {
		if idx, err := strconv.Atoi(txt); err == nil && idx >= 1 && idx <= len(candidates) {
			return candidates[idx-1], true
		}
	}

	lower := strings.ToLower(txt)
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.MenuName), lower) {
			return c, true
		}
	}
	return MenuCandidate{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
