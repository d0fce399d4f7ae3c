// ABOUTME: Reads and writes <place_id>_tags.json place profiles
// ABOUTME: Also holds the cuisine token and keyword-chip counting rules the collectors use
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harper/dongne/internal/models"
)

// FileSuffix names profile files in a profile directory
const FileSuffix = "_tags.json"

// ParseCuisineTokens joins tokens with spaces, splits on commas, trims
// whitespace and surrounding quotes and drops empties and repeats.
// ParseCuisineTokens(`"치킨","닭강정"`) is [치킨 닭강정].
func ParseCuisineTokens(tokens ...string) []string {
	joined := strings.Join(tokens, " ")
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, part := range strings.Split(joined, ",") {
		p := strings.Trim(strings.TrimSpace(part), `'"`)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// CountTags aggregates the keyword chips of each review. With dedupWithinRow
// a chip repeated inside one review counts once.
func CountTags(rows [][]string, dedupWithinRow bool) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		seen := make(map[string]bool, len(row))
		for _, tag := range row {
			t := strings.TrimSpace(tag)
			if t == "" {
				continue
			}
			if dedupWithinRow {
				if seen[t] {
					continue
				}
				seen[t] = true
			}
			counts[t]++
		}
	}
	return counts
}

// Load reads one profile file
func Load(path string) (*models.PlaceProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p models.PlaceProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if p.Cuisine == nil {
		p.Cuisine = []string{}
	}
	if p.TagCounts == nil {
		p.TagCounts = map[string]int{}
	}
	return &p, nil
}

// LoadDir reads every *_tags.json in dir, ordered by file name
func LoadDir(dir string) ([]models.PlaceProfile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+FileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	sort.Strings(paths)

	profiles := make([]models.PlaceProfile, 0, len(paths))
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// Save writes p to dir as <place_id>_tags.json and returns the path
func Save(dir string, p models.PlaceProfile) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create profile dir: %w", err)
	}
	if p.Cuisine == nil {
		p.Cuisine = []string{}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	path := filepath.Join(dir, p.PlaceID+FileSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write profile: %w", err)
	}
	return path, nil
}
