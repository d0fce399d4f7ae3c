// ABOUTME: Offline catalog format for the in-memory graph
// ABOUTME: Cuisines, menus and places with tag counts, loaded from one JSON file
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Catalog is a self-contained snapshot of the restaurant graph
type Catalog struct {
	Cuisines []string       `json:"cuisines"`
	Menus    []CatalogMenu  `json:"menus"`
	Places   []CatalogPlace `json:"places"`
}

// CatalogMenu is a Menu node and its OF_CUISINE edge
type CatalogMenu struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Cuisine string `json:"cuisine"`
}

// CatalogPlace is a Place node with its SERVES, SERVES_MENU and HAS_TAG edges
type CatalogPlace struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Cuisines  []string       `json:"cuisines"`
	MenuIDs   []string       `json:"menu_ids"`
	TagCounts map[string]int `json:"tag_counts"`
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks ids are present and unique and that references resolve
func (c *Catalog) Validate() error {
	menus := make(map[string]bool, len(c.Menus))
	for _, m := range c.Menus {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			return errors.New("menu with empty id or name")
		}
		if menus[m.ID] {
			return fmt.Errorf("duplicate menu id %q", m.ID)
		}
		menus[m.ID] = true
	}

	places := make(map[string]bool, len(c.Places))
	for _, p := range c.Places {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("place with empty id")
		}
		if places[p.ID] {
			return fmt.Errorf("duplicate place id %q", p.ID)
		}
		places[p.ID] = true
		for _, id := range p.MenuIDs {
			if !menus[id] {
				return fmt.Errorf("place %q references unknown menu %q", p.ID, id)
			}
		}
	}
	return nil
}

// TagNames returns every tag used by any place, first occurrence order by place
func (c *Catalog) TagNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.Places {
		for _, t := range sortedKeys(p.TagCounts) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
