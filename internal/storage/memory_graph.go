// ABOUTME: In-memory implementation of the restaurant graph queries
// ABOUTME: Serves offline runs and tests with the same ordering rules as the Cypher statements
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/harper/dongne/internal/graph"
	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/models"
	"go.uber.org/zap"
)

type menuNode struct {
	id      string
	name    string
	cuisine string
}

type placeNode struct {
	id       string
	name     string
	cuisines map[string]bool
	menuIDs  []string
	tags     map[string]int
}

// MemoryGraph holds the catalog, its vector indexes and recorded choices
type MemoryGraph struct {
	mu       sync.RWMutex
	embedder graph.Embedder
	logger   *zap.Logger

	menus     map[string]*menuNode
	menuOrder []string
	places    map[string]*placeNode
	users     map[string]bool
	choices   []models.Choice

	menuIndex *VectorIndex
	tagIndex  *VectorIndex
}

// NewMemoryGraph builds the graph and embeds every menu name and tag up front
func NewMemoryGraph(ctx context.Context, catalog *Catalog, embedder graph.Embedder, log *zap.Logger) (*MemoryGraph, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	g := &MemoryGraph{
		embedder:  embedder,
		logger:    logger.OrNop(log),
		menus:     make(map[string]*menuNode),
		places:    make(map[string]*placeNode),
		users:     make(map[string]bool),
		menuIndex: NewVectorIndex(0),
		tagIndex:  NewVectorIndex(0),
	}
	if catalog == nil {
		return g, nil
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	for _, m := range catalog.Menus {
		g.menus[m.ID] = &menuNode{id: m.ID, name: m.Name, cuisine: m.Cuisine}
		g.menuOrder = append(g.menuOrder, m.ID)
		vec, err := embedder.Embed(ctx, m.Name)
		if err != nil {
			return nil, fmt.Errorf("embed menu %q: %w", m.Name, err)
		}
		if err := g.menuIndex.Add(m.ID, vec); err != nil {
			return nil, err
		}
	}

	for _, p := range catalog.Places {
		node := &placeNode{
			id:       p.ID,
			name:     p.Name,
			cuisines: make(map[string]bool, len(p.Cuisines)),
			menuIDs:  append([]string(nil), p.MenuIDs...),
			tags:     make(map[string]int, len(p.TagCounts)),
		}
		for _, c := range p.Cuisines {
			node.cuisines[c] = true
		}
		for t, n := range p.TagCounts {
			node.tags[t] = n
		}
		g.places[p.ID] = node
	}

	for _, tag := range catalog.TagNames() {
		if err := g.indexTag(ctx, tag); err != nil {
			return nil, err
		}
	}

	g.logger.Info("memory graph loaded",
		zap.Int("menus", len(g.menus)),
		zap.Int("places", len(g.places)),
		zap.Int("tags", g.tagIndex.Len()))
	return g, nil
}

func (g *MemoryGraph) indexTag(ctx context.Context, tag string) error {
	if g.tagIndex.Has(tag) {
		return nil
	}
	vec, err := g.embedder.Embed(ctx, tag)
	if err != nil {
		return fmt.Errorf("embed tag %q: %w", tag, err)
	}
	return g.tagIndex.Add(tag, vec)
}

// ExactMenus matches normalized names either direction within the cuisine
func (g *MemoryGraph) ExactMenus(_ context.Context, cuisine, text string) ([]models.MenuCandidate, error) {
	if models.NormalizeName(text) == "" {
		return nil, nil
	}

	g.mu.RLock()
	var matches []models.MenuMatch
	for _, id := range g.menuOrder {
		m := g.menus[id]
		if m.cuisine == cuisine && models.NamesOverlap(m.name, text) {
			matches = append(matches, models.MenuMatch{MenuID: m.id, MenuName: m.name})
		}
	}
	g.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MenuName != matches[j].MenuName {
			return matches[i].MenuName < matches[j].MenuName
		}
		return matches[i].MenuID < matches[j].MenuID
	})
	if len(matches) > graph.ExactMenuLimit {
		matches = matches[:graph.ExactMenuLimit]
	}
	return models.DedupeMenusNormalized(matches), nil
}

// SimilarMenus searches k*5 neighbours, keeps the cuisine's menus and returns the top k
func (g *MemoryGraph) SimilarMenus(ctx context.Context, cuisine, text string, k int) ([]models.MenuMatch, error) {
	vec, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed menu text: %w", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []models.MenuMatch
	for _, hit := range g.menuIndex.Search(vec, k*5) {
		m := g.menus[hit.ID]
		if m == nil || m.cuisine != cuisine {
			continue
		}
		out = append(out, models.MenuMatch{MenuID: m.id, MenuName: m.name, Score: hit.Score})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// MoodTags returns the k nearest tags
func (g *MemoryGraph) MoodTags(ctx context.Context, text string, k int) ([]models.TagMatch, error) {
	vec, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed mood text: %w", err)
	}

	hits := g.tagIndex.Search(vec, k)
	out := make([]models.TagMatch, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.TagMatch{Tag: h.ID, Score: h.Score})
	}
	return out, nil
}

// RecommendPlaces scores places of the cuisine by mood tag overlap.
// With a menu name only places serving a matching menu qualify.
func (g *MemoryGraph) RecommendPlaces(_ context.Context, req models.RecommendRequest) ([]models.PlaceRecommendation, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = models.DefaultRecommendLimit
	}
	target := models.NormalizeName(req.MenuName)

	g.mu.RLock()
	var recs []models.PlaceRecommendation
	for _, p := range g.places {
		if !p.cuisines[req.Cuisine] {
			continue
		}

		menuIDs := []string{}
		if req.MenuName != "" {
			seen := map[string]bool{}
			for _, id := range p.menuIDs {
				m := g.menus[id]
				if m == nil || seen[id] || !strings.Contains(models.NormalizeName(m.name), target) {
					continue
				}
				seen[id] = true
				menuIDs = append(menuIDs, id)
			}
			if len(menuIDs) == 0 {
				continue
			}
		}

		rec := models.PlaceRecommendation{PlaceID: p.id, PlaceName: p.name, MatchedMenuIDs: menuIDs}
		models.ScorePlace(&rec, req.MoodTags, sortedKeys(p.tags))
		recs = append(recs, rec)
	}
	g.mu.RUnlock()

	// map iteration is random; pin ties before the score/name ordering
	sort.Slice(recs, func(i, j int) bool { return recs[i].PlaceID < recs[j].PlaceID })
	models.SortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// EnsureUser registers a user id
func (g *MemoryGraph) EnsureUser(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[userID] = true
	return nil
}

// SaveChoice appends the choice when its user and place exist
func (g *MemoryGraph) SaveChoice(_ context.Context, c *models.Choice) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.users[c.UserID] || g.places[c.PlaceID] == nil {
		return graph.ErrChoiceNotCreated
	}
	for _, existing := range g.choices {
		if existing.ChoiceID == c.ChoiceID {
			return fmt.Errorf("choice %s already exists", c.ChoiceID)
		}
	}
	stored := *c
	stored.MoodTags = append([]string(nil), c.MoodTags...)
	if stored.MenuID != "" && g.menus[stored.MenuID] == nil {
		// no OF_MENU edge without a menu node
		stored.MenuID = ""
	}
	g.choices = append(g.choices, stored)
	return nil
}

// Choices returns the recorded choices of a user in creation order
func (g *MemoryGraph) Choices(userID string) []models.Choice {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []models.Choice
	for _, c := range g.choices {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// ImportProfile upserts a place from a scraped profile
func (g *MemoryGraph) ImportProfile(ctx context.Context, p models.PlaceProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	node := g.places[p.PlaceID]
	if node == nil {
		node = &placeNode{id: p.PlaceID, cuisines: map[string]bool{}, tags: map[string]int{}}
		g.places[p.PlaceID] = node
	}
	node.name = p.StoreName
	for _, c := range p.Cuisine {
		node.cuisines[c] = true
	}
	for t, n := range p.TagCounts {
		node.tags[t] = n
	}
	g.mu.Unlock()

	for _, tag := range p.TagNames() {
		if err := g.indexTag(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
