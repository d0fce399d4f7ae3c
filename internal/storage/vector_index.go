// ABOUTME: In-process vector index with cosine similarity search
// ABOUTME: Stands in for the graph database's menu and tag vector indexes
package storage

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/harper/dongne/internal/models"
)

// VectorIndex holds vectors of one fixed dimension keyed by id
type VectorIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float64
}

// NewVectorIndex creates an empty index. dimension 0 adopts the first vector's length.
func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{
		dimension: dimension,
		vectors:   make(map[string][]float64),
	}
}

// Add stores or replaces the vector for id
func (vi *VectorIndex) Add(id string, vector []float64) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for %q", id)
	}

	vi.mu.Lock()
	defer vi.mu.Unlock()

	if vi.dimension == 0 {
		vi.dimension = len(vector)
	}
	if len(vector) != vi.dimension {
		return fmt.Errorf("invalid embedding dimension for %q: expected %d, got %d", id, vi.dimension, len(vector))
	}

	stored := make([]float64, len(vector))
	copy(stored, vector)
	vi.vectors[id] = stored
	return nil
}

// Has reports whether id is indexed
func (vi *VectorIndex) Has(id string) bool {
	vi.mu.RLock()
	defer vi.mu.RUnlock()
	_, ok := vi.vectors[id]
	return ok
}

// Len returns the number of indexed vectors
func (vi *VectorIndex) Len() int {
	vi.mu.RLock()
	defer vi.mu.RUnlock()
	return len(vi.vectors)
}

// Search returns up to k hits by descending similarity; equal scores order by id
func (vi *VectorIndex) Search(query []float64, k int) []models.VectorHit {
	if k <= 0 {
		return nil
	}

	vi.mu.RLock()
	hits := make([]models.VectorHit, 0, len(vi.vectors))
	for id, vec := range vi.vectors {
		hits = append(hits, models.VectorHit{ID: id, Score: cosineSimilarity(query, vec)})
	}
	vi.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
