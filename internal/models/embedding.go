// ABOUTME: Vector search result type for the in-process vector index
// ABOUTME: Hits carry the indexed id (menu id or tag name) and its cosine score
package models

// VectorHit is a nearest-neighbour result with cosine similarity score
type VectorHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
