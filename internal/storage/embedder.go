// ABOUTME: Deterministic character n-gram embedder for offline runs and tests
// ABOUTME: Hashes rune bigrams into a fixed-size vector so similar spellings score close
package storage

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/harper/dongne/internal/models"
)

// DefaultGramDimension is the vector size of GramEmbedder
const DefaultGramDimension = 256

// GramEmbedder embeds text without a network call. It only captures
// spelling overlap, which is enough to exercise the vector paths offline.
type GramEmbedder struct {
	Dimension int
}

// Embed implements the Embedder contract
func (g GramEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	dim := g.Dimension
	if dim <= 0 {
		dim = DefaultGramDimension
	}
	vec := make([]float64, dim)

	runes := []rune(models.NormalizeName(text))
	add := func(gram string) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(gram))
		vec[h.Sum32()%uint32(dim)]++
	}
	for i, r := range runes {
		add(string(r))
		if i+1 < len(runes) {
			add(string(runes[i : i+2]))
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
