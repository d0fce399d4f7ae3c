// ABOUTME: Narrow interfaces the dialogue depends on for lookups, writes and intent labels
// ABOUTME: Implemented by the Neo4j store, the in-memory graph, the OpenAI client and test fakes
package core

import (
	"context"

	"github.com/harper/dongne/internal/models"
)

// MenuCatalog answers the four lookups a conversation needs
type MenuCatalog interface {
	ExactMenus(ctx context.Context, cuisine, text string) ([]models.MenuCandidate, error)
	SimilarMenus(ctx context.Context, cuisine, text string, k int) ([]models.MenuMatch, error)
	MoodTags(ctx context.Context, text string, k int) ([]models.TagMatch, error)
	RecommendPlaces(ctx context.Context, req models.RecommendRequest) ([]models.PlaceRecommendation, error)
}

// ChoiceStore persists a Choice with its user/place/menu links
type ChoiceStore interface {
	SaveChoice(ctx context.Context, c *models.Choice) error
}

// IntentLabeler returns a raw label for a confirmation reply
type IntentLabeler interface {
	ClassifyIntent(ctx context.Context, text string) (string, error)
}

// ChoiceLog keeps a personal copy of recorded choices
type ChoiceLog interface {
	AppendChoice(userID string, summary models.ChoiceSummary) error
}
