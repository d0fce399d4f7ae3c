// ABOUTME: Deterministic stand-ins for the catalog, labeler, choice store and history
// ABOUTME: Shared by the controller, classifier and recorder tests
package core

import (
	"context"

	"github.com/harper/dongne/internal/models"
)

type fakeCatalog struct {
	exact    []models.MenuCandidate
	similar  []models.MenuMatch
	tags     []models.TagMatch
	recs     []models.PlaceRecommendation
	exactErr error
	simErr   error
	tagErr   error
	recErr   error

	exactCalls   int
	similarK     int
	moodK        int
	lastRecQuery *models.RecommendRequest
}

func (f *fakeCatalog) ExactMenus(_ context.Context, _, _ string) ([]models.MenuCandidate, error) {
	f.exactCalls++
	return f.exact, f.exactErr
}

func (f *fakeCatalog) SimilarMenus(_ context.Context, _, _ string, k int) ([]models.MenuMatch, error) {
	f.similarK = k
	return f.similar, f.simErr
}

func (f *fakeCatalog) MoodTags(_ context.Context, _ string, k int) ([]models.TagMatch, error) {
	f.moodK = k
	return f.tags, f.tagErr
}

func (f *fakeCatalog) RecommendPlaces(_ context.Context, req models.RecommendRequest) ([]models.PlaceRecommendation, error) {
	f.lastRecQuery = &req
	return f.recs, f.recErr
}

type fakeLabeler struct {
	labels map[string]string
	err    error
}

func (f *fakeLabeler) ClassifyIntent(_ context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.labels[text], nil
}

type fakeChoiceStore struct {
	err   error
	saved []*models.Choice
}

func (f *fakeChoiceStore) SaveChoice(_ context.Context, c *models.Choice) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, c)
	return nil
}

type fakeHistory struct {
	err     error
	entries []models.ChoiceSummary
}

func (f *fakeHistory) AppendChoice(_ string, s models.ChoiceSummary) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, s)
	return nil
}
