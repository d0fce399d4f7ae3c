// ABOUTME: Tests for the Dialogue Controller across every stage and both end-to-end flows
// ABOUTME: Uses fakes so lookups, intent labels and writes are deterministic
package core

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/dongne/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type harness struct {
	catalog *fakeCatalog
	labeler *fakeLabeler
	store   *fakeChoiceStore
	history *fakeHistory
	ctrl    *Controller
	sess    *models.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		catalog: &fakeCatalog{},
		labeler: &fakeLabeler{labels: map[string]string{"응": "yes", "아니": "no", "흠": "neutral"}},
		store:   &fakeChoiceStore{},
		history: &fakeHistory{},
	}
	log := zaptest.NewLogger(t)
	h.ctrl = NewController(h.catalog,
		NewIntentClassifier(h.labeler, log),
		NewChoiceRecorder(h.store, h.history, log),
		Options{},
		log)

	sess, err := models.NewSession("user-1")
	require.NoError(t, err)
	h.ctrl.Start(sess)
	h.sess = sess
	return h
}

func (h *harness) text(t *testing.T, input string) {
	t.Helper()
	require.NoError(t, h.ctrl.HandleText(context.Background(), h.sess, input))
}

func (h *harness) lastBot() string {
	return h.sess.LastBotMessage()
}

// placeAt drives a session straight to the given stage with a menu committed
func (h *harness) placeAt(stage models.Stage) {
	h.sess.Stage = stage
	h.sess.Context.Cuisine = "한식"
	h.sess.Context.CommitMenu("김치찌개")
}

func TestStart_GreetsAndAsksCuisine(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, models.StageAskCuisine, h.sess.Stage)
	require.Len(t, h.sess.Transcript, 3)
	for _, e := range h.sess.Transcript {
		assert.Equal(t, models.RoleBot, e.Role)
	}
	assert.Contains(t, h.lastBot(), "한식")
	assert.Equal(t, DefaultOptions().Cuisines, h.ctrl.Cuisines())
}

func TestSelectCuisine(t *testing.T) {
	h := newHarness(t)

	err := h.ctrl.SelectCuisine(h.sess, "피자")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, models.StageAskCuisine, h.sess.Stage)

	require.NoError(t, h.ctrl.SelectCuisine(h.sess, "한식"))
	assert.Equal(t, models.StageAskMenu, h.sess.Stage)
	assert.Equal(t, "한식", h.sess.Context.Cuisine)

	assert.ErrorIs(t, h.ctrl.SelectCuisine(h.sess, "중식"), ErrInputNotAccepted)
}

func TestHandleText_RejectedOutsideTextStages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.ctrl.HandleText(ctx, h.sess, "김치찌개"), ErrInputNotAccepted)

	h.sess.Stage = models.StageChoosePlace
	assert.ErrorIs(t, h.ctrl.HandleText(ctx, h.sess, "1"), ErrInputNotAccepted)

	h.sess.Stage = models.StageEnd
	assert.ErrorIs(t, h.ctrl.HandleText(ctx, h.sess, "또 추천해줘"), ErrConversationEnded)
	assert.ErrorIs(t, h.ctrl.SelectPlace(ctx, h.sess, 0), ErrConversationEnded)

	h.sess.Stage = models.StageAskMenu
	assert.ErrorIs(t, h.ctrl.HandleText(ctx, h.sess, "   "), ErrEmptyInput)
}

func TestAskMenu_ExactMatchSkipsSimilarity(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.SelectCuisine(h.sess, "한식"))
	h.catalog.exact = []models.MenuCandidate{{MenuID: "k1", MenuName: "김치찌개"}, {MenuID: "k3", MenuName: "참치김치찌개"}}
	h.catalog.similar = []models.MenuMatch{{MenuID: "x", MenuName: "should not be used"}}

	h.text(t, "김치 찌개")

	assert.Equal(t, models.StageAskMood, h.sess.Stage)
	assert.Equal(t, "김치찌개", h.sess.Context.MenuName)
	assert.Equal(t, 0, h.catalog.similarK, "similarity search not run")
}

func TestAskMenu_ChooseMenuOnlyWithSeveralDistinctCandidates(t *testing.T) {
	tests := []struct {
		name      string
		similar   []models.MenuMatch
		wantStage models.Stage
		wantMenu  string
	}{
		{
			name:      "no candidates stays",
			similar:   nil,
			wantStage: models.StageAskMenu,
		},
		{
			name:      "one candidate commits",
			similar:   []models.MenuMatch{{MenuID: "c1", MenuName: "짬뽕", Score: 0.9}},
			wantStage: models.StageAskMood,
			wantMenu:  "짬뽕",
		},
		{
			name: "duplicates collapse to one",
			similar: []models.MenuMatch{
				{MenuID: "c1", MenuName: "짬뽕", Score: 0.9},
				{MenuID: "c7", MenuName: "짬뽕", Score: 0.8},
			},
			wantStage: models.StageAskMood,
			wantMenu:  "짬뽕",
		},
		{
			name: "two distinct lists",
			similar: []models.MenuMatch{
				{MenuID: "c1", MenuName: "짬뽕", Score: 0.9},
				{MenuID: "c2", MenuName: "짜장면", Score: 0.8},
				{MenuID: "c8", MenuName: "짬뽕", Score: 0.7},
			},
			wantStage: models.StageChooseMenu,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.ctrl.SelectCuisine(h.sess, "중식"))
			h.catalog.similar = tt.similar

			h.text(t, "얼큰한 거")

			assert.Equal(t, tt.wantStage, h.sess.Stage)
			assert.Equal(t, tt.wantMenu, h.sess.Context.MenuName)
			assert.Equal(t, 5, h.catalog.similarK)
			if tt.wantStage == models.StageChooseMenu {
				assert.Len(t, h.sess.Context.MenuCandidates, 2)
				assert.Contains(t, h.lastBot(), "1. 짬뽕")
				assert.Contains(t, h.lastBot(), "2. 짜장면")
			} else {
				assert.Empty(t, h.sess.Context.MenuCandidates)
			}
		})
	}
}

func TestAskMenu_LookupFailuresAreEmptyResults(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.SelectCuisine(h.sess, "한식"))
	h.catalog.exactErr = errors.New("graph down")
	h.catalog.simErr = errors.New("embedding down")

	h.text(t, "김치찌개")

	assert.Equal(t, models.StageAskMenu, h.sess.Stage)
	assert.Contains(t, h.lastBot(), "자세히")
}

func TestChooseMenu_Selection(t *testing.T) {
	candidates := []models.MenuCandidate{
		{MenuID: "k1", MenuName: "김치찌개"},
		{MenuID: "k2", MenuName: "된장찌개"},
	}
	tests := []struct {
		input     string
		wantStage models.Stage
		wantMenu  string
	}{
		{"2", models.StageAskMood, "된장찌개"},
		{"김치", models.StageAskMood, "김치찌개"},
		{"피자", models.StageChooseMenu, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := newHarness(t)
			h.sess.Stage = models.StageChooseMenu
			h.sess.Context.Cuisine = "한식"
			h.sess.Context.MenuCandidates = candidates

			h.text(t, tt.input)

			assert.Equal(t, tt.wantStage, h.sess.Stage)
			assert.Equal(t, tt.wantMenu, h.sess.Context.MenuName)
			if tt.wantStage == models.StageAskMood {
				assert.Equal(t, tt.wantMenu, h.sess.Context.MenuText)
				assert.Empty(t, h.sess.Context.MenuCandidates)
			} else {
				assert.Len(t, h.sess.Context.MenuCandidates, 2)
			}
		})
	}
}

func TestChooseMenu_LostCandidatesReturnToAskMenu(t *testing.T) {
	h := newHarness(t)
	h.sess.Stage = models.StageChooseMenu
	h.sess.Context.Cuisine = "한식"

	h.text(t, "1")

	assert.Equal(t, models.StageAskMenu, h.sess.Stage)
}

func TestAskMood_AlwaysMovesToConfirm(t *testing.T) {
	tests := []struct {
		name    string
		tags    []models.TagMatch
		err     error
		wantAck string
	}{
		{"tags found", []models.TagMatch{{Tag: "조용한", Score: 0.9}, {Tag: "데이트", Score: 0.8}}, nil, "조용한, 데이트"},
		{"no tags", nil, nil, "못 찾았어"},
		{"lookup failure", nil, errors.New("timeout"), "못 찾았어"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.placeAt(models.StageAskMood)
			h.sess.Context.MoodTags = []string{"old"}
			h.catalog.tags = tt.tags
			h.catalog.tagErr = tt.err

			h.text(t, "조용하고 분위기 좋은 곳")

			assert.Equal(t, models.StageConfirmReco, h.sess.Stage)
			assert.Contains(t, h.lastBot(), tt.wantAck)
			assert.NotContains(t, h.sess.Context.MoodTags, "old", "mood tags are replaced")
			assert.Equal(t, 4, h.catalog.moodK)
		})
	}
}

func TestConfirm_YesWithMenuRecommends(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageConfirmReco)
	h.sess.Context.MoodTags = []string{"조용한"}
	h.catalog.recs = []models.PlaceRecommendation{
		{PlaceID: "p1", PlaceName: "한옥집", MatchedMenuIDs: []string{"k1"}, MatchedTags: []string{"조용한"}, Score: 1},
	}

	h.text(t, "응")

	assert.Equal(t, models.StageChoosePlace, h.sess.Stage)
	require.NotNil(t, h.catalog.lastRecQuery)
	assert.Equal(t, "김치찌개", h.catalog.lastRecQuery.MenuName)
	assert.Equal(t, 3, h.catalog.lastRecQuery.Limit)
	assert.Len(t, h.sess.Context.LastRecommended, 1)
	assert.Contains(t, h.lastBot(), "1. 한옥집")
}

func TestConfirm_YesWithoutMenuUsesCuisinePath(t *testing.T) {
	h := newHarness(t)
	h.sess.Stage = models.StageConfirmReco
	h.sess.Context.Cuisine = "한식"
	h.catalog.recs = []models.PlaceRecommendation{{PlaceID: "p1", PlaceName: "한옥집"}}

	h.text(t, "응")

	require.NotNil(t, h.catalog.lastRecQuery)
	assert.Empty(t, h.catalog.lastRecQuery.MenuName)
	assert.Equal(t, "한식", h.catalog.lastRecQuery.Cuisine)
}

func TestConfirm_YesButEmptyResultsReturnsToMood(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageConfirmReco)
	h.sess.Context.LastRecommended = []models.PlaceRecommendation{{PlaceID: "stale"}}
	h.catalog.recErr = errors.New("graph down")

	h.text(t, "응")

	assert.Equal(t, models.StageAskMood, h.sess.Stage)
	assert.Empty(t, h.sess.Context.LastRecommended, "results are replaced")
	assert.Contains(t, h.lastBot(), "미안")
}

func TestConfirm_NoAndNeutral(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageConfirmReco)

	h.text(t, "흠")
	assert.Equal(t, models.StageConfirmReco, h.sess.Stage)
	assert.Contains(t, h.lastBot(), "'응'")
	assert.Nil(t, h.catalog.lastRecQuery)

	h.text(t, "아니")
	assert.Equal(t, models.StageAskMood, h.sess.Stage)
	assert.Nil(t, h.catalog.lastRecQuery)
}

func TestConfirm_HedgedLabelIsNeutral(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageConfirmReco)
	h.labeler.labels["그건 잘 모르겠고 아마 긍정적?"] = "그건 잘 모르겠고 아마 긍정적?"

	h.text(t, "그건 잘 모르겠고 아마 긍정적?")

	assert.Equal(t, models.StageConfirmReco, h.sess.Stage)
}

func TestConfirm_ClassifierFailureIsNeutral(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageConfirmReco)
	h.labeler.err = errors.New("rate limited")

	h.text(t, "응")

	assert.Equal(t, models.StageConfirmReco, h.sess.Stage)
}

func TestSelectPlace_RecordsChoiceAndEnds(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageChoosePlace)
	h.sess.Context.MoodTags = []string{"조용한"}
	h.sess.Context.LastRecommended = []models.PlaceRecommendation{
		{PlaceID: "p1", PlaceName: "한옥집", MatchedMenuIDs: []string{"k1", "k3"}, Score: 1},
		{PlaceID: "p2", PlaceName: "골목식당"},
	}

	require.NoError(t, h.ctrl.SelectPlace(context.Background(), h.sess, 0))

	assert.Equal(t, models.StageEnd, h.sess.Stage)
	require.Len(t, h.store.saved, 1)
	saved := h.store.saved[0]
	assert.Equal(t, "p1", saved.PlaceID)
	assert.Equal(t, "k1", saved.MenuID)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, h.sess.ID, saved.SessionID)
	require.Len(t, h.sess.Choices, 1)
	assert.Equal(t, saved.ChoiceID, h.sess.Choices[0].ChoiceID)
	assert.Contains(t, h.lastBot(), "한옥집")
}

func TestSelectPlace_InvalidIndexStays(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageChoosePlace)
	h.sess.Context.LastRecommended = []models.PlaceRecommendation{{PlaceID: "p1", PlaceName: "한옥집"}}

	err := h.ctrl.SelectPlace(context.Background(), h.sess, 3)

	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, models.StageChoosePlace, h.sess.Stage)
	assert.Empty(t, h.store.saved)
}

func TestSelectPlace_EmptyResultsFailSoft(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageChoosePlace)

	require.NoError(t, h.ctrl.SelectPlace(context.Background(), h.sess, 0))

	assert.Equal(t, models.StageAskMenu, h.sess.Stage)
	assert.False(t, h.sess.Context.HasMenu())
	assert.Empty(t, h.store.saved)
}

func TestSelectPlace_SaveFailureIsSurfaced(t *testing.T) {
	h := newHarness(t)
	h.placeAt(models.StageChoosePlace)
	h.sess.Context.LastRecommended = []models.PlaceRecommendation{{PlaceID: "p1", PlaceName: "한옥집"}}
	h.store.err = errors.New("write timeout")

	err := h.ctrl.SelectPlace(context.Background(), h.sess, 0)

	assert.ErrorIs(t, err, ErrChoiceNotSaved)
	assert.Equal(t, models.StageChoosePlace, h.sess.Stage)
	assert.Empty(t, h.sess.Choices)
	assert.Contains(t, h.lastBot(), "저장하지 못했어")
}

func TestFlow_ExactMenuToChoice(t *testing.T) {
	h := newHarness(t)
	h.catalog.exact = []models.MenuCandidate{{MenuID: "k1", MenuName: "김치찌개"}}
	h.catalog.tags = []models.TagMatch{{Tag: "조용한", Score: 0.9}}
	h.catalog.recs = []models.PlaceRecommendation{
		{PlaceID: "p1", PlaceName: "한옥집", MatchedMenuIDs: []string{"k1"}, MatchedTags: []string{"조용한"}, Score: 1},
	}

	require.NoError(t, h.ctrl.SelectCuisine(h.sess, "한식"))
	h.text(t, "김치찌개")
	h.text(t, "조용한 데")
	h.text(t, "응")
	require.NoError(t, h.ctrl.SelectPlace(context.Background(), h.sess, 0))

	assert.Equal(t, models.StageEnd, h.sess.Stage)
	require.Len(t, h.store.saved, 1)
	assert.Equal(t, "k1", h.store.saved[0].MenuID)
	assert.Equal(t, []string{"조용한"}, h.store.saved[0].MoodTags)
	assert.Equal(t, "김치찌개", h.store.saved[0].MenuText)
	require.Len(t, h.history.entries, 1)

	var users int
	for _, e := range h.sess.Transcript {
		if e.Role == models.RoleUser {
			users++
		}
	}
	assert.Equal(t, 5, users, "cuisine, three texts and the place pick")
}

func TestFlow_SimilarityWithRetries(t *testing.T) {
	h := newHarness(t)
	h.catalog.similar = []models.MenuMatch{
		{MenuID: "c1", MenuName: "짬뽕", Score: 0.9},
		{MenuID: "c2", MenuName: "짜장면", Score: 0.8},
	}
	h.catalog.tags = []models.TagMatch{{Tag: "혼밥", Score: 0.7}}

	require.NoError(t, h.ctrl.SelectCuisine(h.sess, "중식"))
	h.text(t, "면 요리")
	require.Equal(t, models.StageChooseMenu, h.sess.Stage)
	h.text(t, "피자")
	require.Equal(t, models.StageChooseMenu, h.sess.Stage)
	h.text(t, "1")
	require.Equal(t, models.StageAskMood, h.sess.Stage)
	h.text(t, "혼자 조용히")
	require.Equal(t, models.StageConfirmReco, h.sess.Stage)
	h.text(t, "아니")
	require.Equal(t, models.StageAskMood, h.sess.Stage)
	h.text(t, "혼밥")
	h.text(t, "응")
	require.Equal(t, models.StageAskMood, h.sess.Stage, "no places found")

	h.catalog.recs = []models.PlaceRecommendation{{PlaceID: "p4", PlaceName: "홍콩반점", MatchedMenuIDs: []string{"c1"}}}
	h.text(t, "혼밥")
	h.text(t, "응")
	require.Equal(t, models.StageChoosePlace, h.sess.Stage)
	require.NoError(t, h.ctrl.SelectPlace(context.Background(), h.sess, 0))

	assert.Equal(t, models.StageEnd, h.sess.Stage)
	assert.Equal(t, "짬뽕", h.store.saved[0].MenuText)
}

func TestTransitions_Table(t *testing.T) {
	seen := map[models.Stage]bool{}
	for _, tr := range Transitions() {
		seen[tr.From] = true
		assert.True(t, tr.To.Valid())
		if tr.From == models.StageAskMood {
			assert.Equal(t, models.StageConfirmReco, tr.To, "ask_mood always leads to confirm_reco")
		}
		if tr.To == models.StageChooseMenu {
			assert.Contains(t, []models.Outcome{models.OutcomeMultipleCandidates, models.OutcomeNoMatch}, tr.Outcome)
		}
	}
	for _, s := range models.AllStages {
		if s == models.StageEnd {
			assert.False(t, seen[s], "END is terminal")
			continue
		}
		assert.True(t, seen[s], "stage %s has transitions", s)
	}
}

func TestGovernor_UnknownTransition(t *testing.T) {
	g := NewGovernor()

	_, err := g.Next(models.StageAskCuisine, models.OutcomePlaceSelected)
	assert.Error(t, err)

	next, err := g.Next(models.StageConfirmReco, models.OutcomeDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.StageAskMood, next)
}
