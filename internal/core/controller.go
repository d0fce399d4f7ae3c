// ABOUTME: Dialogue Controller drives one conversation through its stages
// ABOUTME: One input runs one stage handler, appends transcript lines and routes via the Governor
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrInputNotAccepted means the current stage is not driven by this kind of input
	ErrInputNotAccepted = errors.New("input not accepted at this stage")
	// ErrConversationEnded means the session already reached END
	ErrConversationEnded = errors.New("conversation has ended")
	// ErrInvalidSelection means a fixed-choice selection did not name a valid option
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrEmptyInput means the chat text was blank
	ErrEmptyInput = errors.New("empty input")
	// ErrChoiceNotSaved means the final selection could not be persisted
	ErrChoiceNotSaved = errors.New("choice could not be saved")
)

// Options tunes lookup sizes
type Options struct {
	MenuSuggestions int
	MoodTags        int
	RecommendLimit  int
	Cuisines        []string
}

// DefaultOptions matches the original conversation's numbers
func DefaultOptions() Options {
	return Options{
		MenuSuggestions: 5,
		MoodTags:        4,
		RecommendLimit:  models.DefaultRecommendLimit,
		Cuisines:        []string{"한식", "중식", "일식", "양식", "세계음식", "치킨"},
	}
}

// Controller is stateless across sessions; all state lives on the Session
type Controller struct {
	catalog  MenuCatalog
	intent   *IntentClassifier
	recorder *ChoiceRecorder
	governor *Governor
	opts     Options
	logger   *zap.Logger
}

// NewController wires the dialogue's collaborators. Zero option fields take defaults.
func NewController(catalog MenuCatalog, intent *IntentClassifier, recorder *ChoiceRecorder, opts Options, log *zap.Logger) *Controller {
	def := DefaultOptions()
	if opts.MenuSuggestions <= 0 {
		opts.MenuSuggestions = def.MenuSuggestions
	}
	if opts.MoodTags <= 0 {
		opts.MoodTags = def.MoodTags
	}
	if opts.RecommendLimit <= 0 {
		opts.RecommendLimit = def.RecommendLimit
	}
	if len(opts.Cuisines) == 0 {
		opts.Cuisines = def.Cuisines
	}
	return &Controller{
		catalog:  catalog,
		intent:   intent,
		recorder: recorder,
		governor: NewGovernor(),
		opts:     opts,
		logger:   logger.OrNop(log),
	}
}

// Cuisines returns the fixed cuisine choices
func (c *Controller) Cuisines() []string {
	out := make([]string, len(c.opts.Cuisines))
	copy(out, c.opts.Cuisines)
	return out
}

// Start appends the greeting and the cuisine prompt to a fresh session
func (c *Controller) Start(sess *models.Session) {
	for _, line := range greetingMessages(sess.UserID) {
		sess.Say(line)
	}
	sess.Say(cuisinePromptMessage(c.opts.Cuisines))
	sess.Touch()
}

// SelectCuisine handles the fixed-choice cuisine button
func (c *Controller) SelectCuisine(sess *models.Session, cuisine string) error {
	if err := c.checkStage(sess, models.StageAskCuisine); err != nil {
		return err
	}
	if !c.knownCuisine(cuisine) {
		return fmt.Errorf("%w: unknown cuisine %q", ErrInvalidSelection, cuisine)
	}

	sess.Hear(cuisine)
	sess.Context.Cuisine = cuisine
	sess.Say(cuisineAckMessage(cuisine))
	return c.route(sess, models.OutcomeCuisineSelected)
}

// HandleText handles one free-text chat message
func (c *Controller) HandleText(ctx context.Context, sess *models.Session, text string) error {
	if sess.Stage == models.StageEnd {
		return ErrConversationEnded
	}
	if !sess.Stage.AcceptsText() {
		return fmt.Errorf("%w: %s expects a selection", ErrInputNotAccepted, sess.Stage)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	sess.Hear(text)
	var outcome models.Outcome
	switch sess.Stage {
	case models.StageAskMenu:
		outcome = c.handleAskMenu(ctx, sess, text)
	case models.StageChooseMenu:
		outcome = c.handleChooseMenu(sess, text)
	case models.StageAskMood:
		outcome = c.handleAskMood(ctx, sess, text)
	case models.StageConfirmReco:
		outcome = c.handleConfirm(ctx, sess, text)
	}
	return c.route(sess, outcome)
}

// SelectPlace handles the out-of-band card selection; index is 0-based
func (c *Controller) SelectPlace(ctx context.Context, sess *models.Session, index int) error {
	if err := c.checkStage(sess, models.StageChoosePlace); err != nil {
		return err
	}

	recs := sess.Context.LastRecommended
	if len(recs) == 0 {
		sess.Say(resultsLostMessage)
		c.resetMenu(sess)
		return c.route(sess, models.OutcomeResultsLost)
	}
	if index < 0 || index >= len(recs) {
		sess.Say(invalidPlaceMessage)
		if err := c.route(sess, models.OutcomeInvalidSelection); err != nil {
			return err
		}
		return fmt.Errorf("%w: place %d of %d", ErrInvalidSelection, index+1, len(recs))
	}

	chosen := recs[index]
	sess.Hear(chosen.PlaceName)
	if _, err := c.recorder.Record(ctx, chosen, sess); err != nil {
		c.logger.Error("failed to record choice",
			zap.String("session_id", sess.ID),
			zap.String("place_id", chosen.PlaceID),
			zap.Error(err))
		sess.Say(choiceNotSavedMessage)
		if rerr := c.route(sess, models.OutcomeSaveFailed); rerr != nil {
			return rerr
		}
		return fmt.Errorf("%w: %v", ErrChoiceNotSaved, err)
	}

	sess.Say(placeChosenMessage(chosen.PlaceName))
	return c.route(sess, models.OutcomePlaceSelected)
}

func (c *Controller) handleAskMenu(ctx context.Context, sess *models.Session, text string) models.Outcome {
	cuisine := sess.Context.Cuisine

	exact, err := c.catalog.ExactMenus(ctx, cuisine, text)
	if err != nil {
		c.warn(sess, "exact_menus", err)
		exact = nil
	}
	if len(exact) > 0 {
		sess.Context.CommitMenu(exact[0].MenuName)
		sess.Say(menuCommittedMessage(exact[0].MenuName))
		return models.OutcomeExactMatch
	}

	similar, err := c.catalog.SimilarMenus(ctx, cuisine, text, c.opts.MenuSuggestions)
	if err != nil {
		c.warn(sess, "similar_menus", err)
		similar = nil
	}
	candidates := models.DedupeMenus(similar)

	switch len(candidates) {
	case 0:
		sess.Say(noCandidatesMessage)
		return models.OutcomeNoCandidates
	case 1:
		sess.Context.CommitMenu(candidates[0].MenuName)
		sess.Say(singleCandidateMessage(candidates[0].MenuName))
		return models.OutcomeSingleCandidate
	default:
		sess.Context.MenuCandidates = candidates
		sess.Say(candidateListMessage(candidates))
		return models.OutcomeMultipleCandidates
	}
}

func (c *Controller) handleChooseMenu(sess *models.Session, text string) models.Outcome {
	candidates := sess.Context.MenuCandidates
	if len(candidates) == 0 {
		sess.Say(candidatesLostMessage)
		return models.OutcomeCandidatesLost
	}

	chosen, ok := models.SelectCandidate(text, candidates)
	if !ok {
		sess.Say(notInListMessage)
		return models.OutcomeNoMatch
	}

	sess.Context.CommitMenu(chosen.MenuName)
	sess.Say(menuCommittedMessage(chosen.MenuName))
	return models.OutcomeMenuSelected
}

func (c *Controller) handleAskMood(ctx context.Context, sess *models.Session, text string) models.Outcome {
	matches, err := c.catalog.MoodTags(ctx, text, c.opts.MoodTags)
	if err != nil {
		c.warn(sess, "mood_tags", err)
		matches = nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m.Tag)
	}
	sess.Context.MoodTags = tags

	if len(tags) == 0 {
		sess.Say(noTagsMessage)
		return models.OutcomeNoTags
	}
	sess.Say(tagsFoundMessage(tags))
	return models.OutcomeTagsFound
}

func (c *Controller) handleConfirm(ctx context.Context, sess *models.Session, text string) models.Outcome {
	switch c.intent.Classify(ctx, text) {
	case models.IntentNo:
		sess.Say(declinedMessage)
		return models.OutcomeDeclined
	case models.IntentNeutral:
		sess.Say(unclearMessage)
		return models.OutcomeUnclear
	}

	req := models.RecommendRequest{
		Cuisine:  sess.Context.Cuisine,
		MenuName: sess.Context.MenuName,
		MoodTags: sess.Context.MoodTags,
		Limit:    c.opts.RecommendLimit,
	}
	recs, err := c.catalog.RecommendPlaces(ctx, req)
	if err != nil {
		c.warn(sess, "recommend_places", err)
		recs = nil
	}
	if recs == nil {
		recs = []models.PlaceRecommendation{}
	}
	sess.Context.LastRecommended = recs

	if len(recs) == 0 {
		sess.Say(placesEmptyMessage)
		return models.OutcomePlacesEmpty
	}
	sess.Say(placesFoundMessage(recs))
	return models.OutcomePlacesFound
}

func (c *Controller) route(sess *models.Session, outcome models.Outcome) error {
	from := sess.Stage
	if err := c.governor.Route(sess, outcome); err != nil {
		return err
	}
	sess.Touch()
	c.logger.Debug("stage transition",
		zap.String("session_id", sess.ID),
		zap.String("from", string(from)),
		zap.String("to", string(sess.Stage)),
		zap.String("outcome", string(outcome)))
	return nil
}

// resetMenu clears the menu selection when the dialogue returns to ask_menu
func (c *Controller) resetMenu(sess *models.Session) {
	sess.Context.MenuName = ""
	sess.Context.MenuText = ""
	sess.Context.MenuCandidates = nil
	sess.Context.LastRecommended = nil
}

func (c *Controller) checkStage(sess *models.Session, want models.Stage) error {
	if sess.Stage == models.StageEnd {
		return ErrConversationEnded
	}
	if sess.Stage != want {
		return fmt.Errorf("%w: at %s, not %s", ErrInputNotAccepted, sess.Stage, want)
	}
	return nil
}

func (c *Controller) knownCuisine(cuisine string) bool {
	for _, known := range c.opts.Cuisines {
		if known == cuisine {
			return true
		}
	}
	return false
}

func (c *Controller) warn(sess *models.Session, call string, err error) {
	c.logger.Warn("external call failed, continuing with empty result",
		zap.String("call", call),
		zap.String("session_id", sess.ID),
		zap.Error(err))
}
