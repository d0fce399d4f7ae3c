// ABOUTME: Choice is the durable record of a user's final place selection
// ABOUTME: ChoiceSummary is the lightweight copy kept on the session log
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Choice is created once per accepted selection and never mutated
type Choice struct {
	ChoiceID  string    `json:"choice_id"`
	UserID    string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	MenuID    string    `json:"menu_id,omitempty"`
	Cuisine   string    `json:"cuisine"`
	MoodTags  []string  `json:"mood_tags"`
	MenuText  string    `json:"menu_text,omitempty"`
	Score     int       `json:"score"`
	SessionID string    `json:"session_id"`
	DecidedAt time.Time `json:"decided_at"`
}

// ChoiceSummary is appended to the session after a choice is saved
type ChoiceSummary struct {
	ChoiceID  string    `json:"choice_id"`
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	MenuID    string    `json:"menu_id,omitempty"`
	MenuText  string    `json:"menu_text,omitempty"`
	Cuisine   string    `json:"cuisine"`
	MoodTags  []string  `json:"mood_tags"`
	Score     int       `json:"score"`
	DecidedAt time.Time `json:"decided_at"`
}

// NewChoice builds a Choice with a fresh id from a recommendation and its session
func NewChoice(rec PlaceRecommendation, sess *Session) (*Choice, error) {
	if sess == nil {
		return nil, errors.New("session cannot be nil")
	}
	if rec.PlaceID == "" {
		return nil, errors.New("recommendation has no place id")
	}

	tags := make([]string, len(sess.Context.MoodTags))
	copy(tags, sess.Context.MoodTags)

	menuText := sess.Context.MenuName
	if menuText == "" {
		menuText = sess.Context.MenuText
	}

	return &Choice{
		ChoiceID:  uuid.New().String(),
		UserID:    sess.UserID,
		PlaceID:   rec.PlaceID,
		PlaceName: rec.PlaceName,
		MenuID:    rec.RepresentativeMenuID(),
		Cuisine:   sess.Context.Cuisine,
		MoodTags:  tags,
		MenuText:  menuText,
		Score:     rec.Score,
		SessionID: sess.ID,
		DecidedAt: time.Now().UTC(),
	}, nil
}

// Summary returns the session-log view of the choice
func (c *Choice) Summary() ChoiceSummary {
	return ChoiceSummary{
		ChoiceID:  c.ChoiceID,
		PlaceID:   c.PlaceID,
		PlaceName: c.PlaceName,
		MenuID:    c.MenuID,
		MenuText:  c.MenuText,
		Cuisine:   c.Cuisine,
		MoodTags:  c.MoodTags,
		Score:     c.Score,
		DecidedAt: c.DecidedAt,
	}
}
