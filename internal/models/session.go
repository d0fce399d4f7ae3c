// ABOUTME: Session and SessionContext hold one conversation's accumulated state
// ABOUTME: Transcript is an append-only log of bot and user messages
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a transcript entry
type Role string

const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// TranscriptEntry is a single rendered chat message
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionContext is the per-conversation record of user selections
type SessionContext struct {
	Cuisine         string                `json:"cuisine,omitempty"`
	MenuName        string                `json:"menu_name,omitempty"`
	MenuText        string                `json:"menu_text,omitempty"`
	MenuCandidates  []MenuCandidate       `json:"menu_candidates,omitempty"`
	MoodTags        []string              `json:"mood_tags,omitempty"`
	LastRecommended []PlaceRecommendation `json:"last_recommended,omitempty"`
}

// HasMenu reports whether a menu has been committed for this conversation
func (c *SessionContext) HasMenu() bool {
	return strings.TrimSpace(c.MenuName) != ""
}

// CommitMenu records the resolved menu and drops any pending candidates
func (c *SessionContext) CommitMenu(name string) {
	c.MenuName = name
	c.MenuText = name
	c.MenuCandidates = nil
}

// Session is one conversation: identity, stage, context and transcript
type Session struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Stage      Stage             `json:"stage"`
	Context    SessionContext    `json:"context"`
	Transcript []TranscriptEntry `json:"transcript"`
	Choices    []ChoiceSummary   `json:"choices,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewSession creates a fresh session positioned at ask_cuisine
func NewSession(userID string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id cannot be empty")
	}
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Stage:      StageAskCuisine,
		Transcript: []TranscriptEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Say appends a bot message to the transcript
func (s *Session) Say(content string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: RoleBot, Content: content})
}

// Hear appends a user message to the transcript
func (s *Session) Hear(content string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: RoleUser, Content: content})
}

// Touch bumps the update timestamp
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// LastBotMessage returns the most recent bot entry, or "" if none exist
func (s *Session) LastBotMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleBot {
			return s.Transcript[i].Content
		}
	}
	return ""
}
