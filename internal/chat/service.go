// ABOUTME: Chat service hosts conversations on top of the session manager and dialogue controller
// ABOUTME: Every turn runs under the session lock and is saved before the snapshot is returned
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/dongne/internal/core"
	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/metrics"
	"github.com/harper/dongne/internal/models"
	"github.com/harper/dongne/internal/session"
	"go.uber.org/zap"
)

// ErrEmptyUser is returned when a conversation is started without a user id
var ErrEmptyUser = errors.New("user id is required")

// UserRegistry registers the user node a Choice will hang off
type UserRegistry interface {
	EnsureUser(ctx context.Context, userID string) error
}

// Service is safe for concurrent use across sessions
type Service struct {
	sessions   *session.Manager
	controller *core.Controller
	users      UserRegistry
	logger     *zap.Logger
}

// NewService wires the service. users may be nil when no registration is needed.
func NewService(sessions *session.Manager, controller *core.Controller, users UserRegistry, log *zap.Logger) *Service {
	return &Service{
		sessions:   sessions,
		controller: controller,
		users:      users,
		logger:     logger.OrNop(log),
	}
}

// Cuisines returns the fixed cuisine buttons
func (s *Service) Cuisines() []string {
	return s.controller.Cuisines()
}

// Start registers the user and opens a conversation at ask_cuisine
func (s *Service) Start(ctx context.Context, userID string) (*models.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUser
	}

	if s.users != nil {
		err := metrics.Observe(metrics.CallEnsureUser, func() error {
			return s.users.EnsureUser(ctx, userID)
		})
		if err != nil {
			// the choice write reports the missing user later
			s.logger.Warn("failed to register user",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	sess, err := s.sessions.Create(ctx, userID, s.controller.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}
	metrics.SessionsStarted.Inc()

	s.logger.Info("conversation started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID))
	return sess, nil
}

// Get returns the current snapshot of a conversation
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// ChooseCuisine applies the cuisine button
func (s *Service) ChooseCuisine(ctx context.Context, sessionID, cuisine string) (*models.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *models.Session) error {
		return s.controller.SelectCuisine(sess, strings.TrimSpace(cuisine))
	})
}

// SendMessage applies one free-text chat message
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*models.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *models.Session) error {
		return s.controller.HandleText(ctx, sess, text)
	})
}

// ChoosePlace applies a card selection; number is 1-based as shown to the user
func (s *Service) ChoosePlace(ctx context.Context, sessionID string, number int) (*models.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *models.Session) error {
		return s.controller.SelectPlace(ctx, sess, number-1)
	})
}
