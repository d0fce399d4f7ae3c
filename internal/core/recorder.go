// ABOUTME: ChoiceRecorder persists a final place selection as an immutable Choice
// ABOUTME: Writes the graph record, appends a session summary and mirrors to the personal log
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/metrics"
	"github.com/harper/dongne/internal/models"
	"go.uber.org/zap"
)

// ChoiceRecorder creates one new Choice per call
type ChoiceRecorder struct {
	store   ChoiceStore
	history ChoiceLog
	logger  *zap.Logger
}

// NewChoiceRecorder creates a recorder. history may be nil.
func NewChoiceRecorder(store ChoiceStore, history ChoiceLog, log *zap.Logger) *ChoiceRecorder {
	return &ChoiceRecorder{store: store, history: history, logger: logger.OrNop(log)}
}

// Record saves rec for the session's user and returns the new choice id.
// The session summary is appended only after the graph write succeeds.
func (r *ChoiceRecorder) Record(ctx context.Context, rec models.PlaceRecommendation, sess *models.Session) (string, error) {
	if r.store == nil {
		return "", errors.New("no choice store configured")
	}

	choice, err := models.NewChoice(rec, sess)
	if err != nil {
		return "", err
	}

	if err := r.store.SaveChoice(ctx, choice); err != nil {
		metrics.ChoicesRecorded.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("save choice %s: %w", choice.ChoiceID, err)
	}
	metrics.ChoicesRecorded.WithLabelValues("saved").Inc()

	summary := choice.Summary()
	sess.Choices = append(sess.Choices, summary)

	if r.history != nil {
		if err := r.history.AppendChoice(sess.UserID, summary); err != nil {
			r.logger.Warn("failed to append choice to personal history",
				zap.String("choice_id", choice.ChoiceID),
				zap.Error(err))
		}
	}

	r.logger.Info("choice recorded",
		zap.String("choice_id", choice.ChoiceID),
		zap.String("session_id", sess.ID),
		zap.String("place_id", choice.PlaceID),
		zap.Int("score", choice.Score))
	return choice.ChoiceID, nil
}
