// ABOUTME: IntentClassifier turns a confirmation reply into yes, no or neutral
// ABOUTME: Labeler failures are logged and read as neutral so the conversation continues
package core

import (
	"context"
	"strings"
	"unicode"

	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/models"
	"go.uber.org/zap"
)

// IntentClassifier wraps an IntentLabeler with defensive label parsing
type IntentClassifier struct {
	labeler IntentLabeler
	logger  *zap.Logger
}

// NewIntentClassifier creates a classifier over the given labeler
func NewIntentClassifier(labeler IntentLabeler, log *zap.Logger) *IntentClassifier {
	return &IntentClassifier{labeler: labeler, logger: logger.OrNop(log)}
}

// Classify never fails: errors and unknown labels are neutral
func (ic *IntentClassifier) Classify(ctx context.Context, text string) models.Intent {
	if ic.labeler == nil {
		return models.IntentNeutral
	}
	label, err := ic.labeler.ClassifyIntent(ctx, text)
	if err != nil {
		ic.logger.Warn("intent classification failed", zap.Error(err))
		return models.IntentNeutral
	}
	intent := models.ParseIntent(label)
	ic.logger.Debug("intent classified", zap.String("label", label), zap.String("intent", string(intent)))
	return intent
}

// Colloquial replies the keyword labeler recognizes, seeded from the LLM prompt examples.
// Latin entries match whole words, Hangul entries match anywhere in the spaceless text.
var (
	yesUtterances     = []string{"좋아", "ㅇㅋ", "응", "그래", "ㄱㄱ", "보여줘", "ㅇㅇ", "웅", "콜", "yes", "ok", "okay", "sure"}
	noUtterances      = []string{"싫어", "시러", "시렁", "싫엉", "ㄴㄴ", "아니", "별로", "다시", "안좋아", "no"}
	neutralUtterances = []string{"모르겠어", "흠", "아직", "글쎄", "maybe", "not sure", "don t know", "dont know", "no rush", "hmm"}
)

// KeywordLabeler labels replies without a network call by matching known utterances.
// Used when no OpenAI key is configured.
type KeywordLabeler struct{}

// ClassifyIntent implements IntentLabeler. Neutral phrases win over the others
// so "잘 모르겠어 좋아?" stays undecided.
func (KeywordLabeler) ClassifyIntent(_ context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	compact := models.NormalizeName(lower)
	if compact == "" {
		return "neutral", nil
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	padded := " " + strings.Join(words, " ") + " "

	contains := func(list []string) bool {
		for _, u := range list {
			if isLatin(u) {
				if strings.Contains(padded, " "+u+" ") {
					return true
				}
				continue
			}
			if strings.Contains(compact, u) {
				return true
			}
		}
		return false
	}

	switch {
	case contains(neutralUtterances):
		return "neutral", nil
	case contains(noUtterances):
		return "no", nil
	case contains(yesUtterances):
		return "yes", nil
	}
	return "neutral", nil
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
