// ABOUTME: Tests for intent classification and the offline keyword labeler
// ABOUTME: Any failure or unrecognized label must come back neutral
package core

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/dongne/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentClassifier_Labels(t *testing.T) {
	labeler := &fakeLabeler{labels: map[string]string{
		"좋아":  "yes",
		"싫엉":  "No",
		"글쎄":  "neutral",
		"몰라":  "",
		"보여줘": "긍정",
	}}
	ic := NewIntentClassifier(labeler, nil)
	ctx := context.Background()

	assert.Equal(t, models.IntentYes, ic.Classify(ctx, "좋아"))
	assert.Equal(t, models.IntentNo, ic.Classify(ctx, "싫엉"))
	assert.Equal(t, models.IntentNeutral, ic.Classify(ctx, "글쎄"))
	assert.Equal(t, models.IntentNeutral, ic.Classify(ctx, "몰라"))
	assert.Equal(t, models.IntentYes, ic.Classify(ctx, "보여줘"))
}

func TestIntentClassifier_FailureIsNeutral(t *testing.T) {
	ic := NewIntentClassifier(&fakeLabeler{err: errors.New("connection reset")}, nil)

	assert.Equal(t, models.IntentNeutral, ic.Classify(context.Background(), "응"))
	assert.Equal(t, models.IntentNeutral, NewIntentClassifier(nil, nil).Classify(context.Background(), "응"))
}

func TestKeywordLabeler(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"좋아!", "yes"},
		{"ㅇㅋ", "yes"},
		{"ㄱㄱ 보여줘", "yes"},
		{"시렁", "no"},
		{"ㄴㄴ 다시", "no"},
		{"별로야", "no"},
		{"안 좋아", "no"},
		{"글쎄...", "neutral"},
		{"잘 모르겠어 좋아?", "neutral"},
		{"오늘 날씨 어때", "neutral"},
		{"", "neutral"},
		{"yes please", "yes"},
		{"OK", "yes"},
		{"no", "no"},
		{"No, something else", "no"},
		{"nope", "neutral"},
		{"I don't know", "neutral"},
		{"sounds good, no rush", "neutral"},
		{"maybe later", "neutral"},
		{"nothing comes to mind", "neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := KeywordLabeler{}.ClassifyIntent(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
