// ABOUTME: Personal choice history kept in charm kv
// ABOUTME: One JSON value per choice under choice:<user>:<choice id>
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/harper/dongne/internal/models"
)

// ChoicePrefix namespaces choice summaries
const ChoicePrefix = "choice:"

// ChoiceKey generates the key for one user's choice
func ChoiceKey(userID, choiceID string) string {
	return ChoicePrefix + userID + ":" + choiceID
}

// History appends and lists choice summaries
type History struct {
	store Store
}

// NewHistory wraps a Store
func NewHistory(store Store) *History {
	return &History{store: store}
}

// AppendChoice stores one summary; an existing key is overwritten
func (h *History) AppendChoice(userID string, summary models.ChoiceSummary) error {
	if userID == "" || summary.ChoiceID == "" {
		return errors.New("user id and choice id are required")
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal choice: %w", err)
	}
	return h.store.Set(ChoiceKey(userID, summary.ChoiceID), data)
}

// List returns a user's choices, newest first
func (h *History) List(userID string) ([]models.ChoiceSummary, error) {
	keys, err := h.store.ListKeys(ChoicePrefix + userID + ":")
	if err != nil {
		return nil, err
	}

	out := make([]models.ChoiceSummary, 0, len(keys))
	for _, key := range keys {
		data, err := h.store.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		var s models.ChoiceSummary
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DecidedAt.Equal(out[j].DecidedAt) {
			return out[i].DecidedAt.After(out[j].DecidedAt)
		}
		return out[i].ChoiceID < out[j].ChoiceID
	})
	return out, nil
}
