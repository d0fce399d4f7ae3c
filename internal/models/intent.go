// ABOUTME: Tri-state affirmation signal used at the confirmation stage
// ABOUTME: ParseIntent maps a raw classifier label to yes, no or neutral
package models

import (
	"strings"
	"unicode"
)

// Intent is the classified meaning of a confirmation reply
type Intent string

const (
	IntentYes     Intent = "yes"
	IntentNo      Intent = "no"
	IntentNeutral Intent = "neutral"
)

// Localized labels the classifier sometimes answers with instead of yes/no.
// They only count as whole words: "긍정적?" is a hedge, not an answer.
var (
	yesSynonyms = map[string]bool{"긍정": true}
	noSynonyms  = map[string]bool{"부정": true}
)

// ParseIntent interprets a classifier label defensively.
// A label containing "yes" (or the word 긍정) is yes, one containing "no"
// (or the word 부정) is no, and anything else is neutral.
func ParseIntent(label string) Intent {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return IntentNeutral
	}

	words := strings.FieldsFunc(l, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	hasWord := func(set map[string]bool) bool {
		for _, w := range words {
			if set[w] {
				return true
			}
		}
		return false
	}

	switch {
	case strings.Contains(l, "yes") || hasWord(yesSynonyms):
		return IntentYes
	case strings.Contains(l, "no") || hasWord(noSynonyms):
		return IntentNo
	}
	return IntentNeutral
}
