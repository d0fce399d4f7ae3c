// ABOUTME: Dialogue stage enumeration for the recommendation conversation
// ABOUTME: Defines the fixed set of stages and the outcomes that move between them
package models

// Stage is the conversation's current position in the dialogue state machine
type Stage string

const (
	// StageAskCuisine - waiting for a fixed-choice cuisine selection
	StageAskCuisine Stage = "ask_cuisine"

	// StageAskMenu - waiting for a free-text menu or taste description
	StageAskMenu Stage = "ask_menu"

	// StageChooseMenu - waiting for the user to pick one of several menu candidates
	StageChooseMenu Stage = "choose_menu"

	// StageAskMood - waiting for a free-text mood/vibe description
	StageAskMood Stage = "ask_mood"

	// StageConfirmReco - waiting for yes/no before running the recommendation
	StageConfirmReco Stage = "confirm_reco"

	// StageChoosePlace - waiting for an out-of-band card selection
	StageChoosePlace Stage = "choose_place"

	// StageEnd - terminal, the user committed to a place
	StageEnd Stage = "END"
)

// AllStages lists every stage in conversation order
var AllStages = []Stage{
	StageAskCuisine,
	StageAskMenu,
	StageChooseMenu,
	StageAskMood,
	StageConfirmReco,
	StageChoosePlace,
	StageEnd,
}

// Valid reports whether s is one of the known stages
func (s Stage) Valid() bool {
	for _, known := range AllStages {
		if s == known {
			return true
		}
	}
	return false
}

// AcceptsText reports whether the stage is driven by free-text chat input.
// ask_cuisine and choose_place are driven by button selections instead.
func (s Stage) AcceptsText() bool {
	switch s {
	case StageAskMenu, StageChooseMenu, StageAskMood, StageConfirmReco:
		return true
	}
	return false
}

// Outcome classifies what a stage handler observed for one input
type Outcome string

const (
	OutcomeCuisineSelected    Outcome = "cuisine_selected"
	OutcomeExactMatch         Outcome = "exact_match"
	OutcomeSingleCandidate    Outcome = "single_candidate"
	OutcomeMultipleCandidates Outcome = "multiple_candidates"
	OutcomeNoCandidates       Outcome = "no_candidates"
	OutcomeMenuSelected       Outcome = "menu_selected"
	OutcomeNoMatch            Outcome = "no_match"
	OutcomeCandidatesLost     Outcome = "candidates_lost"
	OutcomeTagsFound          Outcome = "tags_found"
	OutcomeNoTags             Outcome = "no_tags"
	OutcomePlacesFound        Outcome = "places_found"
	OutcomePlacesEmpty        Outcome = "places_empty"
	OutcomeDeclined           Outcome = "declined"
	OutcomeUnclear            Outcome = "unclear"
	OutcomePlaceSelected      Outcome = "place_selected"
	OutcomeInvalidSelection   Outcome = "invalid_selection"
	OutcomeResultsLost        Outcome = "results_lost"
	OutcomeSaveFailed         Outcome = "save_failed"
)
