// ABOUTME: Governor routes a conversation from one stage to the next
// ABOUTME: The transition table is the single source of truth for stage changes
package core

import (
	"fmt"

	"github.com/harper/dongne/internal/metrics"
	"github.com/harper/dongne/internal/models"
)

type transitionTable map[models.Stage]map[models.Outcome]models.Stage

var transitions = transitionTable{
	models.StageAskCuisine: {
		models.OutcomeCuisineSelected: models.StageAskMenu,
	},
	models.StageAskMenu: {
		models.OutcomeExactMatch:         models.StageAskMood,
		models.OutcomeSingleCandidate:    models.StageAskMood,
		models.OutcomeMultipleCandidates: models.StageChooseMenu,
		models.OutcomeNoCandidates:       models.StageAskMenu,
	},
	models.StageChooseMenu: {
		models.OutcomeMenuSelected:   models.StageAskMood,
		models.OutcomeNoMatch:        models.StageChooseMenu,
		models.OutcomeCandidatesLost: models.StageAskMenu,
	},
	models.StageAskMood: {
		models.OutcomeTagsFound: models.StageConfirmReco,
		models.OutcomeNoTags:    models.StageConfirmReco,
	},
	models.StageConfirmReco: {
		models.OutcomePlacesFound: models.StageChoosePlace,
		models.OutcomePlacesEmpty: models.StageAskMood,
		models.OutcomeDeclined:    models.StageAskMood,
		models.OutcomeUnclear:     models.StageConfirmReco,
	},
	models.StageChoosePlace: {
		models.OutcomePlaceSelected:    models.StageEnd,
		models.OutcomeInvalidSelection: models.StageChoosePlace,
		models.OutcomeSaveFailed:       models.StageChoosePlace,
		models.OutcomeResultsLost:      models.StageAskMenu,
	},
}

// Transition is one row of the table
type Transition struct {
	From    models.Stage
	Outcome models.Outcome
	To      models.Stage
}

// Transitions lists every allowed transition
func Transitions() []Transition {
	var out []Transition
	for _, from := range models.AllStages {
		for outcome, to := range transitions[from] {
			out = append(out, Transition{From: from, Outcome: outcome, To: to})
		}
	}
	return out
}

// Governor applies outcomes to sessions
type Governor struct{}

// NewGovernor creates a new Governor instance
func NewGovernor() *Governor {
	return &Governor{}
}

// Next looks up the stage an outcome leads to
func (g *Governor) Next(stage models.Stage, outcome models.Outcome) (models.Stage, error) {
	next, ok := transitions[stage][outcome]
	if !ok {
		return stage, fmt.Errorf("no transition from %s on %s", stage, outcome)
	}
	return next, nil
}

// Route moves the session along the table
func (g *Governor) Route(sess *models.Session, outcome models.Outcome) error {
	next, err := g.Next(sess.Stage, outcome)
	if err != nil {
		return err
	}
	metrics.StageTransitions.WithLabelValues(string(sess.Stage), string(next), string(outcome)).Inc()
	sess.Stage = next
	return nil
}
