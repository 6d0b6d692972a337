package app

import (
	"fmt"

	"reading-hero-service/internal/domain"
)

// State is a screen of the game.
type State string

const (
	StateSetup      State = "setup"
	StateGenerating State = "generating"
	StateQuiz       State = "quiz"
	StateBonus      State = "bonus"
	StateResults    State = "results"
	StateShop       State = "shop"
)

type event string

const (
	eventStart          event = "start"
	eventGenerated      event = "generated"
	eventFailed         event = "failed"
	eventFinalized      event = "finalized"
	eventFinalizedBonus event = "finalizedWithBonus"
	eventFinishBonus    event = "finishBonus"
	eventHome           event = "home"
	eventShop           event = "shop"
	eventBack           event = "back"
)

// transitions lists every legal move. Abandon is the only way out of a state
// not listed here.
var transitions = map[State]map[event]State{
	StateSetup: {
		eventStart: StateGenerating,
		eventShop:  StateShop,
	},
	StateGenerating: {
		eventGenerated: StateQuiz,
		eventFailed:    StateSetup,
	},
	StateQuiz: {
		eventFinalized:      StateResults,
		eventFinalizedBonus: StateBonus,
	},
	StateBonus: {
		eventFinishBonus: StateResults,
	},
	StateResults: {
		eventHome: StateSetup,
		eventShop: StateShop,
	},
	StateShop: {
		eventBack: StateSetup,
	},
}

func nextState(from State, ev event) (State, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s in %s", domain.ErrInvalidTransition, ev, from)
}
