package domain

import "errors"

var (
	// ErrInvalidQuizDocument is returned when a quiz document cannot be played.
	ErrInvalidQuizDocument = errors.New("invalid quiz document")
	// ErrInvalidSettings is returned when setup values are outside the allowed ranges.
	ErrInvalidSettings = errors.New("invalid quiz settings")

	// ErrNotSubmitted indicates an advance before the active answer was locked in.
	ErrNotSubmitted = errors.New("answer not submitted")
	// ErrSessionIncomplete indicates a finalize before every question was answered.
	ErrSessionIncomplete = errors.New("quiz session not complete")
	// ErrSessionFinalized indicates a second finalize of the same session.
	ErrSessionFinalized = errors.New("quiz session already finalized")

	// ErrInsufficientFunds is returned when a purchase costs more than the balance.
	ErrInsufficientFunds = errors.New("insufficient points")
	// ErrNotUnlocked is returned when equipping a theme or icon that was never bought.
	ErrNotUnlocked = errors.New("item not unlocked")
	// ErrItemNotFound indicates an unknown shop item id.
	ErrItemNotFound = errors.New("shop item not found")
	// ErrUnknownKind indicates an item kind other than theme or icon.
	ErrUnknownKind = errors.New("unknown item kind")

	// ErrProgressNotFound is returned by persistence backends when nothing is stored under a key.
	ErrProgressNotFound = errors.New("progress not found")
	// ErrPersistenceUnavailable wraps backend failures. It is logged, never surfaced to players.
	ErrPersistenceUnavailable = errors.New("progress persistence unavailable")

	// ErrInvalidTransition is returned for actions the controller does not accept in its current state.
	ErrInvalidTransition = errors.New("action not allowed in current state")
	// ErrGenerationInFlight is returned when a quiz is requested while another is being generated.
	ErrGenerationInFlight = errors.New("quiz generation already in progress")
)

// GenerationError wraps any failure of the content-generation collaborator:
// transport errors, bad status codes, empty or malformed responses.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generate quiz: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsRefusal reports whether err is a shop precondition failure that should be
// shown as a plain refusal rather than an error.
func IsRefusal(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrNotUnlocked)
}
