// Package quiz walks a player through one quiz document question by question.
//
// Session is a value: every transition returns a new Session and leaves the
// receiver untouched, so a caller can keep or discard snapshots freely.
package quiz

import (
	"math"
	"slices"

	"reading-hero-service/internal/domain"
)

// PointsPerCorrectAnswer is awarded for each correct answer regardless of difficulty.
const PointsPerCorrectAnswer = 10

type Session struct {
	doc       domain.QuizDocument
	index     int
	selected  []string
	submitted bool
	correct   bool
	history   []bool
	finalized bool
}

// New starts a session on the first question. Documents that fail
// validation (including an empty question list) are rejected.
func New(doc domain.QuizDocument) (Session, error) {
	if err := doc.Validate(); err != nil {
		return Session{}, err
	}
	return Session{doc: doc}, nil
}

func (s Session) Document() domain.QuizDocument { return s.doc }
func (s Session) Index() int                    { return s.index }
func (s Session) Total() int                    { return len(s.doc.Questions) }
func (s Session) Submitted() bool               { return s.submitted }
func (s Session) Finalized() bool               { return s.finalized }

// Current returns the active question.
func (s Session) Current() domain.Question {
	return s.doc.Questions[s.index]
}

// Selected returns the option ids currently selected, in selection order.
func (s Session) Selected() []string {
	return slices.Clone(s.selected)
}

// History returns the correctness of every submitted answer so far.
func (s Session) History() []bool {
	return slices.Clone(s.history)
}

// Verdict returns the correctness of the active answer; ok is false until it is submitted.
func (s Session) Verdict() (correct, ok bool) {
	return s.correct, s.submitted
}

// Explanation is only revealed once the active answer is submitted.
func (s Session) Explanation() (string, bool) {
	if !s.submitted {
		return "", false
	}
	return s.Current().Explanation, true
}

// IsLast reports whether the active question is the final one.
func (s Session) IsLast() bool {
	return s.index == len(s.doc.Questions)-1
}

// Select picks an option. A single-answer question replaces the selection;
// a multiple-answer question toggles the option. Selection is frozen after
// submission and unknown option ids are ignored.
func (s Session) Select(optionID string) Session {
	q := s.Current()
	if s.submitted || !q.HasOption(optionID) {
		return s
	}
	if !q.IsMultipleChoice {
		s.selected = []string{optionID}
		return s
	}
	if i := slices.Index(s.selected, optionID); i >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
		return s
	}
	s.selected = append(slices.Clone(s.selected), optionID)
	return s
}

// Submit locks in the selection and records its correctness. It does
// nothing when nothing is selected or the answer is already locked.
func (s Session) Submit() Session {
	if s.submitted || len(s.selected) == 0 {
		return s
	}
	s.correct = sameSet(s.selected, s.Current().CorrectOptionIDs)
	s.submitted = true
	s.history = append(slices.Clone(s.history), s.correct)
	return s
}

// Advance moves to the next question. done is true when the active question
// was the last one; the session is then unchanged and ready for Finalize.
func (s Session) Advance() (next Session, done bool, err error) {
	if !s.submitted {
		return s, false, domain.ErrNotSubmitted
	}
	if s.IsLast() {
		return s, true, nil
	}
	s.index++
	s.selected = nil
	s.submitted = false
	s.correct = false
	return s, false, nil
}

// Finalize computes the result from the answer history. It may be called
// once, after the last answer has been submitted.
func (s Session) Finalize() (Session, domain.QuizResult, error) {
	if s.finalized {
		return s, domain.QuizResult{}, domain.ErrSessionFinalized
	}
	total := len(s.doc.Questions)
	if len(s.history) != total || !s.submitted || !s.IsLast() {
		return s, domain.QuizResult{}, domain.ErrSessionIncomplete
	}
	correct := 0
	for _, ok := range s.history {
		if ok {
			correct++
		}
	}
	s.finalized = true
	return s, domain.QuizResult{
		ScorePercent:   ScorePercent(correct, total),
		TotalQuestions: total,
		PointsEarned:   correct * PointsPerCorrectAnswer,
	}, nil
}

// ScorePercent rounds correct/total to the nearest whole percent, halves up.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// sameSet compares as sets: order and duplicates do not matter.
func sameSet(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
