package domain

import (
	"fmt"
	"slices"
)

// Settings is what the setup screen hands to the content generator.
type Settings struct {
	Topic         string `json:"topic"`
	TextLength    int    `json:"textLength"` // approximate line count
	QuestionCount int    `json:"questionCount"`
	IncludeBonus  bool   `json:"includeBonus"`
}

const (
	MinQuestionCount = 1
	MaxQuestionCount = 20
	MinTextLength    = 2
	MaxTextLength    = 160
)

// Validate checks the ranges offered by the setup form.
func (s Settings) Validate() error {
	if s.QuestionCount < MinQuestionCount || s.QuestionCount > MaxQuestionCount {
		return fmt.Errorf("%w: question count %d outside [%d, %d]", ErrInvalidSettings, s.QuestionCount, MinQuestionCount, MaxQuestionCount)
	}
	if s.TextLength < MinTextLength || s.TextLength > MaxTextLength {
		return fmt.Errorf("%w: text length %d outside [%d, %d]", ErrInvalidSettings, s.TextLength, MinTextLength, MaxTextLength)
	}
	return nil
}

// Option represents a possible answer for a question. IDs are letter tokens (א, ב, ...).
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models a reading comprehension question with one or more correct options.
type Question struct {
	ID               int      `json:"id"`
	Text             string   `json:"text"`
	Options          []Option `json:"options"`
	CorrectOptionIDs []string `json:"correctOptionIds"`
	Explanation      string   `json:"explanation"`
	IsMultipleChoice bool     `json:"isMultipleChoice"`
}

// HasOption reports whether optionID is one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// BonusQuestion is an open-ended discussion question. It is never scored.
type BonusQuestion struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	ParentGuide string `json:"parentGuide"`
}

// QuizDocument is the generated story plus its question set.
type QuizDocument struct {
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Questions      []Question      `json:"questions"`
	BonusContent   string          `json:"bonusContent,omitempty"`
	BonusQuestions []BonusQuestion `json:"bonusQuestions,omitempty"`
}

// HasBonus reports whether the document carries at least one bonus question.
func (d QuizDocument) HasBonus() bool {
	return len(d.BonusQuestions) > 0
}

// Validate enforces the document invariants. Every failure wraps ErrInvalidQuizDocument.
func (d QuizDocument) Validate() error {
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuizDocument)
	}
	seen := make(map[int]struct{}, len(d.Questions))
	for _, q := range d.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidQuizDocument, q.ID)
		}
		seen[q.ID] = struct{}{}

		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidQuizDocument, q.ID)
		}
		if len(q.CorrectOptionIDs) == 0 {
			return fmt.Errorf("%w: question %d has no correct option", ErrInvalidQuizDocument, q.ID)
		}
		for _, id := range q.CorrectOptionIDs {
			if !q.HasOption(id) {
				return fmt.Errorf("%w: question %d marks unknown option %q as correct", ErrInvalidQuizDocument, q.ID, id)
			}
		}
		if !q.IsMultipleChoice && len(q.CorrectOptionIDs) != 1 {
			return fmt.Errorf("%w: single-answer question %d has %d correct options", ErrInvalidQuizDocument, q.ID, len(q.CorrectOptionIDs))
		}
	}
	return nil
}

// QuizResult is the outcome of a finalized session.
type QuizResult struct {
	ScorePercent   int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	PointsEarned   int `json:"pointsEarned"`
}

// ItemKind distinguishes the two cosmetic families.
type ItemKind string

const (
	KindTheme ItemKind = "theme"
	KindIcon  ItemKind = "icon"
)

// ShopItem is a purchasable cosmetic.
type ShopItem struct {
	ID    string   `json:"id"`
	Kind  ItemKind `json:"type"`
	Name  string   `json:"name"`
	Value string   `json:"value"` // theme or icon id granted
	Cost  int      `json:"cost"`
}

// AchievementCondition receives the progress record after a quiz result was
// applied and the score of that quiz.
type AchievementCondition func(p ProgressRecord, scorePercent int) bool

// Achievement is a static badge granted once its condition holds.
type Achievement struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Condition   AchievementCondition `json:"-"`
}

// ProgressRecord is the persisted gamification profile. Set-valued fields keep
// insertion order so the stored blob stays stable.
type ProgressRecord struct {
	TotalPoints      int      `json:"totalPoints"`
	CompletedQuizzes int      `json:"completedQuizzes"`
	HighScoresCount  int      `json:"highScoresCount"`
	Achievements     []string `json:"achievements"`
	UnlockedThemes   []string `json:"unlockedThemes"`
	CurrentTheme     string   `json:"currentTheme"`
	UnlockedIcons    []string `json:"unlockedIcons"`
	CurrentIcon      string   `json:"currentIcon"`
}

// Clone returns a deep copy so callers never share set storage.
func (p ProgressRecord) Clone() ProgressRecord {
	out := p
	out.Achievements = cloneSet(p.Achievements)
	out.UnlockedThemes = cloneSet(p.UnlockedThemes)
	out.UnlockedIcons = cloneSet(p.UnlockedIcons)
	return out
}

func (p ProgressRecord) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// Unlocked reports whether value is in the unlocked set for kind.
func (p ProgressRecord) Unlocked(kind ItemKind, value string) bool {
	switch kind {
	case KindTheme:
		return slices.Contains(p.UnlockedThemes, value)
	case KindIcon:
		return slices.Contains(p.UnlockedIcons, value)
	}
	return false
}

// Equipped reports whether value is the current theme or icon.
func (p ProgressRecord) Equipped(kind ItemKind, value string) bool {
	switch kind {
	case KindTheme:
		return p.CurrentTheme == value
	case KindIcon:
		return p.CurrentIcon == value
	}
	return false
}

func cloneSet(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
