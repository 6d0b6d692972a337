package app

import (
	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
)

// View is what the client renders. Exactly one of the screen sections is set
// for the states that have one; Progress is always present.
type View struct {
	SessionID string       `json:"sessionId"`
	State     State        `json:"state"`
	Error     string       `json:"error,omitempty"`
	Quiz      *QuizView    `json:"quiz,omitempty"`
	Bonus     *BonusView   `json:"bonus,omitempty"`
	Results   *ResultsView `json:"results,omitempty"`
	Shop      *ShopView    `json:"shop,omitempty"`
	Progress  ProgressView `json:"progress"`
}

// QuizView never carries the correct options of an unsubmitted question.
type QuizView struct {
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	QuestionIndex    int          `json:"questionIndex"`
	TotalQuestions   int          `json:"totalQuestions"`
	Question         QuestionView `json:"question"`
	Selected         []string     `json:"selected"`
	Submitted        bool         `json:"submitted"`
	Correct          *bool        `json:"correct,omitempty"`
	CorrectOptionIDs []string     `json:"correctOptionIds,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
	IsLast           bool         `json:"isLast"`
}

type QuestionView struct {
	ID               int             `json:"id"`
	Text             string          `json:"text"`
	Options          []domain.Option `json:"options"`
	IsMultipleChoice bool            `json:"isMultipleChoice"`
}

type BonusView struct {
	Content   string                 `json:"content"`
	Questions []domain.BonusQuestion `json:"questions"`
}

type ResultsView struct {
	domain.QuizResult
	Feedback        string            `json:"feedback"`
	NewAchievements []AchievementView `json:"newAchievements"`
}

type AchievementView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

type ShopView struct {
	Items        []ShopItemView    `json:"items"`
	Achievements []AchievementView `json:"achievements"`
}

// ShopItemView marks owned, equipped and affordable items.
type ShopItemView struct {
	domain.ShopItem
	Unlocked   bool `json:"unlocked"`
	Equipped   bool `json:"equipped"`
	Affordable bool `json:"affordable"`
}

type ProgressView struct {
	domain.ProgressRecord
	Theme catalog.Theme `json:"theme"`
	Icon  catalog.Icon  `json:"icon"`
}

func (c *Controller) viewLocked() View {
	record := c.progress.Snapshot()
	v := View{
		SessionID: c.id,
		State:     c.state,
		Error:     c.errMsg,
		Progress: ProgressView{
			ProgressRecord: record,
			Theme:          catalog.ThemeByID(record.CurrentTheme),
			Icon:           catalog.IconByID(record.CurrentIcon),
		},
	}

	switch c.state {
	case StateQuiz:
		v.Quiz = c.quizView()
	case StateBonus:
		doc := c.session.Document()
		v.Bonus = &BonusView{Content: doc.BonusContent, Questions: doc.BonusQuestions}
	case StateResults:
		if c.outcome != nil {
			v.Results = resultsView(*c.outcome)
		}
	case StateShop:
		v.Shop = shopView(record)
	}
	return v
}

func (c *Controller) quizView() *QuizView {
	s := c.session
	doc := s.Document()
	q := s.Current()
	qv := &QuizView{
		Title:          doc.Title,
		Content:        doc.Content,
		QuestionIndex:  s.Index(),
		TotalQuestions: s.Total(),
		Question: QuestionView{
			ID:               q.ID,
			Text:             q.Text,
			Options:          q.Options,
			IsMultipleChoice: q.IsMultipleChoice,
		},
		Selected:  s.Selected(),
		Submitted: s.Submitted(),
		IsLast:    s.IsLast(),
	}
	if correct, ok := s.Verdict(); ok {
		qv.Correct = &correct
		qv.CorrectOptionIDs = append([]string(nil), q.CorrectOptionIDs...)
		qv.Explanation, _ = s.Explanation()
	}
	return qv
}

func resultsView(o outcome) *ResultsView {
	rv := &ResultsView{
		QuizResult:      o.result,
		Feedback:        catalog.Feedback(o.result.ScorePercent),
		NewAchievements: []AchievementView{},
	}
	for _, id := range o.granted {
		if a, ok := catalog.Achievement(id); ok {
			rv.NewAchievements = append(rv.NewAchievements, achievementView(a, true))
		}
	}
	return rv
}

func shopView(record domain.ProgressRecord) *ShopView {
	items := catalog.Items()
	sv := &ShopView{Items: make([]ShopItemView, 0, len(items))}
	for _, item := range items {
		sv.Items = append(sv.Items, ShopItemView{
			ShopItem:   item,
			Unlocked:   record.Unlocked(item.Kind, item.Value),
			Equipped:   record.Equipped(item.Kind, item.Value),
			Affordable: record.TotalPoints >= item.Cost,
		})
	}
	for _, a := range catalog.Achievements() {
		sv.Achievements = append(sv.Achievements, achievementView(a, record.HasAchievement(a.ID)))
	}
	return sv
}

func achievementView(a domain.Achievement, unlocked bool) AchievementView {
	return AchievementView{ID: a.ID, Title: a.Title, Description: a.Description, Unlocked: unlocked}
}
