// Package catalog holds the static definitions of the game: shop items,
// achievements, themes, icons and topic suggestions. Nothing here mutates.
package catalog

import "reading-hero-service/internal/domain"

const (
	// StorageKey is the well-known key the progress blob is stored under.
	StorageKey = "readingHeroProgress"

	DefaultTheme = "blue"
	DefaultIcon  = "star"

	// FallbackTopic replaces a failed or empty topic suggestion.
	FallbackTopic = "יום כיף בלונה פארק"

	// HighScoreThreshold is the score at which a quiz counts as a high score.
	HighScoreThreshold = 80
)

var shopItems = []domain.ShopItem{
	{ID: "theme_green", Kind: domain.KindTheme, Name: "ערכת טבע (ירוק)", Value: "green", Cost: 50},
	{ID: "theme_purple", Kind: domain.KindTheme, Name: "ערכת קסם (סגול)", Value: "purple", Cost: 50},
	{ID: "theme_orange", Kind: domain.KindTheme, Name: "ערכת שמש (כתום)", Value: "orange", Cost: 80},
	{ID: "icon_game", Kind: domain.KindIcon, Name: "אייקון גיימר", Value: "game", Cost: 30},
	{ID: "icon_rocket", Kind: domain.KindIcon, Name: "אייקון חלל", Value: "rocket", Cost: 30},
	{ID: "icon_zap", Kind: domain.KindIcon, Name: "אייקון אנרגיה", Value: "zap", Cost: 40},
}

// Conditions must stay monotone in the record: more quizzes or points never
// turn a true condition false.
var achievements = []domain.Achievement{
	{
		ID:          "first_quiz",
		Title:       "צעד ראשון",
		Description: "סיימת מבדק ראשון בהצלחה!",
		Condition:   func(p domain.ProgressRecord, _ int) bool { return p.CompletedQuizzes >= 1 },
	},
	{
		ID:          "three_quizzes",
		Title:       "תולעת ספרים",
		Description: "סיימת 3 מבדקים!",
		Condition:   func(p domain.ProgressRecord, _ int) bool { return p.CompletedQuizzes >= 3 },
	},
	{
		ID:          "score_80",
		Title:       "אלוף הקריאה",
		Description: "קיבלת ציון מעל 80 במבדק.",
		Condition:   func(_ domain.ProgressRecord, score int) bool { return score >= HighScoreThreshold },
	},
	{
		ID:          "rich_kid",
		Title:       "אספן נקודות",
		Description: "צברת מעל 200 נקודות.",
		Condition:   func(p domain.ProgressRecord, _ int) bool { return p.TotalPoints >= 200 },
	},
}

var defaultTopics = []string{
	"מיינקראפט",
	"לגו",
	"כדורגל",
	"יום בבית הספר",
	"טיול משפחתי",
	"חלל",
	"חיות",
	"גיבורי על",
}

// Items returns the purchasable items in display order.
func Items() []domain.ShopItem {
	out := make([]domain.ShopItem, len(shopItems))
	copy(out, shopItems)
	return out
}

// Item looks up a shop item by id.
func Item(id string) (domain.ShopItem, bool) {
	for _, item := range shopItems {
		if item.ID == id {
			return item, true
		}
	}
	return domain.ShopItem{}, false
}

// Achievements returns the achievement table in evaluation order.
func Achievements() []domain.Achievement {
	out := make([]domain.Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// Achievement looks up an achievement by id.
func Achievement(id string) (domain.Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Achievement{}, false
}

// Topics returns the built-in topic suggestions for the setup form.
func Topics() []string {
	out := make([]string, len(defaultTopics))
	copy(out, defaultTopics)
	return out
}

// BaselineProgress is the record of a player with no saved progress.
func BaselineProgress() domain.ProgressRecord {
	return domain.ProgressRecord{
		Achievements:   []string{},
		UnlockedThemes: []string{DefaultTheme},
		CurrentTheme:   DefaultTheme,
		UnlockedIcons:  []string{DefaultIcon},
		CurrentIcon:    DefaultIcon,
	}
}

// Feedback is the encouragement line shown next to a final score.
func Feedback(scorePercent int) string {
	switch {
	case scorePercent >= 90:
		return "וואו! אלוף הקריאה! ביצוע מושלם."
	case scorePercent >= 80:
		return "כל הכבוד! הבנה מצוינת של הטקסט."
	case scorePercent >= 60:
		return "עבודה טובה! רואים שאתה משתפר."
	default:
		return "התחלה טובה! כל שורה שאתה קורא מחזקת את המוח."
	}
}
