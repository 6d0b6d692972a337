// Package progress owns the player's gamification record: applying quiz
// results, shop transactions and persistence.
package progress

import (
	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
)

// ApplyResult returns the record after one completed quiz. It is pure: the
// input record is not modified and calling it twice counts the quiz twice.
func ApplyResult(p domain.ProgressRecord, scorePercent, pointsEarned int) domain.ProgressRecord {
	return applyResult(catalog.Achievements(), p, scorePercent, pointsEarned)
}

func applyResult(achievements []domain.Achievement, p domain.ProgressRecord, scorePercent, pointsEarned int) domain.ProgressRecord {
	next := p.Clone()
	next.TotalPoints += pointsEarned
	next.CompletedQuizzes++
	if scorePercent >= catalog.HighScoreThreshold {
		next.HighScoresCount++
	}

	// Predicates see the counters above, never each other's grants.
	snapshot := next.Clone()
	for _, a := range achievements {
		if next.HasAchievement(a.ID) {
			continue
		}
		if a.Condition != nil && a.Condition(snapshot, scorePercent) {
			next.Achievements = append(next.Achievements, a.ID)
		}
	}
	return next
}

// NewAchievements lists the achievements present in after but not in before.
func NewAchievements(before, after domain.ProgressRecord) []string {
	var out []string
	for _, id := range after.Achievements {
		if !before.HasAchievement(id) {
			out = append(out, id)
		}
	}
	return out
}

// Normalize repairs a record read from storage so the store invariants hold.
func Normalize(p domain.ProgressRecord) domain.ProgressRecord {
	out := p.Clone()
	if out.TotalPoints < 0 {
		out.TotalPoints = 0
	}
	if out.CompletedQuizzes < 0 {
		out.CompletedQuizzes = 0
	}
	if out.HighScoresCount < 0 {
		out.HighScoresCount = 0
	}
	out.Achievements = dedupe(out.Achievements)
	out.UnlockedThemes = dedupe(out.UnlockedThemes)
	out.UnlockedIcons = dedupe(out.UnlockedIcons)

	if !out.Unlocked(domain.KindTheme, catalog.DefaultTheme) {
		out.UnlockedThemes = append([]string{catalog.DefaultTheme}, out.UnlockedThemes...)
	}
	if !out.Unlocked(domain.KindIcon, catalog.DefaultIcon) {
		out.UnlockedIcons = append([]string{catalog.DefaultIcon}, out.UnlockedIcons...)
	}
	if !out.Unlocked(domain.KindTheme, out.CurrentTheme) {
		out.CurrentTheme = catalog.DefaultTheme
	}
	if !out.Unlocked(domain.KindIcon, out.CurrentIcon) {
		out.CurrentIcon = catalog.DefaultIcon
	}
	return out
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
