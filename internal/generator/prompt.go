// Package generator produces quiz documents and topic suggestions from a
// generative-language API.
package generator

import (
	"fmt"

	"reading-hero-service/internal/domain"
)

const topicPrompt = "Suggest a single, short topic (max 4 words) for a reading comprehension text suitable for a 4th-grade boy in Israel. Examples: 'Adventure in Minecraft', 'My Dog'. Return ONLY the Hebrew string."

// QuizPrompt renders settings into the instruction sent to the model.
func QuizPrompt(settings domain.Settings) string {
	topic := settings.Topic
	if topic == "" {
		topic = "General Interest"
	}
	return fmt.Sprintf(`
Create a reading comprehension test in Hebrew for a 4th-grade student.
Topic: %s.
Approximate text length: %d lines.
Number of multiple-choice questions: %d.
Include Bonus Section: %t.

Guidelines:
1. Language: Natural, modern Hebrew suitable for 9-10 year olds.
2. Content: Engaging, positive, safe. Avoid complex academic language.
3. Questions:
   - First questions should be easy (retrieval).
   - Later questions should be slightly harder (inference).
   - Provide 3-4 options for each question.
   - Mark correct answers clearly.
   - If questionCount > 6, make at least one question require selecting multiple answers (e.g., 'A and C are correct').
4. Bonus Section (if requested):
   - A separate, shorter text related to the main topic (approx half length).
   - 2-3 open-ended questions suitable for discussion with a parent.
   - Provide a 'parentGuide' for checking the open answers.
`, topic, settings.TextLength, settings.QuestionCount, settings.IncludeBonus)
}

// quizSchema is the response schema handed to the model.
func quizSchema() map[string]any {
	str := func(desc string) map[string]any {
		s := map[string]any{"type": "STRING"}
		if desc != "" {
			s["description"] = desc
		}
		return s
	}
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"title":   str("A creative title for the story in Hebrew."),
			"content": str("The reading comprehension text in Hebrew."),
			"questions": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"id":   map[string]any{"type": "INTEGER"},
						"text": str("The question text in Hebrew."),
						"options": map[string]any{
							"type": "ARRAY",
							"items": map[string]any{
								"type": "OBJECT",
								"properties": map[string]any{
									"id":   str("Letter identifier: 'א', 'ב', 'ג', or 'ד'"),
									"text": str("The answer text in Hebrew."),
								},
								"required": []string{"id", "text"},
							},
						},
						"correctOptionIds": map[string]any{
							"type":        "ARRAY",
							"items":       str(""),
							"description": "Array of correct option IDs (e.g., ['א']). If multiple correct, list all.",
						},
						"explanation":      str("Explanation why the answer is correct in Hebrew."),
						"isMultipleChoice": map[string]any{"type": "BOOLEAN", "description": "True if user must select multiple options."},
					},
					"required": []string{"id", "text", "options", "correctOptionIds", "explanation", "isMultipleChoice"},
				},
			},
			"bonusContent": str("Optional shorter text for bonus section."),
			"bonusQuestions": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"id":          map[string]any{"type": "INTEGER"},
						"text":        str("Open-ended question text in Hebrew."),
						"parentGuide": str("Guide for parents on what a good answer includes."),
					},
					"required": []string{"id", "text", "parentGuide"},
				},
			},
		},
		"required": []string{"title", "content", "questions"},
	}
}

// Normalize repairs the inconsistencies models commonly produce: repeated
// correct ids and a multiple-choice flag that disagrees with the answer key.
func Normalize(doc domain.QuizDocument) domain.QuizDocument {
	out := doc
	out.Questions = make([]domain.Question, len(doc.Questions))
	for i, q := range doc.Questions {
		seen := make(map[string]struct{}, len(q.CorrectOptionIDs))
		ids := make([]string, 0, len(q.CorrectOptionIDs))
		for _, id := range q.CorrectOptionIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		q.CorrectOptionIDs = ids
		if len(ids) > 1 {
			q.IsMultipleChoice = true
		}
		out.Questions[i] = q
	}
	return out
}
