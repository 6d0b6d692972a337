package generator

import (
	"context"
	"math/rand"

	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
)

// Static serves a built-in story. It needs no API key, which makes it the
// generator for local runs and tests.
type Static struct {
	doc domain.QuizDocument
}

// NewStatic serves doc; a zero document selects the built-in story.
func NewStatic(doc domain.QuizDocument) *Static {
	if len(doc.Questions) == 0 {
		doc = sampleStory()
	}
	return &Static{doc: doc}
}

// Document returns the full story served by s.
func (s *Static) Document() domain.QuizDocument { return s.doc }

// Generate trims the story's questions to the requested count and drops the
// bonus section unless it was asked for.
func (s *Static) Generate(_ context.Context, settings domain.Settings) (domain.QuizDocument, error) {
	doc := s.doc
	n := settings.QuestionCount
	if n <= 0 || n > len(doc.Questions) {
		n = len(doc.Questions)
	}
	doc.Questions = append([]domain.Question(nil), doc.Questions[:n]...)
	if !settings.IncludeBonus {
		doc.BonusContent = ""
		doc.BonusQuestions = nil
	}
	return doc, nil
}

func (s *Static) SuggestTopic(context.Context) (string, error) {
	topics := catalog.Topics()
	return topics[rand.Intn(len(topics))], nil
}

func sampleStory() domain.QuizDocument {
	options := func(texts ...string) []domain.Option {
		letters := []string{"א", "ב", "ג", "ד"}
		out := make([]domain.Option, len(texts))
		for i, t := range texts {
			out[i] = domain.Option{ID: letters[i], Text: t}
		}
		return out
	}
	return domain.QuizDocument{
		Title: "החללית של יואב",
		Content: "יואב בנה חללית מקרטון בחצר. הוא צבע אותה בכחול ובכסף, והדביק עליה כוכבים זוהרים. " +
			"בערב הזמין את אחותו מאיה לטוס איתו לירח. הם ספרו לאחור מעשר, ומאיה צחקה כשיואב השמיע רעש של מנוע. " +
			"כשחזרו \"לכדור הארץ\" אמא הגישה להם עוגיות בצורת כוכבים.",
		Questions: []domain.Question{
			{
				ID:               1,
				Text:             "ממה בנה יואב את החללית?",
				Options:          options("מעץ", "מקרטון", "מפלסטיק"),
				CorrectOptionIDs: []string{"ב"},
				Explanation:      "בטקסט כתוב שיואב בנה חללית מקרטון.",
			},
			{
				ID:               2,
				Text:             "את מי הזמין יואב לטוס איתו?",
				Options:          options("את אבא", "את החבר שלו", "את אחותו מאיה"),
				CorrectOptionIDs: []string{"ג"},
				Explanation:      "יואב הזמין את אחותו מאיה.",
			},
			{
				ID:               3,
				Text:             "באילו צבעים צבע יואב את החללית? (יש לבחור את כל התשובות הנכונות)",
				Options:          options("כחול", "אדום", "כסף", "ירוק"),
				CorrectOptionIDs: []string{"א", "ג"},
				Explanation:      "החללית נצבעה בכחול ובכסף.",
				IsMultipleChoice: true,
			},
			{
				ID:               4,
				Text:             "למה מאיה צחקה?",
				Options:          options("כי החללית נפלה", "כי יואב השמיע רעש של מנוע", "כי אמא הגיעה"),
				CorrectOptionIDs: []string{"ב"},
				Explanation:      "מאיה צחקה כשיואב השמיע רעש של מנוע.",
			},
			{
				ID:               5,
				Text:             "איך אפשר לתאר את הערב של יואב ומאיה?",
				Options:          options("משעמם", "מפחיד", "שמח ומלא דמיון"),
				CorrectOptionIDs: []string{"ג"},
				Explanation:      "הילדים שיחקו, צחקו ודמיינו טיסה לירח.",
			},
		},
		BonusContent: "למחרת יואב ומאיה ציירו מפה של מערכת השמש ותלו אותה על הקיר.",
		BonusQuestions: []domain.BonusQuestion{
			{ID: 1, Text: "לאן הייתם רוצים לטוס בחללית משלכם, ולמה?", ParentGuide: "תשובה טובה מציינת יעד ומסבירה סיבה אחת לפחות."},
			{ID: 2, Text: "מה לדעתכם הרגישה מאיה בסוף הערב?", ParentGuide: "חפשו רגש (שמחה, התרגשות) ורמז מהסיפור שתומך בו."},
		},
	}
}
