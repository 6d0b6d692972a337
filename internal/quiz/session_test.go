package quiz

import (
	"errors"
	"slices"
	"testing"

	"reading-hero-service/internal/domain"
)

func TestNewRejectsEmptyDocument(t *testing.T) {
	_, err := New(domain.QuizDocument{Title: "empty"})
	if !errors.Is(err, domain.ErrInvalidQuizDocument) {
		t.Fatalf("expected invalid document, got %v", err)
	}
}

func TestNewRejectsDuplicateQuestionIDs(t *testing.T) {
	doc := sampleDocument(2)
	doc.Questions[1].ID = doc.Questions[0].ID
	if _, err := New(doc); !errors.Is(err, domain.ErrInvalidQuizDocument) {
		t.Fatalf("expected invalid document, got %v", err)
	}
}

func TestSingleAnswerWrongSelection(t *testing.T) {
	s := mustSession(t, sampleDocument(1))

	s = s.Select("ב").Submit()

	correct, ok := s.Verdict()
	if !ok || correct {
		t.Fatalf("expected submitted wrong answer, got correct=%v submitted=%v", correct, ok)
	}
	if h := s.History(); !slices.Equal(h, []bool{false}) {
		t.Fatalf("expected history [false], got %v", h)
	}
	if expl, ok := s.Explanation(); !ok || expl == "" {
		t.Fatalf("expected explanation after submission")
	}
}

func TestSingleAnswerReplacesSelection(t *testing.T) {
	s := mustSession(t, sampleDocument(1))
	s = s.Select("ב").Select("א")
	if got := s.Selected(); !slices.Equal(got, []string{"א"}) {
		t.Fatalf("expected selection [א], got %v", got)
	}
}

func TestMultipleChoiceToggles(t *testing.T) {
	s := mustSession(t, multiDocument())

	s = s.Select("א").Select("ג").Select("ב").Select("ב")
	got := s.Selected()
	slices.Sort(got)
	if !slices.Equal(got, []string{"א", "ג"}) {
		t.Fatalf("expected double toggle to cancel, got %v", got)
	}
}

func TestMultipleChoiceOrderIndependent(t *testing.T) {
	s := mustSession(t, multiDocument())
	s = s.Select("ג").Select("א").Submit()
	if correct, _ := s.Verdict(); !correct {
		t.Fatalf("expected reversed selection to be correct")
	}
}

func TestMultipleChoiceSupersetIsWrong(t *testing.T) {
	s := mustSession(t, multiDocument())
	s = s.Select("א").Select("ב").Select("ג").Submit()
	if correct, _ := s.Verdict(); correct {
		t.Fatalf("expected superset to be judged wrong")
	}
}

func TestDuplicateCorrectIDsDoNotMatter(t *testing.T) {
	doc := multiDocument()
	doc.Questions[0].CorrectOptionIDs = []string{"א", "ג", "א"}
	s := mustSession(t, doc).Select("א").Select("ג").Submit()
	if correct, _ := s.Verdict(); !correct {
		t.Fatalf("expected duplicates in the key to be ignored")
	}
}

func TestSelectionFrozenAfterSubmit(t *testing.T) {
	s := mustSession(t, sampleDocument(1)).Select("א").Submit()
	s = s.Select("ב")
	if got := s.Selected(); !slices.Equal(got, []string{"א"}) {
		t.Fatalf("expected frozen selection, got %v", got)
	}
	if h := s.Submit().History(); len(h) != 1 {
		t.Fatalf("expected second submit to be ignored, history %v", h)
	}
}

func TestSubmitWithoutSelectionIsNoop(t *testing.T) {
	s := mustSession(t, sampleDocument(1)).Submit()
	if s.Submitted() || len(s.History()) != 0 {
		t.Fatalf("expected empty submit to do nothing")
	}
}

func TestUnknownOptionIgnored(t *testing.T) {
	s := mustSession(t, sampleDocument(1)).Select("ז")
	if len(s.Selected()) != 0 {
		t.Fatalf("expected unknown option to be ignored")
	}
}

func TestAdvanceRequiresSubmission(t *testing.T) {
	s := mustSession(t, sampleDocument(2)).Select("א")
	next, done, err := s.Advance()
	if !errors.Is(err, domain.ErrNotSubmitted) || done {
		t.Fatalf("expected ErrNotSubmitted, got done=%v err=%v", done, err)
	}
	if next.Index() != 0 {
		t.Fatalf("expected index to stay 0")
	}
}

func TestAdvanceResetsQuestionState(t *testing.T) {
	s := mustSession(t, sampleDocument(2)).Select("א").Submit()
	s, done, err := s.Advance()
	if err != nil || done {
		t.Fatalf("advance: done=%v err=%v", done, err)
	}
	if s.Index() != 1 || s.Submitted() || len(s.Selected()) != 0 {
		t.Fatalf("expected fresh second question, got index=%d submitted=%v selected=%v", s.Index(), s.Submitted(), s.Selected())
	}
	if _, ok := s.Verdict(); ok {
		t.Fatalf("expected no verdict on fresh question")
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	base := mustSession(t, multiDocument()).Select("א")
	_ = base.Select("ג").Submit()
	if got := base.Selected(); !slices.Equal(got, []string{"א"}) {
		t.Fatalf("receiver changed: %v", got)
	}
	if base.Submitted() {
		t.Fatalf("receiver submitted")
	}
}

func TestFinalizeScenario(t *testing.T) {
	s := mustSession(t, sampleDocument(5))
	answers := []string{"א", "א", "ב", "א", "א"}
	for i, a := range answers {
		s = s.Select(a).Submit()
		next, done, err := s.Advance()
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if done != (i == len(answers)-1) {
			t.Fatalf("unexpected done=%v at %d", done, i)
		}
		s = next
	}

	s, result, err := s.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	want := domain.QuizResult{ScorePercent: 80, TotalQuestions: 5, PointsEarned: 40}
	if result != want {
		t.Fatalf("expected %+v, got %+v", want, result)
	}

	if _, _, err := s.Finalize(); !errors.Is(err, domain.ErrSessionFinalized) {
		t.Fatalf("expected second finalize to fail, got %v", err)
	}
}

func TestFinalizeBeforeLastAnswer(t *testing.T) {
	s := mustSession(t, sampleDocument(2)).Select("א").Submit()
	if _, _, err := s.Finalize(); !errors.Is(err, domain.ErrSessionIncomplete) {
		t.Fatalf("expected incomplete session, got %v", err)
	}
}

func TestScoreFormula(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for c := 0; c <= n; c++ {
			doc := sampleDocument(n)
			s := mustSession(t, doc)
			for i := 0; i < n; i++ {
				answer := "ב"
				if i < c {
					answer = "א"
				}
				s = s.Select(answer).Submit()
				s, _, _ = s.Advance()
			}
			_, result, err := s.Finalize()
			if err != nil {
				t.Fatalf("n=%d c=%d: %v", n, c, err)
			}
			if result.ScorePercent != ScorePercent(c, n) || result.PointsEarned != c*10 || result.TotalQuestions != n {
				t.Fatalf("n=%d c=%d: got %+v", n, c, result)
			}
		}
	}
}

func TestScorePercentRounding(t *testing.T) {
	cases := map[[2]int]int{
		{1, 3}: 33,
		{2, 3}: 67,
		{1, 8}: 13,
		{0, 4}: 0,
		{4, 4}: 100,
	}
	for in, want := range cases {
		if got := ScorePercent(in[0], in[1]); got != want {
			t.Fatalf("ScorePercent(%d, %d) = %d, want %d", in[0], in[1], got, want)
		}
	}
}

func mustSession(t *testing.T, doc domain.QuizDocument) Session {
	t.Helper()
	s, err := New(doc)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// sampleDocument builds n single-answer questions whose correct option is א.
func sampleDocument(n int) domain.QuizDocument {
	doc := domain.QuizDocument{Title: "הכלב של נועה", Content: "נועה יצאה לטייל עם הכלב."}
	for i := 1; i <= n; i++ {
		doc.Questions = append(doc.Questions, domain.Question{
			ID:   i,
			Text: "מה עשתה נועה?",
			Options: []domain.Option{
				{ID: "א", Text: "טיילה"},
				{ID: "ב", Text: "ישנה"},
				{ID: "ג", Text: "שחתה"},
			},
			CorrectOptionIDs: []string{"א"},
			Explanation:      "כתוב שנועה יצאה לטייל.",
		})
	}
	return doc
}

func multiDocument() domain.QuizDocument {
	return domain.QuizDocument{
		Title:   "חלל",
		Content: "הירח והשמש.",
		Questions: []domain.Question{{
			ID:   1,
			Text: "מה מופיע בטקסט?",
			Options: []domain.Option{
				{ID: "א", Text: "ירח"},
				{ID: "ב", Text: "כוכב לכת"},
				{ID: "ג", Text: "שמש"},
			},
			CorrectOptionIDs: []string{"א", "ג"},
			Explanation:      "הטקסט מזכיר את הירח ואת השמש.",
			IsMultipleChoice: true,
		}},
	}
}
