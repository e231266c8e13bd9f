package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mcq-trainer/backend/internal/models"
)

func rawFromJSON(t *testing.T, payload string) *models.RawQuestion {
	t.Helper()
	var raw models.RawQuestion
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return &raw
}

func TestNormalize_DropsBlankID(t *testing.T) {
	cases := []string{
		`{"questionText": "no id at all"}`,
		`{"id": "   ", "questionText": "whitespace id"}`,
		`{"id": "", "questionText": "empty id"}`,
	}
	for _, payload := range cases {
		if q := Normalize(rawFromJSON(t, payload)); q != nil {
			t.Errorf("expected nil for %s, got %+v", payload, q)
		}
	}
}

func TestNormalize_NumericID(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{"id": 42}`))
	if q == nil || q.ID != "42" {
		t.Fatalf("expected id \"42\", got %+v", q)
	}
}

func TestNormalize_BasicFields(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": " Q1 ",
		"examName": "F2019",
		"examYear": "2019",
		"questionText": "Was  ist &amp; bleibt   richtig?",
		"explanationText": "  ",
		"answers": [
			{"text": " Option  A ", "isCorrect": false},
			{"text": "Option B", "isCorrect": true}
		],
		"correctIndices": [2]
	}`))
	if q == nil {
		t.Fatal("expected question, got nil")
	}
	if q.ID != "Q1" {
		t.Errorf("expected trimmed id, got %q", q.ID)
	}
	if q.Text != "Was ist & bleibt richtig?" {
		t.Errorf("unexpected text %q", q.Text)
	}
	if q.Explanation != nil {
		t.Errorf("expected nil explanation for blank input, got %q", *q.Explanation)
	}
	if q.ExamName == nil || *q.ExamName != "F2019" {
		t.Errorf("unexpected exam name %v", q.ExamName)
	}
	if q.ExamYear == nil || *q.ExamYear != 2019 {
		t.Errorf("unexpected exam year %v", q.ExamYear)
	}
	if q.Answers[0].Text != "Option A" {
		t.Errorf("answer text not cleaned: %q", q.Answers[0].Text)
	}
	// [2] lies in [1,2] with no 0, so it converts from 1-based to [1].
	if !reflect.DeepEqual(q.CorrectIndices, []int{1}) {
		t.Errorf("expected correct indices [1], got %v", q.CorrectIndices)
	}
}

func TestNormalize_FinalIndicesPrecedence(t *testing.T) {
	// finalCorrectIndices beats the audit path, which beats correctIndices.
	q := Normalize(rawFromJSON(t, `{
		"id": "Q2",
		"answers": [{"text": "a"}, {"text": "b"}, {"text": "c"}, {"text": "d"}],
		"finalCorrectIndices": [0, 1],
		"correctIndices": [3],
		"aiAudit": {"answerPlausibility": {"finalCorrectIndices": [2]}}
	}`))
	if !reflect.DeepEqual(q.CorrectIndices, []int{0, 1}) {
		t.Errorf("expected top-level finalCorrectIndices to win, got %v", q.CorrectIndices)
	}

	q = Normalize(rawFromJSON(t, `{
		"id": "Q3",
		"answers": [{"text": "a"}, {"text": "b"}, {"text": "c"}, {"text": "d"}],
		"correctIndices": [3],
		"aiAudit": {"answerPlausibility": {"finalCorrectIndices": [0, 2]}}
	}`))
	if !reflect.DeepEqual(q.CorrectIndices, []int{0, 2}) {
		t.Errorf("expected audit finalCorrectIndices to win over correctIndices, got %v", q.CorrectIndices)
	}
}

// The changed-answer label is gated on confidence strictly above 1. On the
// dataset's 0-1 scale that suppresses the label for ordinary confidences;
// reproduced as shipped.
func TestNormalize_ChangedAnswerConfidenceGate(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q4",
		"answers": [{"text": "a"}, {"text": "b"}, {"text": "c"}],
		"originalCorrectIndices": [0],
		"finalCorrectIndices": [0, 1],
		"aiAnswerConfidence": 0.9
	}`))
	if q.AIChangedAnswers {
		t.Error("expected gate to suppress label at confidence 0.9")
	}
	if q.AIConfidence == nil || *q.AIConfidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", q.AIConfidence)
	}

	q = Normalize(rawFromJSON(t, `{
		"id": "Q5",
		"answers": [{"text": "a"}, {"text": "b"}, {"text": "c"}],
		"originalCorrectIndices": [0],
		"finalCorrectIndices": [0, 1],
		"aiAnswerConfidence": 42
	}`))
	if !q.AIChangedAnswers {
		t.Error("expected label to fire with out-of-scale confidence 42")
	}
}

func TestNormalize_ChangedAnswerExplicitFlag(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q6",
		"answers": [{"text": "a"}, {"text": "b"}],
		"originalCorrectIndices": [1],
		"finalCorrectIndices": [1],
		"aiAnswerConfidence": 5,
		"aiAudit": {"answerPlausibility": {"changedInDataset": true}}
	}`))
	if !q.AIChangedAnswers {
		t.Error("expected explicit changedInDataset flag to win over identical index sets")
	}
}

func TestNormalize_ConfidenceChain(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q7",
		"aiAudit": {"answerPlausibility": {
			"verification": {"confidence": "0.7"},
			"passA": {"confidence": 0.2}
		}}
	}`))
	if q.AIConfidence == nil || *q.AIConfidence != 0.7 {
		t.Errorf("expected verification confidence 0.7, got %v", q.AIConfidence)
	}
}

func TestNormalize_SeverityFallsBackToAudit(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q8",
		"aiAudit": {"maintenance": {"severity": 3, "reasons": ["veraltet", ""]}}
	}`))
	if q.AIMaintenanceSeverity == nil || *q.AIMaintenanceSeverity != 3 {
		t.Errorf("expected severity 3, got %v", q.AIMaintenanceSeverity)
	}
	if !reflect.DeepEqual(q.AIMaintenanceReasons, []string{"veraltet"}) {
		t.Errorf("expected blank reasons dropped, got %v", q.AIMaintenanceReasons)
	}
}

func TestNormalize_WrongOptionExplanations(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q9",
		"answers": [{"text": "a"}, {"text": "b"}, {"text": "c"}, {"text": "d"}],
		"aiAudit": {"explainer": {
			"correctnessExplanation": "weil  es stimmt",
			"wrongOptionExplanations": [
				{"answerIndex": 1, "whyWrong": "treated as 1-based"},
				{"answerIndex": 0, "whyWrong": "zero stays zero"},
				{"answerIndex": 9, "whyWrong": "out of range"},
				{"answerIndex": 2, "whyWrong": ""}
			]
		}}
	}`))
	if q.AICorrectnessExplanation == nil || *q.AICorrectnessExplanation != "weil es stimmt" {
		t.Errorf("unexpected correctness explanation %v", q.AICorrectnessExplanation)
	}
	want := []models.WrongOptionExplanation{
		{AnswerIndex: 0, WhyWrong: "treated as 1-based"},
		{AnswerIndex: 0, WhyWrong: "zero stays zero"},
	}
	if !reflect.DeepEqual(q.AIWrongOptionExplanations, want) {
		t.Errorf("expected %v, got %v", want, q.AIWrongOptionExplanations)
	}
}

func TestNormalize_ReconstructionKeepsRawIndices(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q10",
		"answers": [{"text": "a"}, {"text": "b"}],
		"aiAudit": {"reconstruction": {"reconstructedQuestion": {
			"questionText": " Neu  formuliert ",
			"answers": [
				{"answerIndex": 2, "text": "zweite"},
				{"answerIndex": "x", "text": "ohne index"}
			]
		}}}
	}`))
	r := q.ReconstructedQuestion
	if r == nil {
		t.Fatal("expected reconstruction")
	}
	if r.QuestionText != "Neu formuliert" {
		t.Errorf("unexpected text %q", r.QuestionText)
	}
	if r.Answers[0].AnswerIndex == nil || *r.Answers[0].AnswerIndex != 2 {
		t.Errorf("expected raw 1-based index 2 preserved, got %v", r.Answers[0].AnswerIndex)
	}
	if r.Answers[1].AnswerIndex != nil {
		t.Errorf("expected nil index for non-integer, got %v", *r.Answers[1].AnswerIndex)
	}
}

func TestNormalize_DisplayTextChains(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q11",
		"AiSolutionHint": "legacy  pascal",
		"aiAudit": {"explainer": {"solutionHint": "nested"}}
	}`))
	if q.AIReasonDetailed == nil || *q.AIReasonDetailed != "legacy pascal" {
		t.Errorf("expected legacy PascalCase field to win over nested, got %v", q.AIReasonDetailed)
	}

	q = Normalize(rawFromJSON(t, `{
		"id": "Q12",
		"aiAudit": {"explainer": {"solutionHint": "nested hint"}}
	}`))
	if q.AIReasonDetailed == nil || *q.AIReasonDetailed != "nested hint" {
		t.Errorf("expected nested fallback, got %v", q.AIReasonDetailed)
	}
}

func TestNormalize_AbstractionClusterFallback(t *testing.T) {
	q := Normalize(rawFromJSON(t, `{
		"id": "Q13",
		"aiAudit": {"clusters": {"abstractionClusterId": 7}, "questionAbstraction": {"summary": "Kernkonzept"}}
	}`))
	if q.AbstractionClusterID == nil || *q.AbstractionClusterID != 7 {
		t.Errorf("expected cluster id 7, got %v", q.AbstractionClusterID)
	}
	if q.QuestionAbstraction == nil || *q.QuestionAbstraction != "Kernkonzept" {
		t.Errorf("expected abstraction summary, got %v", q.QuestionAbstraction)
	}
}
