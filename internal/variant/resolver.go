// Package variant resolves which rendition of a question is shown to the
// user and which rendition answers are scored against. The two are decoupled
// on purpose: an AI reconstruction changes only the display, while a local
// override changes both.
package variant

import (
	"sort"
	"strings"

	"github.com/mcq-trainer/backend/internal/models"
	"github.com/mcq-trainer/backend/internal/quality"
)

// ResolveDisplay picks the displayed rendition of q.
//
// Precedence: forceOriginal beats everything, then a non-empty local
// override, then the AI reconstruction when the session runs in AI mode,
// then the canonical question.
func ResolveDisplay(q *models.Question, cfg *models.SessionConfig, override *models.LocalOverride, forceOriginal bool) models.QuestionVariant {
	if forceOriginal {
		return canonicalVariant(q)
	}
	if override != nil && !override.IsEmpty() {
		return overrideVariant(q, override)
	}
	if cfg.AIMode() && q.HasReconstruction() {
		return reconstructionVariant(q)
	}
	return canonicalVariant(q)
}

// ResolveForEvaluation returns the rendition answers are scored against.
// Only a local override may replace the canonical answer set; the AI
// reconstruction never does.
func ResolveForEvaluation(q *models.Question, override *models.LocalOverride) models.EvaluationView {
	ev := models.EvaluationView{
		Text:                   q.Text,
		Answers:                q.Answers,
		CorrectIndices:         q.CorrectIndices,
		OriginalCorrectIndices: q.OriginalCorrectIndices,
		ImageFiles:             q.ImageFiles,
	}
	if override == nil || override.IsEmpty() {
		return ev
	}
	ev.HasLocalOverride = true
	if strings.TrimSpace(override.Text) != "" {
		ev.Text = override.Text
	}
	if len(override.Answers) > 0 {
		ev.Answers = override.Answers
	}
	if len(override.CorrectIndices) > 0 {
		ev.CorrectIndices = override.CorrectIndices
	}
	if len(override.ImageFiles) > 0 {
		ev.ImageFiles = override.ImageFiles
	}
	return ev
}

// ScoringIndices returns the index set a selection is scored against and
// whether that set is the pre-change original solution. An override's
// solution always wins; otherwise, when AI mode is off and the dataset
// changed the answers, the original solution applies.
func ScoringIndices(q *models.Question, ev models.EvaluationView, cfg *models.SessionConfig) ([]int, bool) {
	if !ev.HasLocalOverride && !cfg.AIMode() && q.AIChangedAnswers && len(ev.OriginalCorrectIndices) > 0 {
		return ev.OriginalCorrectIndices, true
	}
	return ev.CorrectIndices, false
}

func canonicalVariant(q *models.Question) models.QuestionVariant {
	return models.QuestionVariant{
		Text:       q.Text,
		Answers:    q.Answers,
		ImageFiles: q.ImageFiles,
	}
}

func overrideVariant(q *models.Question, o *models.LocalOverride) models.QuestionVariant {
	v := canonicalVariant(q)
	v.HasLocalOverride = true
	if strings.TrimSpace(o.Text) != "" {
		v.Text = o.Text
	}
	if len(o.Answers) > 0 {
		v.Answers = o.Answers
	}
	if len(o.ImageFiles) > 0 {
		v.ImageFiles = o.ImageFiles
	}
	return v
}

func reconstructionVariant(q *models.Question) models.QuestionVariant {
	rq := q.ReconstructedQuestion
	v := models.QuestionVariant{
		Text:                 q.Text,
		UsedAIReconstruction: true,
	}
	if rq.QuestionText != "" {
		v.Text = rq.QuestionText
	}
	v.Answers = OrderReconstructedAnswers(rq.Answers)
	if len(v.Answers) == 0 {
		v.Answers = q.Answers
	}
	// The reconstruction describes any figure in prose, so the asset is not
	// shown; keep the original phrasing about it for context.
	if ref := ExtractImageReference(q.Text); ref != "" {
		v.ImageReferenceText = &ref
	}
	return v
}

// OrderReconstructedAnswers sorts reconstructed answers by their declared
// 1-based index; answers without one keep their list position. Blank texts
// are dropped.
func OrderReconstructedAnswers(answers []models.ReconstructedAnswer) []models.Answer {
	type slot struct {
		order int
		text  string
	}
	slots := make([]slot, 0, len(answers))
	for i, a := range answers {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		order := i + 1
		if a.AnswerIndex != nil {
			order = *a.AnswerIndex
		}
		slots = append(slots, slot{order: order, text: text})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].order < slots[j].order })
	out := make([]models.Answer, len(slots))
	for i, s := range slots {
		out[i] = models.Answer{Text: s.text}
	}
	return out
}

// ExtractImageReference pulls the sentences of text that talk about a
// figure or image. Returns "" when none do.
func ExtractImageReference(text string) string {
	var matched []string
	for _, s := range splitSentences(text) {
		if quality.ReferencesImage(s) {
			matched = append(matched, s)
		}
	}
	return strings.Join(matched, " ")
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
