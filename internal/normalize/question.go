package normalize

import (
	"strconv"
	"strings"

	"github.com/mcq-trainer/backend/internal/models"
)

// Normalize maps one raw dataset record onto the canonical Question shape.
// Records without a usable id return nil and are dropped silently; the
// assembler simply omits them.
func Normalize(raw *models.RawQuestion) *models.Question {
	if raw == nil {
		return nil
	}
	id := strings.TrimSpace(idString(raw.ID))
	if id == "" {
		return nil
	}

	answerCount := len(raw.Answers)

	originalCorrectIndices := NormalizeIndices(
		firstIndexList(raw.OriginalCorrectIndices, auditOriginalIndices(raw)),
		answerCount,
	)
	finalCorrectIndices := NormalizeIndices(
		firstIndexList(raw.FinalCorrectIndices, auditFinalIndices(raw), raw.CorrectIndices),
		answerCount,
	)

	changedRaw := ChangedAnswerLabel(auditChangedInDataset(raw), originalCorrectIndices, finalCorrectIndices)
	confidence, hasConfidence := ConfidenceValue(raw)
	aiChangedAnswers := changedRaw && hasConfidence && confidence > ChangedAnswerConfidenceCutoff

	q := &models.Question{
		ID:                     id,
		ExamName:               nonEmpty(raw.ExamName),
		ExamYear:               examYear(raw.ExamYear),
		Text:                   CleanText(raw.QuestionText),
		Explanation:            CleanTextPtr(raw.ExplanationText),
		Answers:                normalizeAnswers(raw.Answers),
		CorrectIndices:         finalCorrectIndices,
		OriginalCorrectIndices: originalCorrectIndices,
		AIChangedAnswers:       aiChangedAnswers,
		AIMaintenanceReasons:   maintenanceReasons(raw),
		AISuperTopic:           CleanTextPtr(raw.AISuperTopic),
		AISubtopic:             CleanTextPtr(raw.AISubtopic),
		AITopicReason:          CleanTextPtr(ResolveDisplayText(raw, "topicReason")),
		AIReasonDetailed:       CleanTextPtr(ResolveDisplayText(raw, "solutionHint")),
		AISources:              ExtractSources(raw),
		QuestionAbstraction:    questionAbstraction(raw),
		ImageFiles:             append([]string(nil), raw.ImageFiles...),
	}

	if hasConfidence {
		q.AIConfidence = &confidence
	}
	if severity, ok := SeverityValue(raw); ok {
		q.AIMaintenanceSeverity = &severity
	}
	if clusterID, ok := abstractionClusterID(raw); ok {
		q.AbstractionClusterID = &clusterID
	}

	if explainer := auditExplainer(raw); explainer != nil {
		q.AICorrectnessExplanation = CleanTextPtr(explainer.CorrectnessExplanation)
		q.AIWrongOptionExplanations = normalizeWrongOptionExplanations(explainer.WrongOptionExplanations, answerCount)
	}
	if q.AIWrongOptionExplanations == nil {
		q.AIWrongOptionExplanations = []models.WrongOptionExplanation{}
	}

	q.ReconstructedQuestion = normalizeReconstruction(raw)

	return q
}

// idString renders the raw id, which historically appears as a string or a
// bare number.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func examYear(v any) *int {
	if year, ok := ToInt(v); ok {
		return &year
	}
	return nil
}

func normalizeAnswers(raws []models.RawAnswer) []models.Answer {
	answers := make([]models.Answer, len(raws))
	for i, a := range raws {
		answers[i] = models.Answer{Text: CleanText(a.Text), IsCorrect: a.IsCorrect}
	}
	return answers
}

// firstIndexList returns the first candidate list that is present at all; an
// empty-but-present list does not fall through to later candidates.
func firstIndexList(candidates ...[]any) []any {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func maintenanceReasons(raw *models.RawQuestion) []string {
	source := raw.AIMaintenanceReasons
	if source == nil && raw.AIAudit != nil && raw.AIAudit.Maintenance != nil {
		source = raw.AIAudit.Maintenance.Reasons
	}
	reasons := make([]string, 0, len(source))
	for _, r := range source {
		if txt := ValueText(r); txt != "" {
			reasons = append(reasons, txt)
		}
	}
	return reasons
}

// normalizeWrongOptionExplanations accepts indices in either convention:
// a value in [1, answerCount] is treated as 1-based and shifted, a value in
// [0, answerCount) passes as 0-based. Entries failing both bound checks or
// missing their explanation text are dropped individually.
func normalizeWrongOptionExplanations(raws []models.RawWrongOptionExplanation, answerCount int) []models.WrongOptionExplanation {
	out := make([]models.WrongOptionExplanation, 0, len(raws))
	for _, entry := range raws {
		whyWrong := CleanText(entry.WhyWrong)
		if whyWrong == "" {
			continue
		}
		rawIndex, ok := ToInt(entry.AnswerIndex)
		if !ok {
			continue
		}

		var index int
		switch {
		case rawIndex >= 1 && rawIndex <= answerCount:
			index = rawIndex - 1
		case rawIndex >= 0 && rawIndex < answerCount:
			index = rawIndex
		default:
			continue
		}
		out = append(out, models.WrongOptionExplanation{AnswerIndex: index, WhyWrong: whyWrong})
	}
	return out
}

// normalizeReconstruction copies the AI reconstruction through with its raw
// 1-based answer indices intact; interpreting them is the variant resolver's
// job, not the normalizer's.
func normalizeReconstruction(raw *models.RawQuestion) *models.ReconstructedQuestion {
	if raw.AIAudit == nil || raw.AIAudit.Reconstruction == nil {
		return nil
	}
	rq := raw.AIAudit.Reconstruction.ReconstructedQuestion
	if rq == nil {
		return nil
	}

	answers := make([]models.ReconstructedAnswer, 0, len(rq.Answers))
	for _, a := range rq.Answers {
		entry := models.ReconstructedAnswer{Text: CleanText(a.Text)}
		if idx, ok := ToInt(a.AnswerIndex); ok {
			entry.AnswerIndex = &idx
		}
		answers = append(answers, entry)
	}

	return &models.ReconstructedQuestion{
		QuestionText: CleanText(rq.QuestionText),
		Answers:      answers,
	}
}

func questionAbstraction(raw *models.RawQuestion) *string {
	if raw.QuestionAbstraction != "" {
		return CleanTextPtr(raw.QuestionAbstraction)
	}
	if raw.AIAudit != nil && raw.AIAudit.QuestionAbstraction != nil {
		qa := raw.AIAudit.QuestionAbstraction
		if qa.Summary != "" {
			return CleanTextPtr(qa.Summary)
		}
		return CleanTextPtr(qa.Text)
	}
	return nil
}

func abstractionClusterID(raw *models.RawQuestion) (float64, bool) {
	var raws []any
	raws = append(raws, raw.AbstractionClusterID)
	if raw.AIAudit != nil && raw.AIAudit.Clusters != nil {
		raws = append(raws, raw.AIAudit.Clusters.AbstractionClusterID)
	}
	return ToNumber(firstNonNil(raws))
}

func auditChangedInDataset(raw *models.RawQuestion) *bool {
	if raw.AIAudit != nil && raw.AIAudit.AnswerPlausibility != nil {
		return raw.AIAudit.AnswerPlausibility.ChangedInDataset
	}
	return nil
}

func auditOriginalIndices(raw *models.RawQuestion) []any {
	if raw.AIAudit != nil && raw.AIAudit.AnswerPlausibility != nil {
		return raw.AIAudit.AnswerPlausibility.OriginalCorrectIndices
	}
	return nil
}

func auditFinalIndices(raw *models.RawQuestion) []any {
	if raw.AIAudit != nil && raw.AIAudit.AnswerPlausibility != nil {
		return raw.AIAudit.AnswerPlausibility.FinalCorrectIndices
	}
	return nil
}

func auditExplainer(raw *models.RawQuestion) *models.RawExplainer {
	if raw.AIAudit != nil {
		return raw.AIAudit.Explainer
	}
	return nil
}
