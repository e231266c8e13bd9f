package normalize

import "github.com/mcq-trainer/backend/internal/models"

// ChangedAnswerConfidenceCutoff gates the "AI changed the answers" label: the
// label is asserted only when the computed confidence is strictly above this
// value. On the dataset's 0-1 confidence scale that suppresses the label
// almost always; the cutoff is reproduced as shipped and tracked as an open
// calibration question, not corrected here.
const ChangedAnswerConfidenceCutoff = 1.0

// ChangedAnswerLabel computes the raw changed-answer flag: an explicit audit
// flag wins, otherwise any difference between the original and final correct
// sets counts as changed.
func ChangedAnswerLabel(changedInDataset *bool, original, final []int) bool {
	if changedInDataset != nil {
		return *changedInDataset
	}
	if len(original) == 0 && len(final) == 0 {
		return false
	}
	return !SameIndexSet(original, final)
}

// textChain is an ordered list of candidate accessors for one derived text
// field; the first one returning a non-empty string wins. The chains exist
// because the dataset went through several schema generations that moved the
// same text between top-level camelCase, a legacy PascalCase spelling, and
// nested audit-trail locations.
type textChain []func(*models.RawQuestion) string

var displayTextChains = map[string]textChain{
	"solutionHint": {
		func(q *models.RawQuestion) string { return q.AISolutionHint },
		func(q *models.RawQuestion) string { return q.AISolutionHintLegacy },
		func(q *models.RawQuestion) string {
			if q.AIAudit != nil && q.AIAudit.Explainer != nil {
				return q.AIAudit.Explainer.SolutionHint
			}
			return ""
		},
	},
	"topicReason": {
		func(q *models.RawQuestion) string { return q.AITopicReason },
		func(q *models.RawQuestion) string { return q.AITopicReasonLegacy },
		func(q *models.RawQuestion) string {
			if q.AIAudit != nil && q.AIAudit.QuestionAbstraction != nil {
				return q.AIAudit.QuestionAbstraction.TopicReason
			}
			return ""
		},
	},
}

// ResolveDisplayText walks the accessor chain registered for field and
// returns the first non-empty candidate, or "".
func ResolveDisplayText(q *models.RawQuestion, field string) string {
	for _, accessor := range displayTextChains[field] {
		if text := accessor(q); text != "" {
			return text
		}
	}
	return ""
}

// ConfidenceValue resolves the answer confidence through its candidate chain:
// top-level value, then the verification pass, then pass A. The first present
// raw value is coerced; a present but non-numeric value does not fall through
// to later candidates.
func ConfidenceValue(q *models.RawQuestion) (float64, bool) {
	var raws []any
	raws = append(raws, q.AIAnswerConfidence)
	if q.AIAudit != nil && q.AIAudit.AnswerPlausibility != nil {
		ap := q.AIAudit.AnswerPlausibility
		if ap.Verification != nil {
			raws = append(raws, ap.Verification.Confidence)
		}
		if ap.PassA != nil {
			raws = append(raws, ap.PassA.Confidence)
		}
	}
	return ToNumber(firstNonNil(raws))
}

// SeverityValue resolves the maintenance severity: top-level first, then the
// audit maintenance branch.
func SeverityValue(q *models.RawQuestion) (float64, bool) {
	var raws []any
	raws = append(raws, q.AIMaintenanceSeverity)
	if q.AIAudit != nil && q.AIAudit.Maintenance != nil {
		raws = append(raws, q.AIAudit.Maintenance.Severity)
	}
	return ToNumber(firstNonNil(raws))
}

func firstNonNil(values []any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
