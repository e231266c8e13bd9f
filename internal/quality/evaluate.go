// Package quality derives a traffic-light data-quality classification for a
// normalized question from its maintenance severity, AI confidence, and a
// handful of structural heuristics.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcq-trainer/backend/internal/models"
)

type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

// Signal is the evaluation result. Reasons is a complete audit trail: every
// heuristic contributes a line whether or not it fired.
type Signal struct {
	Level   Level    `json:"level"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons"`
}

// Thresholds is the tunable policy table behind the classification. The
// values are configuration, not constants baked into the logic.
type Thresholds struct {
	// Severity at or above HardSeverity is a hard issue; at or above
	// SoftSeverity (but below hard) it is one soft issue.
	HardSeverity float64
	SoftSeverity float64

	// Fewer answer options than MinAnswerCount is one soft issue.
	MinAnswerCount int

	// Confidence below HardLowConfidence is a hard issue; below
	// SoftLowConfidence it is one soft issue.
	HardLowConfidence float64
	SoftLowConfidence float64

	// RedSoftIssues soft issues push the classification to red even without
	// a hard issue.
	RedSoftIssues int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HardSeverity:      3,
		SoftSeverity:      2,
		MinAnswerCount:    3,
		HardLowConfidence: 0.3,
		SoftLowConfidence: 0.6,
		RedSoftIssues:     3,
	}
}

// imageLanguagePattern flags question prose that talks about an attached
// figure. The dataset is German-first with occasional English phrasing.
var imageLanguagePattern = regexp.MustCompile(`(?i)\b(abbildung|abb\.|bild(?:es|er)?|grafik|diagramm|figure|image|diagram)\b`)

// ambiguousOptionPattern catches self-referential option phrasings that make
// a question unscoreable on its own text.
var ambiguousOptionPattern = regexp.MustCompile(`(?i)(alle (?:antworten|genannten|aussagen)|keine (?:antwort|der genannten|aussage)|nicht eindeutig|all of the above|none of the above)`)

// Evaluate classifies one question. Any hard issue, or a soft-issue count at
// or above the red threshold, is red; at least one soft issue is yellow;
// otherwise green.
func Evaluate(q *models.Question, t Thresholds) Signal {
	hardIssue := false
	softIssues := 0
	var reasons []string

	// Maintenance severity.
	switch {
	case q.AIMaintenanceSeverity == nil:
		reasons = append(reasons, "no severity value present")
	case *q.AIMaintenanceSeverity >= t.HardSeverity:
		hardIssue = true
		reasons = append(reasons, fmt.Sprintf("maintenance severity %.0f at or above hard threshold %.0f", *q.AIMaintenanceSeverity, t.HardSeverity))
	case *q.AIMaintenanceSeverity >= t.SoftSeverity:
		softIssues++
		reasons = append(reasons, fmt.Sprintf("maintenance severity %.0f in review band", *q.AIMaintenanceSeverity))
	default:
		reasons = append(reasons, fmt.Sprintf("maintenance severity %.0f unremarkable", *q.AIMaintenanceSeverity))
	}

	// AI confidence.
	switch {
	case q.AIConfidence == nil:
		reasons = append(reasons, "no confidence value present")
	case *q.AIConfidence < t.HardLowConfidence:
		hardIssue = true
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below hard threshold %.2f", *q.AIConfidence, t.HardLowConfidence))
	case *q.AIConfidence < t.SoftLowConfidence:
		softIssues++
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below review threshold %.2f", *q.AIConfidence, t.SoftLowConfidence))
	default:
		reasons = append(reasons, fmt.Sprintf("confidence %.2f acceptable", *q.AIConfidence))
	}

	// Answer option count.
	if len(q.Answers) < t.MinAnswerCount {
		softIssues++
		reasons = append(reasons, fmt.Sprintf("only %d answer options (minimum %d)", len(q.Answers), t.MinAnswerCount))
	} else {
		reasons = append(reasons, fmt.Sprintf("%d answer options", len(q.Answers)))
	}

	// Image reference without an attached asset.
	if ReferencesImage(q.Text) && len(q.ImageFiles) == 0 {
		softIssues++
		reasons = append(reasons, "text references an image but no image asset is attached")
	} else {
		reasons = append(reasons, "no dangling image reference")
	}

	// Duplicate or self-referentially ambiguous options.
	if ambiguous, detail := ambiguousOptions(q.Answers); ambiguous {
		softIssues++
		reasons = append(reasons, detail)
	} else {
		reasons = append(reasons, "answer options unambiguous")
	}

	level := LevelGreen
	switch {
	case hardIssue || softIssues >= t.RedSoftIssues:
		level = LevelRed
	case softIssues > 0:
		level = LevelYellow
	}

	return Signal{Level: level, Label: labelFor(level), Reasons: reasons}
}

func labelFor(level Level) string {
	switch level {
	case LevelRed:
		return "high risk"
	case LevelYellow:
		return "needs review"
	default:
		return "ok"
	}
}

// ReferencesImage reports whether question prose talks about a figure,
// image, or diagram.
func ReferencesImage(text string) bool {
	return imageLanguagePattern.MatchString(text)
}

func ambiguousOptions(answers []models.Answer) (bool, string) {
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		key := strings.ToLower(strings.TrimSpace(a.Text))
		if key == "" {
			continue
		}
		if seen[key] {
			return true, "duplicate answer option text"
		}
		seen[key] = true
		if ambiguousOptionPattern.MatchString(a.Text) {
			return true, fmt.Sprintf("self-referential answer option %q", a.Text)
		}
	}
	return false, ""
}
