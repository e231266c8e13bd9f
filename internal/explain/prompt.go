package explain

import (
	"fmt"
	"strings"

	"github.com/mcq-trainer/backend/internal/models"
)

// PromptInput carries everything the explanation prompt needs: the question
// as displayed, the canonical correct indices, and the user's selection.
type PromptInput struct {
	Question *models.Question
	Selected []int
}

func SystemPrompt() string {
	return strings.Join([]string{
		"Du bist ein erfahrener Dozent, der Multiple-Choice-Prüfungsfragen erklärt.",
		"Antworte auf Deutsch, präzise und auf Prüfungsniveau.",
		"Erfinde keine Fakten; wenn die Frage mehrdeutig ist, benenne das.",
	}, "\n")
}

// BuildExplainPrompt renders the user prompt: stem, lettered options, the
// user's selection, and the correct solution, followed by the task list.
func BuildExplainPrompt(in PromptInput) string {
	q := in.Question

	var opts []string
	for i, a := range q.Answers {
		opts = append(opts, fmt.Sprintf("%s) %s", Letter(i), a.Text))
	}

	sel := "(keine)"
	if len(in.Selected) > 0 {
		sel = letterList(in.Selected)
	}
	corr := letterList(q.CorrectIndices)

	exam := "Herkunfts-Klausur: unbekannt"
	if q.ExamName != nil && *q.ExamName != "" {
		exam = "Herkunfts-Klausur: " + *q.ExamName
	}

	return strings.Join([]string{
		"Erkläre mir diese MC-Frage auf Prüfungsniveau:",
		exam,
		"",
		"FRAGE:",
		q.Text,
		"",
		"ANTWORTOPTIONEN:",
		strings.Join(opts, "\n"),
		"",
		"MEINE AUSWAHL: " + sel,
		"RICHTIGE LÖSUNG: " + corr,
		"",
		"Bitte:",
		"1) Begründe die richtige(n) Antwort(en) knapp und klar.",
		"2) Erkläre, warum die falschen Antworten falsch sind.",
		"3) Nenne prüfungsrelevante Merksätze/typische Fallen.",
		"4) Falls passend: klinisches Mini-Beispiel.",
	}, "\n")
}

// Letter maps an option index to its display letter (0 -> A).
func Letter(i int) string {
	if i < 0 {
		return "?"
	}
	return string(rune('A' + i))
}

func letterList(indices []int) string {
	letters := make([]string, len(indices))
	for i, idx := range indices {
		letters[i] = Letter(idx)
	}
	return strings.Join(letters, ", ")
}
