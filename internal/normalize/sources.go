package normalize

import (
	"regexp"

	"github.com/mcq-trainer/backend/internal/models"
)

// evidenceChunkPattern matches retrieval chunk ids like "script.pdf#p12" or
// "script.pdf#p12c3" so they can be reformatted as page citations.
var evidenceChunkPattern = regexp.MustCompile(`(?i)^(.+?)#p(\d+)(?:c\d+)?$`)

// fileKeyAliases and pageKeyAliases are the first-present-wins key chains for
// object-shaped evidence entries across schema generations.
var fileKeyAliases = []string{"source", "pdf", "file", "filename", "document", "name"}
var pageKeyAliases = []string{"page", "pages", "seite", "pageRange"}

// ExtractSources flattens every known evidence/source location of a raw
// question into one deduplicated citation list. Order is first occurrence;
// dedup is by exact cleaned-string equality.
func ExtractSources(q *models.RawQuestion) []string {
	var ap *models.RawAnswerPlausibility
	if q.AIAudit != nil {
		ap = q.AIAudit.AnswerPlausibility
	}

	candidates := [][]any{q.AISources}
	if ap != nil {
		candidates = append(candidates, ap.Sources, ap.Evidence, ap.EvidenceUpper)
		for _, pass := range []*models.RawPlausibilityPass{ap.FinalPass, ap.PassA, ap.PassB, ap.Verification} {
			if pass == nil {
				continue
			}
			candidates = append(candidates, pass.Sources, pass.Evidence, pass.EvidenceUpper)
		}
	}

	out := make([]string, 0, 4)
	seen := make(map[string]bool)
	push := func(citation string) {
		if citation == "" || seen[citation] {
			return
		}
		seen[citation] = true
		out = append(out, citation)
	}

	for _, list := range candidates {
		for _, entry := range list {
			switch e := entry.(type) {
			case string:
				push(CleanText(e))
			case map[string]any:
				push(composeCitation(e))
			}
		}
	}

	chunkLists := [][]any{}
	if ap != nil {
		chunkLists = append(chunkLists, ap.EvidenceChunkIDs)
		for _, pass := range []*models.RawPlausibilityPass{ap.FinalPass, ap.PassA, ap.PassB, ap.Verification} {
			if pass != nil {
				chunkLists = append(chunkLists, pass.EvidenceChunkIDs)
			}
		}
	}
	for _, chunks := range chunkLists {
		for _, chunk := range chunks {
			txt := ValueText(chunk)
			if txt == "" {
				continue
			}
			if m := evidenceChunkPattern.FindStringSubmatch(txt); m != nil {
				push(m[1] + " · S. " + m[2])
			} else {
				push(txt)
			}
		}
	}

	return out
}

// composeCitation builds "<file> · S. <page>" from an object-shaped evidence
// entry, or just the file when no page is present.
func composeCitation(entry map[string]any) string {
	file := ValueText(firstPresent(entry, fileKeyAliases))
	if file == "" {
		return ""
	}
	page := ValueText(firstPresent(entry, pageKeyAliases))
	if page == "" {
		return file
	}
	return file + " · S. " + page
}

// firstPresent walks the alias chain and skips absent, nil, and empty-string
// values so a blank entry under one alias does not mask a later one.
func firstPresent(entry map[string]any, keys []string) any {
	for _, key := range keys {
		v, ok := entry[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v
	}
	return nil
}
