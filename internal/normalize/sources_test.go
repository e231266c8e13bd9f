package normalize

import (
	"reflect"
	"testing"

	"github.com/mcq-trainer/backend/internal/models"
)

func TestExtractSources_StringsAndObjects(t *testing.T) {
	q := &models.RawQuestion{
		AISources: []any{"Skript Kapitel 3", ""},
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				Evidence: []any{
					map[string]any{"pdf": "anatomie.pdf", "page": float64(12)},
					map[string]any{"source": "histo.pdf"},
				},
			},
		},
	}

	got := ExtractSources(q)
	want := []string{"Skript Kapitel 3", "anatomie.pdf · S. 12", "histo.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractSources_KeyAliases(t *testing.T) {
	q := &models.RawQuestion{
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				FinalPass: &models.RawPlausibilityPass{
					Evidence: []any{
						map[string]any{"filename": "kurs.pdf", "seite": "33"},
						map[string]any{"document": "altklausur.pdf", "pageRange": "10-12"},
					},
				},
			},
		},
	}

	got := ExtractSources(q)
	want := []string{"kurs.pdf · S. 33", "altklausur.pdf · S. 10-12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractSources_EmptyAliasDoesNotMaskLaterKey(t *testing.T) {
	q := &models.RawQuestion{
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				Evidence: []any{
					map[string]any{"source": "", "pdf": "histo.pdf", "page": float64(3)},
				},
			},
		},
	}

	got := ExtractSources(q)
	want := []string{"histo.pdf · S. 3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractSources_DeduplicatesByCleanedString(t *testing.T) {
	q := &models.RawQuestion{
		AISources: []any{" anatomie.pdf  · S. 12 "},
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				Verification: &models.RawPlausibilityPass{
					Evidence: []any{map[string]any{"pdf": "anatomie.pdf", "page": float64(12)}},
				},
			},
		},
	}

	got := ExtractSources(q)
	if len(got) != 1 {
		t.Fatalf("expected exactly one deduplicated citation, got %v", got)
	}
	if got[0] != "anatomie.pdf · S. 12" {
		t.Errorf("unexpected citation %q", got[0])
	}
}

func TestExtractSources_EvidenceChunkIDs(t *testing.T) {
	q := &models.RawQuestion{
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				EvidenceChunkIDs: []any{
					"physio.pdf#p42",
					"bio.pdf#P7c3",
					"freitext ohne muster",
				},
			},
		},
	}

	got := ExtractSources(q)
	want := []string{"physio.pdf · S. 42", "bio.pdf · S. 7", "freitext ohne muster"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractSources_UppercaseEvidenceKey(t *testing.T) {
	q := &models.RawQuestion{
		AIAudit: &models.RawAudit{
			AnswerPlausibility: &models.RawAnswerPlausibility{
				EvidenceUpper: []any{"Lehrbuch S. 5"},
			},
		},
	}

	got := ExtractSources(q)
	if len(got) != 1 || got[0] != "Lehrbuch S. 5" {
		t.Errorf("expected legacy Evidence key to contribute, got %v", got)
	}
}

func TestExtractSources_NoAudit(t *testing.T) {
	if got := ExtractSources(&models.RawQuestion{}); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
