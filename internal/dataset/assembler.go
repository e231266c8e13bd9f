// Package dataset merges raw question payloads into an immutable in-memory
// question set and enriches it with cross-question cluster annotations.
package dataset

import (
	"sync"

	"github.com/mcq-trainer/backend/internal/models"
	"github.com/mcq-trainer/backend/internal/normalize"
)

// Set is one fully assembled, enriched question set. It is built once and
// never mutated afterwards; readers share it freely.
type Set struct {
	byID  map[string]*models.Question
	order []string
}

func (s *Set) Get(id string) (*models.Question, bool) {
	q, ok := s.byID[id]
	return q, ok
}

func (s *Set) Len() int {
	return len(s.order)
}

// All returns the questions in first-insertion order.
func (s *Set) All() []*models.Question {
	out := make([]*models.Question, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Assemble normalizes every raw question across payloads and merges them by
// id. A later payload's question fully overwrites an earlier one with the
// same id but keeps its original position. Records that fail normalization
// are dropped. After the merge both enrichment passes run; assetKeys may be
// nil when no image archive is loaded.
func Assemble(payloads []*models.RawPayload, assetKeys []string) *Set {
	set := &Set{byID: make(map[string]*models.Question)}
	for _, p := range payloads {
		if p == nil {
			continue
		}
		for i := range p.Questions {
			q := normalize.Normalize(&p.Questions[i])
			if q == nil {
				continue
			}
			if _, seen := set.byID[q.ID]; !seen {
				set.order = append(set.order, q.ID)
			}
			set.byID[q.ID] = q
		}
	}
	annotateAbstractionClusters(set)
	annotateImageClusters(set, assetKeys)
	return set
}

// Store holds the current set per dataset id. Replace swaps in a finished
// set atomically; readers never observe a half-assembled state.
type Store struct {
	mu   sync.RWMutex
	sets map[string]*Set
}

func NewStore() *Store {
	return &Store{sets: make(map[string]*Set)}
}

func (s *Store) Replace(datasetID string, set *Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[datasetID] = set
}

func (s *Store) Get(datasetID string) (*Set, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[datasetID]
	return set, ok
}

func (s *Store) DatasetIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sets))
	for id := range s.sets {
		ids = append(ids, id)
	}
	return ids
}
