// Package session runs practice and exam sessions over an assembled
// question set: question selection and ordering, answer submission and
// scoring, and the post-session analytics review.
package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcq-trainer/backend/internal/dataset"
	"github.com/mcq-trainer/backend/internal/models"
	"github.com/mcq-trainer/backend/internal/normalize"
	"github.com/mcq-trainer/backend/internal/variant"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not in session")
	ErrDatasetNotFound  = errors.New("dataset not loaded")
)

// OverrideSource supplies a user's local question overrides. A nil return
// with nil error means no override exists.
type OverrideSource interface {
	Get(ctx context.Context, userID int64, datasetID, questionID string) (*models.LocalOverride, error)
}

// HistoryStore persists per-question results and serves the latest answered
// result per question for the long-term exam stats.
type HistoryStore interface {
	RecordResult(ctx context.Context, userID int64, datasetID, questionID string, correct bool) error
	LatestResults(ctx context.Context, userID int64, datasetID string) (map[string]bool, error)
}

type Service struct {
	datasets  *dataset.Store
	overrides OverrideSource
	records   HistoryStore

	mu       sync.RWMutex
	sessions map[string]*models.Session
	owners   map[string]int64
}

func NewService(datasets *dataset.Store, overrides OverrideSource, records HistoryStore) *Service {
	return &Service{
		datasets:  datasets,
		overrides: overrides,
		records:   records,
		sessions:  make(map[string]*models.Session),
		owners:    make(map[string]int64),
	}
}

// Create builds a new session: filters the dataset by the config's exam and
// topic selections, shuffles deterministically from the seed, and caps the
// question count.
func (s *Service) Create(ctx context.Context, userID int64, req models.CreateSessionRequest) (*models.Session, error) {
	set, ok := s.datasets.Get(req.DatasetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, req.DatasetID)
	}

	cfg := req.Config
	if cfg.Mode == "" {
		cfg.Mode = models.ModePractice
	}
	if cfg.Seed == "" {
		cfg.Seed = uuid.NewString()
	}

	questions := filterQuestions(set.All(), &cfg)
	if len(questions) == 0 {
		return nil, errors.New("no questions match the session configuration")
	}

	rng := rand.New(rand.NewSource(seedFrom(cfg.Seed)))
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if cfg.QuestionCount > 0 && cfg.QuestionCount < len(questions) {
		questions = questions[:cfg.QuestionCount]
	}

	sess := &models.Session{
		ID:            uuid.NewString(),
		DatasetID:     req.DatasetID,
		Config:        cfg,
		AnswerOrder:   make(map[string][]int),
		Answers:       make(map[string][]int),
		Submitted:     make(map[string]bool),
		Results:       make(map[string]bool),
		ForceOriginal: make(map[string]bool),
		StartedAt:     time.Now().UTC(),
	}
	for _, q := range questions {
		sess.QuestionOrder = append(sess.QuestionOrder, q.ID)
		if cfg.ShuffleAnswers {
			override, err := s.override(ctx, userID, req.DatasetID, q.ID)
			if err != nil {
				return nil, err
			}
			v := variant.ResolveDisplay(q, &cfg, override, false)
			sess.AnswerOrder[q.ID] = rng.Perm(len(v.Answers))
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.owners[sess.ID] = userID
	cp := snapshotSession(sess)
	s.mu.Unlock()
	return cp, nil
}

// Get returns a snapshot of the session. Callers may read and encode it
// freely; mutation goes through the service methods.
func (s *Service) Get(userID int64, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || s.owners[sessionID] != userID {
		return nil, ErrSessionNotFound
	}
	return snapshotSession(sess), nil
}

// get returns the live stored session for internal mutation under s.mu.
func (s *Service) get(userID int64, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || s.owners[sessionID] != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func snapshotSession(sess *models.Session) *models.Session {
	cp := *sess
	cp.QuestionOrder = append([]string(nil), sess.QuestionOrder...)
	cp.AnswerOrder = copyIntSliceMap(sess.AnswerOrder)
	cp.Answers = copyIntSliceMap(sess.Answers)
	cp.Submitted = copyBoolMap(sess.Submitted)
	cp.Results = copyBoolMap(sess.Results)
	cp.ForceOriginal = copyBoolMap(sess.ForceOriginal)
	return &cp
}

// Display resolves the variant shown for one session question, honoring the
// per-question force-original toggle.
func (s *Service) Display(ctx context.Context, userID int64, sessionID, questionID string) (*models.Question, models.QuestionVariant, error) {
	sess, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, models.QuestionVariant{}, err
	}
	q, err := s.sessionQuestion(sess, questionID)
	if err != nil {
		return nil, models.QuestionVariant{}, err
	}
	override, err := s.override(ctx, userID, sess.DatasetID, questionID)
	if err != nil {
		return nil, models.QuestionVariant{}, err
	}
	v := variant.ResolveDisplay(q, &sess.Config, override, sess.ForceOriginal[questionID])
	return q, v, nil
}

// Submit scores a selection against the effective correct indices and
// records the result. Selections are in canonical index space; out-of-range
// picks are dropped and single-select picks truncate to their first entry.
func (s *Service) Submit(ctx context.Context, userID int64, sessionID, questionID string, selected []int) (*models.SubmitSelectionResponse, error) {
	sess, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	q, err := s.sessionQuestion(sess, questionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	forced := sess.ForceOriginal[questionID]
	cfg := sess.Config
	s.mu.RUnlock()

	// Force-original scores against the canonical question; the override is
	// bypassed along with the reconstruction.
	var override *models.LocalOverride
	if !forced {
		override, err = s.override(ctx, userID, sess.DatasetID, questionID)
		if err != nil {
			return nil, err
		}
	}

	ev := variant.ResolveForEvaluation(q, override)
	correctIndices, usedOriginal := variant.ScoringIndices(q, ev, &cfg)

	normalized := normalizeSelection(selected, len(ev.Answers), len(correctIndices))
	correct := normalize.SameIndexSet(normalized, correctIndices)

	s.mu.Lock()
	sess.Answers[questionID] = normalized
	sess.Submitted[questionID] = true
	sess.Results[questionID] = correct
	s.mu.Unlock()

	if s.records != nil {
		if err := s.records.RecordResult(ctx, userID, sess.DatasetID, questionID, correct); err != nil {
			return nil, fmt.Errorf("recording result: %w", err)
		}
	}

	return &models.SubmitSelectionResponse{
		Correct:              correct,
		CorrectIndices:       correctIndices,
		MultiSelect:          len(correctIndices) > 1,
		UsedOriginalSolution: usedOriginal,
		Explanation:          q.Explanation,
	}, nil
}

// normalizeSelection bounds-filters the picked indices against the effective
// answer count and truncates single-select picks to the first entry before
// canonical ordering.
func normalizeSelection(selected []int, answerCount, correctCount int) []int {
	filtered := make([]int, 0, len(selected))
	for _, idx := range selected {
		if idx >= 0 && idx < answerCount {
			filtered = append(filtered, idx)
		}
	}
	if correctCount <= 1 && len(filtered) > 1 {
		filtered = filtered[:1]
	}
	return normalize.NormalizeIntIndices(filtered, 0)
}

// SetForceOriginal toggles the per-question original-rendition flag.
func (s *Service) SetForceOriginal(userID int64, sessionID, questionID string, force bool) error {
	sess, err := s.get(userID, sessionID)
	if err != nil {
		return err
	}
	if _, err := s.sessionQuestion(sess, questionID); err != nil {
		return err
	}
	s.mu.Lock()
	sess.ForceOriginal[questionID] = force
	s.mu.Unlock()
	return nil
}

// Finish stamps the session as completed.
func (s *Service) Finish(userID int64, sessionID string) (*models.Session, error) {
	sess, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if sess.FinishedAt == nil {
		now := time.Now().UTC()
		sess.FinishedAt = &now
	}
	cp := snapshotSession(sess)
	s.mu.Unlock()
	return cp, nil
}

func (s *Service) Progress(userID int64, sessionID string) (models.Progress, error) {
	sess, err := s.get(userID, sessionID)
	if err != nil {
		return models.Progress{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := models.Progress{Total: len(sess.QuestionOrder)}
	for _, id := range sess.QuestionOrder {
		if !sess.Submitted[id] {
			continue
		}
		p.Submitted++
		if sess.Results[id] {
			p.Correct++
		} else {
			p.Wrong++
		}
	}
	return p, nil
}

func (s *Service) sessionQuestion(sess *models.Session, questionID string) (*models.Question, error) {
	in := false
	for _, id := range sess.QuestionOrder {
		if id == questionID {
			in = true
			break
		}
	}
	if !in {
		return nil, ErrQuestionNotFound
	}
	set, ok := s.datasets.Get(sess.DatasetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, sess.DatasetID)
	}
	q, ok := set.Get(questionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

func (s *Service) override(ctx context.Context, userID int64, datasetID, questionID string) (*models.LocalOverride, error) {
	if s.overrides == nil {
		return nil, nil
	}
	o, err := s.overrides.Get(ctx, userID, datasetID, questionID)
	if err != nil {
		return nil, fmt.Errorf("loading override: %w", err)
	}
	return o, nil
}

func filterQuestions(all []*models.Question, cfg *models.SessionConfig) []*models.Question {
	exams := toSet(cfg.Exams)
	supers := toSet(cfg.SuperTopics)
	subs := toSet(cfg.Subtopics)

	var out []*models.Question
	for _, q := range all {
		if len(exams) > 0 && !matchPtr(exams, q.ExamName) {
			continue
		}
		if len(supers) > 0 && !matchPtr(supers, q.AISuperTopic) {
			continue
		}
		if len(subs) > 0 && !matchPtr(subs, q.AISubtopic) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func matchPtr(set map[string]bool, v *string) bool {
	return v != nil && set[*v]
}

func copyIntSliceMap(m map[string][]int) map[string][]int {
	out := make(map[string][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// seedFrom hashes an arbitrary seed string into a deterministic PRNG seed.
func seedFrom(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}
