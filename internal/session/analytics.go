package session

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mcq-trainer/backend/internal/models"
)

const unknownTopic = "Sonstige"

// Review assembles the post-session analytics: overall progress, the
// topic-performance breakdown, and the user's long-term per-exam stats.
func (s *Service) Review(ctx context.Context, userID int64, sessionID string) (*models.ReviewResponse, error) {
	sess, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	progress, err := s.Progress(userID, sessionID)
	if err != nil {
		return nil, err
	}

	set, ok := s.datasets.Get(sess.DatasetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, sess.DatasetID)
	}
	var questions []*models.Question
	for _, id := range sess.QuestionOrder {
		if q, found := set.Get(id); found {
			questions = append(questions, q)
		}
	}

	resp := &models.ReviewResponse{
		Progress: progress,
		Topics:   ComputeTopicPerformance(questions, sess.Submitted, sess.Results),
	}

	if s.records != nil {
		latest, err := s.records.LatestResults(ctx, userID, sess.DatasetID)
		if err != nil {
			return nil, fmt.Errorf("loading answer history: %w", err)
		}
		resp.ExamStats = ComputeExamStats(set.All(), latest)
	}
	return resp, nil
}

// ComputeTopicPerformance buckets questions by super topic, with nested
// subtopic buckets, and computes rounded percentages against the bucket
// size. Buckets sort by size descending, then name.
func ComputeTopicPerformance(questions []*models.Question, submitted, results map[string]bool) []models.TopicPerformance {
	type subKey struct{ super, sub string }
	superBuckets := make(map[string]*models.TopicPerformance)
	subBuckets := make(map[subKey]*models.SubtopicPerformance)

	for _, q := range questions {
		super := topicName(q.AISuperTopic)
		sub := topicName(q.AISubtopic)

		tp := superBuckets[super]
		if tp == nil {
			tp = &models.TopicPerformance{Name: super}
			superBuckets[super] = tp
		}
		sp := subBuckets[subKey{super, sub}]
		if sp == nil {
			sp = &models.SubtopicPerformance{Name: sub}
			subBuckets[subKey{super, sub}] = sp
		}

		tp.Total++
		sp.Total++
		if submitted[q.ID] {
			tp.Answered++
			sp.Answered++
			if results[q.ID] {
				tp.Correct++
				sp.Correct++
			} else {
				tp.Wrong++
				sp.Wrong++
			}
		}
	}

	for key, sp := range subBuckets {
		finalizeSubtopic(sp)
		tp := superBuckets[key.super]
		tp.Subtopics = append(tp.Subtopics, *sp)
	}

	out := make([]models.TopicPerformance, 0, len(superBuckets))
	for _, tp := range superBuckets {
		tp.Denominator = tp.Total
		tp.CorrectPct = pct(tp.Correct, tp.Denominator)
		tp.WrongPct = pct(tp.Wrong, tp.Denominator)
		tp.UnansweredPct = pct(tp.Total-tp.Answered, tp.Denominator)
		sort.Slice(tp.Subtopics, func(i, j int) bool {
			a, b := tp.Subtopics[i], tp.Subtopics[j]
			if a.Denominator != b.Denominator {
				return a.Denominator > b.Denominator
			}
			return a.Name < b.Name
		})
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Denominator != out[j].Denominator {
			return out[i].Denominator > out[j].Denominator
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ComputeExamStats groups a dataset's questions by source exam and scores
// them against the latest answered result per question. Sorted by exam name.
func ComputeExamStats(questions []*models.Question, latest map[string]bool) []models.ExamStats {
	buckets := make(map[string]*models.ExamStats)
	for _, q := range questions {
		if q.ExamName == nil {
			continue
		}
		st := buckets[*q.ExamName]
		if st == nil {
			st = &models.ExamStats{ExamName: *q.ExamName}
			buckets[*q.ExamName] = st
		}
		st.Total++
		correct, answered := latest[q.ID]
		if !answered {
			st.Unanswered++
			continue
		}
		st.Answered++
		if correct {
			st.Correct++
		} else {
			st.Wrong++
		}
	}

	out := make([]models.ExamStats, 0, len(buckets))
	for _, st := range buckets {
		st.Pct = pct(st.Correct, st.Total)
		st.Complete = st.Answered == st.Total
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExamName < out[j].ExamName })
	return out
}

func finalizeSubtopic(sp *models.SubtopicPerformance) {
	sp.Denominator = sp.Total
	sp.CorrectPct = pct(sp.Correct, sp.Denominator)
	sp.WrongPct = pct(sp.Wrong, sp.Denominator)
	sp.UnansweredPct = pct(sp.Total-sp.Answered, sp.Denominator)
}

func topicName(v *string) string {
	if v == nil || *v == "" {
		return unknownTopic
	}
	return *v
}

func pct(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
