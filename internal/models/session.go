package models

import "time"

type SessionMode string

const (
	ModeExam     SessionMode = "exam"
	ModePractice SessionMode = "practice"
)

// SessionConfig is the user's practice/exam configuration. AI mode (showing
// AI-reconstructed question variants) is on by default; two flag names are
// accepted because older stored configs used use_ai_modified_answers.
type SessionConfig struct {
	Mode                 SessionMode `json:"mode"`
	AIModeEnabled        *bool       `json:"ai_mode_enabled,omitempty"`
	UseAIModifiedAnswers *bool       `json:"use_ai_modified_answers,omitempty"`
	Exams                []string    `json:"exams,omitempty"`
	SuperTopics          []string    `json:"super_topics,omitempty"`
	Subtopics            []string    `json:"subtopics,omitempty"`
	QuestionCount        int         `json:"question_count,omitempty"`
	ShuffleAnswers       bool        `json:"shuffle_answers,omitempty"`
	Seed                 string      `json:"seed,omitempty"`
}

// AIMode resolves the effective AI-mode flag with a default-true fallback
// across both flag generations.
func (c *SessionConfig) AIMode() bool {
	if c == nil {
		return true
	}
	flag := c.AIModeEnabled
	if flag == nil {
		flag = c.UseAIModifiedAnswers
	}
	return flag == nil || *flag
}

// Session is one configured practice/exam run over a fixed question subset.
// User selections are stored as original (canonical) answer indices.
type Session struct {
	ID            string              `json:"id"`
	DatasetID     string              `json:"dataset_id"`
	Config        SessionConfig       `json:"config"`
	QuestionOrder []string            `json:"question_order"`
	AnswerOrder   map[string][]int    `json:"answer_order"`
	Answers       map[string][]int    `json:"answers"`
	Submitted     map[string]bool     `json:"submitted"`
	Results       map[string]bool     `json:"results"`
	ForceOriginal map[string]bool     `json:"force_original"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at"`
}

// Progress summarizes how far a session has come.
type Progress struct {
	Total     int `json:"total"`
	Submitted int `json:"submitted"`
	Correct   int `json:"correct"`
	Wrong     int `json:"wrong"`
}

// SubmitSelectionRequest carries the user's picked answer indices in the
// displayed variant's index space.
type SubmitSelectionRequest struct {
	Selected []int `json:"selected"`
}

type SubmitSelectionResponse struct {
	Correct              bool    `json:"correct"`
	CorrectIndices       []int   `json:"correct_indices"`
	MultiSelect          bool    `json:"multi_select"`
	UsedOriginalSolution bool    `json:"used_original_solution"`
	Explanation          *string `json:"explanation,omitempty"`
}

// ── Review analytics ─────────────────────────────────────

// TopicPerformance is one super-topic bucket of the post-session review.
type TopicPerformance struct {
	Name          string                `json:"name"`
	Total         int                   `json:"total"`
	Answered      int                   `json:"answered"`
	Correct       int                   `json:"correct"`
	Wrong         int                   `json:"wrong"`
	Denominator   int                   `json:"denominator"`
	CorrectPct    int                   `json:"correct_pct"`
	WrongPct      int                   `json:"wrong_pct"`
	UnansweredPct int                   `json:"unanswered_pct"`
	Subtopics     []SubtopicPerformance `json:"subtopics"`
}

type SubtopicPerformance struct {
	Name          string `json:"name"`
	Total         int    `json:"total"`
	Answered      int    `json:"answered"`
	Correct       int    `json:"correct"`
	Wrong         int    `json:"wrong"`
	Denominator   int    `json:"denominator"`
	CorrectPct    int    `json:"correct_pct"`
	WrongPct      int    `json:"wrong_pct"`
	UnansweredPct int    `json:"unanswered_pct"`
}

// ExamStats aggregates a user's latest answered results per source exam.
type ExamStats struct {
	ExamName   string `json:"exam_name"`
	Total      int    `json:"total"`
	Answered   int    `json:"answered"`
	Correct    int    `json:"correct"`
	Wrong      int    `json:"wrong"`
	Unanswered int    `json:"unanswered"`
	Pct        int    `json:"pct"`
	Complete   bool   `json:"complete"`
}

type ReviewResponse struct {
	Progress  Progress           `json:"progress"`
	Topics    []TopicPerformance `json:"topics"`
	ExamStats []ExamStats        `json:"exam_stats"`
}
