package models

// Answer is one option of a multiple-choice question. Its position in the
// Answers slice is the canonical ("original") index space; all correct-index
// sets refer to these positions.
type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// WrongOptionExplanation explains why a specific option is wrong. AnswerIndex
// is 0-based and validated against the question's answer count during
// normalization.
type WrongOptionExplanation struct {
	AnswerIndex int    `json:"answer_index"`
	WhyWrong    string `json:"why_wrong"`
}

// ReconstructedAnswer is one option of an AI-reconstructed question.
// AnswerIndex is kept exactly as supplied by the dataset (1-based by
// convention); it is nil when the supplied value was not an integer. The
// variant resolver interprets it at render time.
type ReconstructedAnswer struct {
	AnswerIndex *int   `json:"answer_index"`
	Text        string `json:"text"`
}

// ReconstructedQuestion is an alternate AI-authored rendering of a question.
// It changes wording and option order for display only; correctness is always
// evaluated against the canonical answer positions.
type ReconstructedQuestion struct {
	QuestionText string                `json:"question_text"`
	Answers      []ReconstructedAnswer `json:"answers"`
}

// Question is the canonical normalized representation of one dataset record.
// It is built once per load cycle and mutated only by the assembler's
// enrichment passes.
type Question struct {
	ID       string  `json:"id"`
	ExamName *string `json:"exam_name"`
	ExamYear *int    `json:"exam_year"`

	Text        string   `json:"text"`
	Explanation *string  `json:"explanation"`
	Answers     []Answer `json:"answers"`

	// 0-based, sorted ascending, bounded by len(Answers).
	CorrectIndices         []int `json:"correct_indices"`
	OriginalCorrectIndices []int `json:"original_correct_indices"`

	AIChangedAnswers      bool     `json:"ai_changed_answers"`
	AIConfidence          *float64 `json:"ai_confidence"`
	AIMaintenanceSeverity *float64 `json:"ai_maintenance_severity"`
	AIMaintenanceReasons  []string `json:"ai_maintenance_reasons"`

	AISuperTopic  *string `json:"ai_super_topic"`
	AISubtopic    *string `json:"ai_subtopic"`
	AITopicReason *string `json:"ai_topic_reason"`

	AIReasonDetailed          *string                  `json:"ai_reason_detailed"`
	AICorrectnessExplanation  *string                  `json:"ai_correctness_explanation"`
	AIWrongOptionExplanations []WrongOptionExplanation `json:"ai_wrong_option_explanations"`
	AISources                 []string                 `json:"ai_sources"`

	ReconstructedQuestion *ReconstructedQuestion `json:"reconstructed_question"`

	QuestionAbstraction *string  `json:"question_abstraction"`
	ImageFiles          []string `json:"image_files"`

	AbstractionClusterID *float64 `json:"abstraction_cluster_id"`

	// Enrichment: abstraction clustering (recomputed on every load).
	ClusterID              *string  `json:"cluster_id"`
	ClusterLabel           *string  `json:"cluster_label"`
	ClusterSize            int      `json:"cluster_size"`
	ClusterRelatedIDs      []string `json:"cluster_related_ids"`
	IsHighRelevanceCluster bool     `json:"is_high_relevance_cluster"`

	// Enrichment: image clustering (questions sharing image assets).
	ImageClusterQuestionIDs []string `json:"image_cluster_question_ids"`
	ImageClusterSize        int      `json:"image_cluster_size"`
	ImageClusterLabel       *string  `json:"image_cluster_label"`
}

// AnswerCount returns the number of canonical answer options.
func (q *Question) AnswerCount() int {
	return len(q.Answers)
}

// HasReconstruction reports whether an AI reconstruction is present, meaning
// it has non-blank text or at least one answer.
func (q *Question) HasReconstruction() bool {
	r := q.ReconstructedQuestion
	if r == nil {
		return false
	}
	return r.QuestionText != "" || len(r.Answers) > 0
}

// QuestionVariant is the ephemeral display resolution of a question: which
// text and answer list the UI should show. It is computed per render call and
// never persisted. For reconstructed variants the answers carry text only;
// correctness must always be taken from an evaluation resolution.
type QuestionVariant struct {
	Text                 string   `json:"text"`
	Answers              []Answer `json:"answers"`
	ImageFiles           []string `json:"image_files"`
	ImageReferenceText   *string  `json:"image_reference_text"`
	UsedAIReconstruction bool     `json:"used_ai_reconstruction"`
	HasLocalOverride     bool     `json:"has_local_override"`
}

// EvaluationView is the effective question used for scoring: canonical fields
// with a local override applied wholesale when present. The caller keeps the
// canonical Question alongside for revert and display-toggle purposes.
type EvaluationView struct {
	Text                   string   `json:"text"`
	Answers                []Answer `json:"answers"`
	CorrectIndices         []int    `json:"correct_indices"`
	OriginalCorrectIndices []int    `json:"original_correct_indices"`
	ImageFiles             []string `json:"image_files"`
	HasLocalOverride       bool     `json:"has_local_override"`
}

// LocalOverride is a user-authored edit to a question, persisted externally
// and keyed by dataset id + question id. Empty fields fall back to the
// canonical question's corresponding field.
type LocalOverride struct {
	Text           string   `json:"text,omitempty"`
	Answers        []Answer `json:"answers,omitempty"`
	CorrectIndices []int    `json:"correct_indices,omitempty"`
	ImageFiles     []string `json:"image_files,omitempty"`
}

// IsEmpty reports whether the override carries no data at all.
func (o *LocalOverride) IsEmpty() bool {
	return o == nil || (o.Text == "" && len(o.Answers) == 0 && len(o.CorrectIndices) == 0 && len(o.ImageFiles) == 0)
}
