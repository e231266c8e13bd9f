package models

// Raw payload shapes as they appear on disk. The dataset evolved through
// several schema generations, so most values are decoded as `any` and coerced
// leniently during normalization; wrong types degrade to null/empty, never to
// a decode error.

type RawPayload struct {
	Questions []RawQuestion `json:"questions"`
}

type RawQuestion struct {
	ID              any         `json:"id"`
	ExamName        string      `json:"examName"`
	ExamYear        any         `json:"examYear"`
	QuestionText    string      `json:"questionText"`
	ExplanationText string      `json:"explanationText"`
	Answers         []RawAnswer `json:"answers"`

	CorrectIndices         []any `json:"correctIndices"`
	OriginalCorrectIndices []any `json:"originalCorrectIndices"`
	FinalCorrectIndices    []any `json:"finalCorrectIndices"`

	AISuperTopic          string `json:"aiSuperTopic"`
	AISubtopic            string `json:"aiSubtopic"`
	AIAnswerConfidence    any    `json:"aiAnswerConfidence"`
	AIMaintenanceSeverity any    `json:"aiMaintenanceSeverity"`
	AIMaintenanceReasons  []any  `json:"aiMaintenanceReasons"`
	AISources             []any  `json:"aiSources"`

	// Detailed-reason text, current and legacy PascalCase generations.
	AISolutionHint       string `json:"aiSolutionHint"`
	AISolutionHintLegacy string `json:"AiSolutionHint"`
	AITopicReason        string `json:"aiTopicReason"`
	AITopicReasonLegacy  string `json:"AiTopicReason"`

	AbstractionClusterID any    `json:"abstractionClusterId"`
	QuestionAbstraction  string `json:"questionAbstraction"`

	ImageFiles []string `json:"imageFiles"`

	AIAudit *RawAudit `json:"aiAudit"`
}

type RawAnswer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type RawAudit struct {
	AnswerPlausibility  *RawAnswerPlausibility  `json:"answerPlausibility"`
	Maintenance         *RawMaintenance         `json:"maintenance"`
	Explainer           *RawExplainer           `json:"explainer"`
	Reconstruction      *RawReconstruction      `json:"reconstruction"`
	Clusters            *RawClusters            `json:"clusters"`
	QuestionAbstraction *RawQuestionAbstraction `json:"questionAbstraction"`
}

type RawAnswerPlausibility struct {
	OriginalCorrectIndices []any `json:"originalCorrectIndices"`
	FinalCorrectIndices    []any `json:"finalCorrectIndices"`
	ChangedInDataset       *bool `json:"changedInDataset"`

	Sources          []any `json:"sources"`
	Evidence         []any `json:"evidence"`
	EvidenceUpper    []any `json:"Evidence"`
	EvidenceChunkIDs []any `json:"evidenceChunkIds"`

	FinalPass    *RawPlausibilityPass `json:"finalPass"`
	PassA        *RawPlausibilityPass `json:"passA"`
	PassB        *RawPlausibilityPass `json:"passB"`
	Verification *RawPlausibilityPass `json:"verification"`
}

type RawPlausibilityPass struct {
	Confidence       any   `json:"confidence"`
	Sources          []any `json:"sources"`
	Evidence         []any `json:"evidence"`
	EvidenceUpper    []any `json:"Evidence"`
	EvidenceChunkIDs []any `json:"evidenceChunkIds"`
}

type RawMaintenance struct {
	Severity any   `json:"severity"`
	Reasons  []any `json:"reasons"`
}

type RawExplainer struct {
	SolutionHint            string                      `json:"solutionHint"`
	CorrectnessExplanation  string                      `json:"correctnessExplanation"`
	WrongOptionExplanations []RawWrongOptionExplanation `json:"wrongOptionExplanations"`
}

type RawWrongOptionExplanation struct {
	AnswerIndex any    `json:"answerIndex"`
	WhyWrong    string `json:"whyWrong"`
}

type RawReconstruction struct {
	ReconstructedQuestion *RawReconstructedQuestion `json:"reconstructedQuestion"`
}

type RawReconstructedQuestion struct {
	QuestionText string                   `json:"questionText"`
	Answers      []RawReconstructedAnswer `json:"answers"`
}

type RawReconstructedAnswer struct {
	AnswerIndex any    `json:"answerIndex"`
	Text        string `json:"text"`
}

type RawClusters struct {
	AbstractionClusterID any `json:"abstractionClusterId"`
}

type RawQuestionAbstraction struct {
	Summary     string `json:"summary"`
	Text        string `json:"text"`
	TopicReason string `json:"topicReason"`
}
