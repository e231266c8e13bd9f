package models

// LoadDatasetRequest points the server at one dataset: one or more JSON
// payload URLs merged by question id, plus an optional image archive.
type LoadDatasetRequest struct {
	DatasetID   string   `json:"dataset_id"`
	PayloadURLs []string `json:"payload_urls"`
	ImageZipURL string   `json:"image_zip_url,omitempty"`
}

type LoadDatasetResponse struct {
	DatasetID     string `json:"dataset_id"`
	QuestionCount int    `json:"question_count"`
	ImagesLoaded  bool   `json:"images_loaded"`
	ImageError    string `json:"image_error,omitempty"`
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

// QuestionDetailResponse pairs the canonical question with its resolved
// display variant and quality signal.
type QuestionDetailResponse struct {
	Question Question        `json:"question"`
	Variant  QuestionVariant `json:"variant"`
}

type CreateSessionRequest struct {
	DatasetID string        `json:"dataset_id"`
	Config    SessionConfig `json:"config"`
}

type ClusterResponse struct {
	ClusterLabel string     `json:"cluster_label"`
	Questions    []Question `json:"questions"`
}

type ExplainRequest struct {
	Selected []int `json:"selected"`
}

type ExplainResponse struct {
	Explanation  string `json:"explanation"`
	PromptTokens int    `json:"prompt_tokens"`
	OutputTokens int    `json:"output_tokens"`
}
