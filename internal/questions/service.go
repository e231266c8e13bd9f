package questions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mcq-trainer/backend/internal/assets"
	"github.com/mcq-trainer/backend/internal/dataset"
	"github.com/mcq-trainer/backend/internal/explain"
	"github.com/mcq-trainer/backend/internal/models"
	"github.com/mcq-trainer/backend/internal/overrides"
	"github.com/mcq-trainer/backend/internal/quality"
	"github.com/mcq-trainer/backend/internal/variant"
)

// DefaultDatasetID is used when a request does not name a dataset.
const DefaultDatasetID = "default"

var (
	ErrDatasetNotFound  = errors.New("dataset not loaded")
	ErrQuestionNotFound = errors.New("question not found")
)

type Service struct {
	loader     *dataset.Loader
	datasets   *dataset.Store
	assets     *assets.Store
	overrides  *overrides.Store
	explainer  *explain.Explainer
	thresholds quality.Thresholds
}

func NewService(datasets *dataset.Store, assetStore *assets.Store, overrideStore *overrides.Store, explainer *explain.Explainer) *Service {
	thresholds := thresholdsFromEnv()
	log.Printf("Service: quality thresholds hardSeverity=%.0f softSeverity=%.0f minAnswers=%d hardConfidence=%.2f softConfidence=%.2f redSoftIssues=%d",
		thresholds.HardSeverity, thresholds.SoftSeverity, thresholds.MinAnswerCount,
		thresholds.HardLowConfidence, thresholds.SoftLowConfidence, thresholds.RedSoftIssues)

	return &Service{
		loader:     dataset.NewLoader(),
		datasets:   datasets,
		assets:     assetStore,
		overrides:  overrideStore,
		explainer:  explainer,
		thresholds: thresholds,
	}
}

// LoadDataset fetches all payloads and the optional image archive, assembles
// the question set, and swaps it in atomically. A payload failure aborts the
// load; an archive failure only drops the images.
func (s *Service) LoadDataset(ctx context.Context, req models.LoadDatasetRequest) (*models.LoadDatasetResponse, error) {
	if req.DatasetID == "" {
		req.DatasetID = DefaultDatasetID
	}
	if len(req.PayloadURLs) == 0 {
		return nil, errors.New("at least one payload URL is required")
	}

	payloads, err := s.loader.FetchPayloads(ctx, req.PayloadURLs)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", req.DatasetID, err)
	}

	var archive *assets.Archive
	var imageErr error
	if req.ImageZipURL != "" {
		archive, imageErr = s.loadArchive(ctx, req.ImageZipURL)
		if imageErr != nil {
			log.Printf("WARN: [dataset] image archive for %s skipped: %v", req.DatasetID, imageErr)
		}
	}

	var keys []string
	if archive != nil {
		keys = archive.Keys()
	}
	set := dataset.Assemble(payloads, keys)

	s.datasets.Replace(req.DatasetID, set)
	s.assets.Replace(req.DatasetID, archive)
	log.Printf("[dataset] %s loaded: %d questions, %d image assets", req.DatasetID, set.Len(), len(keys))

	resp := &models.LoadDatasetResponse{
		DatasetID:     req.DatasetID,
		QuestionCount: set.Len(),
		ImagesLoaded:  archive != nil,
	}
	if imageErr != nil {
		resp.ImageError = imageErr.Error()
	}
	return resp, nil
}

func (s *Service) loadArchive(ctx context.Context, url string) (*assets.Archive, error) {
	data, err := s.loader.FetchArchive(ctx, url)
	if err != nil {
		return nil, err
	}
	return assets.OpenArchive(data)
}

func (s *Service) List(datasetID string) ([]models.Question, error) {
	set, err := s.set(datasetID)
	if err != nil {
		return nil, err
	}
	all := set.All()
	out := make([]models.Question, 0, len(all))
	for _, q := range all {
		out = append(out, *q)
	}
	return out, nil
}

func (s *Service) Get(datasetID, questionID string) (*models.Question, error) {
	set, err := s.set(datasetID)
	if err != nil {
		return nil, err
	}
	q, ok := set.Get(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	return q, nil
}

// Detail resolves the displayed variant for a question outside a session,
// honoring the user's local override.
func (s *Service) Detail(ctx context.Context, userID int64, datasetID, questionID string, cfg *models.SessionConfig) (*models.QuestionDetailResponse, error) {
	q, err := s.Get(datasetID, questionID)
	if err != nil {
		return nil, err
	}
	override, err := s.override(ctx, userID, datasetID, questionID)
	if err != nil {
		return nil, err
	}
	v := variant.ResolveDisplay(q, cfg, override, false)
	return &models.QuestionDetailResponse{Question: *q, Variant: v}, nil
}

func (s *Service) Quality(datasetID, questionID string) (*quality.Signal, error) {
	q, err := s.Get(datasetID, questionID)
	if err != nil {
		return nil, err
	}
	sig := quality.Evaluate(q, s.thresholds)
	return &sig, nil
}

// Cluster lists the questions sharing q's abstraction cluster, q included.
func (s *Service) Cluster(datasetID, questionID string) (*models.ClusterResponse, error) {
	q, err := s.Get(datasetID, questionID)
	if err != nil {
		return nil, err
	}
	resp := &models.ClusterResponse{Questions: []models.Question{*q}}
	if q.ClusterLabel != nil {
		resp.ClusterLabel = *q.ClusterLabel
	}
	set, _ := s.set(datasetID)
	for _, id := range q.ClusterRelatedIDs {
		if related, ok := set.Get(id); ok {
			resp.Questions = append(resp.Questions, *related)
		}
	}
	return resp, nil
}

// ImageCluster lists the questions sharing an image asset with q.
func (s *Service) ImageCluster(datasetID, questionID string) (*models.ClusterResponse, error) {
	q, err := s.Get(datasetID, questionID)
	if err != nil {
		return nil, err
	}
	resp := &models.ClusterResponse{Questions: []models.Question{*q}}
	if q.ImageClusterLabel != nil {
		resp.ClusterLabel = *q.ImageClusterLabel
	}
	set, _ := s.set(datasetID)
	for _, id := range q.ImageClusterQuestionIDs {
		if related, ok := set.Get(id); ok {
			resp.Questions = append(resp.Questions, *related)
		}
	}
	return resp, nil
}

// Explain runs the tutor prompt for one question and selection.
func (s *Service) Explain(ctx context.Context, datasetID, questionID string, selected []int) (*models.ExplainResponse, error) {
	if s.explainer == nil {
		return nil, errors.New("explainer not configured")
	}
	q, err := s.Get(datasetID, questionID)
	if err != nil {
		return nil, err
	}
	resp, err := s.explainer.Explain(ctx, explain.PromptInput{Question: q, Selected: selected})
	if err != nil {
		return nil, err
	}
	return &models.ExplainResponse{
		Explanation:  resp.Content,
		PromptTokens: resp.PromptTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// Image resolves one image asset blob for a dataset.
func (s *Service) Image(datasetID, key string) ([]byte, string, error) {
	archive, ok := s.assets.Get(datasetID)
	if !ok {
		return nil, "", fmt.Errorf("%q: %w", key, assets.ErrNotFound)
	}
	return archive.Resolve(key)
}

func (s *Service) set(datasetID string) (*dataset.Set, error) {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	set, ok := s.datasets.Get(datasetID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
	}
	return set, nil
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

func thresholdsFromEnv() quality.Thresholds {
	t := quality.DefaultThresholds()
	t.HardSeverity = floatEnv("QUALITY_HARD_SEVERITY", t.HardSeverity)
	t.SoftSeverity = floatEnv("QUALITY_SOFT_SEVERITY", t.SoftSeverity)
	t.HardLowConfidence = floatEnv("QUALITY_HARD_CONFIDENCE", t.HardLowConfidence)
	t.SoftLowConfidence = floatEnv("QUALITY_SOFT_CONFIDENCE", t.SoftLowConfidence)
	if v := os.Getenv("QUALITY_MIN_ANSWERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			t.MinAnswerCount = n
		}
	}
	if v := os.Getenv("QUALITY_RED_SOFT_ISSUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			t.RedSoftIssues = n
		}
	}
	return t
}

func floatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
