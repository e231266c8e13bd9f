package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mcq-trainer/backend/internal/models"
)

// Loader fetches dataset payloads and image archives over HTTP. Any fetch
// or decode failure aborts the whole load so the caller never replaces a
// question set with partial data.
type Loader struct {
	client *http.Client
}

func NewLoader() *Loader {
	return &Loader{client: &http.Client{Timeout: 60 * time.Second}}
}

// FetchPayloads downloads and decodes every payload URL in order.
func (l *Loader) FetchPayloads(ctx context.Context, urls []string) ([]*models.RawPayload, error) {
	payloads := make([]*models.RawPayload, 0, len(urls))
	for _, url := range urls {
		p, err := l.fetchPayload(ctx, url)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func (l *Loader) fetchPayload(ctx context.Context, url string) (*models.RawPayload, error) {
	body, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	var payload models.RawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding payload from %s: %w", url, err)
	}
	return &payload, nil
}

// FetchArchive downloads an image archive as raw bytes.
func (l *Loader) FetchArchive(ctx context.Context, url string) ([]byte, error) {
	return l.fetch(ctx, url)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}
