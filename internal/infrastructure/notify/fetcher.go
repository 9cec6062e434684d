package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
)

// maxMediaSize caps downloaded attachments. WhatsApp media stays well
// under this.
const maxMediaSize = 32 * 1024 * 1024

// MediaFetcher downloads attachments from the gateway's media URLs
type MediaFetcher struct {
	httpClient *http.Client
}

// NewMediaFetcher creates a MediaFetcher
func NewMediaFetcher(timeout time.Duration) *MediaFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaFetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the attachment at the given URL
func (f *MediaFetcher) Fetch(ctx context.Context, url string) (*appingestion.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create media request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	if len(data) > maxMediaSize {
		return nil, fmt.Errorf("media exceeds the %d byte limit", maxMediaSize)
	}

	mime := resp.Header.Get("Content-Type")
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}

	return &appingestion.Media{Data: data, MIME: mime, URL: url}, nil
}
