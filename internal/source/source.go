package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source opens the raw flight CSV.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// New picks a Source for spec: http(s) URLs are fetched, file:// URLs and
// plain paths are read from disk.
func New(spec string) Source {
	switch {
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return NewHTTPSource(spec, 5*time.Minute)
	case strings.HasPrefix(spec, "file://"):
		return &FileSource{Path: strings.TrimPrefix(spec, "file://")}
	default:
		return &FileSource{Path: spec}
	}
}

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	fh, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return fh, nil
}

func (s *FileSource) Name() string { return s.Path }

// HTTPSource downloads the CSV on every Open.
type HTTPSource struct {
	URL        string
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP source whose requests give up after timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}

func (s *HTTPSource) Name() string { return s.URL }
