package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 4 << 10

// HTTPConfig configures an HTTP row source.
type HTTPConfig struct {
	URL string
	// RowsPath is a dotted path to the array inside an object payload, e.g.
	// "data.items". Empty means the payload itself is the array.
	RowsPath   string
	Headers    map[string]string
	APIKey     string
	RatePerSec float64
	Burst      int
	HTTPClient *http.Client
}

// HTTPSource fetches rows from a REST endpoint returning JSON.
type HTTPSource struct {
	url      string
	rowsPath []string
	headers  map[string]string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPSource builds a source for cfg.URL.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source: url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	src := &HTTPSource{
		url:     cfg.URL,
		headers: cfg.Headers,
		apiKey:  cfg.APIKey,
		client:  httpClient,
		limiter: rate.NewLimiter(limit, burst),
	}
	if path := strings.Trim(cfg.RowsPath, "."); path != "" {
		src.rowsPath = strings.Split(path, ".")
	}
	return src, nil
}

// FetchRows implements datagrid.RowSource. Calls wait on the rate limiter
// and honour ctx cancellation.
func (s *HTTPSource) FetchRows(ctx context.Context) ([]datagrid.Row, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("source: rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("source: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("source: decode response: %w", err)
	}
	return s.extractRows(payload)
}

func (s *HTTPSource) extractRows(payload any) ([]datagrid.Row, error) {
	node := payload
	for _, segment := range s.rowsPath {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("source: rows path %q: %q is not an object", strings.Join(s.rowsPath, "."), segment)
		}
		if node, ok = obj[segment]; !ok {
			return nil, fmt.Errorf("source: rows path %q: missing %q", strings.Join(s.rowsPath, "."), segment)
		}
	}
	items, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("source: expected an array of rows, got %T", node)
	}
	rows := make([]datagrid.Row, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("source: row %d is %T, not an object", i, item)
		}
		rows[i] = datagrid.Row(obj)
	}
	return rows, nil
}
