package socrata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
)

// UserAgent identifies the pipeline to the Socrata API.
const UserAgent = "nyc-elevator-elt/1.0 (+https://github.com/timothyakintayo/nyc-elevator-elt)"

// StatusError is returned when Socrata answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("socrata API error: status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// Client downloads query results from the Socrata Open Data API.
type Client struct {
	token      string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Socrata client authenticating with an app token.
// A zero timeout means no client-side limit; cancellation still follows ctx.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchCSV downloads queryURL and streams the body verbatim to dest.
// dest is only replaced once the whole body has been received.
func (c *Client) FetchCSV(ctx context.Context, queryURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-App-Token", c.token)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("socrata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("download body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return n, fmt.Errorf("move download into place: %w", err)
	}

	c.metrics.BytesFetched.Add(float64(n))
	c.logger.Info("socrata download complete",
		"path", dest,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}
