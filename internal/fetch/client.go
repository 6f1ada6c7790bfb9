package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const userAgent = "Stockpile/0.1.0"

// StatusError reports a response with a non-success status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Client performs single-shot HTTP downloads. Each transfer gets its own
// deadline; there are no retries at this layer or any other.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient builds a download client with the given per-transfer timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Download issues one GET and streams the body to destPath. A partially
// written file is left in place on failure; the archive gate keeps it out
// of any archive and operators use it to diagnose the failure.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return err
	}
	return file.Close()
}
