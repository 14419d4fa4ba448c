// Package reload asks a running lobby server to re-read its masterdata.
package reload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gdxsv_chatops/internal/retry"

	"github.com/rs/zerolog/log"
)

// DefaultURL is the private reload endpoint of a lobby server on the same host.
const DefaultURL = "http://localhost:9880/ops/reload"

type Client struct {
	url    string
	client *http.Client
	retry  retry.Config
}

func NewClient(url string, retryConfig retry.Config) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: retryConfig,
	}
}

// Trigger calls the reload endpoint and returns the response body.
// Client errors (4xx) are not retried.
func (c *Client) Trigger(ctx context.Context) (string, error) {
	log.Debug().Str("url", c.url).Msg("Triggering masterdata reload")

	body, err := retry.WithRetry(ctx, c.retry, c.trigger)
	if err != nil {
		return "", fmt.Errorf("failed to trigger reload: %w", err)
	}

	log.Info().Str("response", body).Msg("Masterdata reload triggered")
	return body, nil
}

func (c *Client) trigger(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", retry.Permanent(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode < 500 {
			return "", retry.Permanent(err)
		}
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
