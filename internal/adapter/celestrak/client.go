// Package celestrak resolves satellite names from the latest published GP
// element sets. Pass summaries never carry the object's name, so the TLE
// title line is the naming oracle.
package celestrak

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://celestrak.org"

// Client fetches TLEs by catalog number.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a TLE client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// SatelliteName returns the trimmed title line of the latest TLE for the
// given catalog number.
func (c *Client) SatelliteName(ctx context.Context, satID int) (string, error) {
	u := fmt.Sprintf("%s/NORAD/elements/gp.php?CATNR=%d&FORMAT=TLE", c.baseURL, satID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tle: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("celestrak error: status %d: %s", resp.StatusCode, body)
	}

	lines := strings.SplitN(string(body), "\n", 2)
	name := strings.TrimSpace(lines[0])
	if name == "" || strings.HasPrefix(name, "No GP data") {
		return "", fmt.Errorf("no TLE found for catalog number %d", satID)
	}

	c.logger.Debug("resolved satellite name", "satid", satID, "name", name)
	return name, nil
}
