// Package heavensabove fetches pass-summary pages from heavens-above.com.
// The response is raw HTML; parsing lives in the domain package so markup
// changes never touch this client.
package heavensabove

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.heavens-above.com"

// EventURL resolves a detail reference extracted from a summary row into
// the absolute URL of its pass-details page.
func EventURL(detailRef string) string {
	return defaultBaseURL + "/" + detailRef
}

// Site identifies the fixed observing location sent with every request.
type Site struct {
	Lat      float64
	Lon      float64
	HeightKm float64
	Timezone string // heavens-above timezone label, e.g. "UCT"
}

// Client retrieves pass-summary pages for one observing site.
type Client struct {
	site       Site
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a pass-summary client.
func NewClient(site Site, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		site: site,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// PassSummary fetches the raw HTML pass summary for one catalog number.
// Any non-200 status is fatal to the run, per the no-retry error model.
func (c *Client) PassSummary(ctx context.Context, satID int) (string, error) {
	params := url.Values{
		"satid": {fmt.Sprintf("%d", satID)},
		"lat":   {fmt.Sprintf("%.6f", c.site.Lat)},
		"lng":   {fmt.Sprintf("%.6f", c.site.Lon)},
		"loc":   {"Unspecified"},
		"alt":   {fmt.Sprintf("%.0f", c.site.HeightKm*1000)},
		"tz":    {c.site.Timezone},
	}

	u := c.baseURL + "/PassSummary.aspx?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pass summary request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read pass summary: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("heavens-above error: status %d: %s", resp.StatusCode, body)
	}

	c.logger.Debug("fetched pass summary", "satid", satID, "bytes", len(body))
	return string(body), nil
}
