// Package meteoblue fetches the hourly trend forecast for the observing
// site and caches one snapshot per UTC day on disk.
package meteoblue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/skywatch/satpass/internal/domain"
)

const defaultBaseURL = "https://my.meteoblue.com"

// timeLayouts covers the timestamp spellings the packages API has been
// seen to emit.
var timeLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339}

// Client fetches the trendpro-1h package for a fixed location.
type Client struct {
	apiKey     string
	lat        float64
	lon        float64
	aslMeters  int
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a forecast client. aslMeters is the site elevation
// above sea level.
func NewClient(apiKey string, lat, lon float64, aslMeters int, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		lat:       lat,
		lon:       lon,
		aslMeters: aslMeters,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// HourlyForecast fetches the multi-day hourly forecast and zips the
// response's parallel arrays into samples, in series order.
func (c *Client) HourlyForecast(ctx context.Context) ([]domain.WeatherSample, error) {
	params := url.Values{
		"lat":    {fmt.Sprintf("%.6f", c.lat)},
		"lon":    {fmt.Sprintf("%.6f", c.lon)},
		"asl":    {fmt.Sprintf("%d", c.aslMeters)},
		"apikey": {c.apiKey},
		"format": {"json"},
		"tz":     {"UTC"},
	}

	u := c.baseURL + "/packages/trendpro-1h?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("meteoblue error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	samples, err := payload.Trend1H.samples()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched forecast", "hours", len(samples))
	return samples, nil
}

// Meteoblue package API response: a flat mapping from field name to a
// parallel array of hourly values.

type response struct {
	Trend1H trend `json:"trend_1h"`
}

type trend struct {
	Time            []string  `json:"time"`
	TotalCloudCover []int     `json:"totalcloudcover"`
	LowClouds       []int     `json:"lowclouds"`
	MidClouds       []int     `json:"midclouds"`
	HighClouds      []int     `json:"highclouds"`
	Temperature     []float64 `json:"temperature"`
	WindSpeed       []float64 `json:"windspeed"`
	Pictocode       []int     `json:"pictocode"`
}

func (t trend) samples() ([]domain.WeatherSample, error) {
	out := make([]domain.WeatherSample, 0, len(t.Time))
	for i, ts := range t.Time {
		at, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("forecast timestamp %q: %w", ts, err)
		}
		s := domain.WeatherSample{Time: at}
		if i < len(t.TotalCloudCover) {
			s.TotalCloud = t.TotalCloudCover[i]
		}
		if i < len(t.LowClouds) {
			s.LowCloud = t.LowClouds[i]
		}
		if i < len(t.MidClouds) {
			s.MidCloud = t.MidClouds[i]
		}
		if i < len(t.HighClouds) {
			s.HighCloud = t.HighClouds[i]
		}
		if i < len(t.Temperature) {
			s.Temperature = t.Temperature[i]
		}
		if i < len(t.WindSpeed) {
			s.WindSpeed = t.WindSpeed[i]
		}
		if i < len(t.Pictocode) {
			s.Pictocode = t.Pictocode[i]
		}
		out = append(out, s)
	}
	return out, nil
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
