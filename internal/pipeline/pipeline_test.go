package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/satpass/internal/config"
	"github.com/skywatch/satpass/internal/domain"
)

// summaryPage is one well-formed result row peaking the evening of
// 2026-03-01 (MJD 61100).
const summaryPage = `<html><body><table>
<tr><th>Date</th><th>Brightness</th></tr>
<tr class="clickableRow" onclick="window.location = 'passdetails.aspx?satid=25544&amp;mjd=61100.82444'">
<td>01 Mar</td><td>-3.2</td>
<td>19:47:12</td><td>10&#176;</td><td>WSW</td>
<td>19:50:12</td><td>62&#176;</td><td>S</td>
<td>19:53:12</td><td>10&#176;</td><td>ESE</td>
<td>visible</td>
</tr>
</table></body></html>`

type stubSource struct {
	page string
	err  error
}

func (s stubSource) PassSummary(ctx context.Context, satID int) (string, error) {
	return s.page, s.err
}

type stubNamer struct{ err error }

func (s stubNamer) SatelliteName(ctx context.Context, satID int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("SAT-%d", satID), nil
}

type stubForecaster struct {
	samples []domain.WeatherSample
	err     error
}

func (s stubForecaster) HourlyForecast(ctx context.Context) ([]domain.WeatherSample, error) {
	return s.samples, s.err
}

type recordingNotifier struct {
	text       string
	filename   string
	attachment []byte
	calls      int
	err        error
}

func (n *recordingNotifier) SendDigest(ctx context.Context, text, filename string, attachment []byte) error {
	n.calls++
	n.text = text
	n.filename = filename
	n.attachment = attachment
	return n.err
}

// fixedSun keeps the almanac deterministic: sunset 18:00, sunrise 06:00,
// dusk 19:00, dawn 05:00 around a 12:00 UTC noon.
type fixedSun struct{}

func (fixedSun) PreviousNoon(t time.Time) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	if t.UTC().Hour() < 12 {
		day = day.AddDate(0, 0, -1)
	}
	return day.Add(12 * time.Hour)
}

func (fixedSun) Night(noon time.Time) (time.Time, time.Time) {
	return noon.Add(6 * time.Hour), noon.Add(18 * time.Hour)
}

func (fixedSun) Twilight(noon time.Time) (time.Time, time.Time) {
	return noon.Add(7 * time.Hour), noon.Add(17 * time.Hour)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Site: config.Site{
			Name:     "Backyard Observatory",
			Lat:      35.658581,
			Lon:      139.745438,
			HeightKm: 0.04,
			Timezone: "UTC",
		},
		Satellites:  []int{25544},
		MinAltitude: 30,
		MinDuration: 60,
		TimeWindow:  "all",
		NotifyType:  "bydate",
		FetchDelay:  250 * time.Millisecond,
		OutputDir:   t.TempDir(),
	}
}

func forecastAt(hour int) []domain.WeatherSample {
	return []domain.WeatherSample{{
		Time:        time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC),
		TotalCloud:  15,
		LowCloud:    5,
		MidCloud:    5,
		HighCloud:   10,
		Temperature: 7.2,
		WindSpeed:   2.4,
		Pictocode:   2,
	}}
}

func newTestPipeline(cfg *config.Config, notifier Notifier, out io.Writer) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))
	return New(cfg,
		stubSource{page: summaryPage},
		stubNamer{},
		stubForecaster{samples: forecastAt(19)},
		notifier,
		fixedSun{},
		clock,
		out,
		logger,
	)
}

func TestRun(t *testing.T) {
	t.Run("writes both files and prints the digest", func(t *testing.T) {
		cfg := testConfig(t)
		var out bytes.Buffer
		p := newTestPipeline(cfg, nil, &out)

		require.NoError(t, p.Run(context.Background()))

		csvBytes, err := os.ReadFile(filepath.Join(cfg.OutputDir, "SatPass.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(csvBytes), "SAT-25544")
		assert.Contains(t, string(csvBytes), "2026-03-01T19:47:12")

		icsBytes, err := os.ReadFile(filepath.Join(cfg.OutputDir, "SatPass.ics"))
		require.NoError(t, err)
		assert.Contains(t, string(icsBytes), "BEGIN:VEVENT")
		assert.Contains(t, string(icsBytes), "UID:25544.61100.8@SatPass")

		digest := out.String()
		assert.Contains(t, digest, "Upcoming bright satellite passes")
		assert.Contains(t, digest, "*2026-03-01 (Sun)*")
		assert.Contains(t, digest, "SAT-25544")
	})

	t.Run("weather joins through to the digest", func(t *testing.T) {
		cfg := testConfig(t)
		var out bytes.Buffer
		p := newTestPipeline(cfg, nil, &out)

		require.NoError(t, p.Run(context.Background()))
		assert.Contains(t, out.String(), "☀️ Clear, few cirrus")
	})

	t.Run("delivery disabled never calls the notifier", func(t *testing.T) {
		cfg := testConfig(t)
		notifier := &recordingNotifier{}
		p := newTestPipeline(cfg, notifier, io.Discard)

		require.NoError(t, p.Run(context.Background()))
		assert.Zero(t, notifier.calls)
	})

	t.Run("delivery sends the digest with the calendar attached", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SendNotice = true
		notifier := &recordingNotifier{}
		var out bytes.Buffer
		p := newTestPipeline(cfg, notifier, &out)

		require.NoError(t, p.Run(context.Background()))
		assert.Equal(t, 1, notifier.calls)
		assert.Equal(t, "SatPass.ics", notifier.filename)
		assert.Contains(t, notifier.text, "Upcoming bright satellite passes")
		assert.Contains(t, string(notifier.attachment), "BEGIN:VCALENDAR")
		assert.Equal(t, notifier.text+"\n", out.String(), "preview matches the delivered text")
	})

	t.Run("name lookup failure aborts the run", func(t *testing.T) {
		cfg := testConfig(t)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))
		p := New(cfg, stubSource{page: summaryPage}, stubNamer{err: errors.New("no TLE")},
			stubForecaster{}, nil, fixedSun{}, clock, io.Discard, logger)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "satellite 25544")

		_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "SatPass.csv"))
		assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
	})

	t.Run("forecast failure aborts the run", func(t *testing.T) {
		cfg := testConfig(t)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))
		p := New(cfg, stubSource{page: summaryPage}, stubNamer{},
			stubForecaster{err: errors.New("quota exceeded")}, nil, fixedSun{}, clock, io.Discard, logger)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather forecast")
	})

	t.Run("delivery failure surfaces", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SendNotice = true
		notifier := &recordingNotifier{err: errors.New("invalid_auth")}
		p := newTestPipeline(cfg, notifier, io.Discard)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deliver digest")
	})
}
