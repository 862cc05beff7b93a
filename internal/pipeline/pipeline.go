// Package pipeline runs the daily digest end to end: fetch passes per
// satellite, join the forecast, filter, write the CSV and calendar files,
// and render (and optionally deliver) the notification. Strictly
// sequential; any upstream failure aborts the run with no partial output.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/skywatch/satpass/internal/config"
	"github.com/skywatch/satpass/internal/domain"
	"github.com/skywatch/satpass/internal/render"
)

// PassSource fetches the raw pass-summary page for one catalog number.
type PassSource interface {
	PassSummary(ctx context.Context, satID int) (string, error)
}

// SatNamer resolves a catalog number to the object's name.
type SatNamer interface {
	SatelliteName(ctx context.Context, satID int) (string, error)
}

// Forecaster supplies the hourly forecast series, already cached per day.
type Forecaster interface {
	HourlyForecast(ctx context.Context) ([]domain.WeatherSample, error)
}

// Notifier delivers the digest text with the calendar attached.
type Notifier interface {
	SendDigest(ctx context.Context, text, filename string, attachment []byte) error
}

// Almanac is the solar oracle shared by window labeling and rendering.
type Almanac interface {
	domain.SunTimes
	render.SunAlmanac
}

// Pipeline holds the wired collaborators for one run.
type Pipeline struct {
	cfg        *config.Config
	source     PassSource
	namer      SatNamer
	forecaster Forecaster
	notifier   Notifier
	almanac    Almanac
	clock      clockwork.Clock
	out        io.Writer // digest preview destination
	logger     *slog.Logger
}

// New assembles a pipeline. notifier may be nil when delivery is disabled.
func New(cfg *config.Config, source PassSource, namer SatNamer, forecaster Forecaster, notifier Notifier, almanac Almanac, clock clockwork.Clock, out io.Writer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		source:     source,
		namer:      namer,
		forecaster: forecaster,
		notifier:   notifier,
		almanac:    almanac,
		clock:      clock,
		out:        out,
		logger:     logger,
	}
}

// Run executes the fetch → join → filter → render sequence.
func (p *Pipeline) Run(ctx context.Context) error {
	loc := p.cfg.Site.Location()

	records, err := p.fetchPasses(ctx)
	if err != nil {
		return err
	}

	p.logger.Info("retrieving weather forecast")
	samples, err := p.forecaster.HourlyForecast(ctx)
	if err != nil {
		return fmt.Errorf("weather forecast: %w", err)
	}
	records = domain.JoinWeather(records, samples)
	p.logger.Info("joined weather forecast", "hours", len(samples), "misses", joinMisses(records))

	records = domain.LabelWindows(records, p.almanac, loc)

	criteria := domain.Criteria{
		MinAltitude: p.cfg.MinAltitude,
		MinDuration: p.cfg.MinDuration,
		Window:      p.cfg.TimeWindow,
	}
	good := domain.GoodPasses(records, criteria)
	p.logger.Info("filtered passes", "total", len(records), "good", len(good))

	if err := p.writeCSV(records); err != nil {
		return err
	}

	ics, err := p.writeCalendar(good)
	if err != nil {
		return err
	}

	digest := render.Digest(records, good, render.DigestOptions{
		Mode:     p.cfg.NotifyType,
		Criteria: criteria,
		Location: loc,
		Now:      p.clock.Now(),
	})

	// The composed message is always shown, delivered or not.
	fmt.Fprintln(p.out, digest)

	if !p.cfg.SendNotice {
		p.logger.Info("delivery disabled, digest printed only")
		return nil
	}

	p.logger.Info("delivering digest")
	if err := p.notifier.SendDigest(ctx, digest, "SatPass.ics", ics); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	return nil
}

// fetchPasses walks the configured satellites in order, pausing between
// fetches to stay polite to the upstream site.
func (p *Pipeline) fetchPasses(ctx context.Context) ([]domain.PassRecord, error) {
	p.logger.Info("retrieving satellite passes", "satellites", len(p.cfg.Satellites))

	var records []domain.PassRecord
	for i, satID := range p.cfg.Satellites {
		if i > 0 {
			p.clock.Sleep(p.cfg.FetchDelay)
		}

		name, err := p.namer.SatelliteName(ctx, satID)
		if err != nil {
			return nil, fmt.Errorf("satellite %d: %w", satID, err)
		}

		page, err := p.source.PassSummary(ctx, satID)
		if err != nil {
			return nil, fmt.Errorf("satellite %d: %w", satID, err)
		}

		recs := domain.ParsePassSummary(page, name)
		p.logger.Info("parsed pass summary", "satid", satID, "name", name, "passes", len(recs))
		records = append(records, recs...)
	}
	return records, nil
}

func (p *Pipeline) writeCSV(records []domain.PassRecord) error {
	path := filepath.Join(p.cfg.OutputDir, "SatPass.csv")
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := render.WritePasses(f, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p.logger.Info("wrote pass table", "path", path, "rows", len(records))
	return nil
}

// writeCalendar renders the ICS for the good passes grouped by satellite
// and returns the bytes for the chat attachment.
func (p *Pipeline) writeCalendar(good []domain.PassRecord) ([]byte, error) {
	var ordered []domain.PassRecord
	for _, group := range domain.GroupBySatellite(good) {
		ordered = append(ordered, group.Records...)
	}

	var buf bytes.Buffer
	if err := render.WriteCalendar(&buf, p.cfg.Site, ordered, p.almanac, p.clock.Now()); err != nil {
		return nil, fmt.Errorf("render calendar: %w", err)
	}

	path := filepath.Join(p.cfg.OutputDir, "SatPass.ics")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	p.logger.Info("wrote calendar", "path", path, "events", len(ordered))
	return buf.Bytes(), nil
}

func joinMisses(records []domain.PassRecord) int {
	var n int
	for _, rec := range records {
		if rec.Weather == nil {
			n++
		}
	}
	return n
}
