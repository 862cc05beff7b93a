// Package render turns enriched pass records into the three user-facing
// outputs: the iCalendar file, the CSV table, and the chat digest.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/skywatch/satpass/internal/adapter/heavensabove"
	"github.com/skywatch/satpass/internal/config"
	"github.com/skywatch/satpass/internal/domain"
)

// SunAlmanac provides the solar instants printed in event descriptions.
type SunAlmanac interface {
	PreviousNoon(t time.Time) time.Time
	Night(noon time.Time) (sunset, sunrise time.Time)
	Twilight(noon time.Time) (dusk, dawn time.Time)
}

const (
	icsLineLimit = 75
	icsUTCFormat = "20060102T150405Z"
	icsLocFormat = "20060102T150405"
)

// WriteCalendar emits an iCalendar document for the given passes. Event
// times are local to the site's zone with an explicit TZID; UIDs combine
// the catalog number with the pass day-fraction rounded to one decimal.
// Output uses CRLF line endings with long lines folded at 75 characters.
func WriteCalendar(w io.Writer, site config.Site, records []domain.PassRecord, sun SunAlmanac, now time.Time) error {
	loc := site.Location()

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//satpass//SatPass//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + escapeICS("Satellite Passes"),
	}

	for _, rec := range records {
		if rec.Flagged {
			continue
		}
		lines = append(lines, eventLines(site, rec, sun, loc, now)...)
	}

	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(foldICSLine(line))
		b.WriteString("\r\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func eventLines(site config.Site, rec domain.PassRecord, sun SunAlmanac, loc *time.Location, now time.Time) []string {
	summary := rec.SatName
	if rec.Weather != nil {
		summary = domain.PictogramFor(rec.Weather.Pictocode).Emoji + " " + rec.SatName
	}

	uid := fmt.Sprintf("%d.%.1f@SatPass", rec.SatID, rec.SourceMJD)
	eventURL := heavensabove.EventURL(rec.DetailRef)

	out := []string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + now.UTC().Format(icsUTCFormat),
		fmt.Sprintf("DTSTART;TZID=%s:%s", site.Timezone, rec.Start.Time.In(loc).Format(icsLocFormat)),
		fmt.Sprintf("DTEND;TZID=%s:%s", site.Timezone, rec.End.Time.In(loc).Format(icsLocFormat)),
		"SUMMARY:" + escapeICS(summary),
		"LOCATION:" + escapeICS(site.Name),
		fmt.Sprintf("GEO:%.6f;%.6f", site.Lat, site.Lon),
		fmt.Sprintf("X-APPLE-STRUCTURED-LOCATION;VALUE=URI;X-APPLE-RADIUS=72;X-TITLE=%s:geo:%.6f,%.6f",
			site.Name, site.Lat, site.Lon),
		"URL:" + strings.ReplaceAll(eventURL, `\`, `\\`),
		"DESCRIPTION:" + escapeICS(eventDescription(rec, sun, loc, now)),
		"END:VEVENT",
	}
	return out
}

func eventDescription(rec domain.PassRecord, sun SunAlmanac, loc *time.Location, now time.Time) string {
	localClock := func(t time.Time) string { return t.In(loc).Format("15:04:05") }
	localShort := func(t time.Time) string { return t.In(loc).Format("15:04") }

	noon := sun.PreviousNoon(rec.Start.Time)
	sunset, sunrise := sun.Night(noon)
	dusk, dawn := sun.Twilight(noon)

	mag := "N/A"
	if rec.Magnitude != nil {
		mag = fmt.Sprintf("%.1f", *rec.Magnitude)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "================================\n")
	fmt.Fprintf(&b, "%s | NORAD ID %d\n", rec.SatName, rec.SatID)
	fmt.Fprintf(&b, "================================\n")
	fmt.Fprintf(&b, "Mag : %s\n", mag)
	fmt.Fprintf(&b, "Duration : %d min %d sec\n", rec.Duration/60, rec.Duration%60)
	fmt.Fprintf(&b, "Pass start : %s (el=%.0f° / %s)\n", localClock(rec.Start.Time), rec.Start.Altitude, rec.Start.Azimuth)
	fmt.Fprintf(&b, "Highest : %s (el=%.0f° / %s)\n", localClock(rec.Max.Time), rec.Max.Altitude, rec.Max.Azimuth)
	fmt.Fprintf(&b, "Pass end : %s (el=%.0f° / %s)\n", localClock(rec.End.Time), rec.End.Altitude, rec.End.Azimuth)
	fmt.Fprintf(&b, "----------------------------------------\n")
	fmt.Fprintf(&b, "Sunset : %s\n", localShort(sunset))
	fmt.Fprintf(&b, "Astronomical dusk : %s\n", localShort(dusk))
	fmt.Fprintf(&b, "Astronomical dawn : %s\n", localShort(dawn))
	fmt.Fprintf(&b, "Sunrise : %s\n", localShort(sunrise))

	if w := rec.Weather; w != nil {
		pict := domain.PictogramFor(w.Pictocode)
		fmt.Fprintf(&b, "----------------------------------------\n")
		fmt.Fprintf(&b, "%s %s\n", pict.Emoji, pict.Description)
		fmt.Fprintf(&b, "Clouds : %d%% (L:%d M:%d H:%d)\n", w.TotalCloud, w.LowCloud, w.MidCloud, w.HighCloud)
		fmt.Fprintf(&b, "Temperature : %.0f °C\n", w.Temperature)
		fmt.Fprintf(&b, "Wind : %.1f m/s\n", w.WindSpeed)
	}

	fmt.Fprintf(&b, "----------------------------------------\n")
	fmt.Fprintf(&b, "Data Provided by Heavens-Above\n")
	fmt.Fprintf(&b, "Created / updated at %s", now.UTC().Format("2006-01-02T15:04:05"))
	return b.String()
}

// escapeICS escapes TEXT values per RFC 5545: backslash, semicolon, comma,
// and newlines.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// foldICSLine folds a content line at the 75-character limit, continuing
// each fold with CRLF plus one space. Cuts back off multi-byte boundaries
// so a rune is never split.
func foldICSLine(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}
	var out []string
	for len(line) > icsLineLimit {
		cut := icsLineLimit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		out = append(out, line[:cut])
		line = " " + line[cut:]
	}
	out = append(out, line)
	return strings.Join(out, "\r\n")
}
