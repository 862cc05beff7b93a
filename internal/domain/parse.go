package domain

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// rowRe matches the result rows the page's own styling flags as
	// clickable. Rows without the class are header/ad rows and are ignored.
	rowRe = regexp.MustCompile(`(?s)<tr\s+class="clickableRow".*?</tr>`)

	// cellRe captures the inner markup of each table cell in a row.
	cellRe = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)

	tagRe = regexp.MustCompile(`(?s)<.*?>`)

	// The detail link appears either as a plain anchor or as a
	// script-driven navigation assignment, depending on page vintage.
	hrefRe     = regexp.MustCompile(`<a[^>]+href="([^"]*passdetails\.aspx[^"]*)"`)
	locationRe = regexp.MustCompile(`window\.location\s*=\s*'([^']*passdetails\.aspx[^']*)'`)
)

// mjdEpoch is the Modified Julian Day zero point, 1858-11-17T00:00:00 UTC.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// summaryColumns is the minimum cell count of a well-formed result row:
// date, magnitude, then time/elevation/azimuth for start, peak and end,
// then the visibility classification.
const summaryColumns = 12

// ParsePassSummary converts the raw HTML of one pass-summary page into
// pass records, preserving row order. The page layout is not contractually
// stable, so malformed rows are skipped rather than failing the document.
// Records come back with reconciled UTC instants and duration; rows whose
// day-fraction is missing are retained but Flagged.
func ParsePassSummary(doc, satName string) []PassRecord {
	// Entity encoding can hide both the row markers and the query strings,
	// so unescape before any pattern matching.
	doc = html.UnescapeString(doc)

	var records []PassRecord
	for _, row := range rowRe.FindAllString(doc, -1) {
		rec, ok := parseSummaryRow(row, satName)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func parseSummaryRow(row, satName string) (PassRecord, bool) {
	cells := cellRe.FindAllStringSubmatch(row, -1)
	texts := make([]string, 0, len(cells))
	for _, c := range cells {
		texts = append(texts, strings.TrimSpace(tagRe.ReplaceAllString(c[1], "")))
	}
	if len(texts) < summaryColumns {
		return PassRecord{}, false
	}

	startAlt, err1 := parseDegrees(texts[3])
	maxAlt, err2 := parseDegrees(texts[6])
	endAlt, err3 := parseDegrees(texts[9])
	if err1 != nil || err2 != nil || err3 != nil {
		return PassRecord{}, false
	}

	ref := extractDetailRef(row)
	satID, mjd := parseDetailRef(ref)

	rec := PassRecord{
		SatID:     satID,
		SatName:   satName,
		Magnitude: parseMagnitude(texts[1]),
		Start:     PassPoint{Altitude: startAlt, Azimuth: texts[4]},
		Max:       PassPoint{Altitude: maxAlt, Azimuth: texts[7]},
		End:       PassPoint{Altitude: endAlt, Azimuth: texts[10]},
		Visible:   texts[11] == "visible",
		DetailRef: ref,
		SourceMJD: mjd,
	}
	return reconcileTimes(rec, texts[2], texts[5], texts[8]), true
}

// parseMagnitude returns nil for absent or unparseable brightness cells;
// the page prints "?" for objects without a reported magnitude.
func parseMagnitude(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseDegrees strips the degree-symbol suffix from an elevation cell.
func parseDegrees(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "°", ""))
	return strconv.ParseFloat(s, 64)
}

// extractDetailRef pulls the passdetails reference out of a row, trying the
// anchor form first and the onclick form second. Returns "" when neither
// pattern matches.
func extractDetailRef(row string) string {
	if m := hrefRe.FindStringSubmatch(row); m != nil {
		return m[1]
	}
	if m := locationRe.FindStringSubmatch(row); m != nil {
		return m[1]
	}
	return ""
}

// parseDetailRef recovers the catalog number and peak day-fraction from the
// detail reference's query string. Missing values fall back to the -1/NaN
// sentinels so downstream stages can flag the record instead of joining it.
func parseDetailRef(ref string) (satID int, mjd float64) {
	satID, mjd = -1, math.NaN()
	if ref == "" {
		return satID, mjd
	}
	u, err := url.Parse(ref)
	if err != nil {
		return satID, mjd
	}
	q := u.Query()
	if v := q.Get("satid"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			satID = n
		}
	}
	if v := q.Get("mjd"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			mjd = f
		}
	}
	return satID, mjd
}

// MJDToTime converts a fractional Modified Julian Day to a UTC instant.
func MJDToTime(mjd float64) time.Time {
	return mjdEpoch.Add(time.Duration(mjd * float64(24*time.Hour)))
}

// reconcileTimes assigns absolute dates to the row's three times-of-day.
// The page gives only HH:MM:SS per phase; the peak's calendar date comes
// from the day-fraction and is authoritative. A pass can cross local
// midnight, so a start later on the clock than the peak belongs to the
// previous day, and symmetrically an end earlier than the peak belongs to
// the next day. Duration is computed after those shifts so it is always
// non-negative.
func reconcileTimes(rec PassRecord, startStr, maxStr, endStr string) PassRecord {
	if math.IsNaN(rec.SourceMJD) {
		rec.Flagged = true
		return rec
	}

	day := MJDToTime(rec.SourceMJD).Truncate(24 * time.Hour)

	startTod, errS := parseTimeOfDay(startStr)
	maxTod, errM := parseTimeOfDay(maxStr)
	endTod, errE := parseTimeOfDay(endStr)
	if errS != nil || errM != nil || errE != nil {
		rec.Flagged = true
		return rec
	}

	rec.Max.Time = day.Add(maxTod)
	rec.Start.Time = day.Add(startTod)
	rec.End.Time = day.Add(endTod)

	if rec.Start.Time.After(rec.Max.Time) {
		rec.Start.Time = rec.Start.Time.AddDate(0, 0, -1)
	}
	if rec.End.Time.Before(rec.Max.Time) {
		rec.End.Time = rec.End.Time.AddDate(0, 0, 1)
	}

	rec.Duration = int(rec.End.Time.Sub(rec.Start.Time).Seconds())
	return rec
}

// parseTimeOfDay parses "HH:MM:SS" (or "HH:MM") as an offset from midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	layout := "15:04:05"
	if len(s) == 5 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}
