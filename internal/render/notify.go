package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/skywatch/satpass/internal/domain"
)

// DigestOptions control the chat digest layout.
type DigestOptions struct {
	Mode     string // "bysat" or "bydate"
	Criteria domain.Criteria
	Location *time.Location
	Now      time.Time
}

// Digest renders the notification text. all is the complete enriched
// table (used for per-satellite headcounts), good the filtered selection.
// The table section is fixed-width and meant for a code block.
func Digest(all, good []domain.PassRecord, opt DigestOptions) string {
	var lines []string
	lines = append(lines,
		"*🛰️ Upcoming bright satellite passes*",
		"Predicted passes of notable artificial objects over the next 10 days.",
		fmt.Sprintf("(Filter : alt >= %g deg & duration > %d sec & time window = %s)",
			opt.Criteria.MinAltitude, opt.Criteria.MinDuration, windowLabel(opt.Criteria.Window)),
		"",
	)

	if opt.Mode == "bysat" {
		lines = append(lines, bySatSections(all, opt)...)
	} else {
		lines = append(lines, byDateSections(good, opt)...)
	}

	lines = append(lines,
		"📅 The attached calendar file can be imported into Apple Calendar or Google Calendar.",
		"",
		"Data provided by Heavens-Above / Meteoblue",
		"This message was sent automatically by the satellite pass digest.",
		fmt.Sprintf("Created at %s (UTC)", opt.Now.UTC().Format("2006-01-02 15:04:05")),
	)
	return strings.Join(lines, "\n")
}

func bySatSections(all []domain.PassRecord, opt DigestOptions) []string {
	var lines []string
	for _, group := range domain.GroupBySatellite(all) {
		first := group.Records[0]
		lines = append(lines, fmt.Sprintf("*%s (NORAD ID %d)* has %d predicted passes in the next 10 days.",
			group.Key, first.SatID, len(group.Records)))

		good := domain.GoodPasses(group.Records, opt.Criteria)
		if len(good) == 0 {
			lines = append(lines, "No passes with good observing conditions.", "")
			continue
		}
		lines = append(lines, fmt.Sprintf("Good observing conditions for %d of them:", len(good)), "")

		table := []string{
			pad("", 18) + pad("Start", 19) + pad("Highest", 19) + pad("End", 19) + " " + pad("Clouds", 12) + "Wind",
			pad("Date", 18) + passHeader() + " " + pad("L | M | H", 12) + "Speed",
		}
		for _, rec := range good {
			start := rec.Start.Time.In(opt.Location)
			lead := pad(start.Format("2006-01-02 Mon"), 18)
			table = append(table, lead+passColumns(rec, opt.Location)+weatherColumns(rec))
		}
		lines = append(lines, "```"+strings.Join(table, "\n")+"```", "")
	}
	return lines
}

func byDateSections(good []domain.PassRecord, opt DigestOptions) []string {
	groups := domain.GroupByDate(good)
	if len(groups) == 0 {
		return []string{"No passes with easy observing conditions in the next 10 days.", ""}
	}

	var lines []string
	for _, group := range groups {
		first := group.Records[0]
		weekday := first.Start.Time.In(opt.Location).Format("Mon")
		lines = append(lines, fmt.Sprintf("*%s (%s)*", group.Key, weekday))

		if sum := domain.SummarizeWeather(group.Records); sum != nil {
			pict := domain.PictogramFor(sum.Pictocode)
			lines = append(lines, fmt.Sprintf("%s %s | %.0f°C | Wind %.1fmps | Clouds max:%d%% avg:%.0f%% min:%d%%",
				pict.Emoji, pict.Description, sum.TempMean, sum.WindMean, sum.CloudMax, sum.CloudMean, sum.CloudMin))
		}
		lines = append(lines, fmt.Sprintf("%d good passes predicted.", len(group.Records)), "")

		table := []string{
			pad(group.Key, 21) + pad("Start", 19) + pad("Highest", 19) + pad("End", 19) + " " + pad("Clouds", 12) + "Wind",
			pad("Satellite", 21) + passHeader() + " " + pad("L | M | H", 12) + "Speed",
		}
		for _, rec := range group.Records {
			table = append(table, pad(rec.SatName, 21)+passColumns(rec, opt.Location)+weatherColumns(rec))
		}
		lines = append(lines, "```"+strings.Join(table, "\n")+"```", "")
	}
	return lines
}

func passHeader() string {
	return pad("LST      (ALT AZ)", 19) + pad("LST      (ALT AZ)", 19) + pad("LST      (ALT AZ)", 19)
}

func passColumns(rec domain.PassRecord, loc *time.Location) string {
	phase := func(p domain.PassPoint) string {
		return pad(fmt.Sprintf("%s (%.0f° %s)", p.Time.In(loc).Format("15:04:05"), p.Altitude, p.Azimuth), 19)
	}
	return phase(rec.Start) + phase(rec.Max) + phase(rec.End)
}

func weatherColumns(rec domain.PassRecord) string {
	w := rec.Weather
	if w == nil {
		return " " + pad("N/A", 12) + "N/A"
	}
	clouds := fmt.Sprintf("%s|%s|%s", rpad(w.LowCloud), rpad(w.MidCloud), rpad(w.HighCloud))
	return " " + pad(clouds, 12) + fmt.Sprintf("%.1f mps", w.WindSpeed)
}

func windowLabel(window string) string {
	if window == "morning" || window == "evening" {
		return window
	}
	return "all"
}

// pad left-justifies to width in display characters, not bytes; azimuth
// labels and the degree sign are multi-byte.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func rpad(v int) string {
	return fmt.Sprintf("%3d", v)
}
