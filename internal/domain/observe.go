package domain

import (
	"sort"
	"time"
)

// Criteria are the observability thresholds applied wherever good passes
// are selected. MinAltitude is inclusive, MinDuration exclusive, matching
// the page's conventions. Window restricts to "morning" or "evening";
// anything else means all.
type Criteria struct {
	MinAltitude float64 // degrees
	MinDuration int     // seconds
	Window      string
}

// SunTimes resolves the sunset/sunrise pair for the night following a local
// solar noon. Implemented by the almanac package; kept as an interface so
// the labeling stays a pure computation over an oracle.
type SunTimes interface {
	PreviousNoon(t time.Time) time.Time
	Night(noon time.Time) (sunset, sunrise time.Time)
}

// GoodPasses applies the observability predicate: peak elevation at or
// above the threshold, duration strictly above the threshold, visible to
// the naked eye, and inside the requested time window when one is set.
// Flagged records never qualify.
func GoodPasses(records []PassRecord, c Criteria) []PassRecord {
	windowed := c.Window == "morning" || c.Window == "evening"
	var out []PassRecord
	for _, rec := range records {
		if rec.Flagged || !rec.Visible {
			continue
		}
		if rec.Max.Altitude < c.MinAltitude || rec.Duration <= c.MinDuration {
			continue
		}
		if windowed && rec.TimeWindow != c.Window {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// LabelWindows stamps each record's observing window and local calendar
// date, once, so filters never recompute them. A pass is "evening" when
// its start is closer to that night's sunset than to the next sunrise,
// "morning" otherwise. Flagged records are left unlabeled.
func LabelWindows(records []PassRecord, sun SunTimes, loc *time.Location) []PassRecord {
	out := make([]PassRecord, len(records))
	for i, rec := range records {
		if !rec.Flagged {
			noon := sun.PreviousNoon(rec.Start.Time)
			sunset, sunrise := sun.Night(noon)
			if absDuration(rec.Start.Time.Sub(sunset)) < absDuration(rec.Start.Time.Sub(sunrise)) {
				rec.TimeWindow = "evening"
			} else {
				rec.TimeWindow = "morning"
			}
			rec.Date = rec.Max.Time.In(loc).Format("2006-01-02")
		}
		out[i] = rec
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// PassGroup is one presentation group of a digest: records sharing a
// satellite or a local date.
type PassGroup struct {
	Key     string
	Records []PassRecord
}

// GroupBySatellite groups records by satellite name, preserving first-seen
// order within and across groups.
func GroupBySatellite(records []PassRecord) []PassGroup {
	index := make(map[string]int)
	var groups []PassGroup
	for _, rec := range records {
		i, ok := index[rec.SatName]
		if !ok {
			i = len(groups)
			index[rec.SatName] = i
			groups = append(groups, PassGroup{Key: rec.SatName})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// GroupByDate groups records by local calendar date of the peak, dates
// ascending, records within a date sorted ascending by start time.
func GroupByDate(records []PassRecord) []PassGroup {
	sorted := make([]PassRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Time.Before(sorted[j].Start.Time)
	})

	index := make(map[string]int)
	var groups []PassGroup
	for _, rec := range sorted {
		i, ok := index[rec.Date]
		if !ok {
			i = len(groups)
			index[rec.Date] = i
			groups = append(groups, PassGroup{Key: rec.Date})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
