package domain

import "time"

// JoinWeather merges an hourly forecast onto pass records. Each record
// matches the sample whose timestamp equals the pass start truncated to the
// top of its clock hour; exact equality, never nearest-neighbor and never
// interpolated. Records with no matching hour keep a nil Weather. Pure
// in-memory mapping, no I/O.
func JoinWeather(records []PassRecord, samples []WeatherSample) []PassRecord {
	byHour := make(map[time.Time]WeatherSample, len(samples))
	for _, s := range samples {
		byHour[s.Time.UTC()] = s
	}

	out := make([]PassRecord, len(records))
	for i, rec := range records {
		if !rec.Flagged {
			if s, ok := byHour[rec.Start.Time.UTC().Truncate(time.Hour)]; ok {
				s := s
				rec.Weather = &s
			}
		}
		out[i] = rec
	}
	return out
}

// SummarizeWeather aggregates forecast samples across a presentation group.
// Only records carrying a sample contribute; returns nil when none do.
func SummarizeWeather(records []PassRecord) *WeatherSummary {
	var (
		n        int
		cloudSum int
		windSum  float64
		tempSum  float64
		sum      WeatherSummary
	)
	for _, rec := range records {
		w := rec.Weather
		if w == nil {
			continue
		}
		if n == 0 {
			sum.CloudMin = w.TotalCloud
			sum.CloudMax = w.TotalCloud
		}
		if w.TotalCloud < sum.CloudMin {
			sum.CloudMin = w.TotalCloud
		}
		if w.TotalCloud > sum.CloudMax {
			sum.CloudMax = w.TotalCloud
		}
		if w.Pictocode > sum.Pictocode {
			sum.Pictocode = w.Pictocode
		}
		cloudSum += w.TotalCloud
		windSum += w.WindSpeed
		tempSum += w.Temperature
		n++
	}
	if n == 0 {
		return nil
	}
	sum.CloudMean = float64(cloudSum) / float64(n)
	sum.WindMean = windSum / float64(n)
	sum.TempMean = tempSum / float64(n)
	return &sum
}
