package domain

import (
	"math"
	"time"
)

// PassPoint is one sampled phase of a pass: the time the satellite is at a
// given elevation and compass direction.
type PassPoint struct {
	Time     time.Time `json:"time"`
	Altitude float64   `json:"altitude"` // degrees above horizon
	Azimuth  string    `json:"azimuth"`  // compass label, e.g. "WNW"
}

// PassRecord is one predicted overhead transit of one satellite for the
// configured observing site. Start/Max/End carry reconciled UTC instants;
// enrichment fields (Date, TimeWindow, Weather) are stamped by later
// pipeline stages.
type PassRecord struct {
	SatID     int      `json:"satid"`
	SatName   string   `json:"satname"`
	Magnitude *float64 `json:"mag"` // nil when the page reports none

	Start PassPoint `json:"start"`
	Max   PassPoint `json:"max"`
	End   PassPoint `json:"end"`

	Duration int  `json:"duration"` // seconds, End-Start
	Visible  bool `json:"visible"`  // sunlit and sky dark enough

	// DetailRef is the upstream passdetails reference extracted from the
	// row's link. Combined with SatID it is the stable event key.
	DetailRef string  `json:"detail_ref"`
	SourceMJD float64 `json:"mjd"` // fractional MJD of the peak; NaN when absent

	// Flagged marks records whose day-fraction could not be parsed; their
	// timestamps are unusable and the observability filter never passes them.
	Flagged bool `json:"flagged,omitempty"`

	Date       string `json:"date,omitempty"`        // local calendar date of Max, YYYY-MM-DD
	TimeWindow string `json:"time_window,omitempty"` // "morning" or "evening"

	Weather *WeatherSample `json:"weather,omitempty"` // nil = no forecast hour matched
}

// HasRef reports whether the row carried a usable detail reference.
func (r PassRecord) HasRef() bool {
	return r.DetailRef != "" && r.SatID >= 0 && !math.IsNaN(r.SourceMJD)
}

// WeatherSample is one hourly forecast point for the observing site.
type WeatherSample struct {
	Time        time.Time `json:"time"` // top of hour, UTC
	TotalCloud  int       `json:"totalcloudcover"`
	LowCloud    int       `json:"lowclouds"`
	MidCloud    int       `json:"midclouds"`
	HighCloud   int       `json:"highclouds"`
	Temperature float64   `json:"temperature"` // degC
	WindSpeed   float64   `json:"windspeed"`   // m/s
	Pictocode   int       `json:"pictocode"`
}

// WeatherSummary aggregates the forecast over one presentation group,
// computed only from records that carry a sample.
type WeatherSummary struct {
	CloudMin  int
	CloudMax  int
	CloudMean float64
	WindMean  float64
	TempMean  float64
	// Pictocode is the highest code seen in the group, a coarse
	// worst-case sky indicator (codes get worse as they grow).
	Pictocode int
}
