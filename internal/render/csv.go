package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/skywatch/satpass/internal/domain"
)

var csvHeader = []string{
	"satid", "satname", "mag", "duration",
	"start_utc", "start_alt", "start_az",
	"max_utc", "max_alt", "max_az",
	"end_utc", "end_alt", "end_az",
	"visible", "detail_ref", "mjd", "date", "time_window",
	"totalcloudcover", "lowclouds", "midclouds", "highclouds",
	"temperature", "windspeed", "pictocode",
}

// WritePasses emits the full enriched pass table as CSV, one row per
// record. Absent magnitude and weather render as "N/A"; flagged records
// keep empty timestamps.
func WritePasses(w io.Writer, records []domain.PassRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		if err := cw.Write(passRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func passRow(rec domain.PassRecord) []string {
	mag := "N/A"
	if rec.Magnitude != nil {
		mag = fmt.Sprintf("%.1f", *rec.Magnitude)
	}

	mjd := "NaN"
	if !math.IsNaN(rec.SourceMJD) {
		mjd = strconv.FormatFloat(rec.SourceMJD, 'f', -1, 64)
	}

	row := []string{
		strconv.Itoa(rec.SatID),
		rec.SatName,
		mag,
		strconv.Itoa(rec.Duration),
		utcStamp(rec.Start.Time),
		fmt.Sprintf("%g", rec.Start.Altitude),
		rec.Start.Azimuth,
		utcStamp(rec.Max.Time),
		fmt.Sprintf("%g", rec.Max.Altitude),
		rec.Max.Azimuth,
		utcStamp(rec.End.Time),
		fmt.Sprintf("%g", rec.End.Altitude),
		rec.End.Azimuth,
		strconv.FormatBool(rec.Visible),
		rec.DetailRef,
		mjd,
		rec.Date,
		rec.TimeWindow,
	}

	if w := rec.Weather; w != nil {
		row = append(row,
			strconv.Itoa(w.TotalCloud),
			strconv.Itoa(w.LowCloud),
			strconv.Itoa(w.MidCloud),
			strconv.Itoa(w.HighCloud),
			fmt.Sprintf("%.1f", w.Temperature),
			fmt.Sprintf("%.1f", w.WindSpeed),
			strconv.Itoa(w.Pictocode),
		)
	} else {
		row = append(row, "N/A", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A")
	}
	return row
}

func utcStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05")
}
