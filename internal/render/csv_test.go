package render

import (
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/satpass/internal/domain"
)

func TestWritePasses(t *testing.T) {
	t.Run("enriched record fills every column", func(t *testing.T) {
		rec := calendarRecord()
		rec.Date = "2026-03-01"
		rec.TimeWindow = "evening"

		var b strings.Builder
		require.NoError(t, WritePasses(&b, []domain.PassRecord{rec}))

		rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, csvHeader, rows[0])

		row := rows[1]
		assert.Equal(t, "25544", row[0])
		assert.Equal(t, "ISS", row[1])
		assert.Equal(t, "-3.2", row[2])
		assert.Equal(t, "360", row[3])
		assert.Equal(t, "2026-03-01T19:47:12", row[4])
		assert.Equal(t, "true", row[13])
		assert.Equal(t, "61100.82444", row[15])
		assert.Equal(t, "evening", row[17])
		assert.Equal(t, "15", row[18])
		assert.Equal(t, "7.2", row[22])
		assert.Equal(t, "2", row[24])
	})

	t.Run("absent magnitude and weather render as N/A", func(t *testing.T) {
		rec := calendarRecord()
		rec.Magnitude = nil
		rec.Weather = nil

		var b strings.Builder
		require.NoError(t, WritePasses(&b, []domain.PassRecord{rec}))

		rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
		require.NoError(t, err)
		row := rows[1]
		assert.Equal(t, "N/A", row[2])
		for i := 18; i <= 24; i++ {
			assert.Equal(t, "N/A", row[i])
		}
	})

	t.Run("flagged record keeps sentinels", func(t *testing.T) {
		rec := domain.PassRecord{SatID: -1, SatName: "ISS", SourceMJD: math.NaN(), Flagged: true}

		var b strings.Builder
		require.NoError(t, WritePasses(&b, []domain.PassRecord{rec}))

		rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
		require.NoError(t, err)
		row := rows[1]
		assert.Equal(t, "-1", row[0])
		assert.Empty(t, row[4], "zero start time stays empty")
		assert.Empty(t, row[7])
		assert.Empty(t, row[10])
		assert.Equal(t, "NaN", row[15])
	})
}

func TestUTCStamp(t *testing.T) {
	assert.Empty(t, utcStamp(time.Time{}))
	jst := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "2026-03-01T19:47:12",
		utcStamp(time.Date(2026, 3, 2, 4, 47, 12, 0, jst)))
}
