package almanac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tokyo Tower, a mid-latitude site where the sun rises and sets every day
// of the year.
const (
	siteLat = 35.658581
	siteLon = 139.745438
)

func TestPreviousNoon(t *testing.T) {
	sun := New(siteLat, siteLon)

	t.Run("never after the query instant", func(t *testing.T) {
		for _, at := range []time.Time{
			time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 1, 1, 30, 0, 0, time.UTC),
			time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 12, 21, 23, 59, 0, 0, time.UTC),
		} {
			noon := sun.PreviousNoon(at)
			assert.False(t, noon.After(at), "noon %v for query %v", noon, at)
			assert.Less(t, at.Sub(noon), 25*time.Hour, "noon %v too far before %v", noon, at)
		}
	})

	t.Run("solar noon tracks the site longitude", func(t *testing.T) {
		noon := sun.PreviousNoon(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
		// mean solar noon at 139.75 E is about 02:41 UTC
		expected := time.Date(2026, 3, 1, 2, 41, 0, 0, time.UTC)
		assert.InDelta(t, 0, noon.Sub(expected).Minutes(), 30)
	})
}

func TestNight(t *testing.T) {
	sun := New(siteLat, siteLon)
	noon := sun.PreviousNoon(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))

	sunset, nextSunrise := sun.Night(noon)
	require.False(t, sunset.IsZero())
	require.False(t, nextSunrise.IsZero())

	assert.True(t, sunset.After(noon), "sunset follows noon")
	assert.True(t, nextSunrise.After(sunset), "sunrise follows sunset")
	night := nextSunrise.Sub(sunset)
	assert.Greater(t, night, 6*time.Hour)
	assert.Less(t, night, 18*time.Hour)
}

func TestTwilight(t *testing.T) {
	sun := New(siteLat, siteLon)
	noon := sun.PreviousNoon(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))

	sunset, nextSunrise := sun.Night(noon)
	dusk, dawn := sun.Twilight(noon)

	assert.True(t, dusk.After(sunset), "full darkness comes after sunset")
	assert.True(t, dawn.Before(nextSunrise), "dawn brightening precedes sunrise")
	assert.True(t, dawn.After(dusk))
}
