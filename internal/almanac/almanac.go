// Package almanac computes the solar reference instants (noon, sunset,
// sunrise, astronomical twilight) the pipeline needs to classify and
// annotate passes. Callers treat it as an oracle: fixed site, UTC in,
// UTC out.
package almanac

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// astronomicalTwilight is the solar elevation below which the sky is fully
// dark.
const astronomicalTwilight = -18.0

// Solar answers sun-position queries for one observing site.
type Solar struct {
	Lat float64
	Lon float64
}

// New creates an almanac for the given geodetic coordinates.
func New(lat, lon float64) *Solar {
	return &Solar{Lat: lat, Lon: lon}
}

// PreviousNoon returns the local solar noon at or before t, approximated
// as the midpoint of that day's sunrise and sunset.
func (s *Solar) PreviousNoon(t time.Time) time.Time {
	t = t.UTC()
	day := t
	for {
		noon := s.noonOf(day)
		if !noon.After(t) {
			return noon
		}
		day = day.AddDate(0, 0, -1)
	}
}

// Night returns the sunset following noon and the sunrise after it.
func (s *Solar) Night(noon time.Time) (sunset, sunrise time.Time) {
	noon = noon.UTC()
	_, sunset = riseSet(s.Lat, s.Lon, noon)
	next := noon.AddDate(0, 0, 1)
	sunrise, _ = riseSet(s.Lat, s.Lon, next)
	return sunset, sunrise
}

// Twilight returns astronomical dusk after noon and the following dawn.
func (s *Solar) Twilight(noon time.Time) (dusk, dawn time.Time) {
	noon = noon.UTC()
	_, dusk = sunrise.TimeOfElevation(s.Lat, s.Lon, astronomicalTwilight, noon.Year(), noon.Month(), noon.Day())
	next := noon.AddDate(0, 0, 1)
	dawn, _ = sunrise.TimeOfElevation(s.Lat, s.Lon, astronomicalTwilight, next.Year(), next.Month(), next.Day())
	return dusk, dawn
}

func (s *Solar) noonOf(day time.Time) time.Time {
	rise, set := riseSet(s.Lat, s.Lon, day)
	return rise.Add(set.Sub(rise) / 2)
}

func riseSet(lat, lon float64, day time.Time) (rise, set time.Time) {
	return sunrise.SunriseSunset(lat, lon, day.Year(), day.Month(), day.Day())
}
