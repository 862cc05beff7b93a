// Package domain models predicted satellite passes scraped from the
// heavens-above pass-summary page and the forecast data joined onto them.
//
// # Data Source
//
// Pass predictions come from the PassSummary page, one HTML document per
// satellite, parameterized by catalog number and observer coordinates.
// The page has no API contract: result rows are identified purely by the
// "clickableRow" class the site uses for interactive rows, and every other
// row is ignored.
//
// # Page Conventions
//
// Column layout (fixed by the site's table, 12 cells minimum):
//
//	date label | magnitude | start time/el/az | peak time/el/az | end time/el/az | visibility
//
// Elevation cells carry a degree-symbol suffix ("30°"). Magnitude may be
// "?" for unreported brightness and is then recorded as absent, not zero.
// The visibility cell is a classification label; only the exact value
// "visible" means naked-eye visible, everything else (partially sunlit,
// in shadow) maps to false.
//
// Each row links to a passdetails page, either through an anchor href or a
// script location-assignment. The link's query string carries satid and
// mjd; the mjd value (fractional Modified Julian Day of the peak) is the
// only absolute timestamp on the page and doubles as the uniqueness key.
// Rows without a usable link get the sentinels satid=-1, mjd=NaN and are
// Flagged.
//
// # Time Reconciliation
//
// Phase times are time-of-day only. The peak's calendar date is taken from
// the mjd; start and end first get the same date and are then shifted by
// one day when the pass crosses local midnight (start after peak, or end
// before peak, on the clock). Duration is derived after the shifts, so
// start <= max <= end and duration >= 0 hold whenever the mjd is valid.
//
// # Weather
//
// Hourly forecast samples join on exact equality between the sample hour
// and the pass start truncated to its clock hour. A miss is an explicit
// absent sample (nil), never zero and never interpolated, and renders as
// "N/A" everywhere downstream. Pictocodes classify overall sky condition
// on a 1-35 scale that worsens as it grows; group summaries report the
// highest code seen as a worst-case indicator.
package domain
