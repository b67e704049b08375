package orrery

import (
	"math"
	"time"
)

// J2000 is the Julian date of the standard J2000.0 reference epoch.
const J2000 = 2451545.0

// JulianDay returns the Julian day number for a Gregorian calendar date
// (Fliegel & Van Flandern). The day number is the Julian date at noon UTC.
func JulianDay(year, month, day int) int64 {
	y, m, d := int64(year), int64(month), int64(day)
	return (1461*(y+4800+(m-14)/12))/4 +
		(367*(m-2-12*((m-14)/12)))/12 -
		(3*((y+4900+(m-14)/12)/100))/4 +
		d - 32075
}

// DateFromJulianDay converts a Julian day number back to a Gregorian
// calendar date (Richards' algorithm).
func DateFromJulianDay(day int64) (year, month, dayOfMonth int) {
	const (
		y = 4716
		j = 1401
		m = 2
		n = 12
		r = 4
		p = 1461
		v = 3
		u = 5
		s = 153
		w = 2
		b = 274277
		c = -38
	)

	f := day + j + (((4*day+b)/146097)*3)/4 + c
	e := r*f + v
	g := (e % p) / r
	h := u*g + w

	dayOfMonth = int((h%s)/u + 1)
	month = int((h/s+m)%n + 1)
	year = int(e/p - y + (int64(n)+m-int64(month))/n)
	return year, month, dayOfMonth
}

// JulianDate converts a UTC timestamp to a fractional Julian date.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	jdn := JulianDay(t.Year(), int(t.Month()), t.Day())
	return float64(jdn) +
		(float64(t.Hour())-12)/24 +
		float64(t.Minute())/1440 +
		float64(t.Second())/86400
}

// TimeFromJulianDate converts a fractional Julian date back to a UTC
// timestamp with second precision.
func TimeFromJulianDate(jd float64) time.Time {
	frac := jd - math.Trunc(jd)
	year, month, day := DateFromJulianDay(int64(jd))

	hour := int(frac*24 + 12)
	frac -= (float64(hour) - 12) / 24
	minute := int(frac * 1440)
	frac -= float64(minute) / 1440
	second := frac * 86400

	// Guard against 27.999999... landing on the wrong second.
	if math.Floor(second)+1-second < 1e-3 && math.Round(second) < 60 {
		second++
	}

	t := time.Date(year, time.Month(month), day, 0, minute, int(second), 0, time.UTC)
	if hour >= 24 {
		t = t.AddDate(0, 0, 1)
		hour -= 24
	}
	return t.Add(time.Duration(hour) * time.Hour)
}
