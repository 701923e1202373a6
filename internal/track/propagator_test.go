package track

import (
	"testing"
	"time"
)

func testTLE(t *testing.T) TLE {
	t.Helper()
	tle, err := ParseTLE([]string{issName, issLine1, issLine2})
	if err != nil {
		t.Fatalf("ParseTLE() error = %v", err)
	}
	return tle
}

// epochTime is shortly after the reference element set's epoch
// (day 264 of 2008), where SGP4 output is well behaved.
var epochTime = time.Date(2008, time.September, 20, 13, 0, 0, 0, time.UTC)

func TestNewPropagatorRejectsInvalidTLE(t *testing.T) {
	if _, err := NewPropagator(TLE{Line1: "garbage", Line2: "garbage"}); err == nil {
		t.Fatal("NewPropagator() accepted an invalid element set")
	}
}

func TestObserveAtProducesPlausibleFix(t *testing.T) {
	prop, err := NewPropagator(testTLE(t))
	if err != nil {
		t.Fatalf("NewPropagator() error = %v", err)
	}

	obs, err := prop.ObserveAt(epochTime, DefaultObserver)
	if err != nil {
		t.Fatalf("ObserveAt() error = %v", err)
	}

	if !obs.Time.Equal(epochTime) {
		t.Fatalf("Time = %v, want %v", obs.Time, epochTime)
	}
	// The ISS orbit is inclined 51.64°, so the sub-point latitude is bounded.
	if obs.Latitude < -52 || obs.Latitude > 52 {
		t.Fatalf("Latitude = %v, want within [-52, 52]", obs.Latitude)
	}
	if obs.Longitude < -180 || obs.Longitude >= 180 {
		t.Fatalf("Longitude = %v, want within [-180, 180)", obs.Longitude)
	}
	if obs.AltitudeKm < 250 || obs.AltitudeKm > 500 {
		t.Fatalf("AltitudeKm = %v, want a low-Earth-orbit altitude", obs.AltitudeKm)
	}
	if obs.Azimuth < 0 || obs.Azimuth >= 360 {
		t.Fatalf("Azimuth = %v, want within [0, 360)", obs.Azimuth)
	}
	if obs.Elevation < -90 || obs.Elevation > 90 {
		t.Fatalf("Elevation = %v, want within [-90, 90]", obs.Elevation)
	}
	if obs.RangeKm <= 0 {
		t.Fatalf("RangeKm = %v, want > 0", obs.RangeKm)
	}
}

func TestObserveAtSubPointMovesOverTime(t *testing.T) {
	prop, err := NewPropagator(testTLE(t))
	if err != nil {
		t.Fatalf("NewPropagator() error = %v", err)
	}

	a, err := prop.ObserveAt(epochTime, DefaultObserver)
	if err != nil {
		t.Fatalf("ObserveAt() error = %v", err)
	}
	b, err := prop.ObserveAt(epochTime.Add(time.Minute), DefaultObserver)
	if err != nil {
		t.Fatalf("ObserveAt() error = %v", err)
	}
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		t.Fatal("sub-point did not move over one minute")
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{179, 179},
		{180, -180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, -180},
	}
	for _, tc := range cases {
		if got := normalizeLongitude(tc.in); got != tc.want {
			t.Fatalf("normalizeLongitude(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAzimuth(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{359, 359},
		{360, 0},
		{-10, 350},
		{725, 5},
	}
	for _, tc := range cases {
		if got := normalizeAzimuth(tc.in); got != tc.want {
			t.Fatalf("normalizeAzimuth(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
