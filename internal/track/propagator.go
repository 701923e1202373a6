package track

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Propagator propagates a TLE with SGP4 and derives the ground sub-point
// and observer look angles for a given instant.
type Propagator struct {
	tle TLE
	sat satellite.Satellite
}

// NewPropagator initialises SGP4 for the element set.
func NewPropagator(tle TLE) (*Propagator, error) {
	if err := validateElementLine(1, tle.Line1); err != nil {
		return nil, fmt.Errorf("propagator: %w", err)
	}
	if err := validateElementLine(2, tle.Line2); err != nil {
		return nil, fmt.Errorf("propagator: %w", err)
	}
	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)
	return &Propagator{tle: tle, sat: sat}, nil
}

// TLE returns the element set the propagator was built from.
func (p *Propagator) TLE() TLE { return p.tle }

// ObserveAt propagates the satellite to t and computes the sub-point,
// altitude, and look angles from obs. Times are converted to UTC before
// propagation.
func (p *Propagator) ObserveAt(t time.Time, obs Observer) (Observation, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(posECI.X) || math.IsNaN(posECI.Y) || math.IsNaN(posECI.Z) {
		return Observation{}, fmt.Errorf("SGP4 propagation failed at %s", t.Format(time.RFC3339))
	}

	gmst := satellite.GSTimeFromDate(year, int(month), day, hour, min, sec)
	altKm, _, llRad := satellite.ECIToLLA(posECI, gmst)
	llDeg := satellite.LatLongDeg(llRad)

	jday := satellite.JDay(year, int(month), day, hour, min, sec)
	obsRad := satellite.LatLong{
		Latitude:  obs.Latitude * deg2rad,
		Longitude: obs.Longitude * deg2rad,
	}
	look := satellite.ECIToLookAngles(posECI, obsRad, obs.ElevationM/1000.0, jday)

	return Observation{
		Time:       t,
		Latitude:   llDeg.Latitude,
		Longitude:  normalizeLongitude(llDeg.Longitude),
		AltitudeKm: altKm,
		Azimuth:    normalizeAzimuth(look.Az * rad2deg),
		Elevation:  look.El * rad2deg,
		RangeKm:    look.Rg,
	}, nil
}

// normalizeAzimuth wraps an azimuth in degrees into [0, 360).
func normalizeAzimuth(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}
