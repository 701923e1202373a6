package track

import "time"

// Observer is a ground location from which look angles are computed.
// Latitude and Longitude are degrees (+N, +E); ElevationM is metres above
// sea level.
type Observer struct {
	Latitude   float64
	Longitude  float64
	ElevationM float64
}

// DefaultObserver matches the station the tracker was originally deployed at.
var DefaultObserver = Observer{
	Latitude:   36.1486,
	Longitude:  -86.8050,
	ElevationM: 182,
}

// Observation is one computed fix of the satellite: the ground sub-point,
// the altitude of the orbit, and the look angles from the observer.
// All angles are degrees; altitude and range are kilometres.
type Observation struct {
	Time       time.Time
	Latitude   float64
	Longitude  float64
	AltitudeKm float64
	Azimuth    float64
	Elevation  float64
	RangeKm    float64
}

// AboveHorizon reports whether the satellite is visible from the observer.
func (o Observation) AboveHorizon() bool { return o.Elevation >= 0 }
