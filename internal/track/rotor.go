package track

import (
	"context"
	"sync"

	"github.com/signalsfoundry/sattrack/internal/logging"
)

// Rotor points an antenna rotor. Implementations wrap whatever drives the
// physical hardware; the tracker only commands absolute angles.
type Rotor interface {
	// Position returns the last commanded azimuth and elevation in degrees.
	Position() (az, el float64)
	// Move slews the rotor to the given azimuth and elevation in degrees.
	Move(az, el float64) error
	// Resolution returns the smallest step worth commanding, in degrees.
	Resolution() float64
	// Limits returns the allowed azimuth and elevation ranges in degrees.
	Limits() (azMin, azMax, elMin, elMax float64)
}

// LogRotor is a Rotor with no hardware behind it: it remembers commanded
// positions and logs every move. Used as the default driver and in tests.
type LogRotor struct {
	Log        logging.Logger
	StepDeg    float64 // resolution; 1° when zero
	AzMin      float64
	AzMax      float64 // 360° when zero
	ElMin      float64
	ElMax      float64 // 90° when zero

	mu sync.Mutex
	az float64
	el float64
}

func (r *LogRotor) Position() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.az, r.el
}

func (r *LogRotor) Move(az, el float64) error {
	r.mu.Lock()
	r.az, r.el = az, el
	r.mu.Unlock()
	if r.Log != nil {
		r.Log.Debug(context.Background(), "rotor move",
			logging.Float64("azimuth", az),
			logging.Float64("elevation", el),
		)
	}
	return nil
}

func (r *LogRotor) Resolution() float64 {
	if r.StepDeg <= 0 {
		return 1
	}
	return r.StepDeg
}

func (r *LogRotor) Limits() (float64, float64, float64, float64) {
	azMax, elMax := r.AzMax, r.ElMax
	if azMax == 0 {
		azMax = 360
	}
	if elMax == 0 {
		elMax = 90
	}
	return r.AzMin, azMax, r.ElMin, elMax
}
