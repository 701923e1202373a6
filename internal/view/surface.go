package view

import "sync"

// Labels is the textual readout shown next to the globe.
type Labels struct {
	Lon  float64
	Lat  float64
	Az   float64
	Alt  float64
	Time string
}

// Surface is the rendering capability the view drives. Keeping the polling
// and state logic behind this interface means the whole client is testable
// without a real screen.
type Surface interface {
	// SetRotation orients the globe. The arguments are the rotation vector,
	// i.e. the negated centre coordinates.
	SetRotation(lon, lat float64)
	// RedrawLayers redraws every projection-dependent layer plus the
	// trajectory trail.
	RedrawLayers(trajectory [][2]float64)
	// UpdateLabels refreshes the textual readout.
	UpdateLabels(labels Labels)
	// AppendLogLines prepends each line in order to the log display, so the
	// last line of a batch ends up on top.
	AppendLogLines(lines []string)
}

// Recording is a Surface that records every call, for tests.
type Recording struct {
	mu        sync.Mutex
	Rotations [][2]float64
	Redraws   [][][2]float64
	Labels    []Labels
	// Log holds the display in top-to-bottom order, newest first.
	Log []string
}

func (r *Recording) SetRotation(lon, lat float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rotations = append(r.Rotations, [2]float64{lon, lat})
}

func (r *Recording) RedrawLayers(trajectory [][2]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([][2]float64, len(trajectory))
	copy(snapshot, trajectory)
	r.Redraws = append(r.Redraws, snapshot)
}

func (r *Recording) UpdateLabels(labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Labels = append(r.Labels, labels)
}

func (r *Recording) AppendLogLines(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range lines {
		r.Log = append([]string{line}, r.Log...)
	}
}

// LastRotation returns the most recent rotation, if any.
func (r *Recording) LastRotation() ([2]float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Rotations) == 0 {
		return [2]float64{}, false
	}
	return r.Rotations[len(r.Rotations)-1], true
}
