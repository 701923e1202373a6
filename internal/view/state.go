// Package view owns the client's visualization state and drives a rendering
// surface: an orthographic globe centred on the satellite's ground position,
// a trajectory trail, textual labels, and a log panel.
package view

import "sync"

// Position is the latest known satellite fix as displayed by the view.
// Lon/Lat are the ground sub-point; Az/Alt are the look angles.
type Position struct {
	Lon float64
	Lat float64
	Az  float64
	Alt float64
}

// State is the single owned view state. Everything starts at zero/empty and
// is overwritten as polls arrive.
type State struct {
	mu             sync.Mutex
	position       Position
	timestampLabel string
	trajectory     [][2]float64 // (lon, lat), insertion order = chronological
	stopped        bool
}

// NewState constructs a State with zero/empty defaults.
func NewState() *State { return &State{} }

// SetPosition overwrites the latest known fix.
func (s *State) SetPosition(p Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = p
}

// Position returns the latest known fix.
func (s *State) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// SetTimestampLabel stores the display string of the last observed time.
func (s *State) SetTimestampLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timestampLabel = label
}

// TimestampLabel returns the display string of the last observed time.
func (s *State) TimestampLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timestampLabel
}

// AppendTrajectory records one more ground position, in (lon, lat) order.
func (s *State) AppendTrajectory(lon, lat float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trajectory = append(s.trajectory, [2]float64{lon, lat})
}

// Trajectory returns a copy of the recorded trail.
func (s *State) Trajectory() [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]float64, len(s.trajectory))
	copy(out, s.trajectory)
	return out
}

// ClearTrajectory empties the trail.
func (s *State) ClearTrajectory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trajectory = nil
}

// SetStopped flips the explicitly-stopped flag. While set, transient poll
// failures stay quiet in the log.
func (s *State) SetStopped(stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = stopped
}

// Stopped reports whether computing has been explicitly stopped.
func (s *State) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
