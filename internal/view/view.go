package view

// View ties the owned state to a rendering surface and applies poll
// outcomes to both.
type View struct {
	state   *State
	surface Surface
}

// New constructs a View over the given state and surface.
func New(state *State, surface Surface) *View {
	if state == nil {
		state = NewState()
	}
	return &View{state: state, surface: surface}
}

// State exposes the owned view state.
func (v *View) State() *State { return v.state }

// ApplyStatus applies one successful poll: update the fix and timestamp,
// extend the trajectory, recentre the globe on the new ground position,
// redraw, refresh labels, and surface the new log lines.
func (v *View) ApplyStatus(lon, lat, az, alt float64, timeLabel string, logLines []string) {
	v.state.SetPosition(Position{Lon: lon, Lat: lat, Az: az, Alt: alt})
	v.state.SetTimestampLabel(timeLabel)
	v.state.AppendTrajectory(lon, lat)

	// The globe rotation convention is inverse to the viewing direction, so
	// centring on (lon, lat) means rotating by the negated coordinates.
	v.surface.SetRotation(-lon, -lat)
	v.surface.RedrawLayers(v.state.Trajectory())
	v.surface.UpdateLabels(Labels{Lon: lon, Lat: lat, Az: az, Alt: alt, Time: timeLabel})
	if len(logLines) > 0 {
		v.surface.AppendLogLines(logLines)
	}
}

// ApplyFailure applies one failed poll: drop the trail so a stale trajectory
// is not drawn across a connectivity gap, and emit one retry notice unless
// computing was explicitly stopped.
func (v *View) ApplyFailure() {
	v.state.ClearTrajectory()
	if !v.state.Stopped() {
		v.surface.AppendLogLines([]string{"connection failed, retrying"})
	}
}

// ComputingStarted records a successful start-computing command.
func (v *View) ComputingStarted() {
	v.state.SetStopped(false)
}

// ComputingStopped records a successful stop-computing command: the stopped
// flag is set and the trail cleared immediately, without waiting for the
// poll loop to observe the change.
func (v *View) ComputingStopped() {
	v.state.SetStopped(true)
	v.state.ClearTrajectory()
}

// Notice surfaces a one-off log line, e.g. a command failure.
func (v *View) Notice(line string) {
	v.surface.AppendLogLines([]string{line})
}
