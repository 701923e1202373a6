package track

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/sattrack/internal/clock"
)

func waitObservation(t *testing.T, ch <-chan Observation) Observation {
	t.Helper()
	select {
	case obs := <-ch:
		return obs
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an observation")
	}
	panic("unreachable")
}

func TestTrackerComputeLifecycle(t *testing.T) {
	clk := clock.NewManual(epochTime)
	tr, err := NewTracker(TrackerConfig{
		ID:       "ISS",
		TLE:      testTLE(t),
		Observer: DefaultObserver,
		Clock:    clk,
	})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	ch := make(chan Observation, 4)
	tr.Subscribe(func(o Observation) { ch <- o })

	tr.StartComputing(context.Background())
	obs := waitObservation(t, ch)
	if !obs.Time.Equal(epochTime) {
		t.Fatalf("observation Time = %v, want %v", obs.Time, epochTime)
	}
	if !tr.Computing() {
		t.Fatal("Computing() = false while the loop runs")
	}
	if !tr.Active() {
		t.Fatal("Active() = false after a successful compute")
	}
	if _, ok := tr.Last(); !ok {
		t.Fatal("Last() has no observation after a successful compute")
	}

	// The loop is now asleep; advancing the clock produces another iteration.
	for clk.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	clk.Advance(tr.Interval())
	obs = waitObservation(t, ch)
	if !obs.Time.Equal(epochTime.Add(tr.Interval())) {
		t.Fatalf("second observation Time = %v, want %v", obs.Time, epochTime.Add(tr.Interval()))
	}

	tr.StopComputing()
	if tr.Computing() {
		t.Fatal("Computing() = true after StopComputing")
	}
}

func TestTrackerStartComputingIdempotent(t *testing.T) {
	clk := clock.NewManual(epochTime)
	tr, err := NewTracker(TrackerConfig{
		ID:    "ISS",
		TLE:   testTLE(t),
		Clock: clk,
	})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tr.StopComputing()

	tr.StartComputing(context.Background())
	// Wait for the loop to finish its first iteration and block in sleep,
	// so DrainLog observes a quiesced buffer.
	for clk.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	tr.DrainLog()
	tr.StartComputing(context.Background())
	if got := tr.DrainLog(); len(got) != 0 {
		t.Fatalf("second StartComputing logged %v, want nothing", got)
	}
}

func TestTrackerStopComputingWhenStopped(t *testing.T) {
	tr := newTestTracker(t, "ISS")
	tr.StopComputing()
	if got := tr.DrainLog(); len(got) != 0 {
		t.Fatalf("StopComputing on a stopped tracker logged %v", got)
	}
}

func TestTrackerDrainLog(t *testing.T) {
	tr, err := NewTracker(TrackerConfig{
		ID:    "ISS",
		TLE:   testTLE(t),
		Clock: clock.NewManual(epochTime),
	})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	tr.StartComputing(context.Background())
	tr.StopComputing()

	got := tr.DrainLog()
	if len(got) < 2 || got[0] != "computing started" || got[len(got)-1] != "computing stopped" {
		t.Fatalf("DrainLog() = %v, want start/stop lines in order", got)
	}
	if again := tr.DrainLog(); len(again) != 0 {
		t.Fatalf("second DrainLog() = %v, want empty", again)
	}
}

func TestTrackerLogDepthBounded(t *testing.T) {
	tr, err := NewTracker(TrackerConfig{ID: "ISS", TLE: testTLE(t), LogDepth: 2})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	tr.appendLog("a")
	tr.appendLog("b")
	tr.appendLog("c")
	got := tr.DrainLog()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("DrainLog() = %v, want the two newest lines", got)
	}
}

func TestStartTrackingWithoutRotor(t *testing.T) {
	tr := newTestTracker(t, "ISS")
	if err := tr.StartTracking(context.Background()); !errors.Is(err, ErrNoRotor) {
		t.Fatalf("StartTracking() error = %v, want ErrNoRotor", err)
	}
}

func TestTrackOnceMovesRotor(t *testing.T) {
	rotor := &LogRotor{StepDeg: 1}
	tr, err := NewTracker(TrackerConfig{ID: "ISS", TLE: testTLE(t), Rotor: rotor})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	tr.mu.Lock()
	tr.last = Observation{Azimuth: 120, Elevation: 45}
	tr.hasLast = true
	tr.mu.Unlock()

	tr.trackOnce(context.Background())
	az, el := rotor.Position()
	if az != 120 || el != 45 {
		t.Fatalf("rotor position = (%v, %v), want (120, 45)", az, el)
	}
}

func TestTrackOnceIgnoresSubResolutionDelta(t *testing.T) {
	rotor := &LogRotor{StepDeg: 2}
	if err := rotor.Move(120, 45); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	tr, err := NewTracker(TrackerConfig{ID: "ISS", TLE: testTLE(t), Rotor: rotor})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	tr.mu.Lock()
	tr.last = Observation{Azimuth: 120.5, Elevation: 45.5}
	tr.hasLast = true
	tr.mu.Unlock()

	tr.trackOnce(context.Background())
	az, el := rotor.Position()
	if az != 120 || el != 45 {
		t.Fatalf("rotor position = (%v, %v), want unchanged (120, 45)", az, el)
	}
}

func TestTrackableRespectsLimits(t *testing.T) {
	rotor := &LogRotor{ElMax: 60}
	tr, err := NewTracker(TrackerConfig{ID: "ISS", TLE: testTLE(t), Rotor: rotor})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	tr.mu.Lock()
	tr.last = Observation{Azimuth: 180, Elevation: 70}
	tr.hasLast = true
	tr.mu.Unlock()
	if tr.Trackable() {
		t.Fatal("Trackable() = true outside the elevation limit")
	}

	tr.mu.Lock()
	tr.last.Elevation = 50
	tr.mu.Unlock()
	if !tr.Trackable() {
		t.Fatal("Trackable() = false within the limits")
	}
}

func TestAngularDelta(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{0, 0, 0},
		{10, 350, 20},
		{350, 10, 20},
		{180, 0, 180},
		{90, 45, 45},
	}
	for _, tc := range cases {
		if got := angularDelta(tc.a, tc.b); got != tc.want {
			t.Fatalf("angularDelta(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
