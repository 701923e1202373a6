package track

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/sattrack/internal/clock"
	"github.com/signalsfoundry/sattrack/internal/logging"
)

// ErrNoRotor is returned by StartTracking when no rotor is configured.
var ErrNoRotor = errors.New("no rotor configured")

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	ID       string
	TLE      TLE
	Observer Observer
	Interval time.Duration // compute interval; 1s when zero
	Clock    clock.Clock   // wall clock when nil
	Logger   logging.Logger
	Rotor    Rotor
	LogDepth int // pending status-log buffer depth; 64 when zero
}

// Tracker owns one satellite: a compute loop that periodically propagates
// the element set, and an optional rotor loop that slews an antenna toward
// the satellite. Both loops are context-cancelled and independently
// start/stoppable.
type Tracker struct {
	id       string
	prop     *Propagator
	observer Observer
	interval time.Duration
	clk      clock.Clock
	log      logging.Logger
	rotor    Rotor
	logDepth int

	mu            sync.Mutex
	computeCancel context.CancelFunc
	computeDone   chan struct{}
	trackCancel   context.CancelFunc
	trackDone     chan struct{}
	active        bool
	last          Observation
	hasLast       bool
	pending       []string
	subs          []func(Observation)
}

// NewTracker validates the element set and constructs a stopped tracker.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if cfg.ID == "" {
		return nil, errors.New("tracker: empty satellite id")
	}
	prop, err := NewPropagator(cfg.TLE)
	if err != nil {
		return nil, fmt.Errorf("tracker %s: %w", cfg.ID, err)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	depth := cfg.LogDepth
	if depth <= 0 {
		depth = 64
	}
	return &Tracker{
		id:       cfg.ID,
		prop:     prop,
		observer: cfg.Observer,
		interval: interval,
		clk:      clk,
		log:      log.With(logging.String("satellite", cfg.ID)),
		rotor:    cfg.Rotor,
		logDepth: depth,
	}, nil
}

// ID returns the satellite id.
func (t *Tracker) ID() string { return t.id }

// Interval returns the compute interval.
func (t *Tracker) Interval() time.Duration { return t.interval }

// Observer returns the configured ground observer.
func (t *Tracker) Observer() Observer { return t.observer }

// Propagator exposes the underlying propagator, e.g. for pass prediction.
func (t *Tracker) Propagator() *Propagator { return t.prop }

// StartComputing launches the compute loop. Starting an already-running
// loop is a no-op.
func (t *Tracker) StartComputing(ctx context.Context) {
	t.mu.Lock()
	if t.computeCancel != nil {
		t.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.computeCancel = cancel
	t.computeDone = done
	t.mu.Unlock()

	t.appendLog("computing started")
	t.log.Info(ctx, "compute loop started", logging.Any("interval", t.interval))

	go func() {
		defer close(done)
		t.computeLoop(loopCtx)
	}()
}

// StopComputing cancels the compute loop and waits for it to exit.
// Stopping a stopped loop is a no-op.
func (t *Tracker) StopComputing() {
	t.mu.Lock()
	cancel, done := t.computeCancel, t.computeDone
	t.computeCancel, t.computeDone = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.appendLog("computing stopped")
	t.log.Info(context.Background(), "compute loop stopped")
}

// Computing reports whether the compute loop is running.
func (t *Tracker) Computing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.computeCancel != nil
}

func (t *Tracker) computeLoop(ctx context.Context) {
	for {
		t.computeOnce(ctx)
		if err := clock.Sleep(ctx, t.clk, t.interval); err != nil {
			return
		}
	}
}

func (t *Tracker) computeOnce(ctx context.Context) {
	obs, err := t.prop.ObserveAt(t.clk.Now(), t.observer)
	if err != nil {
		t.mu.Lock()
		t.active = false
		t.mu.Unlock()
		t.log.Warn(ctx, "propagation failed", logging.String("error", err.Error()))
		return
	}

	t.mu.Lock()
	wasBelow := !t.hasLast || !t.last.AboveHorizon()
	t.last = obs
	t.hasLast = true
	t.active = true
	subs := append(([]func(Observation))(nil), t.subs...)
	t.mu.Unlock()

	if wasBelow && obs.AboveHorizon() {
		t.appendLog(fmt.Sprintf("satellite above horizon, elevation %.1f deg", obs.Elevation))
	} else if !wasBelow && !obs.AboveHorizon() {
		t.appendLog("satellite below horizon")
	}

	for _, fn := range subs {
		fn(obs)
	}
}

// StartTracking launches the rotor loop. It fails when no rotor is
// configured; starting an already-running loop is a no-op.
func (t *Tracker) StartTracking(ctx context.Context) error {
	if t.rotor == nil {
		return ErrNoRotor
	}
	t.mu.Lock()
	if t.trackCancel != nil {
		t.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.trackCancel = cancel
	t.trackDone = done
	t.mu.Unlock()

	t.appendLog("tracking started")
	t.log.Info(ctx, "rotor loop started")

	go func() {
		defer close(done)
		t.trackLoop(loopCtx)
	}()
	return nil
}

// StopTracking cancels the rotor loop and waits for it to exit.
func (t *Tracker) StopTracking() {
	t.mu.Lock()
	cancel, done := t.trackCancel, t.trackDone
	t.trackCancel, t.trackDone = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.appendLog("tracking stopped")
	t.log.Info(context.Background(), "rotor loop stopped")
}

// Tracking reports whether the rotor loop is running.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trackCancel != nil
}

func (t *Tracker) trackLoop(ctx context.Context) {
	for {
		t.trackOnce(ctx)
		if err := clock.Sleep(ctx, t.clk, t.interval); err != nil {
			return
		}
	}
}

func (t *Tracker) trackOnce(ctx context.Context) {
	obs, ok := t.Last()
	if !ok || !t.Trackable() {
		return
	}
	curAz, curEl := t.rotor.Position()
	res := t.rotor.Resolution()

	az, el := curAz, curEl
	if diff := angularDelta(obs.Azimuth, curAz); diff >= res {
		az = obs.Azimuth
	}
	if diff := obs.Elevation - curEl; diff >= res || -diff >= res {
		el = obs.Elevation
	}
	if az == curAz && el == curEl {
		return
	}
	if err := t.rotor.Move(az, el); err != nil {
		t.log.Warn(ctx, "rotor move failed", logging.String("error", err.Error()))
	}
}

// Trackable reports whether the satellite's current look angles fall within
// the rotor's limits.
func (t *Tracker) Trackable() bool {
	if t.rotor == nil {
		return false
	}
	obs, ok := t.Last()
	if !ok {
		return false
	}
	azMin, azMax, elMin, elMax := t.rotor.Limits()
	return obs.Azimuth >= azMin && obs.Azimuth <= azMax &&
		obs.Elevation >= elMin && obs.Elevation <= elMax
}

// Observable reports whether the satellite is currently above the horizon.
func (t *Tracker) Observable() bool {
	obs, ok := t.Last()
	return ok && obs.AboveHorizon()
}

// Active reports whether the last compute attempt succeeded.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Last returns the most recent observation, if any.
func (t *Tracker) Last() (Observation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.hasLast
}

// Subscribe registers a callback invoked with every new observation.
func (t *Tracker) Subscribe(fn func(Observation)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// appendLog queues a human-readable event line for the next status drain.
// The buffer is bounded; the oldest lines are dropped first.
func (t *Tracker) appendLog(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, line)
	if over := len(t.pending) - t.logDepth; over > 0 {
		t.pending = append(t.pending[:0:0], t.pending[over:]...)
	}
}

// DrainLog returns and clears the pending event lines, oldest first.
func (t *Tracker) DrainLog() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// angularDelta returns the smallest absolute difference between two
// azimuths in degrees, accounting for the 0/360 wrap.
func angularDelta(a, b float64) float64 {
	d := a - b
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	if d < 0 {
		d = -d
	}
	return d
}
