package track

import (
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Pass describes one overhead pass of the satellite as seen from the
// observer: rise and set horizon crossings plus the point of maximum
// elevation. Angles are degrees.
type Pass struct {
	Rise         time.Time `json:"risetime"`
	RiseAzimuth  float64   `json:"riseaz"`
	Max          time.Time `json:"maxtime"`
	MaxElevation float64   `json:"maxalt"`
	Set          time.Time `json:"settime"`
	SetAzimuth   float64   `json:"setaz"`
}

// ErrNoPass is returned when no pass occurs within the search horizon.
var ErrNoPass = errors.New("no pass within search horizon")

const (
	passSearchHorizon = 48 * time.Hour
	passCoarseStep    = 30 * time.Second
	passRefineTo      = time.Second
)

// PassPredictor finds upcoming passes by sampling the elevation curve.
// Predictions are cached per minute-quantized start time, since a pass
// search propagates the orbit thousands of times.
type PassPredictor struct {
	prop     *Propagator
	observer Observer
	cache    *lru.Cache[int64, Pass]
}

// NewPassPredictor constructs a predictor for the propagator and observer.
func NewPassPredictor(prop *Propagator, observer Observer) (*PassPredictor, error) {
	if prop == nil {
		return nil, errors.New("pass predictor: nil propagator")
	}
	cache, err := lru.New[int64, Pass](64)
	if err != nil {
		return nil, fmt.Errorf("pass predictor: %w", err)
	}
	return &PassPredictor{prop: prop, observer: observer, cache: cache}, nil
}

// NextPass returns the next pass beginning at or after from.
func (p *PassPredictor) NextPass(from time.Time) (Pass, error) {
	key := from.Truncate(time.Minute).Unix()
	if pass, ok := p.cache.Get(key); ok {
		return pass, nil
	}

	pass, err := p.findPass(from)
	if err != nil {
		return Pass{}, err
	}
	p.cache.Add(key, pass)
	return pass, nil
}

// NextPasses returns the next n passes, each search chained from the
// previous pass's set time.
func (p *PassPredictor) NextPasses(from time.Time, n int) ([]Pass, error) {
	passes := make([]Pass, 0, n)
	start := from
	for i := 0; i < n; i++ {
		pass, err := p.NextPass(start)
		if err != nil {
			return passes, err
		}
		passes = append(passes, pass)
		start = pass.Set.Add(time.Minute)
	}
	return passes, nil
}

func (p *PassPredictor) elevationAt(t time.Time) (float64, error) {
	obs, err := p.prop.ObserveAt(t, p.observer)
	if err != nil {
		return 0, err
	}
	return obs.Elevation, nil
}

func (p *PassPredictor) findPass(from time.Time) (Pass, error) {
	deadline := from.Add(passSearchHorizon)
	t := from

	el, err := p.elevationAt(t)
	if err != nil {
		return Pass{}, err
	}

	// If mid-pass, skip forward until the satellite sets so we report a
	// complete pass.
	for el >= 0 {
		t = t.Add(passCoarseStep)
		if t.After(deadline) {
			return Pass{}, ErrNoPass
		}
		if el, err = p.elevationAt(t); err != nil {
			return Pass{}, err
		}
	}

	// Coarse scan for the rise crossing.
	prev := t
	for {
		next := prev.Add(passCoarseStep)
		if next.After(deadline) {
			return Pass{}, ErrNoPass
		}
		el, err = p.elevationAt(next)
		if err != nil {
			return Pass{}, err
		}
		if el >= 0 {
			break
		}
		prev = next
	}
	rise, err := p.refineCrossing(prev, prev.Add(passCoarseStep), true)
	if err != nil {
		return Pass{}, err
	}

	// Coarse scan for the set crossing.
	prev = rise.Add(passRefineTo)
	for {
		next := prev.Add(passCoarseStep)
		el, err = p.elevationAt(next)
		if err != nil {
			return Pass{}, err
		}
		if el < 0 {
			break
		}
		prev = next
	}
	set, err := p.refineCrossing(prev, prev.Add(passCoarseStep), false)
	if err != nil {
		return Pass{}, err
	}

	// Peak scan between rise and set.
	maxT, maxEl := rise, -90.0
	for t := rise; !t.After(set); t = t.Add(10 * time.Second) {
		el, err = p.elevationAt(t)
		if err != nil {
			return Pass{}, err
		}
		if el > maxEl {
			maxT, maxEl = t, el
		}
	}

	riseObs, err := p.prop.ObserveAt(rise, p.observer)
	if err != nil {
		return Pass{}, err
	}
	setObs, err := p.prop.ObserveAt(set, p.observer)
	if err != nil {
		return Pass{}, err
	}

	return Pass{
		Rise:         rise,
		RiseAzimuth:  riseObs.Azimuth,
		Max:          maxT,
		MaxElevation: maxEl,
		Set:          set,
		SetAzimuth:   setObs.Azimuth,
	}, nil
}

// refineCrossing bisects [lo, hi] down to passRefineTo around a horizon
// crossing. rising selects the below→above crossing, otherwise above→below.
func (p *PassPredictor) refineCrossing(lo, hi time.Time, rising bool) (time.Time, error) {
	for hi.Sub(lo) > passRefineTo {
		mid := lo.Add(hi.Sub(lo) / 2)
		el, err := p.elevationAt(mid)
		if err != nil {
			return time.Time{}, err
		}
		above := el >= 0
		if above == rising {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
