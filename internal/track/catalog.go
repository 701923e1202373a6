package track

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a satellite id is not in the catalog.
var ErrNotFound = errors.New("satellite not found")

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventTrackerAdded EventType = iota
	EventTrackerRemoved
)

// Event is emitted to subscribers when the set of tracked satellites changes.
type Event struct {
	Type        EventType
	SatelliteID string
}

// Catalog is an in-memory, thread-safe registry of trackers keyed by
// satellite id.
type Catalog struct {
	mu sync.RWMutex

	trackers map[string]*Tracker

	subs []func(Event)
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{trackers: make(map[string]*Tracker)}
}

// Add registers a tracker. It returns an error if the id already exists.
func (c *Catalog) Add(tr *Tracker) error {
	if tr == nil {
		return errors.New("nil tracker")
	}
	c.mu.Lock()
	if _, exists := c.trackers[tr.ID()]; exists {
		c.mu.Unlock()
		return fmt.Errorf("satellite with ID %q already exists", tr.ID())
	}
	c.trackers[tr.ID()] = tr
	subs := append(([]func(Event))(nil), c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventTrackerAdded, SatelliteID: tr.ID()})
	}
	return nil
}

// Get returns the tracker for id, or ErrNotFound.
func (c *Catalog) Get(id string) (*Tracker, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tr, ok := c.trackers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return tr, nil
}

// Remove unregisters a tracker and stops its loops.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	tr, ok := c.trackers[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(c.trackers, id)
	subs := append(([]func(Event))(nil), c.subs...)
	c.mu.Unlock()

	tr.StopComputing()
	tr.StopTracking()
	for _, fn := range subs {
		fn(Event{Type: EventTrackerRemoved, SatelliteID: id})
	}
	return nil
}

// IDs returns the tracked satellite ids in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.trackers))
	for id := range c.trackers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked satellites.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trackers)
}

// Subscribe registers a callback invoked on every catalog change.
func (c *Catalog) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}
