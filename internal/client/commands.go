package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/signalsfoundry/sattrack/internal/logging"
	"github.com/signalsfoundry/sattrack/internal/view"
)

// Dispatcher issues the four control commands against the satellite page
// URL. Commands carry no response payload; any non-error HTTP status is
// success. Failures are reported to the caller and surfaced as one log
// line on the view rather than silently dropped.
type Dispatcher struct {
	// BaseURL is the satellite page URL; the command query is appended.
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Logger defaults to noop.
	Logger logging.Logger
	// View receives the stopped-flag flips and failure notices.
	View *view.View
}

// StartComputing asks the tracker to begin propagating. On success the
// view's stopped flag clears.
func (d *Dispatcher) StartComputing(ctx context.Context) error {
	if err := d.send(ctx, "startcomputing"); err != nil {
		return err
	}
	d.View.ComputingStarted()
	return nil
}

// StopComputing asks the tracker to halt propagation. On success the view's
// stopped flag is set and the trajectory cleared immediately, without
// waiting for server confirmation beyond the bare success signal.
func (d *Dispatcher) StopComputing(ctx context.Context) error {
	if err := d.send(ctx, "stopcomputing"); err != nil {
		return err
	}
	d.View.ComputingStopped()
	return nil
}

// StartTracking asks the tracker to begin slewing the rotor.
func (d *Dispatcher) StartTracking(ctx context.Context) error {
	return d.send(ctx, "starttracking")
}

// StopTracking asks the tracker to stop slewing the rotor.
func (d *Dispatcher) StopTracking(ctx context.Context) error {
	return d.send(ctx, "stoptracking")
}

func (d *Dispatcher) send(ctx context.Context, op string) error {
	log := d.Logger
	if log == nil {
		log = logging.Noop()
	}

	err := d.doSend(ctx, op)
	if err != nil {
		log.Warn(ctx, "command failed",
			logging.String("op", op),
			logging.String("error", err.Error()),
		)
		if d.View != nil {
			d.View.Notice(fmt.Sprintf("%s failed: %v", op, err))
		}
		return err
	}
	log.Debug(ctx, "command sent", logging.String("op", op))
	return nil
}

func (d *Dispatcher) doSend(ctx context.Context, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"?"+op, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send %s: unexpected status %s", op, resp.Status)
	}
	return nil
}
