package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/signalsfoundry/sattrack/internal/clock"
	"github.com/signalsfoundry/sattrack/internal/logging"
	"github.com/signalsfoundry/sattrack/internal/view"
)

// FailureRetryDelay is how long the loop waits after a failed poll before
// trying again.
const FailureRetryDelay = 2 * time.Second

// Poller repeatedly fetches ?status from the tracker and applies the result
// to the view. It is a self-rescheduling loop, not a fixed-rate timer: each
// cycle's delay is decided after that cycle completes, so a slow or failed
// request naturally delays the next attempt.
type Poller struct {
	// BaseURL is the satellite page URL; ?status is appended.
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger defaults to noop.
	Logger logging.Logger
	// View receives every poll outcome.
	View *view.View
}

// Run polls until ctx is cancelled, returning ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	clk := p.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	for {
		delay := p.PollOnce(ctx)
		if err := clock.Sleep(ctx, clk, delay); err != nil {
			return err
		}
	}
}

// PollOnce performs one poll cycle and returns the delay before the next.
// On success the delay is server-specified; on failure it is the fixed
// retry delay and the view's failure path runs.
func (p *Poller) PollOnce(ctx context.Context) time.Duration {
	log := p.Logger
	if log == nil {
		log = logging.Noop()
	}

	status, err := p.fetchStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn(ctx, "status poll failed", logging.String("error", err.Error()))
			p.View.ApplyFailure()
		}
		return FailureRetryDelay
	}

	p.View.ApplyStatus(
		float64(status.Lon), float64(status.Lat),
		float64(status.Az), float64(status.Alt),
		status.Time, status.Log,
	)

	delay := time.Duration(float64(status.Interval) * float64(time.Second))
	if delay <= 0 {
		delay = FailureRetryDelay
	}
	return delay
}

func (p *Poller) fetchStatus(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"?status", nil)
	if err != nil {
		return Status{}, fmt.Errorf("build status request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("fetch status: unexpected status %s", resp.Status)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
