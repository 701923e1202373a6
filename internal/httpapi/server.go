// Package httpapi exposes the tracker's status and control surface: a JSON
// status document polled by visualization clients, and fire-and-forget
// control commands, all keyed by query parameter on the satellite page URL.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/sattrack/internal/clock"
	"github.com/signalsfoundry/sattrack/internal/logging"
	"github.com/signalsfoundry/sattrack/internal/observability"
	"github.com/signalsfoundry/sattrack/internal/track"
)

// StatusTimeFormat is how observation timestamps are rendered in the
// status document.
const StatusTimeFormat = "2006-01-02 15:04:05 UTC"

// StatusResponse is the JSON document returned for ?status requests.
// Interval is the delay, in seconds, the client should wait before the
// next poll. Log lines are drained oldest-first.
type StatusResponse struct {
	Lon      float64  `json:"lon"`
	Lat      float64  `json:"lat"`
	Az       float64  `json:"az"`
	Alt      float64  `json:"alt"`
	Time     string   `json:"time"`
	Interval float64  `json:"interval"`
	Log      []string `json:"log"`
}

// Server serves the satellite status/control endpoints.
type Server struct {
	catalog   *track.Catalog
	collector *observability.TrackerCollector
	log       logging.Logger
	clk       clock.Clock
	tracer    trace.Tracer

	mu    sync.Mutex
	preds map[string]*track.PassPredictor
}

// NewServer constructs the HTTP surface over the catalog. collector may be
// nil to disable metrics.
func NewServer(catalog *track.Catalog, collector *observability.TrackerCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		catalog:   catalog,
		collector: collector,
		log:       log,
		clk:       clock.Real{},
		tracer:    otel.Tracer("sattrack/httpapi"),
		preds:     make(map[string]*track.PassPredictor),
	}
}

// Handler returns the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sat/{id}", s.handleSatellite)

	var h http.Handler = mux
	h = withGzip(h)
	h = withMetrics(s.collector, h)
	h = withRequestID(s.log, h)
	return h
}

// handleSatellite dispatches on the query parameter carried by the page
// URL: ?status, ?startcomputing, ?stopcomputing, ?starttracking,
// ?stoptracking, ?nextpass.
func (s *Server) handleSatellite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	tr, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, track.ErrNotFound) {
			http.Error(w, "unknown satellite", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	switch {
	case q.Has("status"):
		s.handleStatus(ctx, w, tr)
	case q.Has("startcomputing"):
		tr.StartComputing(context.WithoutCancel(ctx))
		w.WriteHeader(http.StatusNoContent)
	case q.Has("stopcomputing"):
		tr.StopComputing()
		w.WriteHeader(http.StatusNoContent)
	case q.Has("starttracking"):
		if err := tr.StartTracking(context.WithoutCancel(ctx)); err != nil {
			s.logFor(ctx).Warn(ctx, "start tracking failed", logging.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case q.Has("stoptracking"):
		tr.StopTracking()
		w.WriteHeader(http.StatusNoContent)
	case q.Has("nextpass"):
		s.handleNextPass(ctx, w, tr)
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
	}
}

func (s *Server) handleStatus(ctx context.Context, w http.ResponseWriter, tr *track.Tracker) {
	ctx, span := s.tracer.Start(ctx, "status", trace.WithAttributes(
		attribute.String("satellite", tr.ID()),
	))
	defer span.End()

	// An idle or not-yet-converged tracker still answers: the view keeps
	// polling and shows zeros until computing produces a fix.
	resp := StatusResponse{
		Interval: tr.Interval().Seconds(),
		Log:      tr.DrainLog(),
	}
	if obs, ok := tr.Last(); ok {
		resp.Lon = obs.Longitude
		resp.Lat = obs.Latitude
		resp.Az = obs.Azimuth
		resp.Alt = obs.Elevation
		resp.Time = obs.Time.Format(StatusTimeFormat)
	}
	if resp.Log == nil {
		resp.Log = []string{}
	}

	writeJSON(ctx, w, s.logFor(ctx), resp)
}

func (s *Server) handleNextPass(ctx context.Context, w http.ResponseWriter, tr *track.Tracker) {
	ctx, span := s.tracer.Start(ctx, "nextpass", trace.WithAttributes(
		attribute.String("satellite", tr.ID()),
	))
	defer span.End()

	pred, err := s.predictorFor(tr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pass, err := pred.NextPass(s.clk.Now())
	if err != nil {
		if errors.Is(err, track.ErrNoPass) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logFor(ctx).Error(ctx, "pass prediction failed", logging.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(ctx, w, s.logFor(ctx), pass)
}

// predictorFor returns the per-satellite pass predictor, creating it on
// first use so its result cache persists across requests.
func (s *Server) predictorFor(tr *track.Tracker) (*track.PassPredictor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pred, ok := s.preds[tr.ID()]; ok {
		return pred, nil
	}
	pred, err := track.NewPassPredictor(tr.Propagator(), tr.Observer())
	if err != nil {
		return nil, err
	}
	s.preds[tr.ID()] = pred
	return pred, nil
}

func (s *Server) logFor(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return s.log
}

func writeJSON(ctx context.Context, w http.ResponseWriter, log logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn(ctx, "encode response failed", logging.String("error", err.Error()))
	}
}
