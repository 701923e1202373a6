package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/signalsfoundry/sattrack/internal/clock"
	"github.com/signalsfoundry/sattrack/internal/track"
)

// Reference ISS element set with valid checksums.
const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

var epochTime = time.Date(2008, time.September, 20, 13, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, rotor track.Rotor) (*Server, *track.Tracker, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(epochTime)
	tr, err := track.NewTracker(track.TrackerConfig{
		ID:       "ISS",
		TLE:      track.TLE{Name: "ISS", Line1: issLine1, Line2: issLine2},
		Observer: track.DefaultObserver,
		Clock:    clk,
		Rotor:    rotor,
	})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	t.Cleanup(func() {
		tr.StopComputing()
		tr.StopTracking()
	})

	catalog := track.NewCatalog()
	if err := catalog.Add(tr); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s := NewServer(catalog, nil, nil)
	s.clk = clk
	return s, tr, clk
}

func doGet(t *testing.T, s *Server, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatusBeforeFirstFix(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doGet(t, s, "/sat/ISS?status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Lon != 0 || resp.Lat != 0 || resp.Az != 0 || resp.Alt != 0 {
		t.Fatalf("idle status carries a position: %+v", resp)
	}
	if resp.Time != "" {
		t.Fatalf("Time = %q, want empty before the first fix", resp.Time)
	}
	if resp.Interval != 1 {
		t.Fatalf("Interval = %v, want 1", resp.Interval)
	}
	// The log field must always be an array, never null.
	if !strings.Contains(rec.Body.String(), `"log":[]`) {
		t.Fatalf("status body = %s, want an empty log array", rec.Body.String())
	}
}

func TestStatusAfterFix(t *testing.T) {
	s, tr, _ := newTestServer(t, nil)

	tr.StartComputing(context.Background())
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := tr.Last(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the first fix")
		}
		time.Sleep(time.Millisecond)
	}

	rec := doGet(t, s, "/sat/ISS?status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Time == "" {
		t.Fatal("Time empty after a fix")
	}
	if _, err := time.Parse(StatusTimeFormat, resp.Time); err != nil {
		t.Fatalf("Time %q does not match the status format: %v", resp.Time, err)
	}
	found := false
	for _, line := range resp.Log {
		if line == "computing started" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Log = %v, want it to carry the computing-started line", resp.Log)
	}

	// Log lines are drained: a second poll does not repeat them.
	rec = doGet(t, s, "/sat/ISS?status", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(resp.Log) != 0 {
		t.Fatalf("second poll Log = %v, want empty", resp.Log)
	}
}

func TestUnknownSatellite(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	rec := doGet(t, s, "/sat/NOPE?status", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestComputingControls(t *testing.T) {
	s, tr, _ := newTestServer(t, nil)

	rec := doGet(t, s, "/sat/ISS?startcomputing", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("startcomputing code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if !tr.Computing() {
		t.Fatal("Computing() = false after ?startcomputing")
	}

	rec = doGet(t, s, "/sat/ISS?stopcomputing", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("stopcomputing code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if tr.Computing() {
		t.Fatal("Computing() = true after ?stopcomputing")
	}
}

func TestTrackingControls(t *testing.T) {
	s, tr, _ := newTestServer(t, &track.LogRotor{})

	rec := doGet(t, s, "/sat/ISS?starttracking", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("starttracking code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if !tr.Tracking() {
		t.Fatal("Tracking() = false after ?starttracking")
	}

	rec = doGet(t, s, "/sat/ISS?stoptracking", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("stoptracking code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if tr.Tracking() {
		t.Fatal("Tracking() = true after ?stoptracking")
	}
}

func TestStartTrackingWithoutRotor(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	rec := doGet(t, s, "/sat/ISS?starttracking", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("starttracking code = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestUnknownOperation(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	rec := doGet(t, s, "/sat/ISS?selfdestruct", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doGet(t, s, "/sat/ISS?status", http.Header{requestIDHeader: []string{"req-42"}})
	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("%s = %q, want %q", requestIDHeader, got, "req-42")
	}

	rec = doGet(t, s, "/sat/ISS?status", nil)
	if got := rec.Header().Get(requestIDHeader); got == "" {
		t.Fatalf("%s not minted for an inbound request without one", requestIDHeader)
	}
}

func TestGzipStatus(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doGet(t, s, "/sat/ISS?status", http.Header{"Accept-Encoding": []string{"gzip"}})
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer gz.Close()
	var resp StatusResponse
	if err := json.NewDecoder(gz).Decode(&resp); err != nil {
		t.Fatalf("decode gzipped status: %v", err)
	}
	if resp.Interval != 1 {
		t.Fatalf("Interval = %v, want 1", resp.Interval)
	}
}

func TestNextPass(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doGet(t, s, "/sat/ISS?nextpass", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	var pass track.Pass
	if err := json.Unmarshal(rec.Body.Bytes(), &pass); err != nil {
		t.Fatalf("decode pass: %v", err)
	}
	if !pass.Rise.Before(pass.Set) {
		t.Fatalf("pass not ordered: rise %v, set %v", pass.Rise, pass.Set)
	}
	if pass.MaxElevation <= 0 {
		t.Fatalf("MaxElevation = %v, want > 0", pass.MaxElevation)
	}
}
