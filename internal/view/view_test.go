package view

import (
	"reflect"
	"testing"
)

func TestApplyStatus(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)

	v.ApplyStatus(10, 20, 30, 40, "2026-03-01 12:00:00 UTC", []string{"a", "b"})

	if got, ok := surface.LastRotation(); !ok || got != [2]float64{-10, -20} {
		t.Fatalf("rotation = %v, want (-10, -20)", got)
	}
	if got := v.State().Position(); got != (Position{Lon: 10, Lat: 20, Az: 30, Alt: 40}) {
		t.Fatalf("position = %+v", got)
	}
	if len(surface.Redraws) != 1 || !reflect.DeepEqual(surface.Redraws[0], [][2]float64{{10, 20}}) {
		t.Fatalf("redraws = %v", surface.Redraws)
	}
	if len(surface.Labels) != 1 || surface.Labels[0].Time != "2026-03-01 12:00:00 UTC" {
		t.Fatalf("labels = %+v", surface.Labels)
	}
	// Each line is prepended in turn, so the batch reads newest-on-top.
	if !reflect.DeepEqual(surface.Log, []string{"b", "a"}) {
		t.Fatalf("log display = %v, want [b a]", surface.Log)
	}
}

func TestApplyStatusEmptyLog(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)

	v.ApplyStatus(0, 0, 0, 0, "", nil)
	if len(surface.Log) != 0 {
		t.Fatalf("log display = %v, want untouched for an empty batch", surface.Log)
	}
}

func TestApplyFailure(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)
	v.State().AppendTrajectory(1, 2)

	v.ApplyFailure()
	if got := v.State().Trajectory(); len(got) != 0 {
		t.Fatalf("trajectory = %v, want cleared", got)
	}
	if !reflect.DeepEqual(surface.Log, []string{"connection failed, retrying"}) {
		t.Fatalf("log display = %v", surface.Log)
	}
}

func TestApplyFailureQuietWhenStopped(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)
	v.State().SetStopped(true)

	v.ApplyFailure()
	if len(surface.Log) != 0 {
		t.Fatalf("log display = %v, want quiet while stopped", surface.Log)
	}
}

func TestComputingStartStop(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)
	v.State().AppendTrajectory(1, 2)

	v.ComputingStopped()
	if !v.State().Stopped() {
		t.Fatal("Stopped() = false after ComputingStopped")
	}
	if got := v.State().Trajectory(); len(got) != 0 {
		t.Fatalf("trajectory = %v, want cleared on stop", got)
	}

	v.ComputingStarted()
	if v.State().Stopped() {
		t.Fatal("Stopped() = true after ComputingStarted")
	}
}

func TestNotice(t *testing.T) {
	surface := &Recording{}
	v := New(NewState(), surface)

	v.Notice("starttracking failed: boom")
	if !reflect.DeepEqual(surface.Log, []string{"starttracking failed: boom"}) {
		t.Fatalf("log display = %v", surface.Log)
	}
}
