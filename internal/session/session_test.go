package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/hubtest"
	"github.com/muurk/videohub/internal/preset"
)

func newTestSession(t *testing.T, srv *hubtest.Server) *Session {
	t.Helper()
	c := hub.NewClient("", 0)
	if srv != nil {
		c = hub.NewClient(srv.Host(), srv.Port())
	}
	c.FetchInitialTimeout = 150 * time.Millisecond
	c.InitialTimeout = 100 * time.Millisecond
	c.FollowupTimeout = 40 * time.Millisecond
	c.AckTimeout = 100 * time.Millisecond
	return New(c, preset.NewStore(t.TempDir()))
}

func TestSession_ReadSaveLoadCompare(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	s := newTestSession(t, srv)

	if _, err := s.Read(context.Background()); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.HubFetched.IsZero() {
		t.Error("HubFetched not set")
	}

	if _, err := s.Save("studio", "Morning show", false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if s.Hub.Description != "" {
		t.Error("Save() should not modify the hub snapshot")
	}

	loaded, err := s.Load("studio.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.PresetName != "studio" {
		t.Errorf("PresetName = %q, want studio", s.PresetName)
	}
	if loaded.Description != "Morning show" {
		t.Errorf("Description = %q, want Morning show", loaded.Description)
	}

	rows, err := s.Compare()
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if n := hub.CountDifferences(rows); n != 0 {
		t.Errorf("CountDifferences() = %d, want 0", n)
	}
}

func TestSession_Preconditions(t *testing.T) {
	s := newTestSession(t, nil)

	if _, err := s.Save("x", "", false); !errors.Is(err, ErrHubNotRead) || !hub.IsPreconditionError(err) {
		t.Errorf("Save() error = %v, want ErrHubNotRead", err)
	}
	if _, err := s.Compare(); !errors.Is(err, ErrNoPresetLoaded) {
		t.Errorf("Compare() error = %v, want ErrNoPresetLoaded", err)
	}
	if _, err := s.Apply(context.Background(), nil); !errors.Is(err, ErrNoPresetLoaded) {
		t.Errorf("Apply() error = %v, want ErrNoPresetLoaded", err)
	}
	if _, err := s.Read(context.Background()); !hub.IsPreconditionError(err) {
		t.Errorf("Read() without target error = %v, want precondition", err)
	}

	s.Preset = hubtest.SampleState()
	if _, err := s.Compare(); !errors.Is(err, ErrHubNotRead) {
		t.Errorf("Compare() error = %v, want ErrHubNotRead", err)
	}

	labelsOnly := hubtest.SampleState()
	labelsOnly.Routing = map[int]int{}
	s.Preset, s.PresetName = labelsOnly, "labels"
	_, err := s.Compare()
	if !errors.Is(err, ErrPresetHasNoRoutes) || errors.Is(err, ErrNoPresetLoaded) {
		t.Errorf("Compare() with empty routing error = %v, want ErrPresetHasNoRoutes", err)
	}
}

func TestSession_FailedReadKeepsSnapshot(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	s := newTestSession(t, srv)

	if _, err := s.Read(context.Background()); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	before := s.Hub
	fetched := s.HubFetched
	srv.Close()

	if _, err := s.Read(context.Background()); err == nil {
		t.Fatal("Read() after close should fail")
	}
	if s.Hub != before || !s.HubFetched.Equal(fetched) {
		t.Error("Failed Read() replaced the hub snapshot")
	}
}

func TestSession_Apply(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	s := newTestSession(t, srv)

	p := hubtest.SampleState()
	p.Routing[0] = 3
	p.Routing[3] = 0
	if _, err := s.Store().Save("swap", p, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("swap"); err != nil {
		t.Fatal(err)
	}

	var calls int
	result, err := s.Apply(context.Background(), func(i, total int, o hub.RouteOutcome) {
		calls++
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Succeeded() != 4 || calls != 4 {
		t.Errorf("Succeeded() = %d, calls = %d, want 4", result.Succeeded(), calls)
	}
	if got := srv.State().Routing[0]; got != 3 {
		t.Errorf("hub routing[0] = %d, want 3", got)
	}
}

func TestSession_ApplyEmptyPreset(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	s := newTestSession(t, srv)

	s.Preset = hub.NewState()
	result, err := s.Apply(context.Background(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !result.NothingToApply() {
		t.Error("NothingToApply() = false, want true")
	}
	if srv.Connections() != 0 {
		t.Errorf("Connections() = %d, want 0", srv.Connections())
	}
}

func TestSession_SetTarget(t *testing.T) {
	s := newTestSession(t, nil)
	s.Hub = hubtest.SampleState()
	s.Preset = hubtest.SampleState()

	if err := s.SetTarget("bad host!", 9990); !hub.IsValidationError(err) {
		t.Errorf("SetTarget() error = %v, want validation error", err)
	}
	if s.Hub == nil {
		t.Error("Invalid SetTarget() should not drop the hub snapshot")
	}

	if err := s.SetTarget("192.168.1.248", 0); err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}
	if s.Target() != "192.168.1.248:9990" {
		t.Errorf("Target() = %q", s.Target())
	}
	if s.Hub != nil {
		t.Error("SetTarget() should drop the hub snapshot")
	}
	if s.Preset == nil {
		t.Error("SetTarget() should keep the loaded preset")
	}
}

func TestSession_Status(t *testing.T) {
	s := newTestSession(t, nil)

	st := s.Status()
	if st.Target != "" || st.HubRead || st.Differences != -1 {
		t.Errorf("Status() = %+v", st)
	}

	_ = s.SetTarget("10.0.0.1", 9990)
	s.Hub = hubtest.SampleState()
	s.Preset = hubtest.SampleState()
	s.Preset.Routing[1] = 2
	s.PresetName = "p"

	st = s.Status()
	if st.Target != "10.0.0.1:9990" || !st.HubRead || st.PresetName != "p" {
		t.Errorf("Status() = %+v", st)
	}
	if st.Differences != 1 {
		t.Errorf("Differences = %d, want 1", st.Differences)
	}
	if st.HubSummary != "4 inputs, 4 outputs, 4 routes" {
		t.Errorf("HubSummary = %q", st.HubSummary)
	}
}

func TestSession_DeleteAndList(t *testing.T) {
	s := newTestSession(t, nil)
	for _, name := range []string{"b", "a"} {
		if _, err := s.Store().Save(name, hubtest.SampleState(), false); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.List()
	if err != nil || len(entries) != 2 || entries[0].Name != "a" {
		t.Fatalf("List() = %v, %v", entries, err)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("a"); !errors.Is(err, preset.ErrPresetNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrPresetNotFound", err)
	}
}
