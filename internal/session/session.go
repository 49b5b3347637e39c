// Package session holds the state of one operator session: the target hub,
// the last routing read from it and the preset loaded from disk.
//
// The two snapshots are kept separately and are never merged. Read only
// replaces the hub snapshot when the fetch succeeds; Load only replaces the
// preset snapshot when the file decodes.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/logging"
	"github.com/muurk/videohub/internal/preset"
)

var (
	// ErrHubNotRead is returned by operations that need a hub snapshot
	ErrHubNotRead = errors.New("hub not read")

	// ErrNoPresetLoaded is returned by operations that need a loaded preset
	ErrNoPresetLoaded = errors.New("no preset loaded")

	// ErrPresetHasNoRoutes is returned by Compare when the loaded preset's
	// routing table is empty
	ErrPresetHasNoRoutes = errors.New("loaded preset has no routes")
)

func precondition(sentinel error, hint string) error {
	return &hub.DeviceError{
		Type:    hub.ErrTypePrecondition,
		Message: hint,
		Err:     sentinel,
		Output:  -1,
	}
}

// Session is a single operator's working set
type Session struct {
	client *hub.Client
	store  *preset.Store

	// Hub is the last successful read of the target, nil before the first
	Hub *hub.State
	// HubPreamble is the raw device information block of that read
	HubPreamble string
	// HubInfo is the parsed device information of that read
	HubInfo hub.DeviceInfo
	// HubLocks maps output index to lock state for that read
	HubLocks map[int]string
	// HubFetched is when Hub was read
	HubFetched time.Time

	// Preset is the loaded preset, nil until Load succeeds
	Preset *hub.State
	// PresetName is the name Preset was loaded under
	PresetName string

	now func() time.Time
}

// New creates a session that talks through client and keeps presets in store.
// client carries the target and timings; it is copied.
func New(client *hub.Client, store *preset.Store) *Session {
	if client == nil {
		client = hub.NewClient("", 0)
	}
	if store == nil {
		store = preset.NewStore("")
	}
	c := *client
	return &Session{
		client: &c,
		store:  store,
		now:    time.Now,
	}
}

// Client returns the client used for the target
func (s *Session) Client() *hub.Client {
	return s.client
}

// Store returns the preset store
func (s *Session) Store() *preset.Store {
	return s.store
}

// Target returns the current host:port
func (s *Session) Target() string {
	return s.client.Address()
}

// HasTarget reports whether a host has been set
func (s *Session) HasTarget() bool {
	return s.client.Host != ""
}

// SetTarget changes the hub the session talks to. The hub snapshot belongs
// to the old target and is dropped; the loaded preset is kept.
func (s *Session) SetTarget(host string, port int) error {
	if port == 0 {
		port = hub.DefaultPort
	}
	if err := hub.ValidateTarget(host, port); err != nil {
		return err
	}
	if host == s.client.Host && port == s.client.Port {
		return nil
	}

	s.client.Host = host
	s.client.Port = port
	s.clearHub()

	logging.Info("Target changed", zap.String("address", s.client.Address()))
	return nil
}

func (s *Session) clearHub() {
	s.Hub = nil
	s.HubPreamble = ""
	s.HubInfo = hub.DeviceInfo{}
	s.HubLocks = nil
	s.HubFetched = time.Time{}
}

// Read fetches labels and routing from the target. On failure the previous
// hub snapshot is left as it was.
func (s *Session) Read(ctx context.Context) (*hub.FetchResult, error) {
	if !s.HasTarget() {
		return nil, hub.NewPreconditionError("no hub address set")
	}

	result, err := s.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.Hub = result.State
	s.HubPreamble = result.Preamble
	s.HubInfo = result.Info
	s.HubLocks = result.Locks
	s.HubFetched = s.now()
	return result, nil
}

// Save writes the hub snapshot as a preset. description replaces the
// snapshot's description when not empty.
func (s *Session) Save(name, description string, overwrite bool) (string, error) {
	if s.Hub == nil {
		return "", precondition(ErrHubNotRead, "no hub data available, read the hub first")
	}

	state := s.Hub.Clone()
	if description != "" {
		state.Description = description
	}
	return s.store.Save(name, state, overwrite)
}

// Load reads a preset by name and makes it the loaded preset
func (s *Session) Load(name string) (*hub.State, error) {
	clean, err := preset.CleanName(name)
	if err != nil {
		return nil, err
	}

	state, err := s.store.LoadByName(clean)
	if err != nil {
		return nil, err
	}

	s.Preset = state
	s.PresetName = clean
	return state, nil
}

// Delete removes a preset file. Deleting the loaded preset does not unload it.
func (s *Session) Delete(name string) error {
	return s.store.Delete(name)
}

// List returns the presets in the store
func (s *Session) List() ([]preset.Entry, error) {
	return s.store.List()
}

// Compare lines up the loaded preset against the hub snapshot
func (s *Session) Compare() ([]hub.RouteComparison, error) {
	if s.Preset == nil {
		return nil, precondition(ErrNoPresetLoaded, "load a preset first")
	}
	if len(s.Preset.Routing) == 0 {
		return nil, precondition(ErrPresetHasNoRoutes, "preset "+s.PresetName+" has no routes to compare")
	}
	if s.Hub == nil {
		return nil, precondition(ErrHubNotRead, "read the hub first")
	}
	return hub.Compare(s.Preset, s.Hub)
}

// Apply sends the loaded preset's routing to the target. A preset with no
// routes returns an empty result without connecting.
func (s *Session) Apply(ctx context.Context, onRoute hub.RouteCallback) (*hub.ApplyResult, error) {
	if s.Preset == nil {
		return nil, precondition(ErrNoPresetLoaded, "load a preset first")
	}
	if !s.HasTarget() {
		return nil, hub.NewPreconditionError("no hub address set")
	}

	result, err := s.client.Apply(ctx, s.Preset, onRoute)
	if err != nil {
		return nil, fmt.Errorf("apply preset %q: %w", s.PresetName, err)
	}
	return result, nil
}

// Status summarises the session
type Status struct {
	Target     string
	HubRead    bool
	HubModel   string
	HubSummary string
	HubFetched time.Time

	PresetName        string
	PresetDescription string
	PresetSummary     string

	// Differences is the number of differing outputs, or -1 when the
	// preset and hub cannot be compared yet
	Differences int
}

// Status returns a snapshot of the session
func (s *Session) Status() Status {
	st := Status{
		Target:      s.Target(),
		Differences: -1,
	}
	if !s.HasTarget() {
		st.Target = ""
	}
	if s.Hub != nil {
		st.HubRead = true
		st.HubModel = s.HubInfo.ModelName()
		st.HubSummary = s.Hub.Summary()
		st.HubFetched = s.HubFetched
	}
	if s.Preset != nil {
		st.PresetName = s.PresetName
		st.PresetDescription = s.Preset.Description
		st.PresetSummary = s.Preset.Summary()
	}
	if rows, err := s.Compare(); err == nil {
		st.Differences = hub.CountDifferences(rows)
	}
	return st
}
