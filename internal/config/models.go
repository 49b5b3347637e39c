package config

import (
	"fmt"
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// It stores known hubs and application preferences.
type Registry struct {
	Version     int             `yaml:"version"`
	Hubs        map[string]*Hub `yaml:"hubs,omitempty"` // Keyed by short name, e.g. "studio-a"
	Preferences *Preferences    `yaml:"preferences,omitempty"`
}

// Hub is a named Videohub the operator works with
type Hub struct {
	Host     string    `yaml:"host"`
	Port     int       `yaml:"port,omitempty"`
	Nickname string    `yaml:"nickname,omitempty"`  // Free-text description
	Model    string    `yaml:"model,omitempty"`     // Model name reported by the hub
	Inputs   int       `yaml:"inputs,omitempty"`    // Input count seen on last read
	Outputs  int       `yaml:"outputs,omitempty"`   // Output count seen on last read
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful read
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultHub      string        `yaml:"default_hub,omitempty"`      // Hub used when no target is given
	PresetDir       string        `yaml:"preset_dir,omitempty"`       // Where preset files live
	StrictParsing   bool          `yaml:"strict_parsing"`             // Fail on malformed records
	InitialTimeout  time.Duration `yaml:"initial_timeout,omitempty"`  // First-byte wait for the greeting
	FollowupTimeout time.Duration `yaml:"followup_timeout,omitempty"` // Idle window once a reply starts
	FetchTimeout    time.Duration `yaml:"fetch_timeout,omitempty"`    // First-byte wait after read commands
	AckTimeout      time.Duration `yaml:"ack_timeout,omitempty"`      // Wait for a route acknowledgement
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Hubs:        make(map[string]*Hub),
		Preferences: &Preferences{},
	}
}

// GetHub retrieves a hub by name. Returns nil if it doesn't exist.
func (r *Registry) GetHub(name string) *Hub {
	return r.Hubs[name]
}

// EnsureHub ensures a hub entry exists and returns it
func (r *Registry) EnsureHub(name string) *Hub {
	if r.Hubs == nil {
		r.Hubs = make(map[string]*Hub)
	}

	if h, exists := r.Hubs[name]; exists {
		return h
	}

	h := &Hub{}
	r.Hubs[name] = h
	return h
}

// SetHub adds or updates a hub's address
func (r *Registry) SetHub(name, host string, port int) *Hub {
	h := r.EnsureHub(name)
	h.Host = host
	h.Port = port
	return h
}

// RemoveHub deletes a hub. The default hub is cleared if it was removed.
func (r *Registry) RemoveHub(name string) bool {
	if _, ok := r.Hubs[name]; !ok {
		return false
	}
	delete(r.Hubs, name)
	if r.Preferences != nil && r.Preferences.DefaultHub == name {
		r.Preferences.DefaultHub = ""
	}
	return true
}

// SetDefaultHub makes name the hub used when no target is given
func (r *Registry) SetDefaultHub(name string) error {
	if _, ok := r.Hubs[name]; !ok {
		return fmt.Errorf("unknown hub %q", name)
	}
	if r.Preferences == nil {
		r.Preferences = &Preferences{}
	}
	r.Preferences.DefaultHub = name
	return nil
}

// DefaultHub returns the name and entry of the default hub, if one is set
func (r *Registry) DefaultHub() (string, *Hub) {
	if r.Preferences == nil || r.Preferences.DefaultHub == "" {
		return "", nil
	}
	name := r.Preferences.DefaultHub
	return name, r.Hubs[name]
}

// HubNames returns hub names in sorted order
func (r *Registry) HubNames() []string {
	names := make([]string, 0, len(r.Hubs))
	for name := range r.Hubs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindHub returns the name of the hub at host:port, or "" if none matches
func (r *Registry) FindHub(host string, port int) string {
	for _, name := range r.HubNames() {
		h := r.Hubs[name]
		if h.Host == host && (h.Port == port || (h.Port == 0 && port == DefaultPort)) {
			return name
		}
	}
	return ""
}

// UpdateHubLastSeen records what a successful read reported about a hub
func (r *Registry) UpdateHubLastSeen(name, model string, inputs, outputs int) {
	h := r.EnsureHub(name)
	h.LastSeen = time.Now()
	if model != "" {
		h.Model = model
	}
	h.Inputs = inputs
	h.Outputs = outputs
}

// EffectivePort returns the hub's port, defaulting to DefaultPort
func (h *Hub) EffectivePort() int {
	if h.Port == 0 {
		return DefaultPort
	}
	return h.Port
}
