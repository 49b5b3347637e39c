package hub

import (
	"maps"
	"slices"
)

const (
	// UnnamedLabel replaces empty labels read from the wire
	UnnamedLabel = "(unnamed)"

	// UnknownLabel is rendered for an index with no known label
	UnknownLabel = "unknown"

	// NoneLabel is rendered for an output that has no route
	NoneLabel = "none"

	// NoInput marks an absent route in comparisons
	NoInput = -1
)

// State is a snapshot of a hub's labels and routing table.
//
// Indices are 0-based and need not be contiguous; always look them up by
// key. Routing may reference indices with no known label.
type State struct {
	InputLabels  map[int]string
	OutputLabels map[int]string
	Routing      map[int]int // output index to input index
	Description  string
	Source       string // where the state came from (hub address or preset path)
}

// NewState returns an empty state with non-nil maps
func NewState() *State {
	return &State{
		InputLabels:  make(map[int]string),
		OutputLabels: make(map[int]string),
		Routing:      make(map[int]int),
	}
}

// IsEmpty reports whether the state has no labels and no routes
func (s *State) IsEmpty() bool {
	return s == nil || (len(s.InputLabels) == 0 && len(s.OutputLabels) == 0 && len(s.Routing) == 0)
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := NewState()
	maps.Copy(c.InputLabels, s.InputLabels)
	maps.Copy(c.OutputLabels, s.OutputLabels)
	maps.Copy(c.Routing, s.Routing)
	c.Description = s.Description
	c.Source = s.Source
	return c
}

// InputLabel returns the label for an input, UnknownLabel if absent and
// NoneLabel for NoInput.
func (s *State) InputLabel(idx int) string {
	return lookupLabel(s.InputLabels, idx)
}

// OutputLabel returns the label for an output, UnknownLabel if absent
func (s *State) OutputLabel(idx int) string {
	return lookupLabel(s.OutputLabels, idx)
}

// Route returns the input routed to output, or NoInput
func (s *State) Route(output int) int {
	if s == nil {
		return NoInput
	}
	if in, ok := s.Routing[output]; ok {
		return in
	}
	return NoInput
}

// SortedOutputs returns the routed outputs in ascending order
func (s *State) SortedOutputs() []int {
	return slices.Sorted(maps.Keys(s.Routing))
}

// Equal compares labels, routing and description. Source is ignored.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Description == other.Description &&
		maps.Equal(s.InputLabels, other.InputLabels) &&
		maps.Equal(s.OutputLabels, other.OutputLabels) &&
		maps.Equal(s.Routing, other.Routing)
}

// Ordinal converts a 0-based index to the 1-based number shown to operators
func Ordinal(idx int) int {
	return idx + 1
}

func lookupLabel(labels map[int]string, idx int) string {
	if idx == NoInput {
		return NoneLabel
	}
	if l, ok := labels[idx]; ok {
		return l
	}
	return UnknownLabel
}
