package preset

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/videohub/internal/hub"
)

// Document is the on-disk preset format. Keys of the three maps are the
// decimal 0-based index. Fields other than these four are ignored on load.
type Document struct {
	Description string         `json:"description"`
	Routing     map[int]int    `json:"routing"`
	Inputs      map[int]string `json:"inputs"`
	Outputs     map[int]string `json:"outputs"`
}

// FromState builds a document from a state
func FromState(s *hub.State) *Document {
	c := s.Clone()
	return &Document{
		Description: c.Description,
		Routing:     c.Routing,
		Inputs:      c.InputLabels,
		Outputs:     c.OutputLabels,
	}
}

// State converts the document to a state. Empty labels become the unnamed
// placeholder.
func (d *Document) State() *hub.State {
	s := hub.NewState()
	s.Description = d.Description
	for out, in := range d.Routing {
		s.Routing[out] = in
	}
	for i, l := range d.Inputs {
		s.InputLabels[i] = normalizeLabel(l)
	}
	for i, l := range d.Outputs {
		s.OutputLabels[i] = normalizeLabel(l)
	}
	return s
}

// Encode renders a state as an indented preset document. The result is
// checked against the same schema Decode uses, so whatever Encode returns
// can be loaded again.
func Encode(s *hub.State) ([]byte, error) {
	data, err := json.MarshalIndent(FromState(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preset: %w", err)
	}

	v, err := defaultValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return append(data, '\n'), nil
}

// Decode validates and parses a preset document
func Decode(data []byte) (*hub.State, error) {
	v, err := defaultValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return doc.State(), nil
}

func normalizeLabel(l string) string {
	if l == "" {
		return hub.UnnamedLabel
	}
	return l
}
