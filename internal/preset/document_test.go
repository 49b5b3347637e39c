package preset

import (
	"errors"
	"testing"

	"github.com/muurk/videohub/internal/hub"
)

// parsedState builds a state the way a fetch does, from raw section text
func parsedState(t *testing.T, inputs, outputs, routing string) *hub.State {
	t.Helper()
	s := hub.NewState()
	var err error
	if s.InputLabels, _, err = hub.ParseLabels(hub.Tokenize(inputs), hub.Lenient); err != nil {
		t.Fatal(err)
	}
	if s.OutputLabels, _, err = hub.ParseLabels(hub.Tokenize(outputs), hub.Lenient); err != nil {
		t.Fatal(err)
	}
	if s.Routing, _, err = hub.ParseRouting(hub.Tokenize(routing), hub.Lenient); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEncodeDecode_ParsedState(t *testing.T) {
	want := parsedState(t,
		"0 CAM1\n1 \n-1 Ghost\n",
		"0 PGM\n1 PVW\n",
		"0 1\n1 0\n0 -1\n+1 1\n",
	)
	if _, ok := want.Routing[0]; !ok || want.Routing[0] != 1 {
		t.Fatalf("Routing = %v, want the signed record skipped", want.Routing)
	}

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, data)
	}
	if !got.Equal(want) {
		t.Errorf("Decode(Encode()) = %+v, want %+v", got, want)
	}
	if got.InputLabels[1] != hub.UnnamedLabel {
		t.Errorf("InputLabels[1] = %q, want %q", got.InputLabels[1], hub.UnnamedLabel)
	}
}

func TestEncode_RejectsNegativeIndex(t *testing.T) {
	s := hub.NewState()
	s.Routing[0] = -1

	if _, err := Encode(s); !errors.Is(err, ErrInvalidPreset) {
		t.Errorf("Encode() error = %v, want ErrInvalidPreset", err)
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	got, err := Decode([]byte(`{"description":"x","routing":{"2":3},"inputs":{},"outputs":{},"extra":true}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Routing[2] != 3 || got.Description != "x" {
		t.Errorf("Decode() = %+v", got)
	}
}
