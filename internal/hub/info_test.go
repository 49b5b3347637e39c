package hub

import (
	"testing"
)

const samplePreamble = "PROTOCOL PREAMBLE:\r\nVersion: 2.8\r\n\r\n" +
	"VIDEOHUB DEVICE:\nDevice present: true\nModel name: Blackmagic Smart Videohub 40 x 40\n" +
	"Video inputs: 40\nVideo outputs: 40\n\nINPUT LABELS:\n0 CAM1\n"

func TestParseDeviceInfo(t *testing.T) {
	info := ParseDeviceInfo(samplePreamble)

	if got := info.ModelName(); got != "Blackmagic Smart Videohub 40 x 40" {
		t.Errorf("ModelName() = %q", got)
	}
	if v, ok := info.Get("video INPUTS"); !ok || v != "40" {
		t.Errorf("Get(video INPUTS) = (%q, %v)", v, ok)
	}
	for _, f := range info.Fields {
		if f.Key == "PROTOCOL PREAMBLE" || f.Key == "VIDEOHUB DEVICE" {
			t.Errorf("Section header %q reported as a field", f.Key)
		}
	}
	if len(info.Fields) != 5 {
		t.Errorf("len(Fields) = %d, want 5", len(info.Fields))
	}
}

func TestLines_StopsAtLabels(t *testing.T) {
	lines := Lines(samplePreamble)
	if len(lines) != 7 {
		t.Errorf("len(Lines) = %d, want 7: %q", len(lines), lines)
	}
	if lines[1] != "Version: 2.8" {
		t.Errorf("lines[1] = %q, want carriage return stripped", lines[1])
	}
}

func TestParseLocks(t *testing.T) {
	locks := ParseLocks("\n0 U\n1 L\n2 O\n3\n")

	if len(locks) != 3 {
		t.Fatalf("len(locks) = %d, want 3", len(locks))
	}
	if locks[1] != LockLocked || locks[2] != LockOwned || locks[0] != LockUnlocked {
		t.Errorf("ParseLocks() = %v", locks)
	}
}
