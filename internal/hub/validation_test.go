package hub

import "testing"

func TestValidateHost(t *testing.T) {
	valid := []string{"192.168.1.248", "172.20.5.247", "::1", "videohub", "hub-1.studio.local"}
	for _, h := range valid {
		if err := ValidateHost(h); err != nil {
			t.Errorf("ValidateHost(%q) error = %v", h, err)
		}
	}

	invalid := []string{"", "  ", "192.168.1.300", "bad_host", "-hub", "a..b"}
	for _, h := range invalid {
		if err := ValidateHost(h); !IsValidationError(err) {
			t.Errorf("ValidateHost(%q) = %v, want validation error", h, err)
		}
	}
}

func TestValidatePort(t *testing.T) {
	for _, p := range []int{1, 9990, 65535} {
		if err := ValidatePort(p); err != nil {
			t.Errorf("ValidatePort(%d) error = %v", p, err)
		}
	}
	for _, p := range []int{0, -1, 65536} {
		if err := ValidatePort(p); !IsValidationError(err) {
			t.Errorf("ValidatePort(%d) = %v, want validation error", p, err)
		}
	}
}

func TestValidateTarget(t *testing.T) {
	if err := ValidateTarget("192.168.1.248", DefaultPort); err != nil {
		t.Errorf("ValidateTarget() error = %v", err)
	}
	if err := ValidateTarget("192.168.1.248", 0); err == nil {
		t.Error("Expected error for port 0")
	}
}
