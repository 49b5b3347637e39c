package hub

import (
	"fmt"
	"net"
	"strings"
)

// ValidateTarget validates a hub host and port
func ValidateTarget(host string, port int) error {
	if err := ValidateHost(host); err != nil {
		return err
	}
	return ValidatePort(port)
}

// ValidateHost accepts an IPv4/IPv6 address or a DNS hostname
func ValidateHost(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return NewValidationError("hub address cannot be empty")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return NewValidationError(fmt.Sprintf("hostname too long: %d characters (max 253)", len(host)))
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return NewValidationError(fmt.Sprintf("invalid hub address %q", host))
		}
		for i, r := range label {
			valid := r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !valid || (r == '-' && (i == 0 || i == len(label)-1)) {
				return NewValidationError(fmt.Sprintf("invalid hub address %q", host))
			}
		}
	}
	// Dotted quads that failed ParseIP (e.g. 192.168.1.300) are typos, not hostnames
	if looksNumeric(host) {
		return NewValidationError(fmt.Sprintf("invalid IP address %q", host))
	}
	return nil
}

// ValidatePort validates a TCP port
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return NewValidationError(fmt.Sprintf("port out of range: %d (must be 1-65535)", port))
	}
	return nil
}

func looksNumeric(host string) bool {
	for _, r := range host {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
