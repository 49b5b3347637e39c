package hub

import (
	"strings"
)

// DeviceInfo is the key/value block a hub sends ahead of its label sections
type DeviceInfo struct {
	Fields []InfoField // in the order the hub sent them
}

// InfoField is one "Key: Value" line of the preamble
type InfoField struct {
	Key   string
	Value string
}

// Get returns the value for key (case-insensitive)
func (d DeviceInfo) Get(key string) (string, bool) {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// ModelName returns the "Model name" field, if present
func (d DeviceInfo) ModelName() string {
	v, _ := d.Get("Model name")
	return v
}

// Lines returns the raw device info lines that precede the first label
// section, skipping blank lines.
func Lines(preamble string) []string {
	var lines []string
	for _, line := range strings.Split(preamble, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, MarkerInputLabels) {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseDeviceInfo extracts "Key: Value" pairs from the preamble. Section
// headers (a key with no value) are not included.
func ParseDeviceInfo(preamble string) DeviceInfo {
	var info DeviceInfo
	for _, line := range Lines(preamble) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		info.Fields = append(info.Fields, InfoField{Key: key, Value: value})
	}
	return info
}

// Output lock states reported in the VIDEO OUTPUT LOCKS section
const (
	LockUnlocked = "U"
	LockOwned    = "O" // locked by this client
	LockLocked   = "L" // locked by another client
)

// ParseLocks parses "<output> <state>" records. Malformed records are skipped.
func ParseLocks(section string) map[int]string {
	labels, _, _ := ParseLabels(Tokenize(section), Lenient)
	locks := make(map[int]string, len(labels))
	for out, state := range labels {
		if state == UnnamedLabel {
			continue
		}
		locks[out] = strings.TrimSpace(state)
	}
	return locks
}
