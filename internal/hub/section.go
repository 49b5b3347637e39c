package hub

import "strings"

// Section markers emitted by the hub
const (
	MarkerPreamble     = "PROTOCOL PREAMBLE:"
	MarkerDevice       = "VIDEOHUB DEVICE:"
	MarkerInputLabels  = "INPUT LABELS:"
	MarkerOutputLabels = "OUTPUT LABELS:"
	MarkerRouting      = "VIDEO OUTPUT ROUTING:"
	MarkerLocks        = "VIDEO OUTPUT LOCKS:"
	MarkerEndPrelude   = "END PRELUDE:"
)

// SectionEndMarkers are the candidates that may terminate any section.
// Firmwares interleave sections in different orders, so every structured
// section marker is a possible end.
var SectionEndMarkers = []string{
	MarkerInputLabels,
	MarkerOutputLabels,
	MarkerRouting,
	MarkerLocks,
	MarkerEndPrelude,
}

// headerMarkers are all headers a record parser treats as non-records
var headerMarkers = append([]string{MarkerPreamble, MarkerDevice}, SectionEndMarkers...)

// ExtractSection returns the body that follows the first occurrence of start.
// The body ends at the earliest occurrence of any of endCandidates, or at the
// end of text when none occurs. An absent start yields "".
func ExtractSection(text, start string, endCandidates []string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	body := text[i+len(start):]

	end := len(body)
	for _, m := range endCandidates {
		if m == "" {
			continue
		}
		if j := strings.Index(body, m); j >= 0 && j < end {
			end = j
		}
	}
	return body[:end]
}

// isMarker reports whether a token is a bare section header
func isMarker(token string) bool {
	t := strings.TrimSpace(token)
	for _, m := range headerMarkers {
		if t == m {
			return true
		}
	}
	return false
}
