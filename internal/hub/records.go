package hub

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/logging"
)

// ParsePolicy selects how malformed records are handled
type ParsePolicy int

const (
	// Lenient skips malformed records and counts them in ParseStats
	Lenient ParsePolicy = iota
	// Strict fails on the first malformed record
	Strict
)

// String returns the policy name
func (p ParsePolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseStats describes what a record parser did with a section
type ParseStats struct {
	Tokens  int      // Non-empty tokens seen, markers included
	Parsed  int      // Records that produced a map entry
	Skipped int      // Malformed records dropped under Lenient
	Ignored []string // The skipped tokens, in order
}

// Tokenize splits section text on line breaks and '.', dropping empty tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '.'
	})
}

// ParseLabels parses "<index> <label>" records into an index to label map.
// One separating space after the index is dropped; an empty label becomes
// UnnamedLabel.
func ParseLabels(tokens []string, policy ParsePolicy) (map[int]string, ParseStats, error) {
	labels := make(map[int]string)
	stats := ParseStats{}

	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		stats.Tokens++
		if isMarker(tok) {
			continue
		}

		idx, rest, ok := leadingInt(tok)
		if !ok {
			if err := stats.skip(tok, policy, "label"); err != nil {
				return nil, stats, err
			}
			continue
		}

		label := strings.TrimPrefix(rest, " ")
		if label == "" {
			label = UnnamedLabel
		}
		labels[idx] = label
		stats.Parsed++
	}

	return labels, stats, nil
}

// ParseRouting parses "<output> <input>" records into an output to input map.
// A later record for the same output overwrites an earlier one.
func ParseRouting(tokens []string, policy ParsePolicy) (map[int]int, ParseStats, error) {
	routing := make(map[int]int)
	stats := ParseStats{}

	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		stats.Tokens++
		if isMarker(tok) {
			continue
		}

		out, rest, ok := leadingInt(tok)
		var in int
		if ok {
			in, _, ok = leadingInt(rest)
		}
		if !ok {
			if err := stats.skip(tok, policy, "routing"); err != nil {
				return nil, stats, err
			}
			continue
		}

		routing[out] = in
		stats.Parsed++
	}

	return routing, stats, nil
}

func (s *ParseStats) skip(tok string, policy ParsePolicy, kind string) error {
	if policy == Strict {
		return NewParseError(fmt.Sprintf("malformed %s record %q", kind, tok), nil)
	}
	s.Skipped++
	s.Ignored = append(s.Ignored, tok)
	logging.Debug("Skipping malformed record",
		zap.String("kind", kind),
		zap.String("token", tok),
	)
	return nil
}

// leadingInt reads an unsigned decimal index after leading blanks and
// returns the text that follows it. Indices are 0-based, so a sign makes
// the record malformed.
func leadingInt(s string) (int, string, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, s, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}
