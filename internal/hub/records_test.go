package hub

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("0 CAM1\n1 CAM2.2 CAM3")
	want := []string{"0 CAM1", "1 CAM2", "2 CAM3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}
}

func TestTokenize_DropsEmpty(t *testing.T) {
	got := Tokenize("\r\n\r\n0 A\r\n..\n1 B\n\n")
	want := []string{"0 A", "1 B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}
	if len(Tokenize("")) != 0 {
		t.Error("Expected no tokens for empty text")
	}
}

func TestParseLabels(t *testing.T) {
	tokens := Tokenize("INPUT LABELS:\n0 CAM 1\n1 \n2\n3 Graphics\n")

	labels, stats, err := ParseLabels(tokens, Lenient)
	if err != nil {
		t.Fatalf("ParseLabels() error = %v", err)
	}

	want := map[int]string{0: "CAM 1", 1: UnnamedLabel, 2: UnnamedLabel, 3: "Graphics"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("ParseLabels() = %v, want %v", labels, want)
	}
	if stats.Parsed != 4 {
		t.Errorf("Parsed = %d, want 4", stats.Parsed)
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0 (marker tokens are not malformed)", stats.Skipped)
	}
}

func TestParseLabels_NWellFormedRecords(t *testing.T) {
	tokens := []string{"0 A", "1 B", "2 C", "3 ", "4 E"}

	labels, _, _ := ParseLabels(tokens, Lenient)
	if len(labels) != len(tokens) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(tokens))
	}
	for idx, l := range labels {
		if l == "" {
			t.Errorf("label %d is empty", idx)
		}
	}
}

func TestParseLabels_OnlyOneSpaceTrimmed(t *testing.T) {
	labels, _, _ := ParseLabels([]string{"5  indented"}, Lenient)
	if labels[5] != " indented" {
		t.Errorf("labels[5] = %q, want %q", labels[5], " indented")
	}
}

func TestParseLabels_LenientSkips(t *testing.T) {
	tokens := []string{"0 A", "Device present: true", "1 B", "garbage"}

	labels, stats, err := ParseLabels(tokens, Lenient)
	if err != nil {
		t.Fatalf("ParseLabels() error = %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("len(labels) = %d, want 2", len(labels))
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if !reflect.DeepEqual(stats.Ignored, []string{"Device present: true", "garbage"}) {
		t.Errorf("Ignored = %q", stats.Ignored)
	}
}

func TestParseLabels_Strict(t *testing.T) {
	_, _, err := ParseLabels([]string{"0 A", "garbage"}, Strict)
	if !IsParseError(err) {
		t.Fatalf("Expected parse error in strict mode, got %v", err)
	}
}

func TestParseRouting(t *testing.T) {
	tokens := Tokenize("VIDEO OUTPUT ROUTING:\n0 3\n1 2\n2 x\n0 1\n")

	routing, stats, err := ParseRouting(tokens, Lenient)
	if err != nil {
		t.Fatalf("ParseRouting() error = %v", err)
	}

	// Last record for output 0 wins
	want := map[int]int{0: 1, 1: 2}
	if !reflect.DeepEqual(routing, want) {
		t.Errorf("ParseRouting() = %v, want %v", routing, want)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
}

func TestParseRouting_SignedIndices(t *testing.T) {
	routing, stats, err := ParseRouting(Tokenize("0 -1\n1 2\n+3 0\n"), Lenient)
	if err != nil {
		t.Fatalf("ParseRouting() error = %v", err)
	}

	want := map[int]int{1: 2}
	if !reflect.DeepEqual(routing, want) {
		t.Errorf("ParseRouting() = %v, want %v", routing, want)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}

	if _, _, err := ParseRouting(Tokenize("0 -1\n"), Strict); !IsParseError(err) {
		t.Errorf("Strict ParseRouting() error = %v, want parse error", err)
	}
}

func TestParseLabels_SignedIndex(t *testing.T) {
	labels, stats, _ := ParseLabels(Tokenize("-1 Ghost\n0 CAM1\n"), Lenient)
	if _, ok := labels[-1]; ok || len(labels) != 1 {
		t.Errorf("ParseLabels() = %v, want only index 0", labels)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
}

func TestParseRouting_OrderIndependent(t *testing.T) {
	a, _, _ := ParseRouting([]string{"2 0", "0 1", "1 2"}, Lenient)
	b, _, _ := ParseRouting([]string{"0 1", "1 2", "2 0"}, Lenient)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Routing depends on token order: %v vs %v", a, b)
	}
}

func TestParseRouting_Strict(t *testing.T) {
	_, _, err := ParseRouting([]string{"0"}, Strict)
	if !IsParseError(err) {
		t.Fatalf("Expected parse error, got %v", err)
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		rest string
		ok   bool
	}{
		{"12 CAM", 12, " CAM", true},
		{"  7", 7, "", true},
		{"-1 x", 0, "-1 x", false},
		{"+2 x", 0, "+2 x", false},
		{"3abc", 3, "abc", true},
		{"abc", 0, "abc", false},
		{"-", 0, "-", false},
	}
	for _, tt := range tests {
		n, rest, ok := leadingInt(tt.in)
		if n != tt.n || rest != tt.rest || ok != tt.ok {
			t.Errorf("leadingInt(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.in, n, rest, ok, tt.n, tt.rest, tt.ok)
		}
	}
}
