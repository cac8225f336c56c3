package parser

import "testing"

func TestPlainSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"plain text", "  no   markup here ", "no markup here"},
		{"single paragraph", "<p><b>Lost</b> follows survivors.</p>", "Lost follows survivors."},
		{"two paragraphs", "<p>One.</p><p>Two.</p>", "One. Two."},
		{"list items", "<ul><li>a</li><li>b</li></ul>", "a b"},
		{"inline only", "<i>Italic</i> text", "Italic text"},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PlainSummary(tt.in); got != tt.want {
				t.Errorf("PlainSummary(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim", "  girls  ", "girls"},
		{"collapse", "good \t  girls", "good girls"},
		{"nfc", "café", "café"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeQuery(tt.in); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
