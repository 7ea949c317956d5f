package cmd

import (
	"slices"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"status", []string{"status"}},
		{"checkin  office\t--lat 1", []string{"checkin", "office", "--lat", "1"}},
		{`reject r1 "not enough cover"`, []string{"reject", "r1", "not enough cover"}},
		{`reply r1 'it''s fine'`, []string{"reply", "r1", "its fine"}},
		{`ask "say \"hi\""`, []string{"ask", `say "hi"`}},
		{`a\ b c`, []string{"a b", "c"}},
		{`empty ""`, []string{"empty", ""}},
	}
	for _, tt := range tests {
		got, err := words(tt.line)
		if err != nil {
			t.Errorf("words(%q) error: %v", tt.line, err)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("words(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestWordsUnterminated(t *testing.T) {
	for _, line := range []string{`ask "open`, `ask 'open`, `trailing\`} {
		if _, err := words(line); err == nil {
			t.Errorf("words(%q) accepted", line)
		}
	}
}
