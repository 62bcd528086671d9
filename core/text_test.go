package core

import "testing"

func TestStringText(t *testing.T) {
	tests := []struct {
		name  string
		input String
		want  string
	}{
		{"plain ascii", String("Hello"), "Hello"},
		{"utf16 big endian bom", String("\xFE\xFF\x00H\x00i"), "Hi"},
		{"utf16 little endian bom", String("\xFF\xFEH\x00i\x00"), "Hi"},
		{"utf16 non-latin", String("\xFE\xFF\x30\x42"), "あ"},
		{"empty", String(""), ""},
		{"bom alone", String("\xFE\xFF"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
