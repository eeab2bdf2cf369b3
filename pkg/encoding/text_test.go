package encoding

import (
	"io"
	"strings"
	"testing"
)

func TestNewReader(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("0 0 1\n"), "0 0 1\n"},
		{"utf8 bom", []byte("\xef\xbb\xbf0 0 1\n"), "0 0 1\n"},
		{"utf16le bom", []byte("\xff\xfe0\x00 \x001\x00\n\x00"), "0 1\n"},
		{"utf16be bom", []byte("\xfe\xff\x000\x00 \x001\x00\n"), "0 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewReader(strings.NewReader(string(tt.in))))
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Road", "Road"},
		{"  Road \n", "Road"},
		{"Cafe\u0301", "Caf\u00e9"},
		{"Spline_01\x00garbage", "Spline_01"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
