package base62

import (
	"strings"
	"testing"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, "0"},
		{[]byte{0}, "0"},
		{[]byte{1}, "1"},
		{[]byte{61}, "z"},
		{[]byte{62}, "10"},
		{[]byte{0xff}, "47"},
	}

	for _, tt := range tests {
		if got := Encode(tt.in); got != tt.want {
			t.Errorf("Encode(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeAlphabetOnly(t *testing.T) {
	s := Random(16)
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("character %q outside alphabet in %q", r, s)
		}
	}
}

func TestRandomUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := Random(8)
		if seen[s] {
			t.Fatalf("duplicate random id %q", s)
		}
		seen[s] = true
	}
}
