package cache

import (
	"strings"
	"testing"
)

func TestKeys_Deterministic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"search term", SearchKey, "filesystem", "search:filesystem"},
		{"search lowercased", SearchKey, "FileSystem", "search:filesystem"},
		{"search trimmed", SearchKey, "  filesystem  ", "search:filesystem"},
		{"server id", ServerKey, "a57cb748-cb96-4465-a1a4-64f22bcf7287", "server:a57cb748-cb96-4465-a1a4-64f22bcf7287"},
		{"server name", ServerNameKey, "io.github.example/weather", "server-name:io.github.example/weather"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
			if again := tt.fn(tt.in); again != tt.fn(tt.in) {
				t.Errorf("key derivation is not deterministic: %q vs %q", again, tt.fn(tt.in))
			}
		})
	}
}

func TestKeys_DistinctInputsDistinctKeys(t *testing.T) {
	if SearchKey("weather") == SearchKey("whether") {
		t.Error("distinct terms must produce distinct keys")
	}
	if SearchKey("weather") == ServerNameKey("weather") {
		t.Error("namespaces must keep key spaces disjoint")
	}
}

func TestKeys_LongInputHashed(t *testing.T) {
	long := strings.Repeat("x", 500)
	key := SearchKey(long)
	if len(key) != len("search:")+64 {
		t.Errorf("long input should collapse to a 64-char digest, got %d chars", len(key))
	}
	if key != SearchKey(long) {
		t.Error("hashed keys must still be deterministic")
	}
}

func TestKeys_WhitespaceHashed(t *testing.T) {
	key := SearchKey("two words")
	if strings.ContainsAny(key, " \t\n") {
		t.Errorf("key %q contains whitespace", key)
	}
}
