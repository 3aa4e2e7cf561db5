package cli

import (
	"strings"
	"testing"

	"github.com/mcptooling/mcpreg/pkg/registry"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 60, "short"},
		{"", 60, ""},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is longer than the limit", 10, "this is l…"},
		{"héllo wörld", 8, "héllo w…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRenderSearchTable(t *testing.T) {
	servers := []registry.Server{
		{Name: "io.github.example/weather", Description: "weather lookups", Version: "1.2.0"},
		{Name: "io.github.example/files", Description: strings.Repeat("long ", 30), Version: "0.4.1"},
	}

	out := renderSearchTable(servers)
	if !strings.Contains(out, "io.github.example/weather") {
		t.Error("table missing first server name")
	}
	if !strings.Contains(out, "1.2.0") {
		t.Error("table missing version column")
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, strings.Repeat("long ", 20)) {
			t.Error("long description was not truncated")
		}
	}
}
