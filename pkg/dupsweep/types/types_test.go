package types

import (
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{name: "zero", input: 0, want: "0 B"},
		{name: "bytes", input: 512, want: "512 B"},
		{name: "one kibibyte", input: KiB, want: "1.0 KiB"},
		{name: "one and a half mebibytes", input: MiB + MiB/2, want: "1.5 MiB"},
		{name: "one gibibyte", input: GiB, want: "1.0 GiB"},
		{name: "negative clamps to zero", input: -10, want: "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.input); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount() = %q, want %q", got, "1,234,567")
	}
}

func TestRunResultRemoved(t *testing.T) {
	r := &RunResult{
		Duplicates: []Duplicate{
			{Path: "/a/b", Original: "/a/a", Removed: true},
			{Path: "/a/c", Original: "/a/a", Removed: false},
			{Path: "/a/d", Original: "/a/a", Removed: true},
		},
	}

	if got := r.Removed(); got != 2 {
		t.Errorf("Removed() = %d, want 2", got)
	}
}
