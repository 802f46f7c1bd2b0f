package utils

import (
	"path/filepath"
	"testing"
)

func TestExtractModuleName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"point.tm", "point"},
		{filepath.Join("src", "ops.tm"), "ops"},
		{"README", "README"},
	}
	for _, tt := range tests {
		if got := ExtractModuleName(tt.path); got != tt.want {
			t.Errorf("ExtractModuleName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	base := filepath.Join("a", "b")
	if got := RelativeTo(base, filepath.Join("a", "b", "c", "d.tm")); got != "c/d.tm" {
		t.Errorf("RelativeTo = %q", got)
	}
	if !IsArchive("prog.txtar") || IsArchive("prog.tm") {
		t.Error("IsArchive mismatch")
	}
}
