package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProjectDefaults(t *testing.T) {
	p, err := ParseProject([]byte("entry: main\n"), "traitc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Entry != "main" {
		t.Errorf("Entry = %q, want main", p.Entry)
	}
	if p.NumericDefault != "u64" || p.NumericBits() != 64 {
		t.Errorf("numeric default = %q/%d, want u64/64", p.NumericDefault, p.NumericBits())
	}
	if p.Color != "auto" {
		t.Errorf("Color = %q, want auto", p.Color)
	}
}

func TestParseProjectModules(t *testing.T) {
	data := `
numeric_default: u32
color: never
xref: out/xref.db
modules:
  - name: point
    path: src/my_point.tm
`
	p, err := ParseProject([]byte(data), "traitc.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumericBits() != 32 {
		t.Errorf("NumericBits = %d, want 32", p.NumericBits())
	}
	if p.Xref != "out/xref.db" {
		t.Errorf("Xref = %q", p.Xref)
	}
	name, ok := p.ModuleNameFor("src/my_point.tm")
	if !ok || name != "point" {
		t.Errorf("ModuleNameFor = %q, %v", name, ok)
	}
	if _, ok := p.ModuleNameFor("src/other.tm"); ok {
		t.Errorf("ModuleNameFor matched an unlisted file")
	}
}

func TestParseProjectErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad_numeric", "numeric_default: i64\n", "numeric_default"},
		{"bad_color", "color: sometimes\n", "color"},
		{"module_without_name", "modules:\n  - path: a.tm\n", "'name' is required"},
		{"module_without_path", "modules:\n  - name: a\n", "'path' is required"},
		{"duplicate_module", "modules:\n  - name: a\n    path: a.tm\n  - name: a\n    path: b.tm\n", "duplicate module"},
		{"bad_yaml", "entry: [\n", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.input), "traitc.yaml")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFileName)
	if err := os.WriteFile(path, []byte("color: always\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Color != "always" {
		t.Errorf("Color = %q", p.Color)
	}
	if _, err := LoadProject(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestSourceExt(t *testing.T) {
	if !HasSourceExt("a/b/point.tm") || HasSourceExt("point.go") {
		t.Errorf("HasSourceExt misclassified paths")
	}
	if TrimSourceExt("point.tm") != "point" {
		t.Errorf("TrimSourceExt = %q", TrimSourceExt("point.tm"))
	}
}
