package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project represents a traitc.yaml configuration.
type Project struct {
	// Entry is the module reported as the program root. Defaults to the
	// last module in dependency order when empty.
	Entry string `yaml:"entry,omitempty"`

	// NumericDefault is the width unresolved integer types decay to before
	// trait constraints are checked: u8, u16, u32, u64 or u256.
	NumericDefault string `yaml:"numeric_default,omitempty"`

	// Color controls diagnostic coloring: auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Xref is an optional path of the SQLite cross-reference database.
	Xref string `yaml:"xref,omitempty"`

	// Modules overrides module names for files that do not follow the
	// file-stem convention.
	//
	//   modules:
	//     - name: point
	//       path: src/my_point.tm
	Modules []ModuleSpec `yaml:"modules,omitempty"`
}

// ModuleSpec maps a source file to a module name.
type ModuleSpec struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DefaultProject returns the configuration used when no traitc.yaml exists.
func DefaultProject() *Project {
	p := &Project{}
	p.setDefaults()
	return p
}

// LoadProject reads and parses a traitc.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses traitc.yaml content from bytes.
// The path argument is used only for error messages.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.validate(path); err != nil {
		return nil, err
	}
	p.setDefaults()
	return &p, nil
}

var numericWidths = map[string]int{
	U8TypeName:   8,
	U16TypeName:  16,
	U32TypeName:  32,
	U64TypeName:  64,
	U256TypeName: 256,
}

func (p *Project) validate(path string) error {
	if p.NumericDefault != "" {
		if _, ok := numericWidths[p.NumericDefault]; !ok {
			return fmt.Errorf("%s: numeric_default: unknown integer type %q", path, p.NumericDefault)
		}
	}
	switch p.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color: must be auto, always or never (got %q)", path, p.Color)
	}
	seen := make(map[string]bool)
	for i, m := range p.Modules {
		if m.Name == "" {
			return fmt.Errorf("%s: modules[%d]: 'name' is required", path, i)
		}
		if m.Path == "" {
			return fmt.Errorf("%s: modules[%d] (%s): 'path' is required", path, i, m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("%s: modules[%d]: duplicate module name %q", path, i, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

func (p *Project) setDefaults() {
	if p.NumericDefault == "" {
		p.NumericDefault = U64TypeName
	}
	if p.Color == "" {
		p.Color = "auto"
	}
}

// NumericBits returns the bit width of NumericDefault.
func (p *Project) NumericBits() int {
	if bits, ok := numericWidths[p.NumericDefault]; ok {
		return bits
	}
	return DefaultNumericBits
}

// ModuleNameFor returns the configured module name for a file path, if any.
func (p *Project) ModuleNameFor(path string) (string, bool) {
	for _, m := range p.Modules {
		if m.Path == path {
			return m.Name, true
		}
	}
	return "", false
}
