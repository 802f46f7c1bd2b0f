package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/utils"
)

// LoadDir loads every source file directly inside dir. Module names come
// from the file stem unless the project maps the file to another name.
func LoadDir(dir string, project *config.Project) (*Program, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	if project == nil {
		project = config.DefaultProject()
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !config.HasSourceExt(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	for _, entry := range project.Modules {
		p := filepath.Join(dir, filepath.FromSlash(entry.Path))
		if !contains(paths, p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files in %s", config.SourceFileExt, dir)
	}

	prog := NewProgram()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading module: %w", err)
		}
		rel := utils.RelativeTo(dir, path)
		if err := addModule(prog, project, rel, path, string(data)); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// LoadArchive loads modules from a txtar archive. Files without a source
// extension are ignored, except traitc.yaml which configures the project
// when present. The returned project is never nil.
func LoadArchive(name string, data []byte) (*Program, *config.Project, error) {
	ar := txtar.Parse(data)
	project := config.DefaultProject()
	for _, f := range ar.Files {
		if filepath.Base(f.Name) == config.ProjectFileName {
			p, err := config.ParseProject(f.Data, name+":"+f.Name)
			if err != nil {
				return nil, nil, err
			}
			project = p
		}
	}

	prog := NewProgram()
	for _, f := range ar.Files {
		if !config.HasSourceExt(f.Name) {
			continue
		}
		if err := addModule(prog, project, f.Name, f.Name, string(f.Data)); err != nil {
			return nil, nil, err
		}
	}
	if len(prog.Modules) == 0 {
		return nil, nil, fmt.Errorf("%s: archive contains no %s files", name, config.SourceFileExt)
	}
	return prog, project, nil
}

func addModule(prog *Program, project *config.Project, rel, path, input string) error {
	name, ok := project.ModuleNameFor(rel)
	if !ok {
		name = utils.ExtractModuleName(rel)
	}
	if existing, dup := prog.Modules[name]; dup {
		return fmt.Errorf("module %q defined by both %s and %s", name, existing.Path, path)
	}
	prog.Add(name, path, input)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
