package main

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/modules"
	"github.com/funvibe/traitmap/internal/utils"
)

// loadWorkspace loads the modules next to path, configured by the
// project file of that directory when there is one, and replaces the
// module of path with content. When the directory cannot be read the
// program holds the document alone.
func loadWorkspace(path, content string) (*modules.Program, *config.Project, string) {
	dir := filepath.Dir(path)
	project := config.DefaultProject()
	cfg := filepath.Join(dir, config.ProjectFileName)
	if _, err := os.Stat(cfg); err == nil {
		p, err := config.LoadProject(cfg)
		if err != nil {
			log.Printf("ignoring %s: %v", cfg, err)
		} else {
			project = p
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("checking %s: %v", cfg, err)
	}

	prog, err := modules.LoadDir(dir, project)
	if err != nil {
		prog = modules.NewProgram()
	}
	clean := filepath.Clean(path)
	for _, m := range prog.Modules {
		if filepath.Clean(m.Path) == clean {
			prog.Add(m.Name, m.Path, content)
			return prog, project, m.Name
		}
	}

	name, ok := project.ModuleNameFor(utils.RelativeTo(dir, path))
	if !ok {
		name = utils.ExtractModuleName(path)
	}
	prog.Add(name, path, content)
	return prog, project, name
}
