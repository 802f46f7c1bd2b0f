// Command traitc checks the trait implementations of a program: it loads
// the modules of a directory or txtar archive, reports conflicting,
// duplicate and unsatisfied impls, and can export an impl index.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/funvibe/traitmap/internal/analyzer"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/lexer"
	"github.com/funvibe/traitmap/internal/modules"
	"github.com/funvibe/traitmap/internal/parser"
	"github.com/funvibe/traitmap/internal/pipeline"
	"github.com/funvibe/traitmap/internal/prettyprinter"
	"github.com/funvibe/traitmap/internal/utils"
	"github.com/funvibe/traitmap/internal/xref"
)

func main() {
	if os.Getenv("TRAITC_TEST_MODE") != "" {
		config.IsTestMode = true
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("traitc", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "project file (default: "+config.ProjectFileName+" in the source directory)")
	verbose := flags.Bool("v", false, "log progress to stderr")
	xrefPath := flags.String("xref", "", "write the impl index to this SQLite database")
	color := flags.String("color", "", "color diagnostics: auto, always or never")
	printDecls := flags.Bool("print", false, "print the declarations of every module in dependency order")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: traitc [flags] <dir|archive.txtar>\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	logger := log.New(io.Discard, "traitc: ", 0)
	if *verbose {
		logger.SetOutput(stderr)
		if !config.IsTestMode {
			logger.SetFlags(log.Ltime | log.Lmicroseconds)
		}
	}

	prog, project, err := load(flags.Arg(0), *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "traitc: %s\n", err)
		return 1
	}
	if *color != "" {
		project.Color = *color
	}
	if *xrefPath != "" {
		project.Xref = *xrefPath
	}

	ctx := pipeline.NewPipelineContext(prog, project)
	ctx.Logger = logger
	ctx.Logf("checking %d modules", len(prog.Modules))
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	).Run(ctx)

	if errs := ctx.Handler.Errors(); len(errs) > 0 {
		diagnostics.Print(stderr, errs, diagnostics.UseColor(project.Color, stderr))
		if len(errs) == 1 {
			fmt.Fprintln(stderr, "1 error")
		} else {
			fmt.Fprintf(stderr, "%d errors\n", len(errs))
		}
		return 1
	}

	if *printDecls {
		for _, m := range ctx.Order {
			fmt.Fprintf(stdout, "// module %s\n%s\n", m.Name, prettyprinter.Print(m.AST))
		}
	}

	impls := xref.Collect(ctx)
	if project.Xref != "" {
		if err := xref.Write(project.Xref, ctx.Session, impls); err != nil {
			fmt.Fprintf(stderr, "traitc: %s\n", err)
			return 1
		}
		ctx.Logf("wrote %d impls to %s", len(impls), project.Xref)
	}

	entry := project.Entry
	if entry == "" && len(ctx.Order) > 0 {
		entry = ctx.Order[len(ctx.Order)-1].Name
	}
	scope, ok := ctx.Scopes[entry]
	if !ok {
		fmt.Fprintf(stderr, "traitc: entry module %q not found\n", entry)
		return 1
	}
	fmt.Fprintf(stdout, "ok: %d modules, %d impls, %d visible from %s\n",
		len(ctx.Order), len(impls), scope.TraitMap().Len(), entry)
	return 0
}

// load reads the program at path. Archives carry their own project file;
// directories use configPath or the project file next to the sources.
func load(path, configPath string) (*modules.Program, *config.Project, error) {
	if utils.IsArchive(path) {
		if configPath != "" {
			return nil, nil, fmt.Errorf("-config cannot be used with an archive; add %s to the archive", config.ProjectFileName)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading archive: %w", err)
		}
		return modules.LoadArchive(path, data)
	}

	project := config.DefaultProject()
	if configPath == "" {
		candidate := filepath.Join(path, config.ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("checking %s: %w", candidate, err)
		}
	}
	if configPath != "" {
		p, err := config.LoadProject(configPath)
		if err != nil {
			return nil, nil, err
		}
		project = p
	}
	prog, err := modules.LoadDir(path, project)
	if err != nil {
		return nil, nil, err
	}
	return prog, project, nil
}
