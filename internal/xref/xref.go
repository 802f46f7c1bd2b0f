// Package xref exports the impls of a checked program to a SQLite
// database so that editors and scripts can look them up.
package xref

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/traitmap/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id      TEXT PRIMARY KEY,
	created TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS impls (
	session TEXT NOT NULL REFERENCES sessions(id),
	module  TEXT NOT NULL,
	trait   TEXT NOT NULL,
	type    TEXT NOT NULL,
	file    TEXT NOT NULL,
	line    INTEGER NOT NULL,
	col     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS impls_trait ON impls(trait);
`

// Impl is one impl block declared by a module.
type Impl struct {
	Module string
	Trait  string // displayed trait with arguments, "Self" for inherent impls
	Type   string
	File   string
	Line   int
	Col    int
}

// Collect lists the impls every analyzed module declares itself; impls
// it only sees through imports are left to their own module.
func Collect(ctx *pipeline.PipelineContext) []Impl {
	if ctx.Engines == nil {
		return nil
	}
	te := ctx.Engines.Types
	var out []Impl
	for _, m := range ctx.Order {
		scope, ok := ctx.Scopes[m.Name]
		if !ok {
			continue
		}
		for _, e := range scope.TraitMap().Entries() {
			file, line, col := e.Value.ImplSpan.LocStart()
			if file != m.Path {
				continue
			}
			out = append(out, Impl{
				Module: m.Name,
				Trait:  e.Key.Name.Display(te),
				Type:   te.Display(e.Key.TypeID),
				File:   file,
				Line:   line,
				Col:    col,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Write records impls under session in the database at path, creating
// the database if needed. Earlier sessions are kept.
func Write(path string, session uuid.UUID, impls []Impl) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("xref: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO sessions(id, created) VALUES (?, ?)`,
		session.String(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("xref: recording session: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO impls(session, module, trait, type, file, line, col) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("xref: %w", err)
	}
	defer stmt.Close()
	for _, im := range impls {
		if _, err := stmt.Exec(session.String(), im.Module, im.Trait, im.Type, im.File, im.Line, im.Col); err != nil {
			return fmt.Errorf("xref: inserting impl of %s for %s: %w", im.Trait, im.Type, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("xref: commit: %w", err)
	}
	return nil
}

// DB is an open cross-reference database.
type DB struct {
	db *sql.DB
}

// Open opens the database at path and makes sure the tables exist.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("xref: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("xref: creating schema in %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Sessions returns the recorded session ids, oldest first.
func (d *DB) Sessions() ([]uuid.UUID, error) {
	rows, err := d.db.Query(`SELECT id FROM sessions ORDER BY created, rowid`)
	if err != nil {
		return nil, fmt.Errorf("xref: %w", err)
	}
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("xref: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("xref: bad session id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ImplsOfTrait returns the impls of the trait whose displayed name starts
// with trait (so "Dbl" finds "main::Dbl<u64>"), from the latest session.
func (d *DB) ImplsOfTrait(trait string) ([]Impl, error) {
	rows, err := d.db.Query(`
SELECT module, trait, type, file, line, col FROM impls
WHERE session = (SELECT id FROM sessions ORDER BY created DESC, rowid DESC LIMIT 1)
  AND (trait = ? OR trait LIKE ? ESCAPE '\' OR trait LIKE ? ESCAPE '\' OR trait LIKE ? ESCAPE '\')
ORDER BY file, line, col`, trait, likeEscape(trait)+"<%", "%::"+likeEscape(trait), "%::"+likeEscape(trait)+"<%")
	if err != nil {
		return nil, fmt.Errorf("xref: %w", err)
	}
	defer rows.Close()
	var out []Impl
	for rows.Next() {
		var im Impl
		if err := rows.Scan(&im.Module, &im.Trait, &im.Type, &im.File, &im.Line, &im.Col); err != nil {
			return nil, fmt.Errorf("xref: %w", err)
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape quotes the LIKE wildcards of s for use with ESCAPE '\'.
func likeEscape(s string) string {
	return likeReplacer.Replace(s)
}
