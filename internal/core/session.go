package core

// session.go holds the spreadsheet edit session: one owned Table plus the
// operations that mutate it. Presentation is reached only through the
// Renderer and Prompter capabilities, so the same session drives the web
// editor, the CLI, and tests.

import (
	"errors"
	"fmt"
	"strings"
)

// SaveFileName is the fixed download name used by Save.
const SaveFileName = "archivo_modificado.csv"

// DefaultColumnName is offered when prompting for a new column.
const DefaultColumnName = "Nueva Columna"

// ErrCellOutOfRange is returned by EditCell for an index outside the table.
var ErrCellOutOfRange = errors.New("cell out of range")

// Renderer displays a table. Implementations must fully replace any
// previous display; the session never sends incremental updates.
type Renderer interface {
	RenderTable(t Table)
}

// Prompter asks the user for a line of input. ok is false when the user
// cancelled.
type Prompter interface {
	Prompt(label, defaultValue string) (value string, ok bool)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(t Table)

// RenderTable calls f(t).
func (f RendererFunc) RenderTable(t Table) { f(t) }

// Session is the live, mutable table of one editor. It is not safe for
// concurrent use; callers serialise access (see SessionStore).
type Session struct {
	table    Table
	loaded   bool
	renderer Renderer
}

// NewSession creates an empty session. renderer may be nil.
func NewSession(renderer Renderer) *Session {
	return &Session{renderer: renderer}
}

// Loaded reports whether a file has been loaded.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Snapshot returns a copy of the current table.
func (s *Session) Snapshot() Table {
	return s.table.Clone()
}

// LoadFile decodes rawText and replaces the current table wholesale.
func (s *Session) LoadFile(rawText string) {
	s.table = Decode(rawText)
	s.loaded = true
	s.render()
}

// EditCell overwrites one stored cell. The stored value is what later
// Save calls encode.
func (s *Session) EditCell(row, col int, value string) error {
	if row < 0 || row >= len(s.table.Rows) || col < 0 || col >= len(s.table.Headers) {
		return fmt.Errorf("%w: row %d col %d (table is %dx%d)",
			ErrCellOutOfRange, row, col, len(s.table.Rows), len(s.table.Headers))
	}
	s.table.Rows[row][col] = value
	return nil
}

// AddColumn appends a column named name and an empty cell to every row.
// A blank name is ignored and AddColumn reports false.
func (s *Session) AddColumn(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	s.table.Headers = append(s.table.Headers, name)
	for i := range s.table.Rows {
		s.table.Rows[i] = append(s.table.Rows[i], "")
	}
	s.render()
	return true
}

// PromptAddColumn asks p for a column name and adds it. A cancelled prompt
// or blank answer adds nothing.
func (s *Session) PromptAddColumn(p Prompter) bool {
	name, ok := p.Prompt("Name of the new column:", DefaultColumnName)
	if !ok {
		return false
	}
	return s.AddColumn(name)
}

// Save encodes the current table and pairs it with the download filename.
func (s *Session) Save() (filename, content string) {
	return SaveFileName, Encode(s.table)
}

func (s *Session) render() {
	if s.renderer != nil {
		s.renderer.RenderTable(s.table.Clone())
	}
}

// Submission is the payload sent when coordinates and pipes are submitted
// together.
type Submission struct {
	Coordenadas []Record `json:"coordenadas"`
	Tuberias    []Record `json:"tuberias"`
}

// Submit decodes the coordinates and pipes texts into record form. No
// cross-table checks are made.
func Submit(coordinates, pipes string) Submission {
	return Submission{
		Coordenadas: DecodeRecords(coordinates),
		Tuberias:    DecodeRecords(pipes),
	}
}

// SubmitTables builds a Submission from already decoded tables, for example
// the table currently open in a session.
func SubmitTables(coordinates, pipes Table) Submission {
	return Submission{
		Coordenadas: coordinates.Records(),
		Tuberias:    pipes.Records(),
	}
}
