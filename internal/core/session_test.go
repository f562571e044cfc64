package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordingRenderer remembers every table it was asked to display.
type recordingRenderer struct {
	tables []Table
}

func (r *recordingRenderer) RenderTable(t Table) {
	r.tables = append(r.tables, t)
}

type stubPrompter struct {
	value string
	ok    bool

	label, defaultValue string
}

func (p *stubPrompter) Prompt(label, defaultValue string) (string, bool) {
	p.label, p.defaultValue = label, defaultValue
	return p.value, p.ok
}

func TestSession_LoadFileRenders(t *testing.T) {
	r := &recordingRenderer{}
	s := NewSession(r)

	if s.Loaded() {
		t.Fatal("new session should not be loaded")
	}

	s.LoadFile("a,b\n1,2\n3,4,5\n6,7\n")

	if !s.Loaded() {
		t.Error("Loaded() = false after LoadFile")
	}
	if len(r.tables) != 1 {
		t.Fatalf("render count = %d, want 1", len(r.tables))
	}
	want := Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"6", "7"}}}
	if diff := cmp.Diff(want, r.tables[0]); diff != "" {
		t.Errorf("rendered table mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_LoadFileReplacesTable(t *testing.T) {
	s := NewSession(nil)
	s.LoadFile("a,b\n1,2\n")
	s.AddColumn("c")
	s.LoadFile("x\n9\n")

	want := Table{Headers: []string{"x"}, Rows: [][]string{{"9"}}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_EditCell(t *testing.T) {
	tests := []struct {
		name    string
		row     int
		col     int
		wantErr bool
	}{
		{name: "first cell", row: 0, col: 0},
		{name: "last cell", row: 1, col: 1},
		{name: "negative row", row: -1, col: 0, wantErr: true},
		{name: "row past end", row: 2, col: 0, wantErr: true},
		{name: "col past end", row: 0, col: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(nil)
			s.LoadFile("a,b\n1,2\n6,7\n")

			err := s.EditCell(tt.row, tt.col, "new")
			if tt.wantErr {
				if !errors.Is(err, ErrCellOutOfRange) {
					t.Fatalf("EditCell() error = %v, want ErrCellOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EditCell() error = %v", err)
			}
			if got := s.Snapshot().Rows[tt.row][tt.col]; got != "new" {
				t.Errorf("cell = %q, want %q", got, "new")
			}
		})
	}
}

func TestSession_EditCellDoesNotRerender(t *testing.T) {
	r := &recordingRenderer{}
	s := NewSession(r)
	s.LoadFile("a\n1\n")

	if err := s.EditCell(0, 0, "2"); err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}
	if len(r.tables) != 1 {
		t.Errorf("render count = %d, want 1", len(r.tables))
	}
}

func TestSession_AddColumn(t *testing.T) {
	r := &recordingRenderer{}
	s := NewSession(r)
	s.LoadFile("a,b\n1,2\n6,7\n")

	if !s.AddColumn("c") {
		t.Fatal("AddColumn(c) = false")
	}

	want := Table{
		Headers: []string{"a", "b", "c"},
		Rows:    [][]string{{"1", "2", ""}, {"6", "7", ""}},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if len(r.tables) != 2 {
		t.Errorf("render count = %d, want 2", len(r.tables))
	}

	for _, blank := range []string{"", "   "} {
		if s.AddColumn(blank) {
			t.Errorf("AddColumn(%q) = true, want false", blank)
		}
	}
	if got := s.Snapshot().Width(); got != 3 {
		t.Errorf("Width() = %d after blank adds, want 3", got)
	}
}

func TestSession_AddColumnDuplicateName(t *testing.T) {
	s := NewSession(nil)
	s.LoadFile("a\n1\n")
	s.AddColumn("a")

	_, content := s.Save()
	if content != "a,a\n1,\n" {
		t.Errorf("Save() content = %q, want %q", content, "a,a\n1,\n")
	}
}

func TestSession_PromptAddColumn(t *testing.T) {
	tests := []struct {
		name      string
		prompter  *stubPrompter
		wantAdded bool
	}{
		{name: "accepted", prompter: &stubPrompter{value: "Nueva Columna", ok: true}, wantAdded: true},
		{name: "cancelled", prompter: &stubPrompter{value: "ignored", ok: false}},
		{name: "blank answer", prompter: &stubPrompter{value: " ", ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(nil)
			s.LoadFile("a\n1\n")

			if got := s.PromptAddColumn(tt.prompter); got != tt.wantAdded {
				t.Errorf("PromptAddColumn() = %v, want %v", got, tt.wantAdded)
			}
			if tt.prompter.defaultValue != DefaultColumnName {
				t.Errorf("prompt default = %q, want %q", tt.prompter.defaultValue, DefaultColumnName)
			}
			wantWidth := 1
			if tt.wantAdded {
				wantWidth = 2
			}
			if got := s.Snapshot().Width(); got != wantWidth {
				t.Errorf("Width() = %d, want %d", got, wantWidth)
			}
		})
	}
}

func TestSession_SaveAfterEdits(t *testing.T) {
	s := NewSession(nil)
	s.LoadFile("a,b\n1,2\n3,4,5\n6,7\n")

	if err := s.EditCell(1, 0, "60"); err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}
	s.AddColumn("c")
	if err := s.EditCell(0, 2, "x"); err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}

	name, content := s.Save()
	if name != SaveFileName {
		t.Errorf("Save() name = %q, want %q", name, SaveFileName)
	}
	want := "a,b,c\n1,2,x\n60,7,\n"
	if content != want {
		t.Errorf("Save() content = %q, want %q", content, want)
	}
}

func TestSession_SaveBeforeLoad(t *testing.T) {
	s := NewSession(nil)
	if _, content := s.Save(); content != "\n" {
		t.Errorf("Save() content = %q, want %q", content, "\n")
	}
}

func TestSession_SnapshotIsolated(t *testing.T) {
	s := NewSession(nil)
	s.LoadFile("a\n1\n")

	snap := s.Snapshot()
	snap.Rows[0][0] = "changed"

	if got := s.Snapshot().Rows[0][0]; got != "1" {
		t.Errorf("session cell = %q after snapshot mutation, want %q", got, "1")
	}
}

func TestSubmit(t *testing.T) {
	sub := Submit("ID,X,Y\nP1,1,2\nP2,3\n", "ID_TUBERIA,PK_INICIO,PK_FIN\nT1,P1,P9\n")

	if len(sub.Coordenadas) != 1 {
		t.Errorf("len(Coordenadas) = %d, want 1", len(sub.Coordenadas))
	}
	if len(sub.Tuberias) != 1 {
		t.Errorf("len(Tuberias) = %d, want 1", len(sub.Tuberias))
	}

	got, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"coordenadas":[{"ID":"P1","X":"1","Y":"2"}],"tuberias":[{"ID_TUBERIA":"T1","PK_INICIO":"P1","PK_FIN":"P9"}]}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestSubmit_EmptyTablesEncodeAsArrays(t *testing.T) {
	got, err := json.Marshal(Submit("ID\n", ""))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"coordenadas":[],"tuberias":[]}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestSubmitTables(t *testing.T) {
	coords := Decode("ID,X\nP1,1\n")
	pipes := Decode("ID_TUBERIA\nT1\n")

	sub := SubmitTables(coords, pipes)
	if diff := cmp.Diff(Submit("ID,X\nP1,1\n", "ID_TUBERIA\nT1\n"), sub); diff != "" {
		t.Errorf("SubmitTables() mismatch (-want +got):\n%s", diff)
	}
}
