package web

// handlers_editor.go serves the CSV editor. Each browser tab owns one
// session in the SessionStore; every request names it in the URL and all
// mutations go through core.Session.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/logging"
	"github.com/JonMunkholm/civilcsv/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableResponse is the JSON form of an editor table.
type TableResponse struct {
	SessionID string     `json:"session_id"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
}

// EditCellRequest is the body of POST /api/editor/{sessionID}/cell.
type EditCellRequest struct {
	Row   *int    `json:"row"`
	Col   *int    `json:"col"`
	Value *string `json:"value"`
}

// AddColumnRequest is the body of POST /api/editor/{sessionID}/column.
type AddColumnRequest struct {
	Name string `json:"name"`
}

// AddColumnResponse reports whether a column was added.
type AddColumnResponse struct {
	Added   bool `json:"added"`
	Columns int  `json:"columns"`
}

// handleEditorLoad reads an uploaded CSV into an editor session. A
// session_id form value reloads that session; otherwise a new one is created.
// The file is fully read before any session is touched, so a failed read
// leaves the previous table in place.
func (s *Server) handleEditorLoad(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, s.cfg.Upload.MaxFileSize); err != nil {
		s.respondError(w, r, err)
		return
	}

	text, err := readFormText(r, "file", s.uploadEncoding(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var table core.Table
	load := func(sess *core.Session) error {
		sess.LoadFile(text)
		table = sess.Snapshot()
		return nil
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" || s.sessions.With(sessionID, load) != nil {
		sessionID = s.sessions.Create()
		if err := s.sessions.With(sessionID, load); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	logging.WithFields(r.Context(), core.ClientAttrs(r.Context())...).Info("csv loaded",
		"session_id", sessionID,
		"columns", table.Width(),
		"rows", len(table.Rows),
	)

	w.Header().Set("X-Session-ID", sessionID)
	s.respondTable(w, r, sessionID, table)
}

// handleEditorTable returns the session's current table.
func (s *Server) handleEditorTable(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	table, err := s.snapshot(sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondTable(w, r, sessionID, table)
}

// handleEditCell stores one edited cell.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req EditCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidEdit, err))
		return
	}
	if req.Row == nil || req.Col == nil || req.Value == nil {
		s.respondError(w, r, fmt.Errorf("%w: row, col and value are required", errInvalidEdit))
		return
	}

	err := s.sessions.With(sessionID, func(sess *core.Session) error {
		return sess.EditCell(*req.Row, *req.Col, *req.Value)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, map[string]any{"row": *req.Row, "col": *req.Col, "value": *req.Value})
}

// handleAddColumn appends a column. A blank name adds nothing and is not an error.
func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AddColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidEdit, err))
		return
	}

	var added bool
	var table core.Table
	err := s.sessions.With(sessionID, func(sess *core.Session) error {
		added = sess.AddColumn(req.Name)
		table = sess.Snapshot()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if wantsHTML(r) {
		s.render(w, r, templates.TableView(sessionID, table))
		return
	}
	writeJSON(w, AddColumnResponse{Added: added, Columns: table.Width()})
}

// handleDownloadCSV sends the encoded table as archivo_modificado.csv.
func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var filename, content string
	err := s.sessions.With(sessionID, func(sess *core.Session) error {
		filename, content = sess.Save()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Write([]byte(content))
}

// handleDownloadXLSX sends the table as a one-sheet workbook.
func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	table, err := s.snapshot(sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := core.WriteXLSX(&buf, table, core.DefaultSheetName); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.XLSXFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// handleEditorDelete discards a session.
func (s *Server) handleEditorDelete(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// snapshot copies the current table of a session.
func (s *Server) snapshot(sessionID string) (core.Table, error) {
	var table core.Table
	err := s.sessions.With(sessionID, func(sess *core.Session) error {
		table = sess.Snapshot()
		return nil
	})
	return table, err
}

// respondTable writes the table as an HTML grid or as JSON.
func (s *Server) respondTable(w http.ResponseWriter, r *http.Request, sessionID string, table core.Table) {
	if wantsHTML(r) {
		s.render(w, r, templates.TableView(sessionID, table))
		return
	}

	rows := table.Rows
	if rows == nil {
		rows = [][]string{}
	}
	writeJSON(w, TableResponse{SessionID: sessionID, Headers: table.Headers, Rows: rows})
}
