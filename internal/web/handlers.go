package web

// handlers.go contains the page handlers and the helpers shared by the API
// handlers: multipart parsing, upload decoding, and content negotiation.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/civilcsv/internal/collaborator"
	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/web/templates"
)

// maxMemory is how much of a multipart form is kept in memory; the rest
// spills to temporary files.
const maxMemory = 32 << 20

// handleIndex renders the processing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templates.IndexPage())
}

// handleEditorPage renders the CSV editor page.
func (s *Server) handleEditorPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templates.EditorPage())
}

// handleHealth reports liveness. It never calls the processing server.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok"})
}

// StatusResponse describes the server's current load.
type StatusResponse struct {
	Sessions     int                        `json:"sessions"`
	Collaborator collaborator.LimiterStatus `json:"collaborator"`
	ServerURL    string                     `json:"server_url"`
}

// handleStatus returns editor session and processing server call counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Sessions:     s.sessions.Len(),
		Collaborator: s.collab.Limiter().Status(),
		ServerURL:    s.collab.BaseURL(),
	})
}

// render writes a full page or fragment as HTML.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// parseUpload bounds the request body to maxSize and parses the multipart form.
func parseUpload(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("%w: expected a multipart form", errNoFile)
		}
		return fmt.Errorf("file read failed: %w", err)
	}
	return nil
}

// readFormText decodes the uploaded file in field to UTF-8 text.
func readFormText(r *http.Request, field, enc string) (string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", fmt.Errorf("%s: %w", field, errNoFile)
		}
		return "", fmt.Errorf("file read failed: %s: %w", field, err)
	}
	defer file.Close()

	return core.ReadText(file, enc)
}

// uploadEncoding returns the encoding the client named, or the configured default.
func (s *Server) uploadEncoding(r *http.Request) string {
	if enc := strings.TrimSpace(r.FormValue("encoding")); enc != "" {
		return enc
	}
	return s.cfg.Upload.DefaultEncoding
}

// readSubmission reads the coordinates and pipes tables. Each comes from an
// open editor session when its <field>_session value names one, otherwise
// from the uploaded file in <field>. Both tables are required.
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (core.Submission, error) {
	if err := parseUpload(w, r, s.cfg.Upload.MaxFileSize); err != nil {
		return core.Submission{}, err
	}

	coords, err := s.readTable(r, "coordenadas")
	if err != nil {
		return core.Submission{}, err
	}
	pipes, err := s.readTable(r, "tuberias")
	if err != nil {
		return core.Submission{}, err
	}
	return core.SubmitTables(coords, pipes), nil
}

// readTable returns the table named by field, preferring a session snapshot
// over an upload so edits made in the editor are what gets sent.
func (s *Server) readTable(r *http.Request, field string) (core.Table, error) {
	if id := strings.TrimSpace(r.FormValue(field + "_session")); id != "" {
		table, err := s.snapshot(id)
		if err != nil {
			return core.Table{}, fmt.Errorf("%s: %w", field, err)
		}
		return table, nil
	}

	text, err := readFormText(r, field, s.uploadEncoding(r))
	if err != nil {
		return core.Table{}, err
	}
	return core.Decode(text), nil
}

// wantsHTML reports whether a successful response should be an HTML fragment.
func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}
