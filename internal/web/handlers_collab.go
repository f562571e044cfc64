package web

// handlers_collab.go forwards requests to the processing server. Handlers
// only translate HTTP to client calls: the server's {message, error} replies
// are passed through unchanged with status 200, while transport failures go
// through respondError.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/civilcsv/internal/collaborator"
	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/logging"
)

// AcadRequest carries the arguments of every drawing operation. Each
// operation reads only the fields it needs.
type AcadRequest struct {
	ObjectIDs     []json.RawMessage  `json:"object_ids"`
	AlignmentID   string             `json:"alineamiento_id"`
	PolylineID    string             `json:"polilinea_id"`
	ProfileID     string             `json:"perfil_id"`
	GradeID       string             `json:"rasante_id"`
	CoverDistance float64            `json:"distancia_tapa"`
	Tolerance     float64            `json:"tolerancia"`
	Reference     collaborator.Point `json:"punto_referencia"`
}

type acadOperation func(s *Server, r *http.Request, req AcadRequest) (any, error)

// acadOperations maps the {operation} URL segment to a client call.
var acadOperations = map[string]acadOperation{
	"select-objects": func(s *Server, r *http.Request, _ AcadRequest) (any, error) {
		ids, err := s.collab.SelectObjects(r.Context())
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []json.RawMessage{}
		}
		return map[string]any{"object_ids": ids}, nil
	},
	"polyline": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.GeneratePolyline(r.Context(), req.ObjectIDs)
	},
	"ground-profile": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.GenerateGroundProfile(r.Context(), req.AlignmentID, req.PolylineID)
	},
	"cover-profile": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.CopyCoverProfile(r.Context(), req.ProfileID, req.CoverDistance)
	},
	"grade-line": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.CopyGradeLine(r.Context(), req.ProfileID)
	},
	"minimize-vertices": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.MinimizeGradeVertices(r.Context(), req.GradeID, req.Tolerance)
	},
	"vertical-labels": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.LabelVerticalVertices(r.Context(), req.ProfileID)
	},
	"horizontal-labels": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.LabelHorizontalVertices(r.Context(), req.AlignmentID)
	},
	"distance-labels": func(s *Server, r *http.Request, req AcadRequest) (any, error) {
		return s.collab.LabelDistances(r.Context(), req.PolylineID, req.Reference)
	},
}

// handleSubmit sends the coordinates and pipes tables together to the
// processing server. Either table may be an upload or an editor session.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := s.readSubmission(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("submitting tables",
		"coordinates", len(sub.Coordenadas),
		"pipes", len(sub.Tuberias),
	)

	msg, err := s.collab.SubmitTables(r.Context(), sub)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, r, msg)
}

// handlePreview renders the coordinates and pipes tables as a PNG plan view.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sub, err := s.readSubmission(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	summary, err := core.RenderPreview(&buf, sub)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Preview-Points", strconv.Itoa(summary.Points))
	w.Header().Set("X-Preview-Skipped-Points", strconv.Itoa(summary.SkippedPoints))
	w.Header().Set("X-Preview-Pipes", strconv.Itoa(summary.Pipes))
	w.Header().Set("X-Preview-Skipped-Pipes", strconv.Itoa(summary.SkippedPipes))
	buf.WriteTo(w)
}

// handleListScripts returns the runnable scripts.
func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	scripts, err := s.collab.ListScripts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, scripts)
}

// handleRunScript runs one script by ID.
func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	msg, err := s.collab.RunScript(r.Context(), chi.URLParam(r, "scriptID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, r, msg)
}

// handleAcadOperation dispatches POST /api/acad/{operation}. An empty body
// is treated as an empty request.
func (s *Server) handleAcadOperation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")
	op, ok := acadOperations[name]
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", errUnknownOperation, name))
		return
	}

	var req AcadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidEdit, err))
		return
	}

	result, err := op(s, r, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if msg, ok := result.(collaborator.Message); ok {
		s.respondMessage(w, r, msg)
		return
	}
	writeJSON(w, result)
}

// handleObjects returns the drawing's objects as the server described them.
func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	raw, err := s.collab.Objects(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeRawJSON(w, raw)
}

// handleProfiles returns the drawing's profiles as the server described them.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	raw, err := s.collab.Profiles(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeRawJSON(w, raw)
}

// handleOpenDrawing streams an uploaded .dwg file to the processing server.
func (s *Server) handleOpenDrawing(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, s.cfg.Upload.MaxDrawingSize); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("archivo_dwg")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = fmt.Errorf("archivo_dwg: %w", errNoFile)
		}
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	logging.FromContext(r.Context()).Info("opening drawing", "file", header.Filename, "size", header.Size)

	raw, err := s.collab.OpenDrawing(r.Context(), header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeRawJSON(w, raw)
}

// respondMessage writes a processing server message. Messages flagged as
// errors are the server's own verdict and are logged, not remapped.
func (s *Server) respondMessage(w http.ResponseWriter, r *http.Request, msg collaborator.Message) {
	if msg.Error {
		logging.FromContext(r.Context()).Warn("processing server reported an error",
			"path", r.URL.Path,
			"message", msg.Text,
		)
	}
	writeJSON(w, msg)
}

// writeRawJSON writes an already encoded JSON document.
func writeRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
