package collaborator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/civilcsv/internal/core"
)

// scriptSuffix is stripped from script identifiers for display.
const scriptSuffix = ".py"

// drawingField is the multipart field the server reads the drawing from.
const drawingField = "archivo_dwg"

// ErrNotDrawing is returned by OpenDrawing for files without a .dwg extension.
var ErrNotDrawing = errors.New("not a drawing file (.dwg required)")

// Script is a runnable server-side script.
type Script struct {
	ID   string `json:"id"`   // identifier sent back to run it
	Name string `json:"name"` // display name
}

// Point is a reference point in drawing coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ListScripts returns the scripts the server can run.
func (c *Client) ListScripts(ctx context.Context) ([]Script, error) {
	var ids []string
	req := request{op: "list_scripts", method: http.MethodGet, path: "/listar_scripts"}
	if err := c.callJSON(ctx, req, &ids); err != nil {
		return nil, err
	}

	scripts := make([]Script, 0, len(ids))
	for _, id := range ids {
		scripts = append(scripts, Script{
			ID:   id,
			Name: strings.Replace(id, scriptSuffix, "", 1),
		})
	}
	return scripts, nil
}

// RunScript asks the server to execute the script with the given ID.
func (c *Client) RunScript(ctx context.Context, id string) (Message, error) {
	if err := requireValues("run script", id); err != nil {
		return Message{}, err
	}
	req, err := jsonRequest("run_script", "/ejecutar_script/"+url.PathEscape(id), struct{}{})
	if err != nil {
		return Message{}, err
	}
	return c.callMessage(ctx, req)
}

// SubmitTables sends the coordinates and pipes tables together.
func (c *Client) SubmitTables(ctx context.Context, sub core.Submission) (Message, error) {
	if sub.Coordenadas == nil {
		sub.Coordenadas = []core.Record{}
	}
	if sub.Tuberias == nil {
		sub.Tuberias = []core.Record{}
	}
	req, err := jsonRequest("submit_tables", "/cargar_datos", sub)
	if err != nil {
		return Message{}, err
	}
	return c.callMessage(ctx, req)
}

// SelectObjects asks the server for the IDs of the objects currently
// selected in the drawing. The IDs are returned verbatim so they can be sent
// back to GeneratePolyline.
func (c *Client) SelectObjects(ctx context.Context) ([]json.RawMessage, error) {
	req, err := jsonRequest("select_objects", "/seleccionar_objetos", struct{}{})
	if err != nil {
		return nil, err
	}
	var out struct {
		ObjectIDs []json.RawMessage `json:"object_ids"`
	}
	if err := c.callJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.ObjectIDs, nil
}

// GeneratePolyline draws a polyline through the given objects.
func (c *Client) GeneratePolyline(ctx context.Context, objectIDs []json.RawMessage) (Message, error) {
	if len(objectIDs) == 0 {
		return Message{}, fmt.Errorf("generate polyline: no objects: %w", ErrMissingInput)
	}
	return c.postMessage(ctx, "generate_polyline", "/generar_polilinea", map[string]any{
		"object_ids": objectIDs,
	})
}

// GenerateGroundProfile builds a ground profile along an alignment from a 3D polyline.
func (c *Client) GenerateGroundProfile(ctx context.Context, alignmentID, polylineID string) (Message, error) {
	if err := requireValues("generate ground profile", alignmentID, polylineID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "generate_ground_profile", "/generar_perfil_terreno", map[string]any{
		"alineamiento_id": alignmentID,
		"polilinea_id":    polylineID,
	})
}

// CopyCoverProfile copies a profile offset down by the cover distance.
func (c *Client) CopyCoverProfile(ctx context.Context, profileID string, coverDistance float64) (Message, error) {
	if err := requireValues("copy cover profile", profileID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "copy_cover_profile", "/copiar_perfil_tapado", map[string]any{
		"perfil_id":      profileID,
		"distancia_tapa": coverDistance,
	})
}

// CopyGradeLine copies a profile as a grade line.
func (c *Client) CopyGradeLine(ctx context.Context, profileID string) (Message, error) {
	if err := requireValues("copy grade line", profileID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "copy_grade_line", "/copiar_rasante", map[string]any{
		"perfil_id": profileID,
	})
}

// MinimizeGradeVertices simplifies a grade line within tolerance.
func (c *Client) MinimizeGradeVertices(ctx context.Context, gradeID string, tolerance float64) (Message, error) {
	if err := requireValues("minimize grade vertices", gradeID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "minimize_grade_vertices", "/minimizar_vertices_rasante", map[string]any{
		"rasante_id": gradeID,
		"tolerancia": tolerance,
	})
}

// LabelVerticalVertices labels the vertices of a profile.
func (c *Client) LabelVerticalVertices(ctx context.Context, profileID string) (Message, error) {
	if err := requireValues("label vertical vertices", profileID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "label_vertical_vertices", "/etiquetar_vertices_verticales", map[string]any{
		"perfil_id": profileID,
	})
}

// LabelHorizontalVertices labels the vertices of an alignment.
func (c *Client) LabelHorizontalVertices(ctx context.Context, alignmentID string) (Message, error) {
	if err := requireValues("label horizontal vertices", alignmentID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "label_horizontal_vertices", "/etiquetar_vertices_horizontales", map[string]any{
		"alineamiento_id": alignmentID,
	})
}

// LabelDistances labels distances along a polyline from a reference point.
func (c *Client) LabelDistances(ctx context.Context, polylineID string, ref Point) (Message, error) {
	if err := requireValues("label distances", polylineID); err != nil {
		return Message{}, err
	}
	return c.postMessage(ctx, "label_distances", "/etiquetar_distancias", map[string]any{
		"polilinea_id":     polylineID,
		"punto_referencia": ref,
	})
}

// Objects returns the server's description of the drawing's objects.
func (c *Client) Objects(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "objects", "/obtener_objetos")
}

// Profiles returns the server's description of the drawing's profiles.
func (c *Client) Profiles(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "profiles", "/obtener_perfiles")
}

// OpenDrawing uploads a drawing file and returns the server's description
// of it. The file is streamed, not buffered.
func (c *Client) OpenDrawing(ctx context.Context, filename string, r io.Reader) (json.RawMessage, error) {
	if err := requireValues("open drawing", filename); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".dwg") {
		return nil, fmt.Errorf("open drawing %q: %w", filename, ErrNotDrawing)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(drawingField, filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("file read failed: %w", err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req := request{
		op:          "open_drawing",
		method:      http.MethodPost,
		path:        "/abrir_dwg",
		body:        pr,
		contentType: mw.FormDataContentType(),
	}

	var out json.RawMessage
	err := c.callJSON(ctx, req, &out)
	// Unblocks the writer goroutine if the request ended before reading it all.
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postMessage(ctx context.Context, op, path string, payload any) (Message, error) {
	req, err := jsonRequest(op, path, payload)
	if err != nil {
		return Message{}, err
	}
	return c.callMessage(ctx, req)
}

func (c *Client) getRaw(ctx context.Context, op, path string) (json.RawMessage, error) {
	var out json.RawMessage
	req := request{op: op, method: http.MethodGet, path: path}
	if err := c.callJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
