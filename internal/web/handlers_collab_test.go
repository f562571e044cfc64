package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendCall is one request seen by the fake processing server.
type backendCall struct {
	Method string
	Path   string
	Body   []byte
}

// fakeBackend serves canned replies keyed by path and records every call.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	replies map[string]reply
}

type reply struct {
	status int
	body   string
}

func newFakeBackend(replies map[string]reply) *fakeBackend {
	return &fakeBackend{replies: replies}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{Method: r.Method, Path: r.URL.EscapedPath(), Body: data})
	b.mu.Unlock()

	rep, ok := b.replies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	io.WriteString(w, rep.body)
}

func (b *fakeBackend) Calls() []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendCall(nil), b.calls...)
}

func (b *fakeBackend) last(t *testing.T) backendCall {
	t.Helper()
	calls := b.Calls()
	require.NotEmpty(t, calls, "backend was not called")
	return calls[len(calls)-1]
}

const (
	coordsCSV = "ID,X,Y,Z\nP1,0,0,100\nP2,10,5,99\n"
	pipesCSV  = "ID_TUBERIA,PK_INICIO,PK_FIN\nT1,P1,P2\n"
)

func TestSubmit(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/cargar_datos": {http.StatusOK, `{"message":"Datos cargados","error":false}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/submit", map[string]string{
		"coordenadas": coordsCSV,
		"tuberias":    pipesCSV,
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Datos cargados","error":false}`, rec.Body.String())

	call := backend.last(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/cargar_datos", call.Path)
	assert.JSONEq(t, `{
		"coordenadas": [
			{"ID":"P1","X":"0","Y":"0","Z":"100"},
			{"ID":"P2","X":"10","Y":"5","Z":"99"}
		],
		"tuberias": [
			{"ID_TUBERIA":"T1","PK_INICIO":"P1","PK_FIN":"P2"}
		]
	}`, string(call.Body))
}

func TestSubmit_HeaderOnlyTablesSendEmptyArrays(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/cargar_datos": {http.StatusOK, `{"message":"ok","error":false}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/submit", map[string]string{
		"coordenadas": "ID,X,Y\n",
		"tuberias":    "PK_INICIO,PK_FIN\n",
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"coordenadas":[],"tuberias":[]}`, string(backend.last(t).Body))
}

func TestSubmit_MissingTable(t *testing.T) {
	backend := newFakeBackend(nil)
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/submit", map[string]string{"coordenadas": coordsCSV}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE002", decodeError(t, rec).Code)
	assert.Empty(t, backend.Calls())
}

func TestSubmit_FromEditorSession(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/cargar_datos": {http.StatusOK, `{"message":"ok","error":false}`},
	})
	s := newTestServer(t, backend, nil)

	id := loadTable(t, s, coordsCSV)
	rec := serve(s, jsonRequest(http.MethodPost, "/api/editor/"+id+"/cell", `{"row":1,"col":3,"value":"98.5"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(s, multipartRequest(t, "/api/submit",
		map[string]string{"tuberias": pipesCSV},
		map[string]string{"coordenadas_session": id},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{
		"coordenadas": [
			{"ID":"P1","X":"0","Y":"0","Z":"100"},
			{"ID":"P2","X":"10","Y":"5","Z":"98.5"}
		],
		"tuberias": [
			{"ID_TUBERIA":"T1","PK_INICIO":"P1","PK_FIN":"P2"}
		]
	}`, string(backend.last(t).Body))
}

func TestSubmit_UnknownSession(t *testing.T) {
	backend := newFakeBackend(nil)
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/submit",
		map[string]string{"coordenadas": coordsCSV},
		map[string]string{"tuberias_session": "missing"},
	))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SES001", decodeError(t, rec).Code)
	assert.Empty(t, backend.Calls())
}

func TestPreview_FromEditorSessions(t *testing.T) {
	s := newTestServer(t, newFakeBackend(nil), nil)
	coords := loadTable(t, s, coordsCSV)
	pipes := loadTable(t, s, pipesCSV)

	rec := serve(s, multipartRequest(t, "/api/preview", nil, map[string]string{
		"coordenadas_session": coords,
		"tuberias_session":    pipes,
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Preview-Points"))
	assert.Equal(t, "1", rec.Header().Get("X-Preview-Pipes"))
}

func TestSubmit_ServerReportsError(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/cargar_datos": {http.StatusInternalServerError, `{"error":"columna X ausente"}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/submit", map[string]string{
		"coordenadas": coordsCSV,
		"tuberias":    pipesCSV,
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"columna X ausente","error":true}`, rec.Body.String())
}

func TestSubmit_ServerUnreachable(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	s := newTestServer(t, nil, map[string]string{"PROCESSING_SERVER_URL": url})

	rec := serve(s, multipartRequest(t, "/api/submit", map[string]string{
		"coordenadas": coordsCSV,
		"tuberias":    pipesCSV,
	}, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "SRV004", resp.Code)
	assert.Contains(t, resp.Detail, "submit_tables")
}

func TestPreview(t *testing.T) {
	backend := newFakeBackend(nil)
	s := newTestServer(t, backend, nil)

	rec := serve(s, multipartRequest(t, "/api/preview", map[string]string{
		"coordenadas": coordsCSV + "P3,bad,1,1\n",
		"tuberias":    pipesCSV + "T2,P1,P9\n",
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Preview-Points"))
	assert.Equal(t, "1", rec.Header().Get("X-Preview-Skipped-Points"))
	assert.Equal(t, "1", rec.Header().Get("X-Preview-Pipes"))
	assert.Equal(t, "1", rec.Header().Get("X-Preview-Skipped-Pipes"))

	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, backend.Calls())
}

func TestListScripts(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/listar_scripts": {http.StatusOK, `["crear puntos.py","exportar.py"]`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/scripts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id":"crear puntos.py","name":"crear puntos"},
		{"id":"exportar.py","name":"exportar"}
	]`, rec.Body.String())
}

func TestRunScript(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/ejecutar_script/crear puntos.py": {http.StatusOK, `{"message":"Script ejecutado","error":false}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/scripts/crear%20puntos.py/run", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Script ejecutado","error":false}`, rec.Body.String())
	assert.Equal(t, "/ejecutar_script/crear%20puntos.py", backend.last(t).Path)
}

func TestAcadOperations(t *testing.T) {
	ok := reply{http.StatusOK, `{"message":"hecho","error":false}`}
	backend := newFakeBackend(map[string]reply{
		"/generar_polilinea":               ok,
		"/generar_perfil_terreno":          ok,
		"/copiar_perfil_tapado":            ok,
		"/copiar_rasante":                  ok,
		"/minimizar_vertices_rasante":      ok,
		"/etiquetar_vertices_verticales":   ok,
		"/etiquetar_vertices_horizontales": ok,
		"/etiquetar_distancias":            ok,
	})
	s := newTestServer(t, backend, nil)

	tests := []struct {
		operation string
		body      string
		wantPath  string
		wantBody  string
	}{
		{"polyline", `{"object_ids":[12,"A3"]}`, "/generar_polilinea", `{"object_ids":[12,"A3"]}`},
		{"ground-profile", `{"alineamiento_id":"AL1","polilinea_id":"PL1"}`, "/generar_perfil_terreno",
			`{"alineamiento_id":"AL1","polilinea_id":"PL1"}`},
		{"cover-profile", `{"perfil_id":"PF1","distancia_tapa":1.2}`, "/copiar_perfil_tapado",
			`{"perfil_id":"PF1","distancia_tapa":1.2}`},
		{"grade-line", `{"perfil_id":"PF1"}`, "/copiar_rasante", `{"perfil_id":"PF1"}`},
		{"minimize-vertices", `{"rasante_id":"R1","tolerancia":0.05}`, "/minimizar_vertices_rasante",
			`{"rasante_id":"R1","tolerancia":0.05}`},
		{"vertical-labels", `{"perfil_id":"PF1"}`, "/etiquetar_vertices_verticales", `{"perfil_id":"PF1"}`},
		{"horizontal-labels", `{"alineamiento_id":"AL1"}`, "/etiquetar_vertices_horizontales", `{"alineamiento_id":"AL1"}`},
		{"distance-labels", `{"polilinea_id":"PL1","punto_referencia":{"x":1,"y":2,"z":3}}`, "/etiquetar_distancias",
			`{"polilinea_id":"PL1","punto_referencia":{"x":1,"y":2,"z":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			rec := serve(s, jsonRequest(http.MethodPost, "/api/acad/"+tt.operation, tt.body))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `{"message":"hecho","error":false}`, rec.Body.String())

			call := backend.last(t)
			assert.Equal(t, tt.wantPath, call.Path)
			assert.JSONEq(t, tt.wantBody, string(call.Body))
		})
	}
}

func TestAcadSelectObjects(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/seleccionar_objetos": {http.StatusOK, `{"object_ids":[7,"B2"]}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/acad/select-objects", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"object_ids":[7,"B2"]}`, rec.Body.String())
}

func TestAcadSelectObjects_NoneSelected(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/seleccionar_objetos": {http.StatusOK, `{}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/acad/select-objects", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"object_ids":[]}`, rec.Body.String())
}

func TestAcadOperation_Errors(t *testing.T) {
	backend := newFakeBackend(nil)
	s := newTestServer(t, backend, nil)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown operation", "/api/acad/explode", `{}`, http.StatusNotFound, "ERR000"},
		{"missing ids", "/api/acad/ground-profile", ``, http.StatusBadRequest, "INP001"},
		{"empty polyline", "/api/acad/polyline", `{"object_ids":[]}`, http.StatusBadRequest, "INP001"},
		{"malformed body", "/api/acad/grade-line", `{"perfil_id":`, http.StatusBadRequest, "EDIT002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, jsonRequest(http.MethodPost, tt.target, tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
	assert.Empty(t, backend.Calls())
}

func TestObjectsAndProfiles(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/obtener_objetos":  {http.StatusOK, `[{"id":1,"tipo":"Polyline"}]`},
		"/obtener_perfiles": {http.StatusOK, `{"perfiles":["PF1"]}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/acad/objects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"tipo":"Polyline"}]`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/acad/profiles", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"perfiles":["PF1"]}`, rec.Body.String())
}

func TestObjects_ServerError(t *testing.T) {
	backend := newFakeBackend(map[string]reply{
		"/obtener_objetos": {http.StatusInternalServerError, `{"error":"sin dibujo abierto"}`},
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/acad/objects", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeError(t, rec).Detail, "sin dibujo abierto")
}

func drawingRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("archivo_dwg", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/drawing", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestOpenDrawing(t *testing.T) {
	var gotName, gotContent string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("archivo_dwg")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotContent = header.Filename, string(data)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"objetos": 3})
	})
	s := newTestServer(t, backend, nil)

	rec := serve(s, drawingRequest(t, "planta.dwg", "AC1032..."))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"objetos":3}`, rec.Body.String())
	assert.Equal(t, "planta.dwg", gotName)
	assert.Equal(t, "AC1032...", gotContent)
}

func TestOpenDrawing_Errors(t *testing.T) {
	backend := newFakeBackend(nil)
	s := newTestServer(t, backend, map[string]string{"UPLOAD_MAX_DRAWING_SIZE": "1024"})

	rec := serve(s, drawingRequest(t, "planta.pdf", "%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE005", decodeError(t, rec).Code)

	rec = serve(s, multipartRequest(t, "/api/drawing", nil, map[string]string{"x": "y"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE002", decodeError(t, rec).Code)

	rec = serve(s, drawingRequest(t, "grande.dwg", string(bytes.Repeat([]byte{0}, 4096))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Empty(t, backend.Calls())
}
