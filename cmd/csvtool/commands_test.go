package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in      string
		row     int
		col     int
		value   string
		wantErr bool
	}{
		{in: "0:1=abc", row: 0, col: 1, value: "abc"},
		{in: "2:0=", row: 2, col: 0, value: ""},
		{in: "1:1=a=b", row: 1, col: 1, value: "a=b"},
		{in: " 3 : 4 =x", row: 3, col: 4, value: "x"},
		{in: "0:1", wantErr: true},
		{in: "01=x", wantErr: true},
		{in: "a:1=x", wantErr: true},
		{in: "1:b=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			row, col, value, err := parseSet(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestShow(t *testing.T) {
	path := writeTemp(t, "puntos.csv", "ID,X\nP1,10\nP22,5\n")

	out, _, err := execute(t, "show", path)
	require.NoError(t, err)

	assert.Equal(t, "ID   X\nP1   10\nP22  5\n(2 rows, 2 columns)\n", out)
}

func TestEdit_WritesCSV(t *testing.T) {
	path := writeTemp(t, "in.csv", "a,b\n1,2\n60,7\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := execute(t, "edit", path, "-q", "--add-column", "c", "--set", "0:2=x", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,2,x\n60,7,\n", string(data))
}

func TestEdit_Stdout(t *testing.T) {
	path := writeTemp(t, "in.csv", "a\n1\n")

	out, _, err := execute(t, "edit", path, "-q", "--set", "0:0=9", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "a\n9\n", out)
}

func TestEdit_RendersAfterEachChange(t *testing.T) {
	path := writeTemp(t, "in.csv", "a\n1\n")

	_, stderr, err := execute(t, "edit", path, "--add-column", "b", "-o", "-")
	require.NoError(t, err)

	// Once for the load and once for the new column.
	assert.Equal(t, 2, bytes.Count([]byte(stderr), []byte("rows,")))
}

func TestEdit_RendersEditedTable(t *testing.T) {
	path := writeTemp(t, "in.csv", "a,b\n1,2\n")

	_, stderr, err := execute(t, "edit", path, "--set", "0:1=x", "--set", "0:0=y", "-o", "-")
	require.NoError(t, err)

	// Once for the load and once after all the edits.
	assert.Equal(t, 2, bytes.Count([]byte(stderr), []byte("rows,")))
	assert.Contains(t, stderr, "y  x\n(1 rows, 2 columns)\n")
}

func TestEdit_OutOfRange(t *testing.T) {
	path := writeTemp(t, "in.csv", "a\n1\n")

	_, _, err := execute(t, "edit", path, "-q", "--set", "5:0=x", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cell out of range")
}

func TestEdit_XLSX(t *testing.T) {
	path := writeTemp(t, "in.csv", "ID,Z\nP1,99.5\n")
	output := filepath.Join(t.TempDir(), "out.xlsx")

	_, _, err := execute(t, "edit", path, "-q", "--xlsx", "-o", output)
	require.NoError(t, err)

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Datos")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID", "Z"}, {"P1", "99.5"}}, rows)
}

func TestShow_Latin1(t *testing.T) {
	path := writeTemp(t, "in.csv", "Descripci\xf3n\nca\xf1o\n")

	out, _, err := execute(t, "show", "--encoding", "latin1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Descripción")
	assert.Contains(t, out, "caño")
}

func TestPreview(t *testing.T) {
	coords := writeTemp(t, "c.csv", "ID,X,Y\nP1,0,0\nP2,3,4\n")
	pipes := writeTemp(t, "p.csv", "PK_INICIO,PK_FIN\nP1,P2\n")
	output := filepath.Join(t.TempDir(), "plan.png")

	out, _, err := execute(t, "preview", coords, pipes, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "2 points (0 skipped), 1 pipes (0 skipped)")

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSubmit(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Datos cargados","error":false}`)
	}))
	defer srv.Close()

	coords := writeTemp(t, "c.csv", "ID,X\nP1,1\n")
	pipes := writeTemp(t, "p.csv", "PK_INICIO,PK_FIN\n")

	out, _, err := execute(t, "submit", coords, pipes, "--server", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Datos cargados\n", out)
	assert.Equal(t, "/cargar_datos", gotPath)
	assert.JSONEq(t, `{"coordenadas":[{"ID":"P1","X":"1"}],"tuberias":[]}`, string(gotBody))
}

func TestRun_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"script fallido","error":true}`)
	}))
	defer srv.Close()

	out, _, err := execute(t, "run", "x.py", "--server", srv.URL)
	assert.ErrorIs(t, err, errServerReported)
	assert.Equal(t, "script fallido\n", out)
}

func TestScripts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `["a.py","bb.py"]`)
	}))
	defer srv.Close()

	out, _, err := execute(t, "scripts", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "NAME  ID\na     a.py\nbb    bb.py\n", out)
}

func TestServerRequired(t *testing.T) {
	t.Setenv(serverEnv, "")

	_, _, err := execute(t, "scripts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), serverEnv)
}
