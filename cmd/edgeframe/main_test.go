package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/edgeframe/pkg/geometry"
	"github.com/philipparndt/edgeframe/pkg/stl"
)

const asciiTriangle = `solid tri
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid tri
`

func writeModel(t *testing.T, name string, model *stl.Model) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, stl.WriteBinary(file, model))
	require.NoError(t, file.Close())
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	vecPerpendicular, vecNormals, vecFormat, vecOutput, vecWorkers, vecWatch = false, "face", "csv", "", 1, false
	checkTolerance, checkMaxIssues = 1e-9, 10
	verbose, weldTolerance = false, 0
	renderOutput, renderWidth, renderHeight = "frames.png", 800, 600
	renderAzimuth, renderElevation, renderPerpendicular, renderNormals = 30, 22.5, true, "face"
	exportOutput = "welded.stl"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVectorsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, []byte(asciiTriangle), 0o644))

	out, err := execute(t, "vectors", path, "--perpendicular", "--workers", "1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+3+3)
	assert.Equal(t, []string{"kind", "edge", "face", "slot", "x", "y", "z"}, records[0])
	assert.Equal(t, []string{"parallel", "0", "", "", "1", "0", "0"}, records[1])
	assert.Equal(t, []string{"parallel", "2", "", "", "0", "-1", "0"}, records[3])
	assert.Equal(t, []string{"perpendicular", "0", "0", "0", "0", "-1", "0"}, records[4])
}

func TestVectorsJSONToFile(t *testing.T) {
	p := []geometry.Vector3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	model := stl.NewModel("square")
	model.AddTriangle(geometry.NewTriangle(geometry.Vector3{}, p[0], p[1], p[2]))
	model.AddTriangle(geometry.NewTriangle(geometry.Vector3{}, p[0], p[2], p[3]))
	path := writeModel(t, "square.stl", model)
	output := filepath.Join(t.TempDir(), "frames.json")

	_, err := execute(t, "vectors", path, "-p", "--format", "json", "--normals", "edge", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc jsonFrames
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Len(t, doc.Edges, 5)
	assert.Len(t, doc.Halfedges, 6)
	assert.Equal(t, jsonEdge{ID: 2, From: 2, To: 0, Vector: doc.Edges[2].Vector}, doc.Edges[2])
	assert.InDelta(t, -0.7071067811865476, doc.Edges[2].Vector[0], 1e-12)
}

func TestVectorsRejectsBadFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, []byte(asciiTriangle), 0o644))

	_, err := execute(t, "vectors", path, "--normals", "vertex")
	require.Error(t, err)

	_, err = execute(t, "vectors", path, "--format", "xml")
	require.Error(t, err)
}

func TestCheckAndInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, []byte(asciiTriangle), 0o644))

	out, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Edges: 3 (0 interior, 3 boundary)")
	assert.Contains(t, out, "OK")

	out, err = execute(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: tri")
	assert.Contains(t, out, "Boundary edges: 3")
	assert.Contains(t, out, "Euler characteristic: 1")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "edgeframe dev")
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, []byte(asciiTriangle), 0o644))
	output := filepath.Join(t.TempDir(), "tri.png")

	out, err := execute(t, "render", path, "-o", output, "--width", "64", "--height", "48")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 3 edges")

	file, err := os.Open(output)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestExportCommand(t *testing.T) {
	p := []geometry.Vector3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	model := stl.NewModel("square")
	model.AddTriangle(geometry.NewTriangle(geometry.Vector3{}, p[0], p[1], p[2]))
	model.AddTriangle(geometry.NewTriangle(geometry.Vector3{}, p[0], p[2], p[3]))
	path := writeModel(t, "square.stl", model)
	output := filepath.Join(t.TempDir(), "welded.stl")

	out, err := execute(t, "export", path, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 faces")

	exported, err := stl.Parse(output)
	require.NoError(t, err)
	assert.Equal(t, "square", exported.Name)
	require.Equal(t, 2, exported.TriangleCount())
	assert.Equal(t, p[2], exported.Triangles[0].V3)
	assert.Equal(t, geometry.NewVector3(0, 0, 1), exported.Triangles[1].Normal)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "out.txt")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "edges")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edges", string(data))

	errWrite := errors.New("write failed")
	err = writeFile(filepath.Join(dir, "fail.txt"), func(io.Writer) error { return errWrite })
	require.ErrorIs(t, err, errWrite)

	// A file closed underneath the writer makes the final Close fail.
	err = writeFile(filepath.Join(dir, "closed.txt"), func(w io.Writer) error {
		return w.(*os.File).Close()
	})
	require.ErrorIs(t, err, os.ErrClosed)
	assert.Contains(t, err.Error(), "failed to close output file")

	err = writeFile(filepath.Join(dir, "missing", "out.txt"), func(io.Writer) error { return nil })
	require.Error(t, err)
}
