// Package loader turns an .stl or .scad file into an oriented mesh ready for
// edge frame computations.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/philipparndt/edgeframe/pkg/edgevec"
	"github.com/philipparndt/edgeframe/pkg/halfedge"
	"github.com/philipparndt/edgeframe/pkg/mesh"
	"github.com/philipparndt/edgeframe/pkg/openscad"
	"github.com/philipparndt/edgeframe/pkg/stl"
)

// ErrUnsupportedFile is returned for extensions other than .stl and .scad
var ErrUnsupportedFile = errors.New("unsupported file type (expected .stl or .scad)")

// Options configures Load
type Options struct {
	// WeldTolerance is passed to mesh.FromModel.
	WeldTolerance float64
	Logger        *zap.Logger
}

// Result is a loaded and oriented mesh
type Result struct {
	Source      string
	Name        string
	Mesh        *mesh.Mesh
	Orientation *halfedge.Orientation
	// Dependencies lists the files whose change invalidates the result.
	Dependencies []string
}

// Input returns the edge frame input for the loaded mesh
func (r *Result) Input() *edgevec.Input {
	return &edgevec.Input{
		Vertices:     r.Mesh.Vertices,
		Faces:        r.Mesh.Faces,
		Edges:        r.Orientation.Edges,
		Orientations: r.Orientation.Signs,
	}
}

// Load reads path, welds it into an indexed mesh and orients its halfedges
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	model, deps, err := loadModel(ctx, path, log)
	if err != nil {
		return nil, err
	}

	m, err := mesh.FromModel(model, opts.WeldTolerance)
	if err != nil {
		return nil, err
	}
	o, err := halfedge.Orient(m.Faces)
	if err != nil {
		return nil, fmt.Errorf("failed to orient halfedges of %s: %w", path, err)
	}

	log.Info("mesh loaded",
		zap.String("file", path),
		zap.Int("triangles", model.TriangleCount()),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("edges", o.NumEdges()))

	return &Result{
		Source:       path,
		Name:         model.Name,
		Mesh:         m,
		Orientation:  o,
		Dependencies: deps,
	}, nil
}

// loadModel loads a model from either STL or OpenSCAD file
func loadModel(ctx context.Context, filePath string, log *zap.Logger) (*stl.Model, []string, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".stl":
		model, err := stl.Parse(filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse STL file: %w", err)
		}
		return model, []string{filePath}, nil

	case ".scad":
		renderer := openscad.NewRenderer(filepath.Dir(filePath), log)

		deps, err := renderer.ResolveDependencies(filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve dependencies: %w", err)
		}

		tempFile, err := os.CreateTemp("", "edgeframe_*.stl")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create temporary STL: %w", err)
		}
		tempFile.Close()
		defer os.Remove(tempFile.Name())

		if err := renderer.RenderToSTL(ctx, filePath, tempFile.Name()); err != nil {
			return nil, nil, fmt.Errorf("failed to render OpenSCAD file: %w", err)
		}

		model, err := stl.Parse(tempFile.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse rendered STL: %w", err)
		}
		return model, deps, nil

	default:
		return nil, nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFile)
	}
}
