// Package mesh holds the indexed triangle mesh used by the edge frame
// computations, and builds it from STL triangle soups.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/edgeframe/pkg/geometry"
	"github.com/philipparndt/edgeframe/pkg/stl"
)

// ErrVertexIndex is returned when a face references a missing vertex
var ErrVertexIndex = errors.New("mesh: vertex index out of range")

// Mesh is an indexed triangle mesh. Face corners follow the winding of the
// source triangles; halfedge i of face f runs from Faces[f][i] to
// Faces[f][(i+1)%3].
type Mesh struct {
	Vertices []geometry.Vector3
	Faces    [][3]int
}

// FromModel welds the corners of the model's triangles into shared vertices.
// With tolerance 0 corners are merged only when bit-identical; otherwise
// corners falling in the same tolerance-sized grid cell are merged and the
// first corner seen keeps its position.
func FromModel(model *stl.Model, tolerance float64) (*Mesh, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("mesh: invalid weld tolerance %v", tolerance)
	}

	m := &Mesh{
		Vertices: make([]geometry.Vector3, 0, len(model.Triangles)),
		Faces:    make([][3]int, 0, len(model.Triangles)),
	}
	index := make(map[geometry.Vector3]int, len(model.Triangles))

	key := func(v geometry.Vector3) geometry.Vector3 {
		if tolerance == 0 {
			return v
		}
		return geometry.NewVector3(
			math.Round(v.X/tolerance),
			math.Round(v.Y/tolerance),
			math.Round(v.Z/tolerance),
		)
	}

	for _, tri := range model.Triangles {
		var face [3]int
		for i, corner := range tri.Vertices() {
			k := key(corner)
			id, ok := index[k]
			if !ok {
				id = len(m.Vertices)
				index[k] = id
				m.Vertices = append(m.Vertices, corner)
			}
			face[i] = id
		}
		m.Faces = append(m.Faces, face)
	}

	return m, nil
}

// Validate checks that every face references an existing vertex
func (m *Mesh) Validate() error {
	for f, face := range m.Faces {
		for i, v := range face {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d corner %d references vertex %d of %d: %w",
					f, i, v, len(m.Vertices), ErrVertexIndex)
			}
		}
	}
	return nil
}

// BoundingBox calculates the bounding box of all vertices
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(v)
	}
	return bbox
}

// Triangle returns face f as a geometry triangle with a computed normal
func (m *Mesh) Triangle(f int) geometry.Triangle {
	face := m.Faces[f]
	a, b, c := m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]
	return geometry.NewTriangle(geometry.FaceNormal(a, b, c), a, b, c)
}

// SurfaceArea calculates the total surface area of the mesh
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for f := range m.Faces {
		total += m.Triangle(f).Area()
	}
	return total
}
