// Package halfedge maps the halfedges of a triangle mesh to dense undirected
// edge ids and records each halfedge's orientation relative to its edge.
package halfedge

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateFace is returned for a face that repeats a vertex.
	ErrDegenerateFace = errors.New("halfedge: face repeats a vertex")
	// ErrNonManifold is returned when more than two halfedges share an edge.
	ErrNonManifold = errors.New("halfedge: edge shared by more than two faces")
)

// Orientation is the halfedge-to-edge mapping of a triangle mesh.
// Edges and Signs have the shape of the face list: Edges[f][i] is the edge
// id of halfedge (f,i) and Signs[f][i] is +1 when the halfedge runs along the
// edge's canonical direction and -1 otherwise.
type Orientation struct {
	Edges [][3]int
	Signs [][3]int
	// Endpoints holds the canonical (from, to) vertex pair of every edge.
	Endpoints [][2]int
	// Halfedges counts the halfedges referencing every edge: 1 on the
	// boundary, 2 in the interior.
	Halfedges []int
}

// NumEdges returns the number of distinct edges
func (o *Orientation) NumEdges() int {
	return len(o.Endpoints)
}

// BoundaryEdges returns the ids of edges with a single halfedge
func (o *Orientation) BoundaryEdges() []int {
	var ids []int
	for e, n := range o.Halfedges {
		if n == 1 {
			ids = append(ids, e)
		}
	}
	return ids
}

// Orient assigns edge ids in face/slot order. The first halfedge that visits
// an unordered vertex pair creates the id and fixes its canonical direction.
func Orient(faces [][3]int) (*Orientation, error) {
	o := &Orientation{
		Edges: make([][3]int, len(faces)),
		Signs: make([][3]int, len(faces)),
	}
	ids := make(map[[2]int]int, len(faces)*3/2)

	for f, face := range faces {
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			return nil, fmt.Errorf("face %d %v: %w", f, face, ErrDegenerateFace)
		}
		for i := 0; i < 3; i++ {
			from, to := face[i], face[(i+1)%3]
			key := sortPair(from, to)

			id, ok := ids[key]
			if !ok {
				id = len(o.Endpoints)
				ids[key] = id
				o.Endpoints = append(o.Endpoints, [2]int{from, to})
				o.Halfedges = append(o.Halfedges, 0)
			}

			o.Halfedges[id]++
			if o.Halfedges[id] > 2 {
				return nil, fmt.Errorf("edge %d (%d,%d) at face %d: %w", id, key[0], key[1], f, ErrNonManifold)
			}

			o.Edges[f][i] = id
			if o.Endpoints[id][0] == from {
				o.Signs[f][i] = 1
			} else {
				o.Signs[f][i] = -1
			}
		}
	}

	return o, nil
}

func sortPair(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
