package edgevec

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/edgeframe/pkg/geometry"
)

// Input is a triangle mesh together with its halfedge-to-edge mapping.
type Input struct {
	Vertices     []geometry.Vector3
	Faces        [][3]int
	Edges        [][3]int
	Orientations [][3]int
}

// NormalMode selects the normal the perpendicular vectors are rotated about.
type NormalMode int

const (
	// FaceNormals uses the unit normal of the halfedge's own face.
	FaceNormals NormalMode = iota
	// EdgeNormals uses the normalized sum of the normals of all faces
	// incident to the edge.
	EdgeNormals
)

func (m NormalMode) String() string {
	switch m {
	case FaceNormals:
		return "face"
	case EdgeNormals:
		return "edge"
	default:
		return fmt.Sprintf("NormalMode(%d)", int(m))
	}
}

// Options configures Frames.
type Options struct {
	// ComputePerpendicular enables the per-halfedge perpendicular output.
	ComputePerpendicular bool
	Normals              NormalMode
	// Workers > 1 splits the work across that many goroutines.
	Workers int
}

// minChunk keeps tiny meshes on the calling goroutine.
const minChunk = 1024

// layout is the validated shape of an Input.
type layout struct {
	numEdges int
	// owner[e] is the first halfedge (3*f+i) referencing edge e.
	owner []int
}

// NumEdges returns max(Edges)+1, or 0 for an empty mesh. It does not
// validate the input.
func (in *Input) NumEdges() int {
	n := 0
	for _, row := range in.Edges {
		for _, e := range row {
			if e+1 > n {
				n = e + 1
			}
		}
	}
	return n
}

func (in *Input) validate() (*layout, error) {
	if len(in.Edges) != len(in.Faces) {
		return nil, fmt.Errorf("edge map has %d rows, faces have %d: %w",
			len(in.Edges), len(in.Faces), ErrInvalidArgument)
	}
	if len(in.Orientations) != len(in.Faces) {
		return nil, fmt.Errorf("orientation map has %d rows, faces have %d: %w",
			len(in.Orientations), len(in.Faces), ErrInvalidArgument)
	}

	numVertices := len(in.Vertices)
	for f, face := range in.Faces {
		for i := 0; i < 3; i++ {
			if v := face[i]; v < 0 || v >= numVertices {
				return nil, fmt.Errorf("face %d corner %d: vertex %d not in [0,%d): %w",
					f, i, v, numVertices, ErrInvalidArgument)
			}
			if e := in.Edges[f][i]; e < 0 {
				return nil, fmt.Errorf("halfedge (%d,%d): negative edge id %d: %w", f, i, e, ErrInvalidArgument)
			}
			if s := in.Orientations[f][i]; s != 1 && s != -1 {
				return nil, fmt.Errorf("halfedge (%d,%d): orientation %d not in {+1,-1}: %w",
					f, i, s, ErrInvalidArgument)
			}
		}
	}

	l := &layout{numEdges: in.NumEdges()}
	l.owner = make([]int, l.numEdges)
	for e := range l.owner {
		l.owner[e] = -1
	}
	for f, row := range in.Edges {
		for i, e := range row {
			if l.owner[e] < 0 {
				l.owner[e] = 3*f + i
			}
		}
	}
	for e, h := range l.owner {
		if h < 0 {
			return nil, fmt.Errorf("edge id %d of %d is never referenced: %w", e, l.numEdges, ErrInvalidArgument)
		}
	}
	return l, nil
}

// halfedgeVector returns the unit vector of halfedge h along its edge's
// canonical direction.
func (in *Input) halfedgeVector(h int) geometry.Vector3 {
	f, i := h/3, h%3
	a := in.Vertices[in.Faces[f][i]]
	b := in.Vertices[in.Faces[f][(i+1)%3]]
	d := b.Sub(a)
	if in.Orientations[f][i] < 0 {
		d = d.Neg()
	}
	return d.Normalize()
}

// Parallel computes the unit vector of every edge, indexed by edge id and
// pointing along the edge's canonical direction. dst is reused when it has
// enough capacity.
func Parallel(dst []geometry.Vector3, in *Input) ([]geometry.Vector3, error) {
	l, err := in.validate()
	if err != nil {
		return dst, err
	}
	return in.parallel(dst, l, 1), nil
}

// Frames computes the parallel vectors and, when opts.ComputePerpendicular
// is set, the perpendicular vector of every halfedge in the layout of Faces.
// When the perpendicular output is disabled perp is returned unchanged.
// On error neither buffer is modified.
func Frames(par []geometry.Vector3, perp [][3]geometry.Vector3, in *Input, opts Options) ([]geometry.Vector3, [][3]geometry.Vector3, error) {
	if opts.Normals != FaceNormals && opts.Normals != EdgeNormals {
		return par, perp, fmt.Errorf("unknown normal mode %v: %w", opts.Normals, ErrInvalidArgument)
	}
	l, err := in.validate()
	if err != nil {
		return par, perp, err
	}

	par = in.parallel(par, l, opts.Workers)
	if !opts.ComputePerpendicular {
		return par, perp, nil
	}

	normals := in.faceNormals(opts.Workers)
	var edgeNormals []geometry.Vector3
	if opts.Normals == EdgeNormals {
		edgeNormals = in.edgeNormals(l.numEdges, normals)
	}

	perp = resize(perp, len(in.Faces))
	split(len(in.Faces), opts.Workers, func(lo, hi int) {
		for f := lo; f < hi; f++ {
			for i := 0; i < 3; i++ {
				e := in.Edges[f][i]
				n := normals[f]
				if edgeNormals != nil {
					n = edgeNormals[e]
				}
				h := par[e].Mul(float64(in.Orientations[f][i]))
				perp[f][i] = h.Cross(n)
			}
		}
	})
	return par, perp, nil
}

func (in *Input) parallel(dst []geometry.Vector3, l *layout, workers int) []geometry.Vector3 {
	vec := resize(dst, l.numEdges)
	split(l.numEdges, workers, func(lo, hi int) {
		for e := lo; e < hi; e++ {
			vec[e] = in.halfedgeVector(l.owner[e])
		}
	})
	return vec
}

func (in *Input) faceNormals(workers int) []geometry.Vector3 {
	normals := make([]geometry.Vector3, len(in.Faces))
	split(len(in.Faces), workers, func(lo, hi int) {
		for f := lo; f < hi; f++ {
			face := in.Faces[f]
			normals[f] = geometry.FaceNormal(in.Vertices[face[0]], in.Vertices[face[1]], in.Vertices[face[2]])
		}
	})
	return normals
}

func (in *Input) edgeNormals(numEdges int, faceNormals []geometry.Vector3) []geometry.Vector3 {
	sums := make([]geometry.Vector3, numEdges)
	for f, row := range in.Edges {
		for _, e := range row {
			sums[e] = sums[e].Add(faceNormals[f])
		}
	}
	for e := range sums {
		sums[e] = sums[e].Normalize()
	}
	return sums
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

// split runs fn over [0,n) in contiguous chunks, one goroutine per chunk.
func split(n, workers int, fn func(lo, hi int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}
	chunk := max((n+workers-1)/workers, minChunk)

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
