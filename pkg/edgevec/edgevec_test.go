package edgevec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/edgeframe/pkg/geometry"
	"github.com/philipparndt/edgeframe/pkg/halfedge"
)

const eps = 1e-12

func singleTriangle() *Input {
	return &Input{
		Vertices: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(0, 1, 0),
		},
		Faces:        [][3]int{{0, 1, 2}},
		Edges:        [][3]int{{0, 1, 2}},
		Orientations: [][3]int{{1, 1, 1}},
	}
}

// wavyGrid builds an open n x n vertex grid bent out of plane, oriented with
// package halfedge.
func wavyGrid(t *testing.T, n int) *Input {
	t.Helper()

	in := &Input{}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			fx, fy := float64(x)*0.3, float64(y)*0.2
			in.Vertices = append(in.Vertices, geometry.NewVector3(fx, fy, 0.4*math.Sin(fx)*math.Cos(fy)))
		}
	}
	for y := 0; y+1 < n; y++ {
		for x := 0; x+1 < n; x++ {
			a := y*n + x
			b, c, d := a+1, a+n+1, a+n
			in.Faces = append(in.Faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}

	o, err := halfedge.Orient(in.Faces)
	require.NoError(t, err)
	in.Edges, in.Orientations = o.Edges, o.Signs
	return in
}

func assertUnit(t *testing.T, v geometry.Vector3, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, 1.0, v.Length(), 1e-10, msgAndArgs...)
}

func TestParallelSingleTriangle(t *testing.T) {
	vec, err := Parallel(nil, singleTriangle())
	require.NoError(t, err)

	s := math.Sqrt(0.5)
	expected := []geometry.Vector3{
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(-s, s, 0),
		geometry.NewVector3(0, -1, 0),
	}
	require.Len(t, vec, len(expected))
	for e := range expected {
		assert.True(t, vec[e].NearlyEqual(expected[e], eps), "edge %d: got %v", e, vec[e])
	}
}

func TestParallelSharedEdgeOrderIndependent(t *testing.T) {
	vertices := []geometry.Vector3{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0.5),
		geometry.NewVector3(0, 1, 0),
	}
	forward := &Input{
		Vertices:     vertices,
		Faces:        [][3]int{{0, 1, 2}, {0, 2, 3}},
		Edges:        [][3]int{{0, 1, 2}, {2, 3, 4}},
		Orientations: [][3]int{{1, 1, 1}, {-1, 1, 1}},
	}
	swapped := &Input{
		Vertices:     vertices,
		Faces:        [][3]int{{0, 2, 3}, {0, 1, 2}},
		Edges:        [][3]int{{2, 3, 4}, {0, 1, 2}},
		Orientations: [][3]int{{-1, 1, 1}, {1, 1, 1}},
	}

	a, err := Parallel(nil, forward)
	require.NoError(t, err)
	b, err := Parallel(nil, swapped)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, a[2].NearlyEqual(vertices[0].Sub(vertices[2]).Normalize(), eps))
}

func TestParallelUnitAndInteriorAgreement(t *testing.T) {
	in := wavyGrid(t, 12)

	vec, err := Parallel(nil, in)
	require.NoError(t, err)
	require.Len(t, vec, in.NumEdges())

	for e, v := range vec {
		assertUnit(t, v, "edge %d", e)
	}
	// Every halfedge, after orientation correction, agrees with the stored
	// edge vector, whichever halfedge wrote it.
	for f := range in.Faces {
		for i := 0; i < 3; i++ {
			got := in.halfedgeVector(3*f + i)
			assert.True(t, got.NearlyEqual(vec[in.Edges[f][i]], eps), "halfedge (%d,%d)", f, i)
		}
	}
}

func TestParallelZeroLengthEdge(t *testing.T) {
	in := singleTriangle()
	in.Vertices[1] = in.Vertices[0]

	vec, err := Parallel(nil, in)
	require.NoError(t, err)
	assert.True(t, vec[0].IsZero())
	assertUnit(t, vec[1])
}

func TestParallelReusesBuffer(t *testing.T) {
	dst := make([]geometry.Vector3, 0, 8)

	vec, err := Parallel(dst, singleTriangle())
	require.NoError(t, err)
	require.Len(t, vec, 3)
	assert.Same(t, &dst[:1][0], &vec[0])
}

func TestFramesPerpendicularOrthogonalAndUnit(t *testing.T) {
	in := wavyGrid(t, 10)

	for _, mode := range []NormalMode{FaceNormals, EdgeNormals} {
		t.Run(mode.String(), func(t *testing.T) {
			par, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true, Normals: mode})
			require.NoError(t, err)
			require.Len(t, perp, len(in.Faces))

			for f := range in.Faces {
				for i := 0; i < 3; i++ {
					p := perp[f][i]
					assertUnit(t, p, "halfedge (%d,%d)", f, i)
					assert.InDelta(t, 0.0, p.Dot(par[in.Edges[f][i]]), 1e-10, "halfedge (%d,%d)", f, i)
				}
			}
		})
	}
}

func TestFramesFaceNormalsLieInFacePlane(t *testing.T) {
	in := wavyGrid(t, 6)

	_, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true})
	require.NoError(t, err)

	for f, face := range in.Faces {
		n := geometry.FaceNormal(in.Vertices[face[0]], in.Vertices[face[1]], in.Vertices[face[2]])
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 0.0, perp[f][i].Dot(n), 1e-10, "halfedge (%d,%d)", f, i)
		}
	}
}

func TestFramesPerpendicularPointsOutward(t *testing.T) {
	in := singleTriangle()

	_, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true})
	require.NoError(t, err)

	tri := geometry.NewTriangle(geometry.Vector3{}, in.Vertices[0], in.Vertices[1], in.Vertices[2])
	centroid := tri.Center()
	for i := 0; i < 3; i++ {
		a, b := in.Vertices[in.Faces[0][i]], in.Vertices[in.Faces[0][(i+1)%3]]
		mid := a.Add(b).Mul(0.5)
		assert.Greater(t, perp[0][i].Dot(mid.Sub(centroid)), 0.0, "halfedge %d points inward: %v", i, perp[0][i])
	}
	assert.True(t, perp[0][0].NearlyEqual(geometry.NewVector3(0, -1, 0), eps))
	assert.True(t, perp[0][2].NearlyEqual(geometry.NewVector3(-1, 0, 0), eps))
}

func TestFramesSharedEdgePerpendicularsDiffer(t *testing.T) {
	in := &Input{
		Vertices: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(1, 1, 0),
			geometry.NewVector3(0, 1, 0),
		},
		Faces:        [][3]int{{0, 1, 2}, {0, 2, 3}},
		Edges:        [][3]int{{0, 1, 2}, {2, 3, 4}},
		Orientations: [][3]int{{1, 1, 1}, {-1, 1, 1}},
	}

	_, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true})
	require.NoError(t, err)

	// On a flat square the two sides of the diagonal point away from each
	// other.
	s := math.Sqrt(0.5)
	assert.True(t, perp[0][2].NearlyEqual(geometry.NewVector3(-s, s, 0), eps), "got %v", perp[0][2])
	assert.True(t, perp[1][0].NearlyEqual(geometry.NewVector3(s, -s, 0), eps), "got %v", perp[1][0])
}

func TestFramesReversedOrientation(t *testing.T) {
	in := wavyGrid(t, 8)
	par, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true})
	require.NoError(t, err)

	reversed := *in
	reversed.Orientations = make([][3]int, len(in.Orientations))
	for f, row := range in.Orientations {
		for i, s := range row {
			reversed.Orientations[f][i] = -s
		}
	}
	rpar, rperp, err := Frames(nil, nil, &reversed, Options{ComputePerpendicular: true})
	require.NoError(t, err)

	for e := range par {
		assert.Equal(t, par[e].Neg(), rpar[e], "edge %d", e)
	}
	// perp is rotate(par[E]*oE): flipping par and oE together leaves each
	// halfedge's direction, and so its perpendicular, unchanged.
	assert.Equal(t, perp, rperp)
}

func TestFramesWithoutPerpendicularLeavesBufferAlone(t *testing.T) {
	perp := [][3]geometry.Vector3{{{X: 7}}}

	par, out, err := Frames(nil, perp, singleTriangle(), Options{})
	require.NoError(t, err)
	assert.Len(t, par, 3)
	require.Len(t, out, 1)
	assert.Same(t, &perp[0], &out[0])
	assert.Equal(t, geometry.Vector3{X: 7}, out[0][0])
}

func TestFramesWorkersMatchSequential(t *testing.T) {
	in := wavyGrid(t, 40)
	require.Greater(t, in.NumEdges(), minChunk)

	for _, mode := range []NormalMode{FaceNormals, EdgeNormals} {
		seqPar, seqPerp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true, Normals: mode})
		require.NoError(t, err)
		par, perp, err := Frames(nil, nil, in, Options{ComputePerpendicular: true, Normals: mode, Workers: 4})
		require.NoError(t, err)

		assert.Equal(t, seqPar, par, mode.String())
		assert.Equal(t, seqPerp, perp, mode.String())
	}
}

func TestEdgeNormalsOnFlatMeshMatchFaceNormals(t *testing.T) {
	in := &Input{
		Vertices: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(2, 0, 0),
			geometry.NewVector3(2, 1, 0),
			geometry.NewVector3(0, 1, 0),
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	o, err := halfedge.Orient(in.Faces)
	require.NoError(t, err)
	in.Edges, in.Orientations = o.Edges, o.Signs

	_, face, err := Frames(nil, nil, in, Options{ComputePerpendicular: true, Normals: FaceNormals})
	require.NoError(t, err)
	_, edge, err := Frames(nil, nil, in, Options{ComputePerpendicular: true, Normals: EdgeNormals})
	require.NoError(t, err)

	for f := range face {
		for i := 0; i < 3; i++ {
			assert.True(t, face[f][i].NearlyEqual(edge[f][i], eps), "halfedge (%d,%d)", f, i)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
	}{
		{"edge rows", func(in *Input) { in.Edges = nil }},
		{"orientation rows", func(in *Input) { in.Orientations = append(in.Orientations, [3]int{1, 1, 1}) }},
		{"vertex out of range", func(in *Input) { in.Faces[0][2] = 3 }},
		{"negative vertex", func(in *Input) { in.Faces[0][0] = -1 }},
		{"negative edge id", func(in *Input) { in.Edges[0][1] = -1 }},
		{"sparse edge ids", func(in *Input) { in.Edges[0][2] = 5 }},
		{"orientation zero", func(in *Input) { in.Orientations[0][0] = 0 }},
		{"orientation two", func(in *Input) { in.Orientations[0][1] = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := singleTriangle()
			tt.mutate(in)

			dst := []geometry.Vector3{{X: 9}}
			out, err := Parallel(dst, in)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, []geometry.Vector3{{X: 9}}, out)

			parBuf := []geometry.Vector3{{X: 7}, {Y: 7}}
			perpBuf := [][3]geometry.Vector3{{{Z: 7}, {Z: 7}, {Z: 7}}}
			gotPar, gotPerp, err := Frames(parBuf, perpBuf, in, Options{ComputePerpendicular: true})
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, []geometry.Vector3{{X: 7}, {Y: 7}}, gotPar)
			assert.Equal(t, [][3]geometry.Vector3{{{Z: 7}, {Z: 7}, {Z: 7}}}, gotPerp)
		})
	}
}

func TestFramesRejectsUnknownNormalMode(t *testing.T) {
	_, _, err := Frames(nil, nil, singleTriangle(), Options{ComputePerpendicular: true, Normals: NormalMode(7)})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "NormalMode(7)", NormalMode(7).String())
}

func TestEmptyMesh(t *testing.T) {
	par, perp, err := Frames(nil, nil, &Input{}, Options{ComputePerpendicular: true})
	require.NoError(t, err)
	assert.Empty(t, par)
	assert.Empty(t, perp)
}
