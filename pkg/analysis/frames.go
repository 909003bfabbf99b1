package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/edgeframe/pkg/edgevec"
	"github.com/philipparndt/edgeframe/pkg/geometry"
)

// EdgeIssue describes an edge whose frame failed a check
type EdgeIssue struct {
	Edge   int
	Face   int
	Slot   int
	Reason string
	Value  float64
}

// FrameReport summarizes the quality of a set of edge frames
type FrameReport struct {
	EdgeCount         int
	HalfedgeCount     int
	BoundaryEdges     int
	InteriorEdges     int
	DegenerateEdges   int
	DegenerateFaces   int
	MaxUnitError      float64
	MaxOrthogonality  float64
	MaxInteriorSpread float64
	Tolerance         float64
	Issues            []EdgeIssue
}

// OK reports whether no check exceeded the tolerance
func (r *FrameReport) OK() bool {
	return len(r.Issues) == 0
}

// AnalyzeFrames checks the parallel vectors (and perpendicular vectors, when
// perp is non-nil) computed for in. Every edge vector must be unit length,
// the halfedges of an interior edge must agree on it after orientation
// correction, and every perpendicular must be a unit vector orthogonal to its
// edge. Degenerate edges and faces are counted but only reported as issues
// when they break one of those checks.
func AnalyzeFrames(in *edgevec.Input, par []geometry.Vector3, perp [][3]geometry.Vector3, tolerance float64) *FrameReport {
	report := &FrameReport{
		EdgeCount:     len(par),
		HalfedgeCount: 3 * len(in.Faces),
		Tolerance:     tolerance,
	}

	halfedges := make([]int, len(par))
	for f, face := range in.Faces {
		a, b, c := in.Vertices[face[0]], in.Vertices[face[1]], in.Vertices[face[2]]
		if geometry.NewTriangle(geometry.Vector3{}, a, b, c).Area() == 0 {
			report.DegenerateFaces++
		}

		for i := 0; i < 3; i++ {
			e := in.Edges[f][i]
			halfedges[e]++

			from := in.Vertices[face[i]]
			to := in.Vertices[face[(i+1)%3]]
			own := to.Sub(from).Mul(float64(in.Orientations[f][i])).Normalize()
			spread := own.Sub(par[e]).Length()
			report.MaxInteriorSpread = math.Max(report.MaxInteriorSpread, spread)
			if spread > tolerance {
				report.addIssue(e, f, i, "halfedge disagrees with edge vector", spread)
			}

			if perp == nil {
				continue
			}
			p := perp[f][i]
			if p.IsZero() {
				continue
			}
			unit := math.Abs(p.Length() - 1)
			ortho := math.Abs(p.Dot(par[e]))
			report.MaxUnitError = math.Max(report.MaxUnitError, unit)
			report.MaxOrthogonality = math.Max(report.MaxOrthogonality, ortho)
			if unit > tolerance {
				report.addIssue(e, f, i, "perpendicular is not unit length", unit)
			}
			if ortho > tolerance {
				report.addIssue(e, f, i, "perpendicular is not orthogonal to edge", ortho)
			}
		}
	}

	for e, v := range par {
		switch halfedges[e] {
		case 1:
			report.BoundaryEdges++
		case 2:
			report.InteriorEdges++
		}

		if v.IsZero() {
			report.DegenerateEdges++
			continue
		}
		unit := math.Abs(v.Length() - 1)
		report.MaxUnitError = math.Max(report.MaxUnitError, unit)
		if unit > tolerance {
			report.addIssue(e, -1, -1, "edge vector is not unit length", unit)
		}
	}

	return report
}

func (r *FrameReport) addIssue(edge, face, slot int, reason string, value float64) {
	r.Issues = append(r.Issues, EdgeIssue{
		Edge:   edge,
		Face:   face,
		Slot:   slot,
		Reason: reason,
		Value:  value,
	})
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
