// Package edgevec computes per-edge frames of a triangle mesh given a
// halfedge-to-edge mapping.
//
// Halfedge i of face f runs from Faces[f][i] to Faces[f][(i+1)%3]. Edges and
// Orientations have the shape of Faces: Edges[f][i] is the dense edge id of
// the halfedge and Orientations[f][i] is +1 when the halfedge runs along the
// edge's canonical direction, -1 otherwise. Package halfedge builds both.
//
// Parallel returns one unit vector per edge id, pointing along the canonical
// direction. Frames additionally returns, per halfedge, the unit vector in
// the tangent plane perpendicular to the edge that points away from the
// face interior for counter-clockwise faces.
//
// Zero-length edges and zero-area faces are not rejected; they produce zero
// vectors in the output.
package edgevec
