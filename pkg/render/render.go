// Package render rasterizes a mesh and its edge frames into an image, so the
// frames can be inspected without an interactive viewer.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/philipparndt/edgeframe/pkg/edgevec"
	"github.com/philipparndt/edgeframe/pkg/geometry"
)

// Options controls the rendered view
type Options struct {
	Width, Height int
	// Azimuth and Elevation orbit the camera around the mesh, in radians.
	Azimuth, Elevation float64
	// ArrowScale is the length of drawn frame vectors relative to the
	// mean edge length.
	ArrowScale float64

	Background    color.RGBA
	Surface       color.RGBA
	Wire          color.RGBA
	ParallelColor color.RGBA
	PerpColor     color.RGBA
}

// DefaultOptions returns a 800x600 three-quarter view
func DefaultOptions() Options {
	return Options{
		Width:         800,
		Height:        600,
		Azimuth:       math.Pi / 6,
		Elevation:     math.Pi / 8,
		ArrowScale:    0.3,
		Background:    color.RGBA{30, 30, 36, 255},
		Surface:       color.RGBA{170, 175, 185, 255},
		Wire:          color.RGBA{60, 60, 70, 255},
		ParallelColor: color.RGBA{230, 90, 60, 255},
		PerpColor:     color.RGBA{70, 170, 230, 255},
	}
}

// Render draws the shaded mesh with its wireframe. Edge vectors from par are
// drawn at edge midpoints; perpendiculars, when perp is non-nil, are drawn
// at halfedge midpoints offset slightly into their face.
func Render(in *edgevec.Input, par []geometry.Vector3, perp [][3]geometry.Vector3, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = opts.Background.R, opts.Background.G, opts.Background.B, 255
	}
	if len(in.Faces) == 0 {
		return img
	}

	bbox := geometry.NewBoundingBox()
	for _, v := range in.Vertices {
		bbox.Extend(v)
	}
	cam := NewCamera(bbox)
	cam.Rotate(opts.Elevation, opts.Azimuth)
	view := cam.ViewDirection()

	w, h := float64(opts.Width), float64(opts.Height)
	project := func(p geometry.Vector3) (int, int) {
		x, y, _ := cam.Project(p, w, h)
		return int(math.Round(x)), int(math.Round(y))
	}

	zbuffer := make([]float64, opts.Width*opts.Height)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	var totalLength float64
	for _, face := range in.Faces {
		a, b, c := in.Vertices[face[0]], in.Vertices[face[1]], in.Vertices[face[2]]
		totalLength += geometry.NewTriangle(geometry.Vector3{}, a, b, c).Perimeter()

		x1, y1, z1 := cam.Project(a, w, h)
		x2, y2, z2 := cam.Project(b, w, h)
		x3, y3, z3 := cam.Project(c, w, h)
		light := 0.35 + 0.65*math.Abs(geometry.FaceNormal(a, b, c).Dot(view))
		fillTriangleWithDepth(img, zbuffer, x1, y1, z1, x2, y2, z2, x3, y3, z3, shade(opts.Surface, light))
	}
	arrow := opts.ArrowScale * totalLength / float64(3*len(in.Faces))

	for _, face := range in.Faces {
		for i := 0; i < 3; i++ {
			ax, ay := project(in.Vertices[face[i]])
			bx, by := project(in.Vertices[face[(i+1)%3]])
			drawLine(img, ax, ay, bx, by, opts.Wire)
		}
	}

	drawn := make([]bool, len(par))
	for f, face := range in.Faces {
		a, b, c := in.Vertices[face[0]], in.Vertices[face[1]], in.Vertices[face[2]]
		centroid := geometry.NewTriangle(geometry.Vector3{}, a, b, c).Center()

		for i := 0; i < 3; i++ {
			from, to := in.Vertices[face[i]], in.Vertices[face[(i+1)%3]]
			mid := from.Add(to).Mul(0.5)
			e := in.Edges[f][i]

			if e < len(par) && !drawn[e] {
				drawn[e] = true
				drawArrow(img, project, mid, par[e].Mul(arrow), opts.ParallelColor)
			}
			if perp != nil {
				base := mid.Add(centroid.Sub(mid).Mul(0.15))
				drawArrow(img, project, base, perp[f][i].Mul(arrow), opts.PerpColor)
			}
		}
	}

	return img
}

func drawArrow(img *image.RGBA, project func(geometry.Vector3) (int, int), base, v geometry.Vector3, col color.RGBA) {
	if v.IsZero() {
		return
	}
	x1, y1 := project(base)
	x2, y2 := project(base.Add(v))
	drawLine(img, x1, y1, x2, y2, col)

	// Arrow head
	dx, dy := float64(x2-x1), float64(y2-y1)
	length := math.Hypot(dx, dy)
	if length < 4 {
		return
	}
	ux, uy := dx/length, dy/length
	head := math.Min(6, length/3)
	for _, side := range []float64{-1, 1} {
		hx := float64(x2) - head*(ux-side*0.5*uy)
		hy := float64(y2) - head*(uy+side*0.5*ux)
		drawLine(img, x2, y2, int(math.Round(hx)), int(math.Round(hy)), col)
	}
}

func shade(c color.RGBA, light float64) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)*light))
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), 255}
}
