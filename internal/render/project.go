// Package render draws the particle cloud with OpenCV.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera describes the viewing setup: a perspective camera on the +Z axis
// looking at the origin.
type Camera struct {
	Distance float64
	FovY     float64 // degrees
	Near     float64
	Far      float64
}

// DefaultCamera matches the scene the shapes are sized for.
func DefaultCamera() Camera {
	return Camera{Distance: 6, FovY: 60, Near: 0.1, Far: 1000}
}

// Point is a projected particle in pixel coordinates.
type Point struct {
	X, Y   int
	Radius int
	Depth  float64
}

// Projector maps world positions to pixels for a fixed viewport.
type Projector struct {
	width, height int
	viewProj      mgl64.Mat4
	focal         float64
	near          float64
}

// NewProjector builds a Projector for a width x height viewport.
func NewProjector(cam Camera, width, height int) *Projector {
	aspect := float64(width) / float64(height)
	proj := mgl64.Perspective(mgl64.DegToRad(cam.FovY), aspect, cam.Near, cam.Far)
	view := mgl64.Translate3D(0, 0, -cam.Distance)

	return &Projector{
		width:    width,
		height:   height,
		viewProj: proj.Mul4(view),
		focal:    float64(height) / 2 / math.Tan(mgl64.DegToRad(cam.FovY)/2),
		near:     cam.Near,
	}
}

// Size returns the viewport size.
func (p *Projector) Size() (int, int) {
	return p.width, p.height
}

// Project rotates the flat xyz positions by orientation, projects them and
// appends the visible ones to dst. size is the world-space point size; the
// pixel radius shrinks with distance.
func (p *Projector) Project(dst []Point, positions []float64, orientation mgl64.Quat, size float64) []Point {
	mvp := p.viewProj.Mul4(orientation.Normalize().Mat4())
	w, h := float64(p.width), float64(p.height)

	for i := 0; i+2 < len(positions); i += 3 {
		clip := mvp.Mul4x1(mgl64.Vec4{positions[i], positions[i+1], positions[i+2], 1})
		depth := clip[3]
		if depth <= p.near {
			continue
		}
		nx, ny := clip[0]/depth, clip[1]/depth
		if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
			continue
		}

		radius := int(math.Round(size * p.focal / depth / 2))
		dst = append(dst, Point{
			X:      int((nx + 1) / 2 * w),
			Y:      int((1 - ny) / 2 * h),
			Radius: max(radius, 1),
			Depth:  depth,
		})
	}
	return dst
}
