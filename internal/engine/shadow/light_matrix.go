package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParallelThreshold is how close |dot(dir, FixedUp)| may get to 1 before
// FixedUp is replaced.
const ParallelThreshold = 0.001

// FixedUp is the preferred up axis of the light view.
var FixedUp = mgl32.Vec3{0, 1, 0}

// fallbackDir is used for a zero light direction.
var fallbackDir = mgl32.Vec3{0, -1, 0}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Len() / 2
}

// Frustum is the orthographic volume of the light view. The eye sits
// Distance units behind the target along the light direction.
type Frustum struct {
	Extent   float32 // half width and half height
	Near     float32
	Far      float32
	Distance float32
}

// DefaultFrustum covers a scene of roughly ten units around the target.
func DefaultFrustum() Frustum {
	return Frustum{Extent: 10, Near: 1, Far: 30, Distance: 15}
}

// Projection returns the orthographic projection of f.
func (f Frustum) Projection() mgl32.Mat4 {
	return mgl32.Ortho(-f.Extent, f.Extent, -f.Extent, f.Extent, f.Near, f.Far)
}

// UpVector returns FixedUp unless dir is nearly parallel to it, in which
// case it returns the normalized cross product of dir and the X axis.
func UpVector(dir mgl32.Vec3) mgl32.Vec3 {
	d := normalizeDir(dir)
	if 1-abs32(d.Dot(FixedUp)) < ParallelThreshold {
		return d.Cross(mgl32.Vec3{1, 0, 0}).Normalize()
	}
	return FixedUp
}

// LightView returns the view matrix looking along dir at target from
// distance units away.
func LightView(dir, target mgl32.Vec3, distance float32) mgl32.Mat4 {
	d := normalizeDir(dir)
	eye := target.Sub(d.Mul(distance))
	return mgl32.LookAtV(eye, target, UpVector(d))
}

// LightSpaceMatrix returns projection × view for a directional light
// travelling along dir and centered on target.
func LightSpaceMatrix(dir, target mgl32.Vec3, f Frustum) mgl32.Mat4 {
	return f.Projection().Mul4(LightView(dir, target, f.Distance))
}

// FitFrustum sizes a frustum to enclose bounds and returns the target it
// should be centered on.
func FitFrustum(bounds AABB) (mgl32.Vec3, Frustum) {
	center := bounds.Center()
	radius := bounds.Radius()
	if radius <= 0 {
		return center, DefaultFrustum()
	}

	// Position light far enough to encompass entire scene
	distance := radius * 2
	padding := radius * 0.1
	return center, Frustum{
		Extent:   radius + padding,
		Near:     0.1,
		Far:      distance + radius + padding,
		Distance: distance,
	}
}

func normalizeDir(dir mgl32.Vec3) mgl32.Vec3 {
	if dir.Len() < 1e-9 {
		return fallbackDir
	}
	return dir.Normalize()
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
