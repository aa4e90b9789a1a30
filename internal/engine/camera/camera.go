// Package camera provides the perspective camera and its orbit controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective look-at camera. FovY is vertical, in degrees.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// Default camera parameters.
const (
	DefaultFovY = 45
	DefaultNear = 0.1
	DefaultFar  = 100
)

// New returns a camera looking from eye at target with the default lens.
func New(eye, target mgl32.Vec3) Camera {
	return Camera{
		Eye:    eye,
		Target: target,
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   DefaultFovY,
		Aspect: 1,
		Near:   DefaultNear,
		Far:    DefaultFar,
	}
}

// View returns the world-to-view matrix.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the perspective projection matrix.
func (c Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// SetViewport updates the aspect ratio from a viewport size.
func (c *Camera) SetViewport(width, height int32) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// Frame places the camera so the box [min, max] fills the view. The eye
// looks at the box center from the +Z side, slightly above, and the clip
// planes are scaled to the box.
func (c *Camera) Frame(min, max mgl32.Vec3) {
	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius <= 0 {
		radius = 1
	}

	fov := c.FovY
	if fov <= 0 {
		fov = DefaultFovY
		c.FovY = fov
	}
	// Distance at which a sphere of radius fits the vertical field of view.
	dist := radius / sin32(mgl32.DegToRad(fov)/2)

	dir := mgl32.Vec3{0, 0.35, 1}.Normalize()
	c.Target = center
	c.Eye = center.Add(dir.Mul(dist))
	c.Up = mgl32.Vec3{0, 1, 0}
	c.Near = max32(dist-radius*2, dist*0.01)
	c.Far = dist + radius*2
}
