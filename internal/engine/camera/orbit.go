package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit rotates and zooms a Camera around its target.
type Orbit struct {
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit derives orbit angles from the current eye and target of c.
func NewOrbit(c Camera) *Orbit {
	o := &Orbit{
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}

	offset := c.Eye.Sub(c.Target)
	o.Distance = offset.Len()
	if o.Distance > 0 {
		o.RotationX = float32(math.Asin(float64(offset.Y() / o.Distance)))
		o.RotationY = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	}
	o.MinDistance = o.Distance * 0.05
	o.MaxDistance = o.Distance * 20
	if o.Distance == 0 {
		o.Distance, o.MinDistance, o.MaxDistance = 1, 0.01, 1000
	}
	return o
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.RotationY -= deltaX * o.DragSensitivity
	o.RotationX += deltaY * o.DragSensitivity
	o.RotationX = mgl32.Clamp(o.RotationX, o.MinPitch, o.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Distance = mgl32.Clamp(o.Distance, o.MinDistance, o.MaxDistance)
}

// Apply moves the eye of c to the orbit position around its target.
func (o *Orbit) Apply(c *Camera) {
	cx, sx := math.Cos(float64(o.RotationX)), math.Sin(float64(o.RotationX))
	cy, sy := math.Cos(float64(o.RotationY)), math.Sin(float64(o.RotationY))

	offset := mgl32.Vec3{float32(cx * sy), float32(sx), float32(cx * cy)}
	c.Eye = c.Target.Add(offset.Mul(o.Distance))
	c.Up = mgl32.Vec3{0, 1, 0}
	if far := o.Distance * 4; c.Far < far {
		c.Far = far
	}
}

func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
