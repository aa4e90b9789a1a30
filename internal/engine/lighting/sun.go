package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts a sun position to the direction its light travels.
// Azimuth is the rotation around Y in degrees (0 = +Z), elevation the angle
// above the horizon in degrees.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := float64(mgl32.DegToRad(azimuth))
	el := float64(mgl32.DegToRad(elevation))

	// Spherical to Cartesian, pointing towards the sun.
	toSun := mgl32.Vec3{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
	return toSun.Mul(-1)
}
