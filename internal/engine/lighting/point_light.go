// Package lighting describes the scene lights and how they map to shader slots.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPointLights is the default size of the point light array in the
// lighting programs.
const MaxPointLights = 8

// PointLight is an omnidirectional light. Color carries intensity.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Enabled reports whether the light contributes. A zero color disables it.
func (l PointLight) Enabled() bool {
	return l.Color != (mgl32.Vec3{})
}

// DirectionalLight is the single shadow-casting light. Direction is the
// direction the light travels, not the direction towards it.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// Enabled reports whether the light contributes.
func (l DirectionalLight) Enabled() bool {
	return l.Color != (mgl32.Vec3{})
}

// Slot binds a light to a shader array index.
type Slot struct {
	Index int
	Light PointLight
}

// ActiveSlots maps lights to shader slots. count is the value of the light
// count uniform, min(len(lights), limit). Disabled lights get no slot but keep
// their index reserved, so every enabled light uploads to its list position.
func ActiveSlots(lights []PointLight, limit int) (count int, slots []Slot) {
	count = min(len(lights), limit)
	if count < 0 {
		count = 0
	}
	for i := 0; i < count; i++ {
		if !lights[i].Enabled() {
			continue
		}
		slots = append(slots, Slot{Index: i, Light: lights[i]})
	}
	return count, slots
}
