package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func light(r float32) PointLight {
	return PointLight{Position: mgl32.Vec3{r, 0, 0}, Color: mgl32.Vec3{r, r, r}}
}

func TestActiveSlots_SkipsDisabledKeepingIndices(t *testing.T) {
	lights := []PointLight{light(1), light(0), light(3)}

	count, slots := ActiveSlots(lights, MaxPointLights)
	assert.Equal(t, 3, count)
	assert.Equal(t, []Slot{
		{Index: 0, Light: lights[0]},
		{Index: 2, Light: lights[2]},
	}, slots)
}

func TestActiveSlots_ClampsToMax(t *testing.T) {
	lights := make([]PointLight, 12)
	for i := range lights {
		lights[i] = light(float32(i + 1))
	}

	count, slots := ActiveSlots(lights, 8)
	assert.Equal(t, 8, count)
	assert.Len(t, slots, 8)
	assert.Equal(t, 7, slots[len(slots)-1].Index)
}

func TestActiveSlots_Empty(t *testing.T) {
	count, slots := ActiveSlots(nil, 8)
	assert.Zero(t, count)
	assert.Empty(t, slots)
}

func TestEnabled(t *testing.T) {
	assert.False(t, PointLight{Position: mgl32.Vec3{1, 2, 3}}.Enabled())
	assert.True(t, PointLight{Color: mgl32.Vec3{0, 0, 0.1}}.Enabled())
	assert.False(t, DirectionalLight{Direction: mgl32.Vec3{0, -1, 0}}.Enabled())
}

func TestSunDirection(t *testing.T) {
	overhead := SunDirection(0, 90)
	assert.InDelta(t, 0, overhead.X(), 1e-5)
	assert.InDelta(t, -1, overhead.Y(), 1e-5)
	assert.InDelta(t, 0, overhead.Z(), 1e-5)

	horizon := SunDirection(90, 0)
	assert.InDelta(t, -1, horizon.X(), 1e-5)
	assert.InDelta(t, 0, horizon.Y(), 1e-5)
	assert.InDelta(t, 1, horizon.Len(), 1e-5)
}
