// Package scene holds the renderable snapshot of a loaded scene: camera,
// lights, entries and the GPU resources they reference.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tinyrender/internal/engine/camera"
	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/lighting"
	"github.com/Faultbox/tinyrender/internal/engine/mesh"
	"github.com/Faultbox/tinyrender/pkg/formats"
)

// TextureSlot is a PBR material input.
type TextureSlot int

const (
	SlotAlbedo TextureSlot = iota
	SlotNormal
	SlotMetallic
	SlotRoughness
	SlotAO
)

// Slots lists every slot in texture unit order.
var Slots = []TextureSlot{SlotAlbedo, SlotNormal, SlotMetallic, SlotRoughness, SlotAO}

var slotNames = [...]string{"albedo", "normal", "metallic", "roughness", "ao"}

func (s TextureSlot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// ParseTextureSlot parses a slot name as used in scene documents.
func ParseTextureSlot(name string) (TextureSlot, error) {
	for i, n := range slotNames {
		if n == name {
			return TextureSlot(i), nil
		}
	}
	return 0, fmt.Errorf("unknown texture slot %q", name)
}

// TextureSet maps the slots an entry provides to textures. An absent slot
// is simply not mapped.
type TextureSet map[TextureSlot]TextureID

// Material holds the Phong terms of one mesh range.
type Material struct {
	Name      string
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32

	DiffuseMap    TextureID
	HasDiffuseMap bool
}

// Entry is one drawable model: a mesh, its material inputs and its
// model-to-world transform.
type Entry struct {
	Name      string
	Mesh      MeshID
	Textures  TextureSet
	Materials []Material
	Model     mgl32.Mat4
	// Bounds is the world-space box, used only for camera and shadow framing.
	Bounds mesh.Bounds
}

// Scene is read-only for the renderer. Entries are drawn in list order.
type Scene struct {
	Camera      camera.Camera
	Directional *lighting.DirectionalLight
	PointLights []lighting.PointLight
	Entries     []Entry
	Resources   *Resources
}

// New returns an empty scene with its own resource table.
func New() *Scene {
	return &Scene{Resources: NewResources()}
}

// Bounds returns the union of every entry's bounds. ok is false for an
// empty scene.
func (s *Scene) Bounds() (b mesh.Bounds, ok bool) {
	for i, e := range s.Entries {
		if i == 0 {
			b = e.Bounds
			continue
		}
		b = b.Union(e.Bounds)
	}
	return b, len(s.Entries) > 0
}

// Release deletes every GPU resource owned by the scene.
func (s *Scene) Release(dev gpu.Device) {
	if s.Resources != nil {
		s.Resources.Release(dev)
	}
}

// DefaultMaterial is used for faces without a material.
func DefaultMaterial() Material {
	m := formats.DefaultMTLMaterial("")
	return Material{
		Ambient:   m.Ambient,
		Diffuse:   m.Diffuse,
		Specular:  m.Specular,
		Shininess: m.Shininess,
	}
}

// Material returns the material of range id. An entry loaded without
// materials falls back to DefaultMaterial textured with its albedo map.
func (e *Entry) Material(id int) Material {
	if id >= 0 && id < len(e.Materials) {
		return e.Materials[id]
	}
	m := DefaultMaterial()
	if tex, ok := e.Textures[SlotAlbedo]; ok {
		m.DiffuseMap, m.HasDiffuseMap = tex, true
	}
	return m
}
