package scene

import (
	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/mesh"
	"github.com/Faultbox/tinyrender/internal/engine/texture"
)

// MeshID is a stable index into Resources.
type MeshID int

// TextureID is a stable index into Resources.
type TextureID int

// Resources owns every mesh and texture of a scene. Entries refer to them
// by id and never own GPU handles themselves.
type Resources struct {
	meshes   []*mesh.Mesh
	textures []*texture.Texture
}

// NewResources returns an empty table.
func NewResources() *Resources {
	return &Resources{}
}

// AddMesh takes ownership of m.
func (r *Resources) AddMesh(m *mesh.Mesh) MeshID {
	r.meshes = append(r.meshes, m)
	return MeshID(len(r.meshes) - 1)
}

// Mesh returns the mesh with id, or nil.
func (r *Resources) Mesh(id MeshID) *mesh.Mesh {
	if id < 0 || int(id) >= len(r.meshes) {
		return nil
	}
	return r.meshes[id]
}

// AddTexture takes ownership of t.
func (r *Resources) AddTexture(t *texture.Texture) TextureID {
	r.textures = append(r.textures, t)
	return TextureID(len(r.textures) - 1)
}

// Texture returns the texture with id, or nil.
func (r *Resources) Texture(id TextureID) *texture.Texture {
	if id < 0 || int(id) >= len(r.textures) {
		return nil
	}
	return r.textures[id]
}

// Counts returns the number of meshes and textures.
func (r *Resources) Counts() (meshes, textures int) {
	return len(r.meshes), len(r.textures)
}

// Release deletes every mesh and texture and empties the table.
func (r *Resources) Release(dev gpu.Device) {
	for _, m := range r.meshes {
		m.Release(dev)
	}
	for _, t := range r.textures {
		t.Release(dev)
	}
	r.meshes = nil
	r.textures = nil
}
