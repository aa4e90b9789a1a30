// Package mesh provides drawable triangle meshes and their GPU resources.
package mesh

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex layout shared by every shader program.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [3]float32
	TexCoord [2]float32
}

// Attribute locations bound by the vertex shaders.
const (
	LocPosition uint32 = 0
	LocNormal   uint32 = 1
	LocTangent  uint32 = 2
	LocTexCoord uint32 = 3
)

// Attribute describes one float vertex attribute inside Vertex.
type Attribute struct {
	Location   uint32
	Components int32
	Offset     uintptr
}

// Stride is the byte size of one Vertex.
const Stride = int32(unsafe.Sizeof(Vertex{}))

// Layout lists the attributes of Vertex in location order. Offsets are taken
// from the struct itself so the declared layout cannot drift from the data.
var Layout = []Attribute{
	{Location: LocPosition, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Position)},
	{Location: LocNormal, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Normal)},
	{Location: LocTangent, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Tangent)},
	{Location: LocTexCoord, Components: 2, Offset: unsafe.Offsetof(Vertex{}.TexCoord)},
}

// Range is a contiguous run of indices drawn with one material.
type Range struct {
	MaterialID int
	Start      int32
	Count      int32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], o.Min[i])
		b.Max[i] = max(b.Max[i], o.Max[i])
	}
	return b
}

// Transform returns the bounds of the eight corners of b transformed by m.
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	out := Bounds{
		Min: mgl32.Vec3{1e30, 1e30, 1e30},
		Max: mgl32.Vec3{-1e30, -1e30, -1e30},
	}
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		out = out.Union(Bounds{Min: p, Max: p})
	}
	return out
}

// Data is the CPU-side geometry of a mesh, finalized before upload.
type Data struct {
	Vertices []Vertex
	Indices  []uint32
	// Ranges partitions Indices by material. Empty means a single range.
	Ranges []Range
}

// InvalidMeshError reports geometry that violates the triangle-list invariants.
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return "invalid mesh: " + e.Reason
}

// Validate checks the triangle-list invariants. materialCount bounds the
// material ids of the ranges; a negative count skips that check.
func (d *Data) Validate(materialCount int) error {
	if len(d.Indices) == 0 {
		return &InvalidMeshError{Reason: "no indices"}
	}
	if len(d.Indices)%3 != 0 {
		return &InvalidMeshError{Reason: fmt.Sprintf("index count %d is not a multiple of 3", len(d.Indices))}
	}
	for i, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			return &InvalidMeshError{Reason: fmt.Sprintf("index %d at %d out of range (%d vertices)", idx, i, len(d.Vertices))}
		}
	}
	for _, r := range d.Ranges {
		if r.Start < 0 || r.Count <= 0 || r.Start%3 != 0 || r.Count%3 != 0 || int(r.Start+r.Count) > len(d.Indices) {
			return &InvalidMeshError{Reason: fmt.Sprintf("range [%d, +%d) does not cover whole triangles", r.Start, r.Count)}
		}
		if materialCount >= 0 && (r.MaterialID < 0 || r.MaterialID >= materialCount) {
			return &InvalidMeshError{Reason: fmt.Sprintf("material id %d out of range (%d materials)", r.MaterialID, materialCount)}
		}
	}
	return nil
}

// Bounds returns the bounding box of all vertex positions.
func (d *Data) Bounds() Bounds {
	b := Bounds{
		Min: mgl32.Vec3{1e30, 1e30, 1e30},
		Max: mgl32.Vec3{-1e30, -1e30, -1e30},
	}
	for i := range d.Vertices {
		p := mgl32.Vec3(d.Vertices[i].Position)
		b = b.Union(Bounds{Min: p, Max: p})
	}
	return b
}
