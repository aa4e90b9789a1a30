package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tinyrender/pkg/formats"
)

// MissingTexCoord is assigned to corners without a texture coordinate.
var MissingTexCoord = [2]float32{0.5, 0.5}

// FromOBJ expands an OBJ model into per-face vertices: triangle i owns
// vertices 3i, 3i+1 and 3i+2. Faces without normals get their flat face
// normal. Tangents are computed per face.
//
// When materialIDs is non-nil, triangles are grouped by material id in
// first-use order and Ranges describes each group. Faces whose material
// is not in the map use id 0.
func FromOBJ(obj *formats.OBJ, materialIDs map[string]int) Data {
	type group struct {
		id    int
		faces []int
	}

	var groups []*group
	if materialIDs == nil {
		all := &group{faces: make([]int, len(obj.Faces))}
		for i := range obj.Faces {
			all.faces[i] = i
		}
		groups = append(groups, all)
	} else {
		byID := make(map[int]*group)
		for i, f := range obj.Faces {
			id := materialIDs[f.Material]
			g, ok := byID[id]
			if !ok {
				g = &group{id: id}
				byID[id] = g
				groups = append(groups, g)
			}
			g.faces = append(g.faces, i)
		}
	}

	data := Data{
		Vertices: make([]Vertex, 0, len(obj.Faces)*3),
		Indices:  make([]uint32, 0, len(obj.Faces)*3),
	}
	for _, g := range groups {
		start := int32(len(data.Indices))
		for _, fi := range g.faces {
			tri := faceVertices(obj, obj.Faces[fi])
			base := uint32(len(data.Vertices))
			data.Vertices = append(data.Vertices, tri[:]...)
			data.Indices = append(data.Indices, base, base+1, base+2)
		}
		if materialIDs != nil {
			data.Ranges = append(data.Ranges, Range{
				MaterialID: g.id,
				Start:      start,
				Count:      int32(len(data.Indices)) - start,
			})
		}
	}
	return data
}

func faceVertices(obj *formats.OBJ, f formats.OBJFace) [3]Vertex {
	var tri [3]Vertex
	for j, c := range f.Corners {
		tri[j].Position = obj.Positions[c.Position]
		tri[j].TexCoord = MissingTexCoord
	}

	if f.HasTexCoords() {
		for j, c := range f.Corners {
			tri[j].TexCoord = obj.TexCoords[c.TexCoord]
		}
	}

	if f.HasNormals() {
		for j, c := range f.Corners {
			tri[j].Normal = obj.Normals[c.Normal]
		}
	} else {
		n := FaceNormal(tri[0].Position, tri[1].Position, tri[2].Position)
		for j := range tri {
			tri[j].Normal = n
		}
	}

	t := Tangent(
		[3][3]float32{tri[0].Position, tri[1].Position, tri[2].Position},
		[3][2]float32{tri[0].TexCoord, tri[1].TexCoord, tri[2].TexCoord},
	)
	for j := range tri {
		tri[j].Tangent = t
	}
	return tri
}

// FaceNormal returns the unit normal of a counter-clockwise triangle. A
// degenerate triangle gets +Y.
func FaceNormal(p0, p1, p2 [3]float32) [3]float32 {
	v0, v1, v2 := mgl32.Vec3(p0), mgl32.Vec3(p1), mgl32.Vec3(p2)
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	if n.Len() < 1e-12 {
		return [3]float32{0, 1, 0}
	}
	return n.Normalize()
}

// Tangent returns the unit tangent of a triangle from its positions and
// texture coordinates. Edges run v0->v1 and v1->v2. The UV determinant is
// clamped away from zero so degenerate mappings stay finite.
func Tangent(pos [3][3]float32, uv [3][2]float32) [3]float32 {
	e1 := mgl32.Vec3(pos[1]).Sub(pos[0])
	e2 := mgl32.Vec3(pos[2]).Sub(pos[1])
	du1, dv1 := uv[1][0]-uv[0][0], uv[1][1]-uv[0][1]
	du2, dv2 := uv[2][0]-uv[1][0], uv[2][1]-uv[1][1]

	det := du1*dv2 - du2*dv1
	switch {
	case det >= 0 && det < 1e-6:
		det = 1e-6
	case det < 0 && det > -1e-6:
		det = -1e-6
	}
	f := 1 / det

	t := e1.Mul(dv2 * f).Sub(e2.Mul(dv1 * f))
	if t.Len() < 1e-12 {
		return [3]float32{1, 0, 0}
	}
	return t.Normalize()
}
