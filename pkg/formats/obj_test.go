package formats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
mtllib quad.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_QuadFanTriangulated(t *testing.T) {
	obj, err := ParseOBJ([]byte(quadOBJ))
	require.NoError(t, err)

	assert.Len(t, obj.Positions, 4)
	assert.Len(t, obj.TexCoords, 4)
	assert.Len(t, obj.Normals, 1)
	assert.Equal(t, []string{"quad.mtl"}, obj.MaterialLibs)

	require.Len(t, obj.Faces, 2)
	first, second := obj.Faces[0], obj.Faces[1]
	assert.Equal(t, 0, first.Corners[0].Position)
	assert.Equal(t, 1, first.Corners[1].Position)
	assert.Equal(t, 2, first.Corners[2].Position)
	assert.Equal(t, 0, second.Corners[0].Position)
	assert.Equal(t, 2, second.Corners[1].Position)
	assert.Equal(t, 3, second.Corners[2].Position)

	assert.Equal(t, "red", first.Material)
	assert.Equal(t, "Quad", first.Group)
	assert.True(t, first.HasNormals())
	assert.True(t, first.HasTexCoords())
}

func TestParseOBJ_CornerForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1 2 3
f 1/1 2/1 3/1
f 1//1 2//1 3//1
`
	obj, err := ParseOBJ([]byte(src))
	require.NoError(t, err)
	require.Len(t, obj.Faces, 3)

	assert.False(t, obj.Faces[0].HasTexCoords())
	assert.False(t, obj.Faces[0].HasNormals())
	assert.Equal(t, -1, obj.Faces[0].Corners[0].TexCoord)

	assert.True(t, obj.Faces[1].HasTexCoords())
	assert.False(t, obj.Faces[1].HasNormals())

	assert.False(t, obj.Faces[2].HasTexCoords())
	assert.True(t, obj.Faces[2].HasNormals())
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	obj, err := ParseOBJ([]byte(src))
	require.NoError(t, err)
	require.Len(t, obj.Faces, 1)

	c := obj.Faces[0].Corners
	assert.Equal(t, [3]int{0, 1, 2}, [3]int{c[0].Position, c[1].Position, c[2].Position})
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no faces", "v 0 0 0\n", ErrOBJNoFaces},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrOBJBadFace},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrOBJIndexRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexRange},
		{"bad float", "v 0 x 0\n", ErrOBJBadNumber},
		{"short vertex", "v 0 0\n", ErrOBJShortElement},
		{"bad index", "v 0 0 0\nf a b c\n", ErrOBJBadNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOBJ_MaterialsFirstUseOrder(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
usemtl b
f 1 2 3
usemtl a
f 1 2 3
usemtl b
f 1 2 3
`
	obj, err := ParseOBJ([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, obj.Materials())
}

func TestParseOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	obj, err := ParseOBJFile(path)
	require.NoError(t, err)
	assert.Len(t, obj.Faces, 2)

	_, err = ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}
