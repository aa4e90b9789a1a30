package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/tinyrender/internal/assets"
	"github.com/Faultbox/tinyrender/internal/engine/gpu/gputest"
	"github.com/Faultbox/tinyrender/internal/engine/mesh"
	"github.com/Faultbox/tinyrender/internal/engine/shader"
	"github.com/Faultbox/tinyrender/pkg/formats"
)

const quadOBJ = `
v -1 0 -1
v  1 0 -1
v  1 0  1
v -1 0  1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
f 1/1/1 4/4/1 3/3/1 2/2/1
`

const twoMaterialOBJ = `
mtllib box.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl red
f 1 2 3
usemtl painted
f 1 3 4
`

const boxMTL = `
newmtl red
Kd 1 0 0
Ns 16
newmtl painted
Kd 1 1 1
map_Kd tex/paint.png
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	tex := pngBytes(t, 2, 2)
	return fstest.MapFS{
		"models/quad.obj":           {Data: []byte(quadOBJ)},
		"models/box.obj":            {Data: []byte(twoMaterialOBJ)},
		"models/box.mtl":            {Data: []byte(boxMTL)},
		"models/tex/paint.png":      {Data: tex},
		"textures/albedo.png":       {Data: tex},
		"textures/normal.png":       {Data: tex},
		"textures/broken.png":       {Data: []byte("not an image")},
		"textures/also_albedo.png":  {Data: tex},
		"textures/roughness.png":    {Data: tex},
		"textures/ambient_occl.png": {Data: tex},
	}
}

func TestBuildModelMatrixOrder(t *testing.T) {
	m, err := BuildModelMatrix([]formats.TransformDoc{
		{Op: "translate", Value: [3]float32{1, 2, 3}},
		{Op: "scale", Value: [3]float32{2, 2, 2}},
	})
	require.NoError(t, err)

	// Scale applies to the point first, then the translation.
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 3, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 3, p[2], 1e-5)
}

func TestBuildModelMatrixRotateDegrees(t *testing.T) {
	m, err := BuildModelMatrix([]formats.TransformDoc{{Op: "rotate", Value: [3]float32{0, 90, 0}}})
	require.NoError(t, err)

	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, -1, p[2], 1e-5)
}

func TestBuildModelMatrixEmptyIsIdentity(t *testing.T) {
	m, err := BuildModelMatrix(nil)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Ident4(), m)
}

func TestBuildModelMatrixUnknownOp(t *testing.T) {
	_, err := BuildModelMatrix([]formats.TransformDoc{
		{Op: "translate", Value: [3]float32{1, 0, 0}},
		{Op: "skew", Value: [3]float32{1, 0, 0}},
	})
	var opErr *UnknownTransformError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "skew", opErr.Op)
}

func TestParseTextureSlot(t *testing.T) {
	for _, s := range Slots {
		got, err := ParseTextureSlot(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseTextureSlot("emissive")
	assert.Error(t, err)
}

func TestLoadPBR(t *testing.T) {
	dev := gputest.New()
	am := assets.NewManager(testFS(t))

	doc, err := formats.ParseScene([]byte(`
camera:
  eye: [0, 2, 5]
  target: [0, 0, 0]
  fov: 60
directional_light:
  direction: [0, -1, -1]
  color: [1, 1, 1]
point_lights:
  - position: [1, 1, 1]
    color: [1, 0, 0]
models:
  - name: floor
    mesh: models/quad.obj
    textures:
      albedo: textures/albedo.png
      normal: textures/normal.png
    transform:
      - translate: [0, -1, 0]
      - scale: 2
  - name: second
    mesh: models/quad.obj
    textures:
      albedo: ./textures/albedo.png
`))
	require.NoError(t, err)

	s, err := Load(dev, am, doc, Options{Shading: shader.ShadingPBR, Aspect: 2})
	require.NoError(t, err)
	require.Len(t, s.Entries, 2)

	floor := s.Entries[0]
	assert.Equal(t, "floor", floor.Name)
	assert.Len(t, floor.Textures, 2)
	_, hasMetallic := floor.Textures[SlotMetallic]
	assert.False(t, hasMetallic)

	// The same albedo path is uploaded once.
	assert.Equal(t, floor.Textures[SlotAlbedo], s.Entries[1].Textures[SlotAlbedo])
	meshes, textures := s.Resources.Counts()
	assert.Equal(t, 2, meshes)
	assert.Equal(t, 2, textures)
	assert.Len(t, dev.Textures, 2)

	p := floor.Model.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 2, p[0], 1e-5)
	assert.InDelta(t, -1, p[1], 1e-5)
	assert.InDelta(t, -1, floor.Bounds.Min[1], 1e-5)
	assert.InDelta(t, 2, floor.Bounds.Max[0], 1e-5)

	assert.Equal(t, mgl32.Vec3{0, 2, 5}, s.Camera.Eye)
	assert.Equal(t, float32(60), s.Camera.FovY)
	assert.Equal(t, float32(2), s.Camera.Aspect)
	require.NotNil(t, s.Directional)
	assert.Equal(t, mgl32.Vec3{0, -1, -1}, s.Directional.Direction)
	require.Len(t, s.PointLights, 1)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, s.PointLights[0].Color)

	s.Release(dev)
	assert.Empty(t, dev.Textures)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.VertexArrays)
}

func TestLoadMissingAlbedo(t *testing.T) {
	dev := gputest.New()
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{
		Mesh:     "models/quad.obj",
		Textures: map[string]string{"normal": "textures/normal.png"},
	}}}

	_, err := Load(dev, assets.NewManager(testFS(t)), doc, Options{Shading: shader.ShadingPBR})
	var missing *MissingTextureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, SlotAlbedo, missing.Slot)
	assert.Empty(t, dev.Buffers)
}

func TestLoadUnknownSlot(t *testing.T) {
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{
		Mesh:     "models/quad.obj",
		Textures: map[string]string{"albedo": "textures/albedo.png", "emissive": "textures/albedo.png"},
	}}}
	_, err := Load(gputest.New(), assets.NewManager(testFS(t)), doc, Options{})
	assert.ErrorContains(t, err, "emissive")
}

func TestLoadMissingMesh(t *testing.T) {
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{
		Mesh:     "models/nope.obj",
		Textures: map[string]string{"albedo": "textures/albedo.png"},
	}}}
	_, err := Load(gputest.New(), assets.NewManager(testFS(t)), doc, Options{})

	var loadErr *ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "mesh", loadErr.Kind)
	assert.True(t, errors.Is(err, assets.ErrNotFound))
}

func TestLoadBrokenTextureReleasesEverything(t *testing.T) {
	dev := gputest.New()
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{
		{
			Mesh:     "models/quad.obj",
			Textures: map[string]string{"albedo": "textures/albedo.png"},
		},
		{
			Mesh:     "models/quad.obj",
			Textures: map[string]string{"albedo": "textures/also_albedo.png", "roughness": "textures/broken.png"},
		},
	}}

	_, err := Load(dev, assets.NewManager(testFS(t)), doc, Options{})
	var loadErr *ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "texture", loadErr.Kind)
	assert.Equal(t, "textures/broken.png", loadErr.Path)
	assert.ErrorContains(t, err, "roughness texture")

	assert.Empty(t, dev.Textures)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.VertexArrays)
}

func TestLoadUnknownTransformCreatesNothing(t *testing.T) {
	dev := gputest.New()
	doc, err := formats.ParseScene([]byte(`{"models": [{"mesh": "models/quad.obj",
        "textures": {"albedo": "textures/albedo.png"},
        "transform": [{"op": "skew", "value": [1, 0, 0]}]}]}`))
	require.NoError(t, err)

	_, err = Load(dev, assets.NewManager(testFS(t)), doc, Options{})
	var opErr *UnknownTransformError
	require.ErrorAs(t, err, &opErr)
	assert.Empty(t, dev.Calls)
}

func TestLoadPhongMaterials(t *testing.T) {
	dev := gputest.New()
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{Mesh: "models/box.obj"}}}

	s, err := Load(dev, assets.NewManager(testFS(t)), doc, Options{Shading: shader.ShadingPhong})
	require.NoError(t, err)
	require.Len(t, s.Entries, 1)

	e := s.Entries[0]
	require.Len(t, e.Materials, 2)
	assert.Equal(t, "red", e.Materials[0].Name)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, e.Materials[0].Diffuse)
	assert.Equal(t, float32(16), e.Materials[0].Shininess)
	assert.False(t, e.Materials[0].HasDiffuseMap)

	assert.Equal(t, "painted", e.Materials[1].Name)
	assert.True(t, e.Materials[1].HasDiffuseMap)
	require.NotNil(t, s.Resources.Texture(e.Materials[1].DiffuseMap))

	m := s.Resources.Mesh(e.Mesh)
	require.NotNil(t, m)
	assert.Equal(t, []mesh.Range{
		{MaterialID: 0, Start: 0, Count: 3},
		{MaterialID: 1, Start: 3, Count: 3},
	}, m.Ranges())
	assert.Empty(t, e.Textures)
}

func TestLoadPhongDefaultMaterialAndFallbackMap(t *testing.T) {
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{
		Mesh:     "models/quad.obj",
		Textures: map[string]string{"albedo": "textures/albedo.png"},
	}}}

	s, err := Load(gputest.New(), assets.NewManager(testFS(t)), doc, Options{Shading: shader.ShadingPhong})
	require.NoError(t, err)

	mats := s.Entries[0].Materials
	require.Len(t, mats, 1)
	assert.Equal(t, "", mats[0].Name)
	assert.Equal(t, mgl32.Vec3{0.8, 0.8, 0.8}, mats[0].Diffuse)
	assert.True(t, mats[0].HasDiffuseMap)
}

func TestLoadFramesCameraWithoutDocCamera(t *testing.T) {
	doc := &formats.SceneDocument{Models: []formats.ModelDoc{{
		Mesh:      "models/quad.obj",
		Textures:  map[string]string{"albedo": "textures/albedo.png"},
		Transform: []formats.TransformDoc{{Op: "translate", Value: [3]float32{10, 0, 0}}},
	}}}

	s, err := Load(gputest.New(), assets.NewManager(testFS(t)), doc, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 10, s.Camera.Target[0], 1e-5)
	assert.Greater(t, s.Camera.Eye[2], float32(0))
	assert.Nil(t, s.Directional)
}

func TestLoadSunAngles(t *testing.T) {
	doc := &formats.SceneDocument{
		DirectionalLight: &formats.DirectionalLightDoc{Elevation: 90, Color: [3]float32{1, 1, 1}},
		Models: []formats.ModelDoc{{
			Mesh:     "models/quad.obj",
			Textures: map[string]string{"albedo": "textures/albedo.png"},
		}},
	}

	s, err := Load(gputest.New(), assets.NewManager(testFS(t)), doc, Options{})
	require.NoError(t, err)
	require.NotNil(t, s.Directional)
	assert.InDelta(t, -1, s.Directional.Direction[1], 1e-5)
}

func TestSceneBounds(t *testing.T) {
	s := New()
	_, ok := s.Bounds()
	assert.False(t, ok)

	s.Entries = []Entry{
		{Bounds: mesh.Bounds{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}},
		{Bounds: mesh.Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{3, 2, 1}}},
	}
	b, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, b.Min)
	assert.Equal(t, mgl32.Vec3{3, 2, 1}, b.Max)
}

func TestEntryMaterialFallback(t *testing.T) {
	e := Entry{
		Textures:  TextureSet{SlotAlbedo: 3},
		Materials: []Material{{Name: "only", Shininess: 4}},
	}
	assert.Equal(t, "only", e.Material(0).Name)

	m := e.Material(5)
	assert.Equal(t, DefaultMaterial().Diffuse, m.Diffuse)
	assert.True(t, m.HasDiffuseMap)
	assert.Equal(t, TextureID(3), m.DiffuseMap)

	bare := Entry{}
	assert.False(t, bare.Material(0).HasDiffuseMap)
}
