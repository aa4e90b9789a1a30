package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/assets"
	"github.com/Faultbox/tinyrender/internal/engine/camera"
	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/lighting"
	"github.com/Faultbox/tinyrender/internal/engine/mesh"
	"github.com/Faultbox/tinyrender/internal/engine/shader"
	"github.com/Faultbox/tinyrender/internal/engine/texture"
	"github.com/Faultbox/tinyrender/internal/logger"
	"github.com/Faultbox/tinyrender/pkg/formats"
)

// ResourceLoadError reports a mesh, material, texture or scene file that
// could not be read or decoded.
type ResourceLoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("loading %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }

// MissingTextureError reports a mandatory texture slot with no texture.
type MissingTextureError struct {
	Slot TextureSlot
}

func (e *MissingTextureError) Error() string {
	return fmt.Sprintf("missing mandatory %s texture", e.Slot)
}

// Options controls how a scene document is turned into GPU resources.
type Options struct {
	// Shading selects which inputs are loaded: PBR texture slots, or
	// per-range materials from the mesh's material libraries.
	Shading shader.ShadingModel
	// Aspect is the initial camera aspect ratio.
	Aspect float32
}

// LoadFile reads a scene document and loads it. Resource paths resolve
// against the document's directory.
func LoadFile(dev gpu.Device, path string, opts Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceLoadError{Kind: "scene", Path: path, Err: err}
	}
	doc, err := formats.ParseScene(data)
	if err != nil {
		return nil, &ResourceLoadError{Kind: "scene", Path: path, Err: err}
	}

	am := assets.NewManager()
	if err := am.AddDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	defer am.Close()

	return Load(dev, am, doc, opts)
}

// Load builds a scene from doc, reading resources through am. On error
// every GPU resource created so far is released.
func Load(dev gpu.Device, am *assets.Manager, doc *formats.SceneDocument, opts Options) (_ *Scene, err error) {
	if opts.Shading == "" {
		opts.Shading = shader.ShadingPBR
	}

	l := &loader{
		dev:      dev,
		assets:   am,
		opts:     opts,
		scene:    New(),
		textures: make(map[string]TextureID),
	}
	defer func() {
		if err != nil {
			l.scene.Release(dev)
		}
	}()

	for i, md := range doc.Models {
		entry, err := l.model(md)
		if err != nil {
			name := md.Name
			if name == "" {
				name = md.Mesh
			}
			return nil, fmt.Errorf("model %d (%s): %w", i, name, err)
		}
		l.scene.Entries = append(l.scene.Entries, entry)
	}

	if dl := doc.DirectionalLight; dl != nil {
		dir := mgl32.Vec3(dl.Direction)
		if dir == (mgl32.Vec3{}) {
			dir = lighting.SunDirection(dl.Azimuth, dl.Elevation)
		}
		l.scene.Directional = &lighting.DirectionalLight{Direction: dir, Color: dl.Color}
	}
	for _, pl := range doc.PointLights {
		l.scene.PointLights = append(l.scene.PointLights, lighting.PointLight{
			Position: pl.Position,
			Color:    pl.Color,
		})
	}

	l.scene.Camera = l.camera(doc.Camera)

	meshes, textures := l.scene.Resources.Counts()
	logger.Info("scene loaded",
		zap.Int("entries", len(l.scene.Entries)),
		zap.Int("meshes", meshes),
		zap.Int("textures", textures),
		zap.Int("point_lights", len(l.scene.PointLights)),
		zap.Bool("directional", l.scene.Directional != nil))

	return l.scene, nil
}

type loader struct {
	dev      gpu.Device
	assets   *assets.Manager
	opts     Options
	scene    *Scene
	textures map[string]TextureID
}

func (l *loader) model(md formats.ModelDoc) (Entry, error) {
	model, err := BuildModelMatrix(md.Transform)
	if err != nil {
		return Entry{}, err
	}

	paths := make(map[TextureSlot]string, len(md.Textures))
	for name, path := range md.Textures {
		slot, err := ParseTextureSlot(name)
		if err != nil {
			return Entry{}, err
		}
		paths[slot] = path
	}
	if l.opts.Shading == shader.ShadingPBR && paths[SlotAlbedo] == "" {
		return Entry{}, &MissingTextureError{Slot: SlotAlbedo}
	}

	obj, err := l.obj(md.Mesh)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Name: md.Name, Model: model, Textures: TextureSet{}}

	var materialIDs map[string]int
	materialCount := -1
	if l.opts.Shading == shader.ShadingPhong {
		if entry.Materials, materialIDs, err = l.materials(md.Mesh, obj, paths[SlotAlbedo]); err != nil {
			return Entry{}, err
		}
		materialCount = len(entry.Materials)
	}

	data := mesh.FromOBJ(obj, materialIDs)
	if err := data.Validate(materialCount); err != nil {
		return Entry{}, &ResourceLoadError{Kind: "mesh", Path: md.Mesh, Err: err}
	}
	gm, err := mesh.New(l.dev, data)
	if err != nil {
		return Entry{}, &ResourceLoadError{Kind: "mesh", Path: md.Mesh, Err: err}
	}
	entry.Mesh = l.scene.Resources.AddMesh(gm)
	entry.Bounds = gm.Bounds().Transform(model)

	if l.opts.Shading == shader.ShadingPBR {
		for _, slot := range Slots {
			path, ok := paths[slot]
			if !ok || path == "" {
				continue
			}
			id, err := l.texture(path)
			if err != nil {
				return Entry{}, fmt.Errorf("%s texture: %w", slot, err)
			}
			entry.Textures[slot] = id
		}
	}

	return entry, nil
}

func (l *loader) obj(path string) (*formats.OBJ, error) {
	data, err := l.assets.Load(path)
	if err != nil {
		return nil, &ResourceLoadError{Kind: "mesh", Path: path, Err: err}
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, &ResourceLoadError{Kind: "mesh", Path: path, Err: err}
	}
	return obj, nil
}

// materials resolves the material libraries of obj. Faces without usemtl
// share a default material; fallbackMap, when set, textures every material
// without its own diffuse map.
func (l *loader) materials(objPath string, obj *formats.OBJ, fallbackMap string) ([]Material, map[string]int, error) {
	type libMaterial struct {
		formats.MTLMaterial
		lib string
	}
	known := make(map[string]libMaterial)
	for _, lib := range obj.MaterialLibs {
		libPath := assets.Join(objPath, lib)
		data, err := l.assets.Load(libPath)
		if err != nil {
			return nil, nil, &ResourceLoadError{Kind: "material", Path: libPath, Err: err}
		}
		mats, err := formats.ParseMTL(data)
		if err != nil {
			return nil, nil, &ResourceLoadError{Kind: "material", Path: libPath, Err: err}
		}
		for _, m := range mats {
			known[m.Name] = libMaterial{MTLMaterial: m, lib: libPath}
		}
	}

	names := obj.Materials()
	for _, f := range obj.Faces {
		if f.Material == "" {
			names = append([]string{""}, names...)
			break
		}
	}

	ids := make(map[string]int, len(names))
	materials := make([]Material, 0, len(names))
	for _, name := range names {
		src, ok := known[name]
		if !ok {
			if name != "" {
				logger.Warn("material not found, using default", zap.String("mesh", objPath), zap.String("material", name))
			}
			src = libMaterial{MTLMaterial: formats.DefaultMTLMaterial(name), lib: objPath}
		}

		m := Material{
			Name:      name,
			Ambient:   src.Ambient,
			Diffuse:   src.Diffuse,
			Specular:  src.Specular,
			Shininess: src.Shininess,
		}

		mapPath := ""
		switch {
		case src.DiffuseMap != "":
			mapPath = assets.Join(src.lib, src.DiffuseMap)
		case fallbackMap != "":
			mapPath = fallbackMap
		}
		if mapPath != "" {
			id, err := l.texture(mapPath)
			if err != nil {
				return nil, nil, fmt.Errorf("material %q: %w", name, err)
			}
			m.DiffuseMap, m.HasDiffuseMap = id, true
		}

		ids[name] = len(materials)
		materials = append(materials, m)
	}
	return materials, ids, nil
}

// texture loads path once; later references share the same texture.
func (l *loader) texture(path string) (TextureID, error) {
	key := assets.Clean(path)
	if id, ok := l.textures[key]; ok {
		return id, nil
	}

	data, err := l.assets.Load(key)
	if err != nil {
		return 0, &ResourceLoadError{Kind: "texture", Path: key, Err: err}
	}
	img, err := texture.Decode(data, key)
	if err != nil {
		return 0, &ResourceLoadError{Kind: "texture", Path: key, Err: err}
	}
	tex, err := texture.New(l.dev, img)
	if err != nil {
		return 0, &ResourceLoadError{Kind: "texture", Path: key, Err: err}
	}

	id := l.scene.Resources.AddTexture(tex)
	l.textures[key] = id
	return id, nil
}

func (l *loader) camera(doc *formats.CameraDoc) camera.Camera {
	if doc == nil {
		cam := camera.New(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
		cam.Aspect = l.aspect()
		if b, ok := l.scene.Bounds(); ok {
			cam.Frame(b.Min, b.Max)
		}
		return cam
	}

	cam := camera.New(doc.Eye, doc.Target)
	cam.Aspect = l.aspect()
	if up := mgl32.Vec3(doc.Up); up != (mgl32.Vec3{}) {
		cam.Up = up
	}
	if doc.Fov > 0 {
		cam.FovY = doc.Fov
	}
	if doc.Near > 0 {
		cam.Near = doc.Near
	}
	if doc.Far > cam.Near {
		cam.Far = doc.Far
	}
	return cam
}

func (l *loader) aspect() float32 {
	if l.opts.Aspect > 0 {
		return l.opts.Aspect
	}
	return 1
}
