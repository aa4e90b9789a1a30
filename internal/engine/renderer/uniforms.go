package renderer

import (
	"fmt"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/scene"
	"github.com/Faultbox/tinyrender/internal/engine/shader"
	"github.com/Faultbox/tinyrender/internal/engine/texture"
)

// GLSL uniform names shared by the lighting programs.
const (
	UniformModel          = "uModelMatrix"
	UniformView           = "uViewMatrix"
	UniformProjection     = "uProjectMatrix"
	UniformLightSpace     = "uLightSpaceMatrix"
	UniformCameraPos      = "uCameraPos"
	UniformNumPointLights = "uNumPointLights"
	UniformShadowMap      = "uShadowMap"
	UniformShadowEnabled  = "uShadowEnabled"
	UniformDiffuseMap     = "uDiffuseMap"
	UniformDiffuseMapped  = "uDiffuseMapped"
)

var mapUniforms = [...]string{"uAlbedoMap", "uNormalMap", "uMetallicMap", "uRoughnessMap", "uAOMap"}

// MappedUniform returns the flag uniform of an optional slot. Albedo has
// no flag.
func MappedUniform(slot scene.TextureSlot) string {
	switch slot {
	case scene.SlotNormal:
		return "uNormalMapped"
	case scene.SlotMetallic:
		return "uMetallicMapped"
	case scene.SlotRoughness:
		return "uRoughnessMapped"
	case scene.SlotAO:
		return "uAOMapped"
	}
	return ""
}

// PointLightUniform returns the name of a point light array member.
func PointLightUniform(index int, field string) string {
	return fmt.Sprintf("uPointLights[%d].%s", index, field)
}

type shadowUniforms struct {
	lightSpace gpu.UniformLocation
	model      gpu.UniformLocation
}

func resolveShadowUniforms(dev gpu.Device, p *shader.Program) shadowUniforms {
	return shadowUniforms{
		lightSpace: p.Uniform(dev, UniformLightSpace),
		model:      p.Uniform(dev, UniformModel),
	}
}

type pointLightUniforms struct {
	position gpu.UniformLocation
	color    gpu.UniformLocation
}

// lightingUniforms covers both lighting programs. Uniforms the active
// program lacks resolve to gpu.InactiveUniform and are ignored on upload.
type lightingUniforms struct {
	model, view, projection, lightSpace gpu.UniformLocation
	cameraPos                           gpu.UniformLocation

	numPointLights gpu.UniformLocation
	pointLights    []pointLightUniforms
	dirDirection   gpu.UniformLocation
	dirColor       gpu.UniformLocation

	shadowMap     gpu.UniformLocation
	shadowEnabled gpu.UniformLocation

	// PBR
	maps   [len(mapUniforms)]gpu.UniformLocation
	mapped [len(mapUniforms)]gpu.UniformLocation

	// Phong
	ambient, diffuse, specular, shininess gpu.UniformLocation
	diffuseMap, diffuseMapped             gpu.UniformLocation
}

func resolveLightingUniforms(dev gpu.Device, p *shader.Program, maxPointLights int) lightingUniforms {
	u := lightingUniforms{
		model:          p.Uniform(dev, UniformModel),
		view:           p.Uniform(dev, UniformView),
		projection:     p.Uniform(dev, UniformProjection),
		lightSpace:     p.Uniform(dev, UniformLightSpace),
		cameraPos:      p.Uniform(dev, UniformCameraPos),
		numPointLights: p.Uniform(dev, UniformNumPointLights),
		dirDirection:   p.Uniform(dev, "uDirectionalLight.direction"),
		dirColor:       p.Uniform(dev, "uDirectionalLight.color"),
		shadowMap:      p.Uniform(dev, UniformShadowMap),
		shadowEnabled:  p.Uniform(dev, UniformShadowEnabled),
	}

	u.pointLights = make([]pointLightUniforms, maxPointLights)
	for i := range u.pointLights {
		u.pointLights[i] = pointLightUniforms{
			position: p.Uniform(dev, PointLightUniform(i, "position")),
			color:    p.Uniform(dev, PointLightUniform(i, "color")),
		}
	}

	if p.Name() == shader.PhongSource.Name {
		u.ambient = p.Uniform(dev, "uMaterial.ambient")
		u.diffuse = p.Uniform(dev, "uMaterial.diffuse")
		u.specular = p.Uniform(dev, "uMaterial.specular")
		u.shininess = p.Uniform(dev, "uMaterial.shininess")
		u.diffuseMap = p.Uniform(dev, UniformDiffuseMap)
		u.diffuseMapped = p.Uniform(dev, UniformDiffuseMapped)
		for i := range u.maps {
			u.maps[i] = gpu.InactiveUniform
			u.mapped[i] = gpu.InactiveUniform
		}
		return u
	}

	for _, slot := range scene.Slots {
		u.maps[slot] = p.Uniform(dev, mapUniforms[slot])
		u.mapped[slot] = gpu.InactiveUniform
		if name := MappedUniform(slot); name != "" {
			u.mapped[slot] = p.Uniform(dev, name)
		}
	}
	u.ambient, u.diffuse, u.specular, u.shininess = gpu.InactiveUniform, gpu.InactiveUniform, gpu.InactiveUniform, gpu.InactiveUniform
	u.diffuseMap, u.diffuseMapped = gpu.InactiveUniform, gpu.InactiveUniform
	return u
}

func textureOf(s *scene.Scene, e *scene.Entry, slot scene.TextureSlot) *texture.Texture {
	id, ok := e.Textures[slot]
	if !ok {
		return nil
	}
	return s.Resources.Texture(id)
}
