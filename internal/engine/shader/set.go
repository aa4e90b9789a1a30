package shader

import (
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// ShadingModel selects the lighting program.
type ShadingModel string

const (
	ShadingPBR   ShadingModel = "pbr"
	ShadingPhong ShadingModel = "phong"
)

// ParseShadingModel parses "pbr" or "phong".
func ParseShadingModel(s string) (ShadingModel, error) {
	switch m := ShadingModel(s); m {
	case ShadingPBR, ShadingPhong:
		return m, nil
	default:
		return "", fmt.Errorf("unknown shading model %q", s)
	}
}

// Source names the stage files of one program inside a shader filesystem.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// Sources of the programs every renderer needs.
var (
	ShadowSource = Source{Name: "shadow", Vertex: "shadow.vert", Fragment: "shadow.frag"}
	PBRSource    = Source{Name: "pbr", Vertex: "pbr.vert", Fragment: "pbr.frag"}
	PhongSource  = Source{Name: "phong", Vertex: "phong.vert", Fragment: "phong.frag"}
)

// LightingSource returns the program source for model.
func LightingSource(model ShadingModel) Source {
	if model == ShadingPhong {
		return PhongSource
	}
	return PBRSource
}

// Set holds the programs of the two render passes. It is built once and
// shared read-only by every frame.
type Set struct {
	Shadow   *Program
	Lighting *Program
	Model    ShadingModel
}

// LoadSet builds the shadow program and the lighting program for model.
// defines are injected into every stage. Nothing is left allocated on failure.
func LoadSet(dev gpu.Device, fsys fs.FS, model ShadingModel, defines map[string]string) (*Set, error) {
	shadow, err := loadSource(dev, fsys, ShadowSource, defines)
	if err != nil {
		return nil, err
	}
	lighting, err := loadSource(dev, fsys, LightingSource(model), defines)
	if err != nil {
		shadow.Release(dev)
		return nil, err
	}

	logger.Debug("shader set loaded", zap.String("shading", string(model)))
	return &Set{Shadow: shadow, Lighting: lighting, Model: model}, nil
}

func loadSource(dev gpu.Device, fsys fs.FS, src Source, defines map[string]string) (*Program, error) {
	p, err := Load(dev, fsys, src, defines)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", src.Name, err)
	}
	return p, nil
}

// Release deletes both programs.
func (s *Set) Release(dev gpu.Device) {
	s.Shadow.Release(dev)
	s.Lighting.Release(dev)
}
