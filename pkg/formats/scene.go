// Scene document schema. Documents are YAML; JSON documents parse as YAML flow.

package formats

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene document errors.
var (
	ErrSceneNoModels    = errors.New("scene has no models")
	ErrSceneModelNoMesh = errors.New("scene model has no mesh")
	ErrSceneBadOp       = errors.New("invalid transform operation")
)

// SceneDocument is the decoded scene file. Paths are relative to the
// document's directory.
type SceneDocument struct {
	Camera           *CameraDoc           `yaml:"camera"`
	DirectionalLight *DirectionalLightDoc `yaml:"directional_light"`
	PointLights      []PointLightDoc      `yaml:"point_lights"`
	Models           []ModelDoc           `yaml:"models"`
}

// CameraDoc describes a perspective camera. Fov is vertical, in degrees.
type CameraDoc struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	Up     [3]float32 `yaml:"up"`
	Fov    float32    `yaml:"fov"`
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
}

// DirectionalLightDoc describes the single shadow-casting light. When
// Direction is zero, the direction is derived from the sun angles Azimuth
// and Elevation (degrees).
type DirectionalLightDoc struct {
	Direction [3]float32 `yaml:"direction"`
	Color     [3]float32 `yaml:"color"`
	Azimuth   float32    `yaml:"azimuth"`
	Elevation float32    `yaml:"elevation"`
}

// PointLightDoc describes one point light.
type PointLightDoc struct {
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

// ModelDoc is one renderable entry.
type ModelDoc struct {
	Name      string            `yaml:"name"`
	Mesh      string            `yaml:"mesh"`
	Textures  map[string]string `yaml:"textures"`
	Transform []TransformDoc    `yaml:"transform"`
}

// TransformDoc is one ordered transform operation. Both the explicit
// form {op: rotate, value: [0, 90, 0]} and the short form
// {rotate: [0, 90, 0]} are accepted.
type TransformDoc struct {
	Op    string     `yaml:"op"`
	Value [3]float32 `yaml:"value"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TransformDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrSceneBadOp, node.Line)
	}

	// Short form: a single key that is not "op" or "value".
	if len(node.Content) == 2 && node.Content[0].Value != "op" && node.Content[0].Value != "value" {
		t.Op = node.Content[0].Value
		value := node.Content[1]
		if value.Kind == yaml.ScalarNode {
			// Uniform value, e.g. {scale: 2}.
			var f float32
			if err := value.Decode(&f); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrSceneBadOp, t.Op, err)
			}
			t.Value = [3]float32{f, f, f}
			return nil
		}
		if err := value.Decode(&t.Value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSceneBadOp, t.Op, err)
		}
		return nil
	}

	type plain TransformDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Op == "" {
		return fmt.Errorf("%w: line %d: missing op", ErrSceneBadOp, node.Line)
	}
	*t = TransformDoc(p)
	return nil
}

// ParseScene decodes a scene document.
func ParseScene(data []byte) (*SceneDocument, error) {
	var doc SceneDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, ErrSceneNoModels
	}
	for i, m := range doc.Models {
		if m.Mesh == "" {
			return nil, fmt.Errorf("model %d: %w", i, ErrSceneModelNoMesh)
		}
	}
	return &doc, nil
}

// ParseSceneFile parses a scene document from disk.
func ParseSceneFile(path string) (*SceneDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return ParseScene(data)
}
