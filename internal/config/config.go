// Package config handles renderer configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/tinyrender/internal/engine/shader"
)

// Config holds all application settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RendererConfig holds render pipeline settings.
type RendererConfig struct {
	Shading          string     `yaml:"shading"` // pbr or phong
	Shadows          bool       `yaml:"shadows"`
	ShadowResolution int        `yaml:"shadow_resolution"`
	ShadowExtent     float32    `yaml:"shadow_extent"`
	ShadowNear       float32    `yaml:"shadow_near"`
	ShadowFar        float32    `yaml:"shadow_far"`
	ShadowDistance   float32    `yaml:"shadow_distance"`
	FitShadow        bool       `yaml:"fit_shadow"` // size the light frustum to the scene bounds
	ClearColor       [4]float32 `yaml:"clear_color"`
	ShaderDir        string     `yaml:"shader_dir"` // empty = embedded shaders
	MaxPointLights   int        `yaml:"max_point_lights"`
}

// SceneConfig selects the scene document to render.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "tinyrender",
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
		},
		Renderer: RendererConfig{
			Shading:          string(shader.ShadingPBR),
			Shadows:          true,
			ShadowResolution: 1024,
			ShadowExtent:     10,
			ShadowNear:       1.0,
			ShadowFar:        30.0,
			ShadowDistance:   15.0,
			ClearColor:       [4]float32{1, 1, 1, 1},
			MaxPointLights:   8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the renderer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := shader.ParseShadingModel(c.Renderer.Shading); err != nil {
		return err
	}
	if c.Renderer.ShadowResolution <= 0 {
		return fmt.Errorf("invalid shadow resolution %d", c.Renderer.ShadowResolution)
	}
	if c.Renderer.ShadowNear >= c.Renderer.ShadowFar {
		return fmt.Errorf("shadow near plane %g must be closer than far plane %g",
			c.Renderer.ShadowNear, c.Renderer.ShadowFar)
	}
	if c.Renderer.MaxPointLights < 1 || c.Renderer.MaxPointLights > 32 {
		return fmt.Errorf("max_point_lights %d outside 1..32", c.Renderer.MaxPointLights)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
