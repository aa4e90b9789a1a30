// Package app wires the window, the renderer and the scene into the frame
// loop.
package app

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/config"
	"github.com/Faultbox/tinyrender/internal/engine/debug"
	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/gpu/opengl"
	"github.com/Faultbox/tinyrender/internal/engine/input"
	"github.com/Faultbox/tinyrender/internal/engine/renderer"
	"github.com/Faultbox/tinyrender/internal/engine/scene"
	"github.com/Faultbox/tinyrender/internal/engine/shader"
	"github.com/Faultbox/tinyrender/internal/engine/shadow"
	"github.com/Faultbox/tinyrender/internal/engine/window"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// App is the running viewer.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window      *window.Window
	dev         gpu.Device
	renderer    *renderer.Renderer
	input       *input.Input
	scene       *scene.Scene
	controls    *Controls
	screenshots *debug.ScreenshotCapture

	width, height int32
	running       bool
}

// New opens the window, sets up the renderer and loads the scene. Any
// failure releases what was created so far.
func New(cfg *config.Config) (*App, error) {
	if cfg.Scene.Path == "" {
		return nil, fmt.Errorf("no scene given: set scene.path or pass -scene")
	}

	a := newApp(cfg)
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}

	a.log.Info("initialized successfully")
	return a, nil
}

func newApp(cfg *config.Config) *App {
	return &App{
		cfg:         cfg,
		log:         logger.Named("app"),
		input:       input.New(),
		screenshots: debug.NewScreenshotCapture(".", "tinyrender"),
	}
}

func (a *App) init() error {
	cfg := a.cfg
	a.log.Info("initializing",
		zap.String("scene", cfg.Scene.Path),
		zap.String("shading", cfg.Renderer.Shading),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// Create window (this also creates OpenGL context)
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	a.window = win
	a.width, a.height = win.DrawableSize()

	// The device needs the context created above.
	dev, err := opengl.New()
	if err != nil {
		return err
	}
	return a.load(dev)
}

// load sets up the renderer on dev and loads the configured scene. On
// error the caller releases whatever load assigned through Close.
func (a *App) load(dev gpu.Device) error {
	a.dev = dev

	rcfg, err := RendererConfig(a.cfg)
	if err != nil {
		return err
	}
	a.renderer = renderer.New(dev, rcfg)
	if err := a.renderer.Setup(); err != nil {
		return err
	}

	s, err := scene.LoadFile(dev, a.cfg.Scene.Path, scene.Options{
		Shading: rcfg.Shading,
		Aspect:  float32(a.width) / float32(max(a.height, 1)),
	})
	if err != nil {
		return fmt.Errorf("loading scene %s: %w", a.cfg.Scene.Path, err)
	}
	a.scene = s
	a.controls = NewControls(s.Camera)
	return nil
}

// RendererConfig converts the renderer settings of cfg.
func RendererConfig(cfg *config.Config) (renderer.Config, error) {
	rc := cfg.Renderer
	shading, err := shader.ParseShadingModel(rc.Shading)
	if err != nil {
		return renderer.Config{}, err
	}

	out := renderer.Config{
		Shading:          shading,
		Shadows:          rc.Shadows,
		ShadowResolution: int32(rc.ShadowResolution),
		ShadowFrustum: shadow.Frustum{
			Extent:   rc.ShadowExtent,
			Near:     rc.ShadowNear,
			Far:      rc.ShadowFar,
			Distance: rc.ShadowDistance,
		},
		FitShadowToScene: rc.FitShadow,
		ClearColor:       rc.ClearColor,
		MaxPointLights:   rc.MaxPointLights,
	}
	if rc.ShaderDir != "" {
		info, err := os.Stat(rc.ShaderDir)
		if err != nil {
			return renderer.Config{}, fmt.Errorf("shader dir: %w", err)
		}
		if !info.IsDir() {
			return renderer.Config{}, fmt.Errorf("shader dir: %s is not a directory", rc.ShaderDir)
		}
		out.ShaderFS = os.DirFS(rc.ShaderDir)
	}
	return out, nil
}

// Run draws frames until the window is closed or Escape is pressed. A
// render error stops the loop and is returned.
func (a *App) Run() error {
	a.running = true

	// Timing
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		quit := a.input.Update()

		act := a.controls.Handle(a.input.Events(), &a.scene.Camera)
		if quit || act.Quit {
			a.running = false
			break
		}
		if act.Resized {
			a.width, a.height = a.window.DrawableSize()
			a.log.Debug("viewport resized", zap.Int32("width", a.width), zap.Int32("height", a.height))
		}

		if err := a.renderer.Render(a.scene, a.width, a.height); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// Capture before the swap while the back buffer holds the frame.
		if act.Screenshot {
			if _, err := a.screenshots.Capture(a.dev, a.width, a.height); err != nil {
				a.log.Warn("screenshot failed", zap.Error(err))
			}
		}

		a.window.SwapBuffers()

		// FPS counter
		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("elapsed", elapsed))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases the scene, the renderer and the window, in that order.
func (a *App) Close() {
	a.log.Info("closing")

	if a.scene != nil && a.dev != nil {
		a.scene.Release(a.dev)
		a.scene = nil
	}
	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}
