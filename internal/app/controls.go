package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/tinyrender/internal/engine/camera"
	"github.com/Faultbox/tinyrender/internal/engine/input"
)

// Action is what the frame loop must do after a batch of events.
type Action struct {
	Quit       bool
	Screenshot bool
	// Resized is set when the drawable size changed; the loop re-reads it
	// from the window.
	Resized bool
}

// Controls turns input events into orbit camera moves and loop actions.
type Controls struct {
	orbit *camera.Orbit
}

// NewControls starts orbiting from the current eye of cam.
func NewControls(cam camera.Camera) *Controls {
	return &Controls{orbit: camera.NewOrbit(cam)}
}

// Handle applies events to cam. Left-drag orbits the eye around the target
// and the wheel zooms.
func (c *Controls) Handle(events []input.Event, cam *camera.Camera) Action {
	var act Action
	moved := false

	for _, e := range events {
		switch e.Type {
		case input.EventQuit:
			act.Quit = true
		case input.EventWindowResize:
			act.Resized = true
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				act.Quit = true
			case sdl.SCANCODE_F12:
				act.Screenshot = true
			}
		case input.EventMouseMove:
			if e.Held(input.ButtonLeft) {
				c.orbit.HandleDrag(e.DeltaX, e.DeltaY)
				moved = true
			}
		case input.EventMouseWheel:
			if e.DeltaY != 0 {
				c.orbit.HandleZoom(e.DeltaY)
				moved = true
			}
		}
	}

	if moved {
		c.orbit.Apply(cam)
	}
	return act
}
