// Package window creates the OS window and OpenGL context and feeds its
// events into input.State. SDL2 is the default backend; GLFW is the
// alternative.
package window

import (
	"fmt"
	"runtime"

	"github.com/Faultbox/opengraphics/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// OpenGL context version requested from either backend. 4.1 core is the
// newest macOS supports.
const (
	glMajor = 4
	glMinor = 1
)

// Backend names.
const (
	SDL  = "sdl"
	GLFW = "glfw"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Backend    string
}

// Window is an OS window with a current OpenGL context.
type Window interface {
	// Poll drains pending events into st and reports whether the window
	// should close.
	Poll(st *input.State) bool
	SwapBuffers()
	// Size returns the drawable size in pixels.
	Size() (int, int)
	SetTitle(title string)
	Close()
}

// New creates a window using the configured backend.
func New(cfg Config) (Window, error) {
	switch cfg.Backend {
	case SDL, "":
		return newSDL(cfg)
	case GLFW:
		return newGLFW(cfg)
	default:
		return nil, fmt.Errorf("unknown window backend %q", cfg.Backend)
	}
}
