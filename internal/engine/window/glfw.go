package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/input"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// glfwWindow wraps a GLFW window. GLFW delivers events through callbacks
// during PollEvents, so the state being filled is held for that call only.
type glfwWindow struct {
	handle *glfw.Window
	log    *zap.Logger

	state  *input.State
	cursor [2]float64
	seen   bool // cursor position known
}

func newGLFW(cfg Config) (*glfwWindow, error) {
	log := logger.Named("window")
	log.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, glMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, glMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	w := &glfwWindow{handle: handle, log: log}
	handle.SetKeyCallback(w.onKey)
	handle.SetCursorPosCallback(w.onCursor)
	handle.SetScrollCallback(w.onScroll)
	handle.SetFramebufferSizeCallback(w.onFramebufferSize)

	log.Info("window created",
		zap.String("backend", GLFW),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *glfwWindow) Poll(st *input.State) bool {
	w.state = st
	glfw.PollEvents()
	w.state = nil

	if w.handle.ShouldClose() && !st.Quit {
		st.RequestQuit()
	}
	return st.Quit
}

func (w *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if w.state == nil {
		return
	}
	k := glfwKey(key)
	switch action {
	case glfw.Press, glfw.Repeat:
		w.state.KeyDown(k)
	case glfw.Release:
		w.state.KeyUp(k)
	}
}

func (w *glfwWindow) onCursor(_ *glfw.Window, x, y float64) {
	if w.seen && w.state != nil {
		w.state.MouseMove(float32(x-w.cursor[0]), float32(y-w.cursor[1]))
	}
	w.cursor = [2]float64{x, y}
	w.seen = true
}

func (w *glfwWindow) onScroll(_ *glfw.Window, _, yoff float64) {
	if w.state != nil {
		w.state.AddScroll(float32(yoff))
	}
}

func (w *glfwWindow) onFramebufferSize(_ *glfw.Window, width, height int) {
	if w.state != nil {
		w.state.Resize(width, height)
	}
}

func glfwKey(key glfw.Key) input.Key {
	switch key {
	case glfw.KeyW:
		return input.KeyW
	case glfw.KeyA:
		return input.KeyA
	case glfw.KeyS:
		return input.KeyS
	case glfw.KeyD:
		return input.KeyD
	case glfw.KeySpace:
		return input.KeySpace
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		return input.KeyShift
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeyF1:
		return input.KeyF1
	case glfw.KeyF2:
		return input.KeyF2
	case glfw.KeyF3:
		return input.KeyF3
	}
	return input.KeyUnknown
}

func (w *glfwWindow) SwapBuffers() {
	w.handle.SwapBuffers()
}

func (w *glfwWindow) Size() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *glfwWindow) SetTitle(title string) {
	w.handle.SetTitle(title)
}

func (w *glfwWindow) Close() {
	w.log.Info("closing window")
	w.handle.Destroy()
	glfw.Terminate()
}
