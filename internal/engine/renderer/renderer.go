// Package renderer owns per-frame device state: depth testing, clearing
// and the viewport.
package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
}

// Renderer handles frame setup around the scene's draws.
type Renderer struct {
	dev    gpu.Device
	config Config
	frames uint64
}

// New creates a new renderer and sets the default device state.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(dev gpu.Device, cfg Config) *Renderer {
	r := &Renderer{
		dev:    dev,
		config: cfg,
	}

	dev.EnableDepthTest()
	c := cfg.ClearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])
	dev.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	if info, ok := dev.(interface{ Info() (string, string) }); ok {
		version, name := info.Info()
		logger.Info("OpenGL initialized",
			zap.String("version", version),
			zap.String("renderer", name),
		)
	}
	return r
}

// Close logs the frame total. The renderer owns no device objects.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Uint64("frames", r.frames))
}

// Resize handles window resize. Zero sizes from a minimised window are
// ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	r.dev.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.dev.Clear()
}

// End finishes the current frame.
func (r *Renderer) End() {
	r.frames++
}

// Frames returns the number of completed frames.
func (r *Renderer) Frames() uint64 {
	return r.frames
}
