// Package app wires configuration, window, device, assets and scene into
// the viewer's main loop.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/assets"
	"github.com/Faultbox/opengraphics/internal/config"
	"github.com/Faultbox/opengraphics/internal/engine/camera"
	"github.com/Faultbox/opengraphics/internal/engine/debug"
	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/engine/input"
	"github.com/Faultbox/opengraphics/internal/engine/lighting"
	"github.com/Faultbox/opengraphics/internal/engine/picking"
	"github.com/Faultbox/opengraphics/internal/engine/renderer"
	"github.com/Faultbox/opengraphics/internal/engine/scene"
	"github.com/Faultbox/opengraphics/internal/engine/shader/shaders"
	"github.com/Faultbox/opengraphics/internal/engine/window"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// Title is the window title prefix.
const Title = "OpenGraphics"

// App is the viewer instance.
type App struct {
	config *config.Config
	log    *zap.Logger

	window   window.Window
	renderer *renderer.Renderer
	catalog  *assets.Catalog
	scene    *scene.Scene
	camera   *camera.FlyCamera
	input    *input.State
	fps      *debug.FPSCounter
	shots    *debug.ScreenshotCapture

	captureNext bool
}

// New creates the window and GL context, then loads the scene.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		log:    logger.Named("app"),
		input:  input.NewState(),
		fps:    debug.NewFPSCounter(time.Second),
	}
	a.log.Info("initializing viewer",
		zap.String("backend", cfg.Graphics.Backend),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Backend:    cfg.Graphics.Backend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Device and renderer come AFTER the window, since the context must exist
	dev, err := gpu.NewGL()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.shots = debug.NewScreenshotCapture(dev, cfg.Assets.ScreenshotDir, "opengraphics")
	width, height := a.window.Size()
	a.renderer = renderer.New(dev, renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.Graphics.ClearColor,
	})

	if err := a.load(dev, width, height); err != nil {
		a.Close()
		return nil, err
	}

	a.log.Info("viewer initialized", zap.Int("objects", a.scene.Len()))
	return a, nil
}

func (a *App) load(dev gpu.Device, width, height int) error {
	cfg := a.config

	a.catalog = assets.New(dev, os.DirFS(cfg.Assets.Root), shaders.FS)
	a.catalog.SetStrictShaders(cfg.Graphics.StrictShader)

	sc := scene.DefaultConfig()
	sc.Orbit = lighting.Orbit{
		Radius: cfg.Scene.OrbitRadius,
		Height: cfg.Scene.OrbitHeight,
		Speed:  cfg.Scene.OrbitSpeed,
	}
	sc.Room = scene.Room{Min: cfg.Scene.RoomMin, Max: cfg.Scene.RoomMax}
	for _, m := range cfg.Scene.Models {
		sc.Models = append(sc.Models, scene.Model{
			Name:     m.Name,
			Path:     m.Path,
			Diffuse:  m.Diffuse,
			Specular: m.Specular,
			Material: m.Material,
			Position: mgl32.Vec3(m.Position),
			Scale:    m.Scale,
		})
	}

	var err error
	a.scene, err = scene.New(a.catalog, sc, scene.NewStopwatch())
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}

	a.camera = camera.FromConfig(cfg.Camera, width, height)
	return nil
}

// Run starts the main loop and returns when the window closes.
func (a *App) Run() error {
	a.log.Info("starting main loop")
	lastTime := time.Now()

	for {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		a.input.BeginFrame()
		if a.window.Poll(a.input) {
			return nil
		}
		if a.handleEvents() {
			return nil
		}

		// 2. Update camera
		a.camera.ApplyInput(a.input, float32(dt.Seconds()))

		// 3. Render
		a.renderer.Begin()
		if err := a.scene.Draw(a.camera); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.renderer.End()
		if a.captureNext {
			a.captureNext = false
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		if fps, ok := a.fps.Tick(dt); ok {
			a.window.SetTitle(fmt.Sprintf("%s | FPS: %.0f", Title, fps))
			if a.config.Logging.ShowFPS {
				a.log.Info("fps",
					zap.Float64("fps", fps),
					zap.Duration("frame", dt),
				)
			}
		}
	}
}

// handleEvents reacts to window events and reports whether to quit.
func (a *App) handleEvents() bool {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.renderer.Resize(event.Width, event.Height)
			a.camera.OnResize(event.Width, event.Height)
		case input.EventKeyDown:
			switch event.Key {
			case input.KeyEscape:
				return true
			case input.KeyF1:
				if a.input.Pressed(input.KeyF1) {
					a.logStats()
				}
			case input.KeyF2:
				if a.input.Pressed(input.KeyF2) {
					a.captureNext = true
				}
			case input.KeyF3:
				if a.input.Pressed(input.KeyF3) {
					a.logPick()
				}
			}
		}
	}
	return false
}

func (a *App) logStats() {
	s := a.catalog.Stats()
	l := a.scene.Light()
	a.log.Info("viewer stats",
		zap.Int("objects", a.scene.Len()),
		zap.Int("textures", s.Textures),
		zap.Int("meshes", s.Meshes),
		zap.Int("programs", s.Programs),
		zap.Float32s("camera", a.camera.Position[:]),
		zap.Float32s("light", l.Position[:]),
		zap.Uint64("frames", a.renderer.Frames()),
	)
}

// logPick reports the object under the crosshair.
func (a *App) logPick() {
	ray := picking.CenterRay(a.camera.GetViewMatrix(), a.camera.GetProjectionMatrix())
	name, dist, ok := a.scene.Pick(ray)
	if !ok {
		a.log.Info("nothing under crosshair")
		return
	}
	a.log.Info("picked object", zap.String("name", name), zap.Float32("distance", dist))
}

// screenshot saves the frame drawn into the back buffer.
func (a *App) screenshot() {
	width, height := a.renderer.Size()
	if _, err := a.shots.Capture(width, height); err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
	}
}

// Close cleans up viewer resources in reverse order of creation.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.scene != nil {
		a.scene.Dispose()
	}
	if a.catalog != nil {
		a.catalog.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
