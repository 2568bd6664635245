package window

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/input"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// sdlWindow wraps SDL2 window and OpenGL context.
type sdlWindow struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

func newSDL(cfg Config) (*sdlWindow, error) {
	w := &sdlWindow{
		config: cfg,
		log:    logger.Named("window"),
	}

	// Initialize SDL2
	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Set OpenGL attributes BEFORE creating window
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, glMajor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, glMinor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	// Mouse look reads relative motion with the cursor captured.
	sdl.SetRelativeMouseMode(true)

	w.log.Info("window created",
		zap.String("backend", SDL),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *sdlWindow) Poll(st *input.State) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			st.RequestQuit()

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				st.Resize(w.Size())
			}

		case *sdl.KeyboardEvent:
			k := sdlKey(e.Keysym.Scancode)
			if e.Type == sdl.KEYDOWN {
				st.KeyDown(k)
			} else if e.Type == sdl.KEYUP {
				st.KeyUp(k)
			}

		case *sdl.MouseMotionEvent:
			st.MouseMove(float32(e.XRel), float32(e.YRel))

		case *sdl.MouseWheelEvent:
			st.AddScroll(float32(e.Y))
		}
	}
	return st.Quit
}

func sdlKey(sc sdl.Scancode) input.Key {
	switch sc {
	case sdl.SCANCODE_W:
		return input.KeyW
	case sdl.SCANCODE_A:
		return input.KeyA
	case sdl.SCANCODE_S:
		return input.KeyS
	case sdl.SCANCODE_D:
		return input.KeyD
	case sdl.SCANCODE_SPACE:
		return input.KeySpace
	case sdl.SCANCODE_LSHIFT, sdl.SCANCODE_RSHIFT:
		return input.KeyShift
	case sdl.SCANCODE_ESCAPE:
		return input.KeyEscape
	case sdl.SCANCODE_F1:
		return input.KeyF1
	case sdl.SCANCODE_F2:
		return input.KeyF2
	case sdl.SCANCODE_F3:
		return input.KeyF3
	}
	return input.KeyUnknown
}

func (w *sdlWindow) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

func (w *sdlWindow) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *sdlWindow) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Close destroys the window and cleans up SDL2.
func (w *sdlWindow) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}
