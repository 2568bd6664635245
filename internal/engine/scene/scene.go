// Package scene composes the viewer's objects, moves the light around them
// and draws everything once per frame.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/assets"
	"github.com/Faultbox/opengraphics/internal/engine/camera"
	"github.com/Faultbox/opengraphics/internal/engine/lighting"
	"github.com/Faultbox/opengraphics/internal/engine/picking"
	"github.com/Faultbox/opengraphics/internal/engine/renderable"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// ErrDuplicateName is returned when adding an object under a taken name.
var ErrDuplicateName = errors.New("duplicate object name")

// Clock reports time since the scene started.
type Clock interface {
	Elapsed() time.Duration
}

// Stopwatch is a Clock backed by the wall clock.
type Stopwatch struct {
	start time.Time
}

// NewStopwatch returns a running stopwatch.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

// Elapsed returns the time since start or the last Reset.
func (w *Stopwatch) Elapsed() time.Duration {
	return time.Since(w.start)
}

// Reset restarts the stopwatch.
func (w *Stopwatch) Reset() {
	w.start = time.Now()
}

// Config contains scene configuration options.
type Config struct {
	// Orbit moves the light source.
	Orbit lighting.Orbit
	// Room is the plank enclosure.
	Room Room
	// Textures maps texture names to paths in the asset file system.
	Textures map[string]string
	// Models are lit glTF objects placed after the room.
	Models []Model
}

// Model places a glTF geometry in the scene.
type Model struct {
	Name     string
	Path     string
	Diffuse  string
	Specular string
	Material string
	Position mgl32.Vec3
	Scale    float32
}

// Transform returns the model matrix. Zero scale means one.
func (m Model) Transform() mgl32.Mat4 {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	return mgl32.Translate3D(m.Position.X(), m.Position.Y(), m.Position.Z()).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}

// DefaultConfig returns the stock scene.
func DefaultConfig() Config {
	return Config{
		Orbit: lighting.DefaultOrbit(),
		Room:  DefaultRoom(),
		Textures: map[string]string{
			TexCobblestone:         "textures/cobblestone.png",
			TexCobblestoneSpecular: "textures/cobblestone_specular.png",
			TexGlowstone:           "textures/glowstone.png",
			TexOakPlanks:           "textures/planks_oak.png",
			TexGoldBlock:           "textures/gold_block.png",
		},
	}
}

type entry struct {
	name   string
	obj    renderable.Object
	bounds picking.AABB
}

// Scene owns a named, ordered set of objects and the single moving light.
type Scene struct {
	catalog *assets.Catalog
	config  Config
	clock   Clock
	log     *zap.Logger

	objects []entry
	index   map[string]int

	light       lighting.Light
	lightSource string

	disposed bool
}

// NewEmpty creates a scene with no objects. Objects added under
// LightSourceName follow the light orbit.
func NewEmpty(catalog *assets.Catalog, cfg Config, clock Clock) *Scene {
	if clock == nil {
		clock = NewStopwatch()
	}
	s := &Scene{
		catalog:     catalog,
		config:      cfg,
		clock:       clock,
		log:         logger.Named("scene"),
		index:       make(map[string]int),
		lightSource: LightSourceName,
	}
	s.light = lighting.Warm(lighting.Position(cfg.Orbit.Transform(0)))
	return s
}

// New creates the stock scene: textures are loaded once, then the blocks,
// the light source and the room are built in that order.
func New(catalog *assets.Catalog, cfg Config, clock Clock) (*Scene, error) {
	s := NewEmpty(catalog, cfg, clock)
	if err := s.populate(); err != nil {
		s.Dispose()
		return nil, err
	}
	s.log.Info("scene built", zap.Int("objects", s.Len()))
	return s, nil
}

// Add appends an object. Draw order is insertion order. The object is
// picked as a unit cube.
func (s *Scene) Add(name string, obj renderable.Object) error {
	return s.AddBounded(name, obj, picking.UnitCube)
}

// AddBounded appends an object picked by the model-space box bounds.
func (s *Scene) AddBounded(name string, obj renderable.Object, bounds picking.AABB) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	s.index[name] = len(s.objects)
	s.objects = append(s.objects, entry{name: name, obj: obj, bounds: bounds})
	return nil
}

// Get returns an object by name.
func (s *Scene) Get(name string) (renderable.Object, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", name, assets.ErrKeyNotFound)
	}
	return s.objects[i].obj, nil
}

// Names returns object names in draw order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.objects))
	for i, e := range s.objects {
		names[i] = e.name
	}
	return names
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Light returns the light as of the last Update.
func (s *Scene) Light() lighting.Light {
	return s.light
}

// Update moves the light source, pushes the light to every object that
// responds to it and pushes the camera to every object.
func (s *Scene) Update(cam *camera.FlyCamera) error {
	if s.disposed {
		return renderable.ErrDisposed
	}

	orbit := s.config.Orbit.Transform(s.clock.Elapsed())
	s.light = lighting.Warm(lighting.Position(orbit))

	if i, ok := s.index[s.lightSource]; ok {
		if err := s.objects[i].obj.SetTransform(orbit); err != nil {
			return fmt.Errorf("moving %s: %w", s.lightSource, err)
		}
	}

	view := cam.GetViewMatrix()
	projection := cam.GetProjectionMatrix()
	for _, e := range s.objects {
		if err := s.push(e.obj, cam.Position, view, projection); err != nil {
			return fmt.Errorf("updating %s: %w", e.name, err)
		}
	}
	return nil
}

func (s *Scene) push(obj renderable.Object, eye mgl32.Vec3, view, projection mgl32.Mat4) error {
	if lr, ok := obj.(renderable.LightReceiver); ok {
		if err := lr.SetLight(s.light); err != nil {
			return err
		}
		if err := lr.SetViewPosition(eye); err != nil {
			return err
		}
	}
	if err := obj.SetViewMatrix(view); err != nil {
		return err
	}
	return obj.SetProjectionMatrix(projection)
}

// Draw updates the scene for cam and draws every object in insertion order.
// It stops at the first error.
func (s *Scene) Draw(cam *camera.FlyCamera) error {
	if err := s.Update(cam); err != nil {
		return err
	}
	for _, e := range s.objects {
		if err := e.obj.Draw(); err != nil {
			return fmt.Errorf("drawing %s: %w", e.name, err)
		}
	}
	return nil
}

// Pick returns the nearest object whose bounds the ray hits and the
// distance to it.
func (s *Scene) Pick(ray picking.Ray) (string, float32, bool) {
	var (
		best  string
		bestT float32
		found bool
	)
	for _, e := range s.objects {
		box := e.bounds.Transform(e.obj.Transform())
		t, hit := ray.IntersectAABB(box)
		if !hit || (found && t >= bestT) {
			continue
		}
		best, bestT, found = e.name, t, true
	}
	return best, bestT, found
}

// Dispose disposes every object. The catalog is left to its owner.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, e := range s.objects {
		e.obj.Dispose()
	}
	s.log.Debug("scene disposed", zap.Int("objects", len(s.objects)))
	s.objects = nil
	s.index = make(map[string]int)
}
