// Package input collects keyboard, mouse and window events into per-frame
// state that does not depend on the window backend.
package input

// Key is a backend-neutral key identifier.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyShift
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
)

// EventType classifies recorded events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
}

// State is the input gathered since the last BeginFrame. Held keys persist
// across frames; deltas and events do not.
type State struct {
	held    map[Key]bool
	pressed map[Key]bool
	events  []Event

	// Pointer motion in pixels, positive right and down.
	MouseDX, MouseDY float32
	// Wheel motion, positive away from the user.
	Scroll float32

	Quit bool
}

// NewState creates an empty input state.
func NewState() *State {
	return &State{
		held:    make(map[Key]bool),
		pressed: make(map[Key]bool),
		events:  make([]Event, 0, 16),
	}
}

// BeginFrame clears per-frame deltas and events.
func (s *State) BeginFrame() {
	s.events = s.events[:0]
	clear(s.pressed)
	s.MouseDX, s.MouseDY = 0, 0
	s.Scroll = 0
}

// KeyDown records a key press. Auto-repeat presses of a held key are not
// reported as new presses.
func (s *State) KeyDown(k Key) {
	if k == KeyUnknown {
		return
	}
	if !s.held[k] {
		s.pressed[k] = true
	}
	s.held[k] = true
	s.events = append(s.events, Event{Type: EventKeyDown, Key: k})
}

// KeyUp records a key release.
func (s *State) KeyUp(k Key) {
	if k == KeyUnknown {
		return
	}
	delete(s.held, k)
	s.events = append(s.events, Event{Type: EventKeyUp, Key: k})
}

// MouseMove accumulates pointer motion.
func (s *State) MouseMove(dx, dy float32) {
	s.MouseDX += dx
	s.MouseDY += dy
}

// AddScroll accumulates wheel motion.
func (s *State) AddScroll(dy float32) {
	s.Scroll += dy
}

// Resize records a new framebuffer size.
func (s *State) Resize(width, height int) {
	s.events = append(s.events, Event{Type: EventWindowResize, Width: width, Height: height})
}

// RequestQuit records a close request.
func (s *State) RequestQuit() {
	s.Quit = true
	s.events = append(s.events, Event{Type: EventQuit})
}

// Held reports whether k is down.
func (s *State) Held(k Key) bool {
	return s.held[k]
}

// Pressed reports whether k went down this frame.
func (s *State) Pressed(k Key) bool {
	return s.pressed[k]
}

// Events returns the events since the last BeginFrame.
func (s *State) Events() []Event {
	return s.events
}
