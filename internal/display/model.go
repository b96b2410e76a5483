package display

import (
	"sync"
	"time"

	"github.com/smazurov/gpiosample/internal/events"
)

// Model is the single mutable presentation state. The reactor goroutine
// writes it; State may be read from any goroutine.
type Model struct {
	mu    sync.RWMutex
	state State
	bus   *events.Bus
}

// NewModel creates a model showing the released icons. bus may be nil.
func NewModel(bus *events.Bus) *Model {
	return &Model{state: Released(""), bus: bus}
}

// ShowPressed implements Presenter.
func (m *Model) ShowPressed() {
	m.update(func(s *State) {
		*s = Pressed(s.BoardImage)
	})
}

// ShowReleased implements Presenter.
func (m *Model) ShowReleased() {
	m.update(func(s *State) {
		*s = Released(s.BoardImage)
	})
}

// ShowBoard implements Presenter.
func (m *Model) ShowBoard(image string) {
	m.update(func(s *State) {
		s.BoardImage = image
	})
}

// State returns the current snapshot.
func (m *Model) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Model) update(fn func(*State)) {
	m.mu.Lock()
	prev := m.state
	fn(&m.state)
	next := m.state
	m.mu.Unlock()

	if next == prev || m.bus == nil {
		return
	}
	m.bus.Publish(events.DisplayChangedEvent{
		ButtonIcon: next.ButtonIcon,
		LEDIcon:    next.LEDIcon,
		BoardImage: next.BoardImage,
		Pressed:    next.Pressed,
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}
