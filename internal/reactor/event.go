// Package reactor maps button events to LED levels and display updates.
//
// All reactor state lives on one goroutine, the Loop. Input sources post
// ButtonEvent values to the loop inbox and never touch the LED line or
// the display themselves.
package reactor

// Kind is the button transition.
type Kind int

// Button transitions.
const (
	Released Kind = iota
	Pressed
)

func (k Kind) String() string {
	if k == Pressed {
		return "pressed"
	}
	return "released"
}

// Source tags where an event came from. It only feeds logs and metrics.
type Source string

// Event sources.
const (
	SourceHardware  Source = "hardware"
	SourceSoft      Source = "soft"
	SourceSynthetic Source = "synthetic"
)

// ButtonEvent is an immutable button transition.
type ButtonEvent struct {
	Kind   Kind
	Source Source
}

// Press returns a Pressed event from src.
func Press(src Source) ButtonEvent { return ButtonEvent{Kind: Pressed, Source: src} }

// Release returns a Released event from src.
func Release(src Source) ButtonEvent { return ButtonEvent{Kind: Released, Source: src} }

// FromLevel classifies a raw button level. The button pulls the line low
// while held.
func FromLevel(high bool, src Source) ButtonEvent {
	if high {
		return Release(src)
	}
	return Press(src)
}

// LedCommand is the LED output for one event.
type LedCommand struct {
	Level bool // electrical level written to the line
	Lit   bool
}
