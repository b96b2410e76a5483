// Package board resolves the running board model to the GPIO wiring the
// sample drives: which line is the push button, which line is the LED,
// how the LED is wired and which image represents the board.
package board

import (
	"fmt"
	"strings"

	"github.com/smazurov/gpiosample/internal/gpio"
)

// Polarity is the electrical level that lights the LED.
type Polarity string

// LED polarities.
const (
	ActiveHigh Polarity = "active-high"
	ActiveLow  Polarity = "active-low"
)

// Edge selects which button transitions raise an interrupt.
type Edge string

// Button edges.
const (
	EdgeBoth    Edge = "both"
	EdgeFalling Edge = "falling"
	EdgeRising  Edge = "rising"
)

// DefaultImage is shown when a profile does not name a board image.
const DefaultImage = "digi_icon"

// Profile is the static description of one board model.
type Profile struct {
	Name       string   `toml:"name" json:"name"`
	Identities []string `toml:"identities" json:"identities"`

	ButtonLine   int    `toml:"button_line" json:"button_line"`
	ButtonChip   string `toml:"button_chip" json:"button_chip,omitempty"`
	ButtonOffset int    `toml:"button_offset" json:"button_offset"`
	LEDLine      int    `toml:"led_line" json:"led_line"`
	LEDChip      string `toml:"led_chip" json:"led_chip,omitempty"`
	LEDOffset    int    `toml:"led_offset" json:"led_offset"`

	Polarity   Polarity `toml:"polarity" json:"polarity"`
	ButtonEdge Edge     `toml:"button_edge" json:"button_edge"`
	Image      string   `toml:"image" json:"image"`
}

// LitLevel returns the electrical level that turns the LED on.
func (p Profile) LitLevel() bool {
	return p.Polarity != ActiveLow
}

// ButtonSpec addresses the push-button line.
func (p Profile) ButtonSpec() gpio.LineSpec {
	return gpio.LineSpec{Number: p.ButtonLine, Chip: p.ButtonChip, Offset: p.ButtonOffset, Consumer: "gpiosample-button"}
}

// LEDSpec addresses the LED line.
func (p Profile) LEDSpec() gpio.LineSpec {
	return gpio.LineSpec{Number: p.LEDLine, Chip: p.LEDChip, Offset: p.LEDOffset, Consumer: "gpiosample-led"}
}

// ButtonMode is the interrupt mode the button line is opened with.
func (p Profile) ButtonMode() gpio.Mode {
	switch p.ButtonEdge {
	case EdgeFalling:
		return gpio.ModeEdgeFalling
	case EdgeRising:
		return gpio.ModeEdgeRising
	default:
		return gpio.ModeEdgeBoth
	}
}

// NeedsReleasePoll reports whether button releases raise no interrupt and
// have to be detected by polling the line level.
func (p Profile) NeedsReleasePoll() bool {
	return p.ButtonEdge == EdgeFalling
}

// BoardImage returns the image identifier, falling back to DefaultImage.
func (p Profile) BoardImage() string {
	if p.Image == "" {
		return DefaultImage
	}
	return p.Image
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("board without name")
	}
	if len(p.Identities) == 0 {
		return fmt.Errorf("board %q has no identities", p.Name)
	}
	switch p.Polarity {
	case ActiveHigh, ActiveLow:
	default:
		return fmt.Errorf("board %q: unknown polarity %q", p.Name, p.Polarity)
	}
	switch p.ButtonEdge {
	case EdgeBoth, EdgeFalling, EdgeRising:
	default:
		return fmt.Errorf("board %q: unknown button edge %q", p.Name, p.ButtonEdge)
	}
	if p.ButtonLine < 0 || p.LEDLine < 0 || p.ButtonOffset < 0 || p.LEDOffset < 0 {
		return fmt.Errorf("board %q: negative line number", p.Name)
	}
	if p.ButtonLine == p.LEDLine {
		return fmt.Errorf("board %q: button and LED share line %d", p.Name, p.LEDLine)
	}
	return nil
}
