package events

// Event type constants for kelindar/event.
const (
	TypeButton uint32 = iota + 1
	TypeLEDChanged
	TypeDisplayChanged
	TypeBoardResolved
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ButtonEvent is published for every button event the reactor applies.
type ButtonEvent struct {
	Pressed   bool   `json:"pressed" example:"true" doc:"True for a press, false for a release"`
	Source    string `json:"source" example:"hardware" doc:"Origin of the event: hardware, soft or synthetic"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ButtonEvent.
func (e ButtonEvent) Type() uint32 { return TypeButton }

// LEDChangedEvent reports a write to the LED line.
type LEDChangedEvent struct {
	Level     bool   `json:"level" example:"true" doc:"Electrical level written to the line"`
	Lit       bool   `json:"lit" example:"true" doc:"Whether the LED is lit"`
	Error     string `json:"error,omitempty" doc:"Write failure, if any"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDChangedEvent.
func (e LEDChangedEvent) Type() uint32 { return TypeLEDChanged }

// DisplayChangedEvent carries the presentation state after a change.
type DisplayChangedEvent struct {
	ButtonIcon string `json:"button_icon" example:"button_pressed" doc:"Button icon identifier"`
	LEDIcon    string `json:"led_icon" example:"led_on" doc:"LED icon identifier"`
	BoardImage string `json:"board_image" example:"ccimx6_sbc_board" doc:"Board image identifier"`
	Pressed    bool   `json:"pressed" doc:"Whether the button is shown pressed"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayChangedEvent.
func (e DisplayChangedEvent) Type() uint32 { return TypeDisplayChanged }

// BoardResolvedEvent is published once the board profile is known.
type BoardResolvedEvent struct {
	Identity  string `json:"identity" example:"ccimx6sbc" doc:"Detected identity string"`
	Board     string `json:"board" example:"ccimx6sbc" doc:"Resolved profile name"`
	Driver    string `json:"driver" example:"cdev" doc:"GPIO driver in use"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BoardResolvedEvent.
func (e BoardResolvedEvent) Type() uint32 { return TypeBoardResolved }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"reactor" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
