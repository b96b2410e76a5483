package app

// State is the lifecycle state of the application.
type State string

// Lifecycle states.
const (
	StateIdle     State = "idle"     // Not started
	StateStarting State = "starting" // Resolving board and opening lines
	StateRunning  State = "running"  // Reacting to the button
	StateStopping State = "stopping" // Tearing down
	StateError    State = "error"    // Start failed
)
