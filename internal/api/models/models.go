// Package models holds the request and response bodies of the panel API.
package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
	State   string `json:"state" example:"running" doc:"Application lifecycle state"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// LineData identifies one GPIO line of a board.
type LineData struct {
	Line   int    `json:"line" example:"37" doc:"Kernel GPIO number"`
	Chip   string `json:"chip,omitempty" example:"gpiochip1" doc:"Character device chip"`
	Offset int    `json:"offset" example:"5" doc:"Offset within the chip"`
}

// BoardData describes the resolved board.
type BoardData struct {
	Identity     string   `json:"identity" example:"ccimx6sbc" doc:"Identity read from the platform"`
	Name         string   `json:"name" example:"ccimx6sbc" doc:"Profile name"`
	Identities   []string `json:"identities" doc:"Identities that select this profile"`
	Button       LineData `json:"button" doc:"User button line"`
	LED          LineData `json:"led" doc:"User LED line"`
	Polarity     string   `json:"polarity" example:"active-high" enum:"active-high,active-low" doc:"LED polarity"`
	ButtonEdge   string   `json:"button_edge" example:"both" enum:"both,falling,rising" doc:"Edges the button reports"`
	Image        string   `json:"image" example:"ccimx6_sbc_board" doc:"Board image identifier"`
	PollsRelease bool     `json:"polls_release" doc:"Whether releases are detected by polling"`
}

type BoardResponse struct {
	Body BoardData
}

// StateData is the LED and display state.
type StateData struct {
	LED        string `json:"led" example:"off" enum:"on,off" doc:"Logical LED state"`
	ButtonIcon string `json:"button_icon" example:"button" doc:"Button icon identifier"`
	LEDIcon    string `json:"led_icon" example:"led" doc:"LED icon identifier"`
	BoardImage string `json:"board_image" example:"ccimx6_sbc_board" doc:"Board image identifier"`
	Pressed    bool   `json:"pressed" doc:"Whether the button is shown pressed"`
}

type StateResponse struct {
	Body StateData
}

// Soft button models
type ButtonRequestData struct {
	Pressed bool `json:"pressed" doc:"True to press the soft button, false to release it"`
}

type ButtonRequest struct {
	Body ButtonRequestData
}

type ButtonData struct {
	Accepted bool `json:"accepted" doc:"Whether the event was queued for the reactor"`
}

type ButtonResponse struct {
	Status int
	Body   ButtonData
}

// Log models
type LogsQuery struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"500" default:"100" doc:"Maximum number of entries, newest last"`
	Module string `query:"module" doc:"Only entries from this module"`
}

type LogLine struct {
	Timestamp string         `json:"timestamp" doc:"Log timestamp"`
	Level     string         `json:"level" example:"info" doc:"Log level"`
	Module    string         `json:"module" example:"reactor" doc:"Source module"`
	Message   string         `json:"message" doc:"Log message"`
	Attrs     map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
	Line      string         `json:"line" doc:"Formatted line"`
}

type LogsData struct {
	Entries []LogLine `json:"entries" doc:"Recent log entries"`
	Count   int       `json:"count" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
