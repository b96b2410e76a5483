// Package display keeps the presentation surface of the sample in sync
// with the button: which button icon and LED icon are shown, and which
// board image.
package display

// Icon identifiers.
const (
	IconButton        = "button"
	IconButtonPressed = "button_pressed"
	IconLED           = "led"
	IconLEDOn         = "led_on"
)

// Presenter renders button and board state. Calls come from the reactor
// goroutine only.
type Presenter interface {
	ShowPressed()
	ShowReleased()
	ShowBoard(image string)
}

// State is a snapshot of what is on screen.
type State struct {
	ButtonIcon string `json:"button_icon" example:"button" doc:"Button icon identifier"`
	LEDIcon    string `json:"led_icon" example:"led" doc:"LED icon identifier"`
	BoardImage string `json:"board_image" example:"ccimx6_sbc_board" doc:"Board image identifier"`
	Pressed    bool   `json:"pressed" doc:"Whether the button is shown pressed"`
}

// Released is the state shown after reset.
func Released(image string) State {
	return State{ButtonIcon: IconButton, LEDIcon: IconLED, BoardImage: image}
}

// Pressed is the state shown while the button is held.
func Pressed(image string) State {
	return State{ButtonIcon: IconButtonPressed, LEDIcon: IconLEDOn, BoardImage: image, Pressed: true}
}
