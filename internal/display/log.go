package display

import (
	"github.com/smazurov/gpiosample/internal/logging"
)

// LogPresenter reports display changes through the logger, for boards
// without a screen.
type LogPresenter struct {
	logger logging.Logger
}

// NewLogPresenter creates a LogPresenter. A nil logger uses the "display"
// module logger.
func NewLogPresenter(logger logging.Logger) *LogPresenter {
	if logger == nil {
		logger = logging.GetLogger("display")
	}
	return &LogPresenter{logger: logger}
}

func (p *LogPresenter) ShowPressed() {
	p.logger.Info("Button pressed", "button_icon", IconButtonPressed, "led_icon", IconLEDOn)
}

func (p *LogPresenter) ShowReleased() {
	p.logger.Info("Button released", "button_icon", IconButton, "led_icon", IconLED)
}

func (p *LogPresenter) ShowBoard(image string) {
	p.logger.Info("Board image", "image", image)
}
