package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/gpiosample/internal/api/models"
	"github.com/smazurov/gpiosample/internal/board"
)

func (s *Server) registerPanelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/api/board",
		Summary:     "Board",
		Description: "Get the detected identity and the resolved board profile",
		Tags:        []string{"board"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, _ *struct{}) (*models.BoardResponse, error) {
		profile, identity, ok := s.options.Controller.Board()
		if !ok {
			return nil, huma.Error404NotFound("No board has been resolved")
		}
		return &models.BoardResponse{Body: boardData(profile, identity)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "State",
		Description: "Get the logical LED state and what the display shows",
		Tags:        []string{"board"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StateResponse, error) {
		return &models.StateResponse{Body: s.stateData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "press-button",
		Method:        http.MethodPost,
		Path:          "/api/button",
		Summary:       "Soft button",
		Description:   "Press or release the on-screen button. The event is queued for the reactor like a hardware event.",
		Tags:          []string{"board"},
		Security:      withAuth(),
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{401, 422, 503},
	}, func(_ context.Context, input *models.ButtonRequest) (*models.ButtonResponse, error) {
		var accepted bool
		if input.Body.Pressed {
			accepted = s.options.Controller.Press()
		} else {
			accepted = s.options.Controller.Release()
		}
		if !accepted {
			return nil, huma.Error503ServiceUnavailable("Button event was not queued: sample not running or inbox full")
		}
		s.logger.Debug("Soft button event queued", "pressed", input.Body.Pressed)
		return &models.ButtonResponse{
			Status: http.StatusAccepted,
			Body:   models.ButtonData{Accepted: true},
		}, nil
	})
}

func (s *Server) stateData() models.StateData {
	shown := s.options.Controller.Display()
	return models.StateData{
		LED:        s.options.Controller.LED().String(),
		ButtonIcon: shown.ButtonIcon,
		LEDIcon:    shown.LEDIcon,
		BoardImage: shown.BoardImage,
		Pressed:    shown.Pressed,
	}
}

func boardData(p board.Profile, identity string) models.BoardData {
	return models.BoardData{
		Identity:   identity,
		Name:       p.Name,
		Identities: p.Identities,
		Button: models.LineData{
			Line:   p.ButtonLine,
			Chip:   p.ButtonChip,
			Offset: p.ButtonOffset,
		},
		LED: models.LineData{
			Line:   p.LEDLine,
			Chip:   p.LEDChip,
			Offset: p.LEDOffset,
		},
		Polarity:     string(p.Polarity),
		ButtonEdge:   string(p.ButtonEdge),
		Image:        p.BoardImage(),
		PollsRelease: p.NeedsReleasePoll(),
	}
}
