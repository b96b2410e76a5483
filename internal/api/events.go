package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/gpiosample/internal/events"
)

// registerSSERoutes registers the live event stream.
func (s *Server) registerSSERoutes() {
	if s.options.EventBus == nil {
		s.logger.Debug("No event bus, skipping SSE routes")
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time button, LED and display events. The current display state is sent first.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"button":          events.ButtonEvent{},
		"led-changed":     events.LEDChangedEvent{},
		"display-changed": events.DisplayChangedEvent{},
		"board-resolved":  events.BoardResolvedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		stream := events.NewStream(32)
		events.Forward[events.ButtonEvent](s.options.EventBus, stream)
		events.Forward[events.LEDChangedEvent](s.options.EventBus, stream)
		events.Forward[events.DisplayChangedEvent](s.options.EventBus, stream)
		events.Forward[events.BoardResolvedEvent](s.options.EventBus, stream)
		defer stream.Close()

		shown := s.options.Controller.Display()
		if err := send.Data(events.DisplayChangedEvent{
			ButtonIcon: shown.ButtonIcon,
			LEDIcon:    shown.LEDIcon,
			BoardImage: shown.BoardImage,
			Pressed:    shown.Pressed,
			Timestamp:  time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		s.pump(ctx, stream, send)
	})
}

// pump forwards stream events to an SSE client until it disconnects.
func (s *Server) pump(ctx context.Context, stream *events.Stream, send sse.Sender) {
	defer func() {
		if n := stream.Dropped(); n > 0 {
			s.logger.Debug("SSE client fell behind", "dropped", n)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-stream.C:
			if err := send.Data(ev); err != nil {
				return
			}
		}
	}
}
