package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.AppID != "" {
		attrs = append(attrs, slog.String("app_id", event.AppID))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Int("channel", int(event.Frame.Channel)),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("msg_type", event.Message.Type.String()),
			slog.Int("code", int(event.Message.Code)),
			slog.Int("params", event.Message.ParameterCount),
		)
		if event.Message.ReturnCode != nil {
			attrs = append(attrs, slog.Int("return_code", int(*event.Message.ReturnCode)))
		}
		if event.Message.DebugMessage != "" {
			attrs = append(attrs, slog.String("debug_message", event.Message.DebugMessage))
		}
		if event.Message.Encrypted {
			attrs = append(attrs, slog.Bool("encrypted", true))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
		if event.StateChange.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", event.StateChange.StatusCode))
		}
	case event.Ping != nil:
		attrs = append(attrs, slog.String("ctrl_type", event.Ping.Type.String()))
		if event.Ping.Type == ControlMsgPong {
			attrs = append(attrs,
				slog.Duration("sample", event.Ping.Sample),
				slog.Duration("rtt", event.Ping.RTT),
				slog.Duration("variance", event.Ping.Variance),
			)
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
