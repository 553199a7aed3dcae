// Package commands implements the ndg-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer       *log.Layer
	Direction   *log.Direction
	Category    *log.Category
	MessageType *log.MessageType
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:       f.Layer,
		Direction:   f.Direction,
		Category:    f.Category,
		MessageType: f.MessageType,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)
	layer := event.Layer.String()
	if event.Category == log.CategoryControl {
		layer = "CTRL"
	}
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, shortenConnID(event.ConnectionID),
		event.Direction.String(), layer, eventLabel(event))

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange, event.RemoteAddr)
	case event.Ping != nil:
		formatPingDetails(w, event.Ping)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func eventLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Message != nil:
		return event.Message.Type.String()
	case event.StateChange != nil:
		return "State"
	case event.Ping != nil:
		return event.Ping.Type.String()
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes  Channel: %d  Mode: %d\n", frame.Size, frame.Channel, frame.DeliveryMode)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	switch msg.Type {
	case log.MessageTypeOperation, log.MessageTypeInternalOperationRequest:
		fmt.Fprintf(w, "  OpCode: %d\n", msg.Code)
	case log.MessageTypeOperationResponse, log.MessageTypeInternalOperationResponse:
		fmt.Fprintf(w, "  OpCode: %d", msg.Code)
		if msg.ReturnCode != nil {
			fmt.Fprintf(w, "  Return: %d", *msg.ReturnCode)
		}
		fmt.Fprintln(w)
		if msg.DebugMessage != "" {
			fmt.Fprintf(w, "  Debug: %s\n", msg.DebugMessage)
		}
	case log.MessageTypeEvent:
		fmt.Fprintf(w, "  EventCode: %d\n", msg.Code)
	}
	if msg.Encrypted {
		fmt.Fprintln(w, "  Encrypted: yes")
	}

	if len(msg.Parameters) > 0 {
		keys := make([]int, 0, len(msg.Parameters))
		for k := range msg.Parameters {
			keys = append(keys, int(k))
		}
		sort.Ints(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  [%d] %s\n", k, msg.Parameters[uint8(k)])
		}
	} else if msg.ParameterCount > 0 {
		fmt.Fprintf(w, "  Parameters: %d\n", msg.ParameterCount)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent, remote string) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if remote != "" {
		fmt.Fprintf(w, "  Remote: %s\n", remote)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
	if sc.StatusCode != 0 {
		fmt.Fprintf(w, "  Status: %d\n", sc.StatusCode)
	}
}

func formatPingDetails(w io.Writer, p *log.PingEvent) {
	if p.Type != log.ControlMsgPong {
		return
	}
	fmt.Fprintf(w, "  Sample: %s  RTT: %s  Variance: %s\n",
		formatDuration(p.Sample), formatDuration(p.RTT), formatDuration(p.Variance))
	if p.ServerTime != 0 {
		fmt.Fprintf(w, "  ServerTime: %d\n", p.ServerTime)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or session)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "control":
		return log.CategoryControl, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, control, state, or error)", s)
	}
}

var messageTypeNames = map[string]log.MessageType{
	"init":               log.MessageTypeInit,
	"init_response":      log.MessageTypeInitResponse,
	"operation":          log.MessageTypeOperation,
	"operation_response": log.MessageTypeOperationResponse,
	"event":              log.MessageTypeEvent,
	"internal_request":   log.MessageTypeInternalOperationRequest,
	"internal_response":  log.MessageTypeInternalOperationResponse,
	"message":            log.MessageTypeMessage,
	"raw_message":        log.MessageTypeRawMessage,
}

// ParseMessageTypeFlag parses a message type name such as "operation" or
// "EVENT".
func ParseMessageTypeFlag(s string) (log.MessageType, error) {
	if mt, ok := messageTypeNames[strings.ToLower(s)]; ok {
		return mt, nil
	}
	return 0, fmt.Errorf("invalid message type: %s", s)
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	return viewEvents(reader, output)
}

func viewEvents(reader *log.Reader, output io.Writer) error {
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
