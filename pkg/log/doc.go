// Package log provides structured protocol logging for NDG peer sessions.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, wire, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging through the peer configuration:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/ndg/client.nlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Wire: Decoded messages (MessageEvent)
//   - Session: State changes (StateChangeEvent)
//
// Pings with their round trip estimates and errors have dedicated event types.
//
// # File Format
//
// Log files are a plain sequence of CBOR-encoded events with the .nlog
// extension. The ndg-log tool views, filters and summarizes them.
package log
