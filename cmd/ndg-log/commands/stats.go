package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	MessagesByType    map[log.MessageType]int
	Connections       map[string]*ConnectionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single peer session.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	AppID      string
	RemoteAddr string
	BytesIn    int
	BytesOut   int
	Pongs      int
	LastRTT    time.Duration
	LowestRTT  time.Duration
	LastStatus int
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		MessagesByType:    make(map[log.MessageType]int),
		Connections:       make(map[string]*ConnectionStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}
	if conn.AppID == "" {
		conn.AppID = event.AppID
	}
	if conn.RemoteAddr == "" {
		conn.RemoteAddr = event.RemoteAddr
	}

	switch {
	case event.Frame != nil:
		if event.Direction == log.DirectionIn {
			conn.BytesIn += event.Frame.Size
		} else {
			conn.BytesOut += event.Frame.Size
		}
	case event.Message != nil:
		s.MessagesByType[event.Message.Type]++
	case event.Ping != nil && event.Ping.Type == log.ControlMsgPong:
		conn.Pongs++
		conn.LastRTT = event.Ping.RTT
		if conn.LowestRTT == 0 || (event.Ping.Sample > 0 && event.Ping.Sample < conn.LowestRTT) {
			conn.LowestRTT = event.Ping.Sample
		}
	case event.StateChange != nil && event.StateChange.StatusCode != 0:
		conn.LastStatus = event.StateChange.StatusCode
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== NDG Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryControl, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}

	if len(stats.MessagesByType) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Messages by Type:")
		types := make([]log.MessageType, 0, len(stats.MessagesByType))
		for mt := range stats.MessagesByType {
			types = append(types, mt)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, mt := range types {
			fmt.Fprintf(w, "  %-20s %d\n", mt.String()+":", stats.MessagesByType[mt])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenConnID(c.id), c.stats.Events, duration)
			if c.stats.AppID != "" || c.stats.RemoteAddr != "" {
				fmt.Fprintf(w, "           App: %s  Remote: %s\n", c.stats.AppID, c.stats.RemoteAddr)
			}
			if c.stats.BytesIn > 0 || c.stats.BytesOut > 0 {
				fmt.Fprintf(w, "           Bytes: in %d, out %d\n", c.stats.BytesIn, c.stats.BytesOut)
			}
			if c.stats.Pongs > 0 {
				fmt.Fprintf(w, "           Pongs: %d (rtt %s, lowest %s)\n",
					c.stats.Pongs, formatDuration(c.stats.LastRTT), formatDuration(c.stats.LowestRTT))
			}
			if c.stats.LastStatus != 0 {
				fmt.Fprintf(w, "           Last status: %d\n", c.stats.LastStatus)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
