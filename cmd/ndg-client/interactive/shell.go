// Package interactive provides the ndg-client command shell.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// Client is the session the shell drives.
type Client interface {
	// Peer returns the underlying session.
	Peer() *peer.Peer

	// Connect starts a session to the configured server.
	Connect() error

	// Disconnect ends the session without reconnecting.
	Disconnect()
}

// Shell reads commands from a readline prompt and enqueues them on the
// client's peer. Responses and events arrive through the client's
// listener, which should print to Stdout.
type Shell struct {
	client Client
	rl     *readline.Instance
	out    io.Writer
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("connect"),
	readline.PcItem("disconnect"),
	readline.PcItem("status"),
	readline.PcItem("stats", readline.PcItem("reset")),
	readline.PcItem("op"),
	readline.PcItem("echo"),
	readline.PcItem("msg"),
	readline.PcItem("raw"),
	readline.PcItem("encrypt"),
	readline.PcItem("time"),
	readline.PcItem("quit"),
)

// New creates a shell for client.
func New(client Client) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ndg> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{client: client, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that does not clobber the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run reads commands until quit, EOF or ctx is done. cancel is called on
// quit.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Exec(line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false for quit.
func (s *Shell) Exec(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	p := s.client.Peer()

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "connect":
		if err := s.client.Connect(); err != nil {
			fmt.Fprintf(s.out, "Connect failed: %v\n", err)
		}

	case "disconnect":
		s.client.Disconnect()

	case "status":
		s.cmdStatus(p)

	case "stats":
		if len(args) > 0 && args[0] == "reset" {
			p.ResetTrafficStats()
			fmt.Fprintln(s.out, "Traffic stats reset")
			return true
		}
		s.cmdStats(p)

	case "op":
		s.cmdOp(p, args)

	case "echo":
		s.cmdOp(p, append([]string{"1"}, args...))

	case "msg":
		if len(args) == 0 {
			fmt.Fprintln(s.out, "Usage: msg <value>")
			return true
		}
		v, err := ParseValue(strings.Join(args, " "))
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return true
		}
		s.report(p.EnqueueMessage(v, peer.SendReliable), "message")

	case "raw":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: raw <hex>")
			return true
		}
		data, err := hex.DecodeString(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "Error: bad hex: %v\n", err)
			return true
		}
		s.report(p.EnqueueRawMessage(data, peer.SendReliable), "raw message")

	case "encrypt":
		s.report(p.EstablishEncryption(), "key exchange")

	case "time":
		if p.ServerTimeAvailable() {
			fmt.Fprintf(s.out, "Server time: %d ms\n", p.ServerTime())
		} else {
			fmt.Fprintln(s.out, "Server time not synchronized yet")
		}
		p.FetchServerTimestamp()

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) report(ok bool, what string) {
	if ok {
		fmt.Fprintf(s.out, "Queued %s\n", what)
	} else {
		fmt.Fprintf(s.out, "Could not queue %s (see debug output)\n", what)
	}
}

func (s *Shell) cmdOp(p *peer.Peer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: op [-u] [-e] [-c channel] <code> [key=value ...]")
		return
	}

	opts := peer.SendReliable
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-u":
			opts.DeliveryMode = peer.DeliveryUnreliable
		case "-e":
			opts.Encrypt = true
		case "-c":
			if len(args) < 2 {
				fmt.Fprintln(s.out, "Error: -c needs a channel")
				return
			}
			ch, err := strconv.ParseUint(args[1], 10, 8)
			if err != nil {
				fmt.Fprintf(s.out, "Error: bad channel %q\n", args[1])
				return
			}
			opts.Channel = byte(ch)
			args = args[1:]
		default:
			fmt.Fprintf(s.out, "Error: unknown option %s\n", args[0])
			return
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Error: operation code required")
		return
	}

	code, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Fprintf(s.out, "Error: bad operation code %q\n", args[0])
		return
	}
	params, err := ParseParams(args[1:])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.report(p.EnqueueOperation(params, byte(code), opts), fmt.Sprintf("operation %d", code))
}

func (s *Shell) cmdStatus(p *peer.Peer) {
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  State:        %s\n", p.State())
	fmt.Fprintf(s.out, "  Address:      %s\n", p.Address())
	fmt.Fprintf(s.out, "  App ID:       %s\n", p.AppID())
	fmt.Fprintf(s.out, "  Connection:   %s\n", p.ConnectionID())
	fmt.Fprintf(s.out, "  Initialized:  %t\n", p.IsApplicationInitialized())
	fmt.Fprintf(s.out, "  Encrypted:    %t\n", p.IsEncryptionAvailable())
	fmt.Fprintf(s.out, "  RTT:          %s (variance %s, lowest %s)\n",
		p.RoundTripTime(), p.RoundTripTimeVariance(), p.LowestRoundTripTime())
	fmt.Fprintf(s.out, "  Queued:       out %d, in %d\n", p.QueuedOutgoingCommands(), p.QueuedIncomingCommands())
	fmt.Fprintln(s.out)
}

func (s *Shell) cmdStats(p *peer.Peer) {
	st := p.TrafficStats()
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  Sent:         %d bytes in %d frames\n", st.BytesOut, st.FramesOut)
	fmt.Fprintf(s.out, "  Received:     %d bytes in %d frames\n", st.BytesIn, st.FramesIn)
	fmt.Fprintf(s.out, "  Operations:   %d (responses %d)\n", st.OperationsOut, st.ResponsesIn)
	fmt.Fprintf(s.out, "  Messages:     out %d, in %d\n", st.MessagesOut, st.MessagesIn)
	fmt.Fprintf(s.out, "  Events:       %d\n", st.EventsIn)
	fmt.Fprintf(s.out, "  Pings:        %d (pongs %d)\n", st.PingsOut, st.PongsIn)
	if st.DecodeErrors > 0 || st.SendErrors > 0 {
		fmt.Fprintf(s.out, "  Errors:       decode %d, send %d\n", st.DecodeErrors, st.SendErrors)
	}
	if !st.LastReceive.IsZero() {
		fmt.Fprintf(s.out, "  Last receive: %s ago\n", time.Since(st.LastReceive).Round(time.Millisecond))
	}
	fmt.Fprintln(s.out)
}

// FormatResponse renders an operation response for the console.
func FormatResponse(resp *wire.OperationResponse) string {
	s := fmt.Sprintf("[RESPONSE] op=%d return=%d %s", resp.OperationCode, resp.ReturnCode, FormatParams(resp.Parameters))
	if resp.DebugMessage != "" {
		s += " debug=" + strconv.Quote(resp.DebugMessage)
	}
	return s
}

// FormatEvent renders an event for the console.
func FormatEvent(ev *wire.EventData) string {
	return fmt.Sprintf("[EVENT] code=%d sender=%d %s", ev.Code, ev.Sender(), FormatParams(ev.Parameters))
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
NDG Client Commands:
  Session:
    connect                           - Connect to the configured server
    disconnect                        - Disconnect (no automatic reconnect)
    encrypt                           - Start the key exchange
    status                            - Show session state and round trip time
    stats [reset]                     - Show or reset traffic statistics
    time                              - Show server time and request a resync

  Sending:
    op [-u] [-e] [-c ch] <code> [k=v] - Send an operation
    echo [k=v ...]                    - Send operation 1 (echo)
    msg <value>                       - Send a Message
    raw <hex>                         - Send a RawMessage

  General:
    help                              - Show this help
    quit                              - Exit

  Values: 42, 1.5, true, text, or typed s: i: l: f: b: x:(hex)`)
}
