// Command ndg-echo runs the reference server for ndg-client and the
// integration tests.
//
// It accepts sessions over TCP and, with -ws, over WebSocket. Operations
// 1 (echo), 2 (raise event), 3 (disconnect) and 4 (server time) are built
// in; Message and RawMessage payloads are echoed back.
//
// Usage:
//
//	ndg-echo [flags]
//
// Flags:
//
//	-address string       TCP listen address (default ":5055")
//	-ws string            WebSocket listen address, empty to disable
//	-ws-path string       WebSocket path (default "/")
//	-cert, -key string    PEM files enabling TLS on the TCP listener
//	-tick duration        Broadcast a server time event at this interval
//	-advertise string     Advertise the server via mDNS under this name
//	-app-id string        Application id put in the mDNS record
//	-protocol-log string  Write connection events to this .nlog file
//	-log-level string     Log level: debug, info, warn, error
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/internal/testserver"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/discovery"
	ndglog "github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/transport"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// TickEventCode is the event code of the -tick broadcast.
const TickEventCode byte = 100

var (
	address     = flag.String("address", ":5055", "TCP listen address")
	wsAddress   = flag.String("ws", "", "WebSocket listen address, empty to disable")
	wsPath      = flag.String("ws-path", "/", "WebSocket path")
	certFile    = flag.String("cert", "", "PEM certificate enabling TLS on the TCP listener")
	keyFile     = flag.String("key", "", "PEM private key for -cert")
	tick        = flag.Duration("tick", 0, "Broadcast a server time event at this interval (0 = off)")
	advertise   = flag.String("advertise", "", "Advertise the server via mDNS under this instance name")
	appID       = flag.String("app-id", "", "Application id put in the mDNS record")
	protocolLog = flag.String("protocol-log", "", "Write connection events to this .nlog file")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	log.Println("NDG Echo Server")
	log.Println("===============")

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := testserver.Config{Address: *address, Logger: logger}

	if *certFile != "" {
		cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
		if err != nil {
			log.Fatalf("Failed to load certificate: %v", err)
		}
		cfg.TLS = &transport.TLSConfig{Certificate: cert}
		log.Printf("TLS enabled (ALPN %s)", transport.ALPNProtocol)
	}

	if *protocolLog != "" {
		fl, err := ndglog.NewFileLogger(*protocolLog)
		if err != nil {
			log.Fatalf("Failed to create protocol logger: %v", err)
		}
		defer fl.Close()
		cfg.ProtocolLogger = fl
		log.Printf("Protocol logging to: %s", *protocolLog)
	}

	srv, err := testserver.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Listening on %s (tcp)", srv.Addr())

	var wsPort uint16
	if *wsAddress != "" {
		ln, err := net.Listen("tcp", *wsAddress)
		if err != nil {
			log.Fatalf("Failed to listen for WebSocket: %v", err)
		}
		wsPort = uint16(ln.Addr().(*net.TCPAddr).Port)

		mux := http.NewServeMux()
		mux.Handle(*wsPath, srv.WebSocketHandler())
		httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("WebSocket server: %v", err)
			}
		}()
		defer httpSrv.Close()
		log.Printf("Listening on ws://%s%s", ln.Addr(), *wsPath)
	}

	if *advertise != "" {
		adv, err := startAdvertising(ctx, srv.Addr(), wsPort)
		if err != nil {
			log.Fatalf("Failed to advertise: %v", err)
		}
		defer adv.Stop()
	}

	if *tick > 0 {
		go broadcastTicks(ctx, srv, *tick)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal: %v", sig)

	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error stopping server: %v", err)
	}
	log.Println("Goodbye!")
}

func startAdvertising(ctx context.Context, tcpAddr string, wsPort uint16) (*discovery.Advertiser, error) {
	_, portStr, err := net.SplitHostPort(tcpAddr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, err
	}

	info := &discovery.ServerInfo{
		Name:          *advertise,
		Port:          uint16(port),
		AppID:         *appID,
		WebSocketPort: wsPort,
		WebSocketPath: *wsPath,
		TLS:           *certFile != "",
	}
	adv := discovery.NewAdvertiser(discovery.DefaultAdvertiserConfig())
	if err := adv.Advertise(ctx, info); err != nil {
		return nil, err
	}
	log.Printf("Advertising %q as %s", info.Name, discovery.ServiceType)
	return adv, nil
}

func broadcastTicks(ctx context.Context, srv *testserver.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n := srv.Broadcast(&wire.EventData{
				Code:       TickEventCode,
				Parameters: wire.ParameterDictionary{testserver.ParamServerTime: int32(now.UnixMilli())},
			})
			if n > 0 {
				log.Printf("Tick sent to %d session(s)", n)
			}
		}
	}
}
