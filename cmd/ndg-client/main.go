// Command ndg-client is a reference host application for the peer session.
//
// It connects to a server over TCP or WebSocket, drives the session from a
// service loop, prints responses and events, and optionally reconnects with
// exponential backoff, exports Prometheus metrics and records a protocol
// log.
//
// Usage:
//
//	ndg-client [flags]
//
// Flags:
//
//	-config string        Peer configuration file (YAML)
//	-address string       Server address (host:port or ws URL)
//	-app-id string        Application id sent in the init message
//	-protocol string      Transport: tcp, ws, wss (overrides the config file)
//	-discover             Find the server via mDNS instead of -address
//	-encrypt              Run the key exchange once connected
//	-reconnect            Reconnect with exponential backoff
//	-interactive          Start the command shell
//	-metrics string       Serve Prometheus metrics on this address
//	-protocol-log string  Write protocol events to this .nlog file
//	-log-level string     Log level: debug, info, warn, error
//
// Examples:
//
//	# Interactive session against a local ndg-echo
//	ndg-client -address 127.0.0.1:5055 -app-id demo -interactive
//
//	# WebSocket with encryption and metrics
//	ndg-client -protocol ws -address ws://127.0.0.1:8080/ -encrypt -metrics :9100
//
//	# Find a server on the local network
//	ndg-client -discover -app-id demo -interactive
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/cmd/ndg-client/interactive"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/connection"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/discovery"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/keyexchange"
	ndglog "github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/metrics"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/transport"
)

// Config holds the command line configuration.
type Config struct {
	ConfigFile      string
	Address         string
	AppID           string
	Protocol        string
	Path            string
	TLS             bool
	Insecure        bool
	Discover        bool
	Encrypt         bool
	Reconnect       bool
	MaxAttempts     int
	Interactive     bool
	MetricsAddr     string
	ProtocolLog     string
	LogLevel        string
	ServiceInterval time.Duration
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Peer configuration file (YAML)")
	flag.StringVar(&config.Address, "address", "127.0.0.1:5055", "Server address (host:port or ws URL)")
	flag.StringVar(&config.AppID, "app-id", "demo", "Application id sent in the init message")
	flag.StringVar(&config.Protocol, "protocol", "", "Transport: tcp, ws, wss (overrides the config file)")
	flag.StringVar(&config.Path, "path", "/", "WebSocket path when -address has none")
	flag.BoolVar(&config.TLS, "tls", false, "Use TLS on the TCP transport")
	flag.BoolVar(&config.Insecure, "insecure", false, "Skip TLS certificate verification")
	flag.BoolVar(&config.Discover, "discover", false, "Find the server via mDNS instead of -address")
	flag.BoolVar(&config.Encrypt, "encrypt", false, "Run the key exchange once connected")
	flag.BoolVar(&config.Reconnect, "reconnect", false, "Reconnect with exponential backoff")
	flag.IntVar(&config.MaxAttempts, "max-attempts", 0, "Give up after this many reconnect attempts (0 = never)")
	flag.BoolVar(&config.Interactive, "interactive", false, "Start the command shell")
	flag.StringVar(&config.MetricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "Write protocol events to this .nlog file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.DurationVar(&config.ServiceInterval, "service-interval", 10*time.Millisecond, "Time between two Service calls")
}

func main() {
	flag.Parse()
	setupLogging(config.LogLevel)

	log.Println("NDG Reference Client")
	log.Println("====================")

	peerCfg, err := loadPeerConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Discover {
		addr, err := discoverServer(ctx, peerCfg.Protocol)
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		config.Address = addr
	}
	log.Printf("Server: %s (%s)", config.Address, peerCfg.Protocol)
	log.Printf("App ID: %s", config.AppID)

	var protocolLogger *ndglog.FileLogger
	if config.ProtocolLog != "" {
		protocolLogger, err = ndglog.NewFileLogger(config.ProtocolLog)
		if err != nil {
			log.Fatalf("Failed to create protocol logger: %v", err)
		}
		defer protocolLogger.Close()
		log.Printf("Protocol logging to: %s", config.ProtocolLog)
	}
	var loggers []ndglog.Logger
	if protocolLogger != nil {
		loggers = append(loggers, protocolLogger)
	}
	if config.LogLevel == "debug" {
		loggers = append(loggers, ndglog.NewSlogAdapter(peerCfg.Logger))
	}
	if len(loggers) > 0 {
		peerCfg.ProtocolLogger = ndglog.NewMultiLogger(loggers...)
	}

	tcfg := transport.Config{
		Path:           config.Path,
		MaxFrameSize:   uint32(peerCfg.MaxFrameSize),
		Logger:         peerCfg.Logger,
		ProtocolLogger: peerCfg.ProtocolLogger,
	}
	if config.TLS || peerCfg.Protocol == peer.ProtocolWebSocketSecure {
		tcfg.TLS = &transport.TLSConfig{InsecureSkipVerify: config.Insecure}
	}
	factory, err := transport.Factory(peerCfg.Protocol, tcfg)
	if err != nil {
		log.Fatalf("Failed to create transport: %v", err)
	}

	c := &client{
		address: config.Address,
		appID:   config.AppID,
		encrypt: config.Encrypt,
		out:     os.Stdout,
	}
	c.peer, err = peer.New(peerCfg, c, factory)
	if err != nil {
		log.Fatalf("Failed to create peer: %v", err)
	}
	c.peer.SetMessageListener(c)

	if config.MetricsAddr != "" {
		c.collector = metrics.NewCollector(c.peer)
		srv := serveMetrics(config.MetricsAddr, c.collector)
		defer srv.Close()
	}

	if config.Reconnect {
		c.reconnector = connection.NewReconnector(func(ctx context.Context) error {
			return c.peer.Connect(c.address, c.appID, nil)
		}, connection.Options{
			MaxAttempts: config.MaxAttempts,
			Logger:      peerCfg.Logger,
			OnAttempt: func(attempt int, delay time.Duration) {
				log.Printf("Reconnect attempt %d in %s", attempt, delay.Round(time.Millisecond))
				if c.collector != nil {
					c.collector.ObserveReconnect()
				}
			},
			OnGiveUp: func(attempts int) {
				log.Printf("Giving up after %d reconnect attempts", attempts)
			},
		})
	}

	go c.serviceLoop(ctx, config.ServiceInterval)

	if err := c.Connect(); err != nil {
		if c.reconnector == nil {
			log.Fatalf("Connect failed: %v", err)
		}
		log.Printf("Connect failed, retrying: %v", err)
	}

	if config.Interactive {
		shell, err := interactive.New(c)
		if err != nil {
			log.Fatalf("Failed to create shell: %v", err)
		}
		log.SetOutput(shell.Stdout())
		c.setOutput(shell.Stdout())
		go shell.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	cancel()
	c.shutdown(peerCfg.DisconnectTimeout)

	if protocolLogger != nil {
		written, dropped := protocolLogger.Stats()
		log.Printf("Protocol log: %d events written, %d dropped", written, dropped)
	}
	log.Println("Goodbye!")
}

// loadPeerConfig reads -config, applies the flag overrides and attaches the
// operational logger and the crypto provider.
func loadPeerConfig() (peer.Config, error) {
	cfg := peer.DefaultConfig()
	if config.ConfigFile != "" {
		var err error
		if cfg, err = peer.LoadConfig(config.ConfigFile); err != nil {
			return cfg, err
		}
	}
	if config.Protocol != "" {
		cfg.Protocol = peer.Protocol(strings.ToLower(config.Protocol))
	}
	cfg.TrafficStatsEnabled = cfg.TrafficStatsEnabled || config.MetricsAddr != "" || config.Interactive
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel(config.LogLevel)}))
	if config.Encrypt {
		cfg.Crypto = keyexchange.New()
	}
	if config.LogLevel == "debug" && cfg.DebugLevel < peer.DebugInfo {
		cfg.DebugLevel = peer.DebugAll
	}
	return cfg, cfg.Validate()
}

func discoverServer(ctx context.Context, protocol peer.Protocol) (string, error) {
	log.Printf("Browsing for %s servers...", discovery.ServiceType)
	browser := discovery.NewBrowser(discovery.DefaultBrowserConfig())
	svc, err := browser.FindFirst(ctx, discovery.FilterByAppID(config.AppID))
	if err != nil {
		return "", err
	}
	addr := svc.Address(protocol)
	if addr == "" {
		return "", fmt.Errorf("server %s does not offer %s", svc.InstanceName, protocol)
	}
	log.Printf("Found %s at %s", svc.InstanceName, addr)
	return addr, nil
}

func serveMetrics(addr string, collector *metrics.Collector) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server: %v", err)
		}
	}()
	log.Printf("Metrics on http://%s/metrics", addr)
	return srv
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
