package peer

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// Defaults.
const (
	DefaultChannelCount        = 2
	DefaultDisconnectTimeout   = 10 * time.Second
	DefaultPingInterval        = time.Second
	DefaultSentCountAllowance  = 7
	DefaultQuickResendAttempts = 0
	DefaultMaxFrameSize        = 512 * 1024

	// ProtocolVersionMajor and ProtocolVersionMinor are sent in the init message.
	ProtocolVersionMajor = 1
	ProtocolVersionMinor = 8
)

// Config configures a Peer.
type Config struct {
	// Protocol selects the transport flavour. UDP is not supported.
	Protocol Protocol

	// ChannelCount bounds SendOptions.Channel.
	ChannelCount int

	// DisconnectTimeout is the longest silence from the server tolerated
	// while connecting or connected.
	DisconnectTimeout time.Duration

	// PingInterval is the minimum time between two pings.
	PingInterval time.Duration

	// SentCountAllowance and QuickResendAttempts tune the reliable UDP
	// transport. Stream transports only validate them.
	SentCountAllowance  int
	QuickResendAttempts int

	// MaxFrameSize caps outgoing and incoming frames.
	MaxFrameSize int

	// UseByteArraySlicePool copies received frames into pooled slices.
	UseByteArraySlicePool bool

	// AsyncKeyExchange runs shared key derivation off the host goroutine.
	AsyncKeyExchange bool

	// DebugLevel filters Listener.DebugReturn.
	DebugLevel DebugLevel

	ClientSDKID   byte
	ClientVersion [4]byte

	// TrafficStatsEnabled turns on traffic counters.
	TrafficStatsEnabled bool

	// Registry resolves custom types. Nil uses wire.DefaultRegistry.
	Registry *wire.Registry

	// Crypto enables EstablishEncryption. Nil disables encryption.
	Crypto CryptoProvider

	// Logger receives operational output. Nil disables it.
	Logger *slog.Logger

	// ProtocolLogger captures frames, messages and state changes.
	ProtocolLogger log.Logger
}

// DefaultConfig returns the default peer configuration.
func DefaultConfig() Config {
	return Config{
		Protocol:            ProtocolTCP,
		ChannelCount:        DefaultChannelCount,
		DisconnectTimeout:   DefaultDisconnectTimeout,
		PingInterval:        DefaultPingInterval,
		SentCountAllowance:  DefaultSentCountAllowance,
		QuickResendAttempts: DefaultQuickResendAttempts,
		MaxFrameSize:        DefaultMaxFrameSize,
		DebugLevel:          DebugError,
		ClientVersion:       [4]byte{1, 0, 0, 0},
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	switch c.Protocol {
	case "":
		c.Protocol = ProtocolTCP
	case ProtocolTCP, ProtocolWebSocket, ProtocolWebSocketSecure:
	case ProtocolUDP:
		return fmt.Errorf("%w: %s", ErrUnsupportedProtocol, c.Protocol)
	default:
		return fmt.Errorf("%w: protocol %q", ErrInvalidConfig, c.Protocol)
	}

	if c.ChannelCount == 0 {
		c.ChannelCount = DefaultChannelCount
	}
	if c.ChannelCount < 1 || c.ChannelCount > 255 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidConfig, c.ChannelCount)
	}
	if c.DisconnectTimeout == 0 {
		c.DisconnectTimeout = DefaultDisconnectTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.DisconnectTimeout < 0 || c.PingInterval < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.SentCountAllowance < 0 || c.QuickResendAttempts < 0 {
		return fmt.Errorf("%w: negative resend setting", ErrInvalidConfig)
	}
	if c.QuickResendAttempts > 4 {
		return fmt.Errorf("%w: quick resend attempts %d > 4", ErrInvalidConfig, c.QuickResendAttempts)
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.MaxFrameSize < headerSize {
		return fmt.Errorf("%w: max frame size %d", ErrInvalidConfig, c.MaxFrameSize)
	}
	return nil
}

// FileConfig is the YAML form of Config.
type FileConfig struct {
	Protocol              string        `yaml:"protocol"`
	ChannelCount          int           `yaml:"channel_count"`
	DisconnectTimeout     time.Duration `yaml:"disconnect_timeout"`
	PingInterval          time.Duration `yaml:"ping_interval"`
	SentCountAllowance    *int          `yaml:"sent_count_allowance"`
	QuickResendAttempts   *int          `yaml:"quick_resend_attempts"`
	MaxFrameSize          int           `yaml:"max_frame_size"`
	UseByteArraySlicePool bool          `yaml:"use_byte_array_slice_pool"`
	AsyncKeyExchange      bool          `yaml:"async_key_exchange"`
	DebugLevel            string        `yaml:"debug_level"`
	ClientSDKID           byte          `yaml:"client_sdk_id"`
	ClientVersion         string        `yaml:"client_version"`
	TrafficStatsEnabled   bool          `yaml:"traffic_stats"`
}

// Apply overlays the file values onto cfg. Zero values keep cfg's setting.
func (f FileConfig) Apply(cfg *Config) error {
	if f.Protocol != "" {
		cfg.Protocol = Protocol(strings.ToLower(f.Protocol))
	}
	if f.ChannelCount != 0 {
		cfg.ChannelCount = f.ChannelCount
	}
	if f.DisconnectTimeout != 0 {
		cfg.DisconnectTimeout = f.DisconnectTimeout
	}
	if f.PingInterval != 0 {
		cfg.PingInterval = f.PingInterval
	}
	if f.SentCountAllowance != nil {
		cfg.SentCountAllowance = *f.SentCountAllowance
	}
	if f.QuickResendAttempts != nil {
		cfg.QuickResendAttempts = *f.QuickResendAttempts
	}
	if f.MaxFrameSize != 0 {
		cfg.MaxFrameSize = f.MaxFrameSize
	}
	cfg.UseByteArraySlicePool = cfg.UseByteArraySlicePool || f.UseByteArraySlicePool
	cfg.AsyncKeyExchange = cfg.AsyncKeyExchange || f.AsyncKeyExchange
	cfg.TrafficStatsEnabled = cfg.TrafficStatsEnabled || f.TrafficStatsEnabled
	if f.DebugLevel != "" {
		lvl, err := ParseDebugLevel(f.DebugLevel)
		if err != nil {
			return err
		}
		cfg.DebugLevel = lvl
	}
	if f.ClientSDKID != 0 {
		cfg.ClientSDKID = f.ClientSDKID
	}
	if f.ClientVersion != "" {
		v, err := ParseClientVersion(f.ClientVersion)
		if err != nil {
			return err
		}
		cfg.ClientVersion = v
	}
	return nil
}

// LoadConfig reads a YAML file and returns DefaultConfig overlaid with it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := fc.Apply(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseClientVersion parses a dotted version such as "4.1.8" into four
// bytes. Missing components are zero.
func ParseClientVersion(s string) ([4]byte, error) {
	var v [4]byte
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 4 {
		return v, fmt.Errorf("%w: client version %q", ErrInvalidConfig, s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return v, fmt.Errorf("%w: client version %q", ErrInvalidConfig, s)
		}
		v[i] = byte(n)
	}
	return v, nil
}
