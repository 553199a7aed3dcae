package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{TTL: DefaultTTL}
}

// Advertiser registers a server with mDNS.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise starts advertising info, replacing any previous registration.
// The registration is withdrawn when ctx is done or Stop is called.
func (a *Advertiser) Advertise(ctx context.Context, info *ServerInfo) error {
	if err := ValidateInstanceName(info.Name); err != nil {
		return err
	}
	if info.Port == 0 {
		return ErrInvalidPort
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Name,
		ServiceType,
		Domain,
		int(info.Port),
		TXTRecordsToStrings(EncodeTXT(info)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	a.server = server

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.server == server {
				server.Shutdown()
				a.server = nil
			}
		}()
	}
	return nil
}

// Stop withdraws the registration.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// BrowseTimeout bounds FindFirst when the context has no deadline.
	// Default: 10 seconds.
	BrowseTimeout time.Duration
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{BrowseTimeout: BrowseTimeout}
}

// Browser finds servers with mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &Browser{config: config}
}

// Browse searches for servers until ctx is done. Services are aggregated by
// instance name: addresses seen on several interfaces are merged into one
// entry, which is emitted once.
func (b *Browser) Browse(ctx context.Context) (<-chan *Service, error) {
	out := make(chan *Service)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		agg := newAggregator()

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc, isNew := agg.add(entry)
				if !isNew {
					continue
				}
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if ok {
					agg.remove(entry)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindFirst returns the first server accepted by filter. A nil filter
// accepts every server.
func (b *Browser) FindFirst(ctx context.Context, filter func(*Service) bool) (*Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	services, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for svc := range services {
		if filter == nil || filter(svc) {
			return svc, nil
		}
	}
	return nil, ErrNotFound
}

// FilterByAppID accepts servers dedicated to appID and servers that do not
// name an application.
func FilterByAppID(appID string) func(*Service) bool {
	return func(s *Service) bool {
		return s.AppID == "" || s.AppID == appID
	}
}

// aggregator merges browse entries by instance name.
type aggregator struct {
	services map[string]*Service
}

func newAggregator() *aggregator {
	return &aggregator{services: make(map[string]*Service)}
}

// add records entry and reports whether it is a new service. Entries with
// invalid TXT records are dropped.
func (a *aggregator) add(entry *zeroconf.ServiceEntry) (*Service, bool) {
	svc := entryToService(entry)
	if svc == nil {
		return nil, false
	}
	if existing, found := a.services[svc.InstanceName]; found {
		existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
		return existing, false
	}
	a.services[svc.InstanceName] = svc
	return svc, true
}

func (a *aggregator) remove(entry *zeroconf.ServiceEntry) {
	existing, found := a.services[entry.Instance]
	if !found {
		return
	}
	existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
	if len(existing.Addresses) == 0 {
		delete(a.services, entry.Instance)
	}
}

// entryToService converts a zeroconf entry to a Service.
func entryToService(entry *zeroconf.ServiceEntry) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	info.Name = entry.Instance
	info.Port = uint16(entry.Port)

	return &Service{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Addresses:    entryAddresses(entry),
		ServerInfo:   *info,
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

func removeAddresses(addresses, gone []string) []string {
	drop := make(map[string]bool, len(gone))
	for _, addr := range gone {
		drop[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !drop[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// interfaces returns the named interface, or nil for all interfaces.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
