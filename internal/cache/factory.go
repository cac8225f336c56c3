package cache

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProviderConfig configures a cache provider.
type ProviderConfig struct {
	// Size bounds the number of entries for providers that enforce it.
	Size int

	// TTL is how long an entry is retained. Callers that serve stale
	// responses pass their freshness window plus the stale window.
	TTL time.Duration

	OnEvict EvictCallback

	// Logger receives backend errors. Nil drops them.
	Logger *zerolog.Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces keys in shared backends. Defaults to "showfeed:".
	KeyPrefix string

	// Group labels the cache's metrics. Empty disables instrumentation.
	Group string
}

// Provider builds a Cache from its config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Provider)
)

// Register makes a provider available to New under name. It panics on a nil
// provider or a name registered twice.
func Register(name string, p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	registry[name] = p
}

// New builds a cache with the named provider. A non-empty cfg.Group wraps it
// with metrics and counts evictions under that group.
func New(name string, cfg ProviderConfig) (Cache, error) {
	registryMu.RLock()
	p, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	group := cfg.Group
	if group == "" {
		return p(cfg)
	}

	onEvict := cfg.OnEvict
	cfg.OnEvict = func(key Key, entry Entry) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, entry)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders lists provider names in sorted order.
func RegisteredProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
