package cache

import (
	"slices"
	"testing"
	"time"
)

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		cfg          ProviderConfig
		wantErr      bool
		instrumented bool
	}{
		{name: "memory", provider: "memory", cfg: ProviderConfig{Size: 4, TTL: time.Hour}},
		{name: "memory with group", provider: "memory", cfg: ProviderConfig{Size: 4, TTL: time.Hour, Group: "factory-test"}, instrumented: true},
		{name: "unknown provider", provider: "memcached", wantErr: true},
		{name: "unreachable redis", provider: "redis", cfg: ProviderConfig{TTL: time.Hour, RedisAddress: "localhost:59999"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.provider, tt.cfg)
			if tt.wantErr {
				if err == nil {
					_ = c.Close()
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q): %v", tt.provider, err)
			}
			defer c.Close()

			if _, ok := c.(*instrumentedCache); ok != tt.instrumented {
				t.Errorf("instrumented = %v, want %v", ok, tt.instrumented)
			}

			c.Set(PageKey(0), Entry{Body: []byte("data"), StoredAt: time.Now()})
			if got, ok := c.Get(PageKey(0)); !ok || string(got.Body) != "data" {
				t.Errorf("Expected a working cache, got %q, %v", got.Body, ok)
			}
		})
	}
}

func TestRegisteredProviders(t *testing.T) {
	names := RegisteredProviders()

	if !slices.Contains(names, "memory") || !slices.Contains(names, "redis") {
		t.Errorf("Expected memory and redis to be registered, got %v", names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("Providers not sorted: %v", names)
	}
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		p        Provider
	}{
		{name: "duplicate", provider: "memory", p: newMemoryCache},
		{name: "nil", provider: "nil-provider", p: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("Expected Register to panic")
				}
			}()
			Register(tt.provider, tt.p)
		})
	}
}
