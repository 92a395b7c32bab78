package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
// Requests that match no endpoint use DefaultLimit; a zero DefaultLimit leaves them unlimited.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FrontEndConfig limits form submissions to perMinute per client with the given burst,
// and exports to three times that rate. Other routes are unlimited.
func FrontEndConfig(enabled bool, perMinute, burst int) *Config {
	return &Config{
		Enabled:         enabled && perMinute > 0,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		EndpointConfigs: []EndpointConfig{
			{Path: "/generate", Method: http.MethodPost, Limit: perMinute, Window: time.Minute, Burst: burst},
			{Path: "/export/", Method: http.MethodPost, Limit: 3 * perMinute, Window: time.Minute, Burst: 3 * burst},
		},
	}
}

// MatchEndpoint returns the configuration for path and method, or nil.
// Exact paths win over prefixes.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
