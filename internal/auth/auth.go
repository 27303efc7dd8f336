package auth

import (
	"fmt"

	"github.com/intelfuse-ai/intelfuse/internal/config"
)

// Auth holds the set of accepted API keys. An empty set disables
// authentication entirely.
type Auth struct {
	keys map[string]struct{}
}

// NewFromConfig builds an Auth instance from the loaded config.
func NewFromConfig(cfg *config.Config) (*Auth, error) {
	keys := make(map[string]struct{}, len(cfg.Auth.APIKeys))
	for _, key := range cfg.Auth.APIKeys {
		if key == "" {
			return nil, fmt.Errorf("empty api key in config")
		}
		if _, exists := keys[key]; exists {
			return nil, fmt.Errorf("api key listed twice in config")
		}
		keys[key] = struct{}{}
	}
	return &Auth{keys: keys}, nil
}

// Enabled reports whether any key is configured.
func (a *Auth) Enabled() bool {
	return a != nil && len(a.keys) > 0
}

// Allow reports whether the presented key grants access. When auth is
// disabled every request is allowed.
func (a *Auth) Allow(key string) bool {
	if !a.Enabled() {
		return true
	}
	_, ok := a.keys[key]
	return ok
}
