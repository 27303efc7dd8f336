package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	for _, key := range cfg.Auth.APIKeys {
		if strings.TrimSpace(key) == "" {
			return errors.New("auth.api_keys must not contain empty keys")
		}
	}

	for i, s := range cfg.Export.Sinks {
		if err := validateSinkConfig(i, s); err != nil {
			return err
		}
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateSinkConfig(i int, s SinkConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "file_jsonl":
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("export sink %d (file_jsonl) missing path", i)
		}
	case "webhook":
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("export sink %d (webhook) missing url", i)
		}
		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("export sink %d (webhook) has invalid url", i)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("export sink %d (webhook) url must be http or https", i)
		}
	default:
		return fmt.Errorf("export sink %d has unknown type %q", i, s.Type)
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
