package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds intelfuse configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Extract   ExtractConfig   `yaml:"extract"`
	Auth      AuthConfig      `yaml:"auth"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr                string   `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	MaxRequestBodyBytes int64    `yaml:"max_request_body_bytes"`
	ReadHeaderTimeout   Duration `yaml:"read_header_timeout"`
	ReadTimeout         Duration `yaml:"read_timeout"`
	WriteTimeout        Duration `yaml:"write_timeout"`
	IdleTimeout         Duration `yaml:"idle_timeout"`
}

type FetchConfig struct {
	Timeout    Duration `yaml:"timeout"`
	UserAgent  string   `yaml:"user_agent"`
	MaxExcerpt int      `yaml:"max_excerpt"` // body excerpt bound in bytes
	Workers    int      `yaml:"workers"`     // concurrent fetches per batch
}

type ExtractConfig struct {
	Workers int `yaml:"workers"` // concurrent document extractions per batch
}

type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty list disables auth
}

type ExportConfig struct {
	Sinks     []SinkConfig `yaml:"sinks"`
	QueueSize int          `yaml:"queue_size"`
	Workers   int          `yaml:"workers"`
}

type SinkConfig struct {
	Type    string            `yaml:"type"` // file_jsonl | webhook
	Path    string            `yaml:"path"` // file_jsonl
	URL     string            `yaml:"url"`  // webhook
	Headers map[string]string `yaml:"headers"`
	Timeout Duration          `yaml:"timeout"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		cfg.Server.MaxRequestBodyBytes = 32 << 20 // base64 PDFs are bulky
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = Duration(5 * time.Second)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = Duration(60 * time.Second)
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = Duration(60 * time.Second)
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = Duration(90 * time.Second)
	}

	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = Duration(15 * time.Second)
	}
	if cfg.Fetch.MaxExcerpt <= 0 {
		cfg.Fetch.MaxExcerpt = 5000
	}
	if cfg.Fetch.Workers <= 0 {
		cfg.Fetch.Workers = 4
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "intelfuse/1.0"
	}

	if cfg.Extract.Workers <= 0 {
		cfg.Extract.Workers = 4
	}

	if cfg.Export.QueueSize <= 0 {
		cfg.Export.QueueSize = 100
	}
	if cfg.Export.Workers <= 0 {
		cfg.Export.Workers = 1
	}

	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "intelfuse"
	}
}
