// Package config loads and validates the server's yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" parse directly.
type Duration time.Duration

// UnmarshalYAML parses a duration string or an integer number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs int64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value: %s", value.Value)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Tools   ToolsConfig   `yaml:"tools"`
	Content ContentConfig `yaml:"content"`
	Window  WindowConfig  `yaml:"window"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP/SSE surface.
type ServerConfig struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	Addr            string   `yaml:"addr"`
	BaseURL         string   `yaml:"base_url"`
	SessionTimeout  Duration `yaml:"session_timeout"`
	EventBufferSize int      `yaml:"event_buffer_size"`
}

// ToolsConfig configures the dispatch pipeline.
type ToolsConfig struct {
	DispatchTimeout Duration `yaml:"dispatch_timeout"`
}

// ContentConfig configures content resolution and the auto-type classifier.
type ContentConfig struct {
	ClassifierEnabled bool   `yaml:"classifier_enabled"`
	ClassifierModel   string `yaml:"classifier_model"`
	APIKeyEnv         string `yaml:"api_key_env"`
	// StrictAuto makes a failing classifier an error instead of falling
	// back to html treatment.
	StrictAuto bool `yaml:"strict_auto"`
}

// WindowConfig configures the host window bridge.
type WindowConfig struct {
	BridgeURL string   `yaml:"bridge_url"`
	Timeout   Duration `yaml:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            "canvas-mcp-server",
			Version:         "0.1.0",
			Addr:            ":8092",
			SessionTimeout:  Duration(5 * time.Minute),
			EventBufferSize: 100,
		},
		Tools: ToolsConfig{
			DispatchTimeout: Duration(30 * time.Second),
		},
		Content: ContentConfig{
			ClassifierEnabled: true,
			ClassifierModel:   "claude-3-5-haiku-latest",
			APIKeyEnv:         "ANTHROPIC_API_KEY",
		},
		Window: WindowConfig{
			Timeout: Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config from path, or returns defaults if path is empty or
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.EventBufferSize <= 0 {
		return fmt.Errorf("server.event_buffer_size must be positive, got %d", c.Server.EventBufferSize)
	}
	if c.Server.SessionTimeout.Std() <= 0 {
		return fmt.Errorf("server.session_timeout must be positive")
	}
	if c.Tools.DispatchTimeout.Std() <= 0 {
		return fmt.Errorf("tools.dispatch_timeout must be positive")
	}
	if c.Content.ClassifierEnabled && c.Content.ClassifierModel == "" {
		return fmt.Errorf("content.classifier_model must be set when the classifier is enabled")
	}
	return nil
}
