// Package config defines the run configuration and the enumerated scrape
// modes. Built-in defaults can be extended or overridden from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/pfrederiksen/subsidy-scrape/internal/browser"
	"github.com/pfrederiksen/subsidy-scrape/internal/fetch"
)

// ErrUnknownMode is returned by Config.Mode for names not in the catalog.
var ErrUnknownMode = errors.New("unknown mode")

type BrowserConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Poll converts the browser settings to fetch poll bounds.
func (b BrowserConfig) Poll() fetch.PollConfig {
	return fetch.PollConfig{
		Interval: b.PollInterval,
		MaxPolls: b.MaxPolls,
		Timeout:  b.Timeout,
	}
}

type Config struct {
	OutputDir   string          `yaml:"output_dir"`
	UserAgent   string          `yaml:"user_agent"`
	HTTPTimeout time.Duration   `yaml:"http_timeout"`
	Browser     BrowserConfig   `yaml:"browser"`
	Modes       map[string]Mode `yaml:"modes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:   ".",
		UserAgent:   fetch.UserAgent,
		HTTPTimeout: fetch.Timeout,
		Browser: BrowserConfig{
			Endpoint:     browser.DefaultEndpoint,
			PollInterval: fetch.DefaultPollInterval,
			MaxPolls:     fetch.DefaultMaxPolls,
			Timeout:      fetch.DefaultPollTimeout,
		},
		Modes: BuiltinModes(),
	}
}

// Load reads path over the defaults. Modes in the file are added to the
// built-in ones; a mode with a built-in name replaces it. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every mode.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir is empty")
	}
	for _, name := range c.ModeNames() {
		m := c.Modes[name]
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mode %q: %w", name, err)
		}
	}
	return nil
}

// ModeNames lists configured modes in sorted order.
func (c *Config) ModeNames() []string {
	names := make([]string, 0, len(c.Modes))
	for name := range c.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mode looks up a mode by name. Unknown names are rejected rather than
// routed to a default.
func (c *Config) Mode(name string) (Mode, error) {
	m, ok := c.Modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w %q (known modes: %s)", ErrUnknownMode, name, strings.Join(c.ModeNames(), ", "))
	}
	m.Name = name
	return m, nil
}
