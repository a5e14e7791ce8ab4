// Package config loads rfsniffer tunables from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/rfsniffer/internal/gpio"
	"github.com/sweeney/rfsniffer/internal/logic"
	"github.com/sweeney/rfsniffer/internal/mqtt"
)

// Config holds capture, decode and publish settings.
type Config struct {
	Chip       string           `yaml:"chip"`
	Pin        int              `yaml:"pin"`
	Duration   time.Duration    `yaml:"duration"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Window     WindowConfig     `yaml:"window"`

	Broker   string `yaml:"broker"` // empty disables publishing
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// ThresholdsConfig mirrors logic.Thresholds. Durations use Go syntax ("300us").
type ThresholdsConfig struct {
	Short    time.Duration `yaml:"short"`
	Long     time.Duration `yaml:"long"`
	Extended time.Duration `yaml:"extended"`
}

// WindowConfig mirrors logic.Window.
type WindowConfig struct {
	Start time.Duration `yaml:"start"`
	End   time.Duration `yaml:"end"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chip:     gpio.DefaultChip,
		Pin:      gpio.DefaultPin,
		Duration: gpio.DefaultDuration,
		Thresholds: ThresholdsConfig{
			Short:    logic.DefaultThresholds.Short,
			Long:     logic.DefaultThresholds.Long,
			Extended: logic.DefaultThresholds.Extended,
		},
		Window: WindowConfig{
			Start: logic.DefaultWindow.Start,
			End:   logic.DefaultWindow.End,
		},
		Topic:    mqtt.Topic,
		ClientID: mqtt.DefaultClientID,
	}
}

// Load reads a YAML config file. Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for values explicitly zeroed
	if cfg.Chip == "" {
		cfg.Chip = gpio.DefaultChip
	}
	if cfg.Duration == 0 {
		cfg.Duration = gpio.DefaultDuration
	}
	if cfg.Topic == "" {
		cfg.Topic = mqtt.Topic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = mqtt.DefaultClientID
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Pin < 0 {
		return fmt.Errorf("pin must be >= 0, got %d", c.Pin)
	}
	if c.Duration < 0 || c.Duration > gpio.MaxDuration {
		return fmt.Errorf("duration must be between 0 and %v, got %v", gpio.MaxDuration, c.Duration)
	}
	if c.Window.End != 0 && c.Window.End <= c.Window.Start {
		return fmt.Errorf("window end (%v) must be after start (%v)", c.Window.End, c.Window.Start)
	}
	return c.DecodeThresholds().Validate()
}

// DecodeThresholds returns the thresholds used by the decoder.
func (c Config) DecodeThresholds() logic.Thresholds {
	return logic.Thresholds{
		Short:    c.Thresholds.Short,
		Long:     c.Thresholds.Long,
		Extended: c.Thresholds.Extended,
	}
}

// DecodeWindow returns the analysis window used by the decoder.
func (c Config) DecodeWindow() logic.Window {
	return logic.Window{Start: c.Window.Start, End: c.Window.End}
}
