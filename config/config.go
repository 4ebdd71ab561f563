// Package config provides configuration management for wayfreeze.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options represents the client configuration. Every field has a
// matching CLI flag; flags override values read from the file.
type Options struct {
	// Exclude the pointer cursor from the captured image.
	HideCursor bool `yaml:"hide_cursor"`

	// Command to run (via sh -c) once all frames are captured, before
	// the overlay goes up, and how long to wait after spawning it.
	BeforeFreezeCmd     string `yaml:"before_freeze_cmd"`
	BeforeFreezeTimeout int    `yaml:"before_freeze_timeout"` // milliseconds

	// Command to run (via sh -c) once the overlay is up, and how long
	// to wait before spawning it.
	AfterFreezeCmd     string `yaml:"after_freeze_cmd"`
	AfterFreezeTimeout int    `yaml:"after_freeze_timeout"` // milliseconds
}

// Default returns a configuration with default values: cursor shown,
// no commands, no waits.
func Default() *Options {
	return &Options{}
}

// Load reads configuration from a yaml file with fallback to defaults.
// A missing file is not an error; a malformed or invalid one is.
func Load(filename string) (*Options, error) {
	opts := Default()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return opts, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return opts, nil
}

// Validate checks if the configuration values are valid.
func (o *Options) Validate() error {
	if o.BeforeFreezeTimeout < 0 {
		return fmt.Errorf("before_freeze_timeout must not be negative, got %d", o.BeforeFreezeTimeout)
	}
	if o.AfterFreezeTimeout < 0 {
		return fmt.Errorf("after_freeze_timeout must not be negative, got %d", o.AfterFreezeTimeout)
	}
	return nil
}

// BeforeDelay returns the before-freeze timeout as a time.Duration.
func (o *Options) BeforeDelay() time.Duration {
	return time.Duration(o.BeforeFreezeTimeout) * time.Millisecond
}

// AfterDelay returns the after-freeze timeout as a time.Duration.
func (o *Options) AfterDelay() time.Duration {
	return time.Duration(o.AfterFreezeTimeout) * time.Millisecond
}
